// ABOUTME: Tests for project edits and JSON round trips
// ABOUTME: Includes undo/redo through a real history.Manager

package project

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"eis-history/history"
)

func sampleDataSet(label string) DataSet {
	return DataSet{
		Label: label,
		Points: []Point{
			{Frequency: 1e5, Real: 10, Imag: -1},
			{Frequency: 1e3, Real: 20, Imag: -8},
			{Frequency: 1e1, Real: 45, Imag: -3},
		},
	}
}

func TestProject_AddAndRemoveDataSet(t *testing.T) {
	p := New("cell A")

	a := p.AddDataSet(sampleDataSet("a"))
	b := p.AddDataSet(sampleDataSet("b"))

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("data sets need distinct ids, got %q and %q", a.ID, b.ID)
	}

	if _, err := p.AddResult(Result{Kind: Fit, DataSetID: a.ID, Label: "R(RC)"}); err != nil {
		t.Fatalf("AddResult failed: %v", err)
	}

	if _, err := p.AddResult(Result{Kind: DRT, DataSetID: b.ID}); err != nil {
		t.Fatalf("AddResult failed: %v", err)
	}

	if err := p.RemoveDataSet(a.ID); err != nil {
		t.Fatalf("RemoveDataSet failed: %v", err)
	}

	if len(p.DataSets) != 1 || p.DataSets[0].ID != b.ID {
		t.Errorf("DataSets = %v, want only b", p.DataSets)
	}

	if len(p.Results) != 1 || p.Results[0].DataSetID != b.ID {
		t.Errorf("results of a removed data set should go with it, got %v", p.Results)
	}

	if err := p.RemoveDataSet(a.ID); !errors.Is(err, ErrUnknownDataSet) {
		t.Errorf("second RemoveDataSet error = %v, want ErrUnknownDataSet", err)
	}
}

func TestProject_AddResultValidation(t *testing.T) {
	p := New("x")
	ds := p.AddDataSet(sampleDataSet("a"))

	if _, err := p.AddResult(Result{Kind: "bogus", DataSetID: ds.ID}); err == nil {
		t.Error("unknown result kind should be rejected")
	}

	if _, err := p.AddResult(Result{Kind: ZHIT, DataSetID: "missing"}); !errors.Is(err, ErrUnknownDataSet) {
		t.Errorf("error = %v, want ErrUnknownDataSet", err)
	}

	r, err := p.AddResult(Result{Kind: KramersKronig, DataSetID: ds.ID, Settings: map[string]string{"mu": "0.85"}})
	if err != nil {
		t.Fatalf("AddResult failed: %v", err)
	}

	if err := p.RemoveResult(r.ID); err != nil {
		t.Errorf("RemoveResult failed: %v", err)
	}

	if err := p.RemoveResult(r.ID); !errors.Is(err, ErrUnknownResult) {
		t.Errorf("error = %v, want ErrUnknownResult", err)
	}
}

func TestProject_MoveDataSet(t *testing.T) {
	p := New("x")
	a := p.AddDataSet(sampleDataSet("a"))
	p.AddDataSet(sampleDataSet("b"))
	p.AddDataSet(sampleDataSet("c"))

	moved, err := p.MoveDataSet(a.ID, 1)
	if err != nil || !moved {
		t.Fatalf("MoveDataSet = %v, %v", moved, err)
	}

	if got := labels(p); got != "b,a,c" {
		t.Errorf("order = %s, want b,a,c", got)
	}

	moved, _ = p.MoveDataSet(a.ID, 10)
	if !moved || labels(p) != "b,c,a" {
		t.Errorf("clamped move gave %s", labels(p))
	}

	moved, _ = p.MoveDataSet(a.ID, 1)
	if moved {
		t.Error("moving the last data set down should be a no-op")
	}
}

func TestProject_DuplicateAndMask(t *testing.T) {
	p := New("x")
	a := p.AddDataSet(sampleDataSet("a"))

	cp, err := p.DuplicateDataSet(a.ID)
	if err != nil {
		t.Fatalf("DuplicateDataSet failed: %v", err)
	}

	if cp.ID == a.ID || cp.Label != "a (copy)" {
		t.Errorf("copy = %+v", cp)
	}

	masked, err := p.ToggleMask(cp.ID, 1)
	if err != nil || !masked {
		t.Fatalf("ToggleMask = %v, %v", masked, err)
	}

	if p.DataSets[0].Points[1].Masked {
		t.Error("masking the copy must not touch the original")
	}

	if p.DataSets[1].Unmasked() != 2 {
		t.Errorf("Unmasked() = %d, want 2", p.DataSets[1].Unmasked())
	}

	if _, err := p.ToggleMask(cp.ID, 3); !errors.Is(err, ErrPointIndex) {
		t.Errorf("error = %v, want ErrPointIndex", err)
	}
}

func TestProject_SerializeSessionOnlyUI(t *testing.T) {
	p := New("x")
	p.AddDataSet(sampleDataSet("a"))

	plain, err := p.Serialize(false)
	if err != nil {
		t.Fatal(err)
	}

	session, err := p.Serialize(true)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(plain, `"ui"`) {
		t.Errorf("plain serialization should not carry UI state: %s", plain)
	}

	if !strings.Contains(session, `"ui"`) {
		t.Errorf("session serialization should carry UI state: %s", session)
	}

	again, _ := p.Serialize(false)
	if again != plain {
		t.Error("serialization should be deterministic")
	}
}

func TestProject_DeserializeKeepsID(t *testing.T) {
	p := New("x")
	p.AddDataSet(sampleDataSet("a"))

	state, _ := p.Serialize(false)

	p.SetLabel("renamed")
	p.AddDataSet(sampleDataSet("b"))

	if err := p.Deserialize(state); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if p.Label != "x" || len(p.DataSets) != 1 {
		t.Errorf("state not restored: label=%q data sets=%d", p.Label, len(p.DataSets))
	}

	other := New("other")
	if err := other.Deserialize(state); !errors.Is(err, ErrIDMismatch) {
		t.Errorf("error = %v, want ErrIDMismatch", err)
	}

	if err := p.Deserialize("{not json"); err == nil {
		t.Error("garbage should fail to deserialize")
	}
}

func TestProject_FromJSONRoundTrip(t *testing.T) {
	p := New("x")
	p.SetNotes("50 mV amplitude")
	ds := p.AddDataSet(sampleDataSet("a"))
	_, _ = p.AddResult(Result{Kind: Fit, DataSetID: ds.ID})

	state, _ := p.Serialize(true)

	q, err := FromJSON(state)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}

	if q.ID() != p.ID() || q.Notes != p.Notes || q.UI.ActiveDataSet != ds.ID {
		t.Errorf("FromJSON lost data: %+v", q)
	}
}

func TestProject_UndoRedoThroughManager(t *testing.T) {
	m, err := history.NewManager(history.Options{}, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	p := New("cell")
	if err := m.Snapshot(p); err != nil {
		t.Fatal(err)
	}

	a := p.AddDataSet(sampleDataSet("a"))
	_ = m.Snapshot(p)

	_ = p.RenameDataSet(a.ID, "renamed")
	_ = m.Snapshot(p)

	if !m.Undo(p) || p.DataSets[0].Label != "a" {
		t.Fatalf("undo should restore the old label, got %q", p.DataSets[0].Label)
	}

	if !m.Undo(p) || len(p.DataSets) != 0 {
		t.Fatalf("second undo should remove the data set, have %d", len(p.DataSets))
	}

	if !m.Redo(p) || len(p.DataSets) != 1 {
		t.Fatal("redo should bring the data set back")
	}

	if p.UI.ActiveDataSet != a.ID {
		t.Errorf("active data set = %q, want %q", p.UI.ActiveDataSet, a.ID)
	}
}

func labels(p *Project) string {
	out := make([]string, len(p.DataSets))
	for i, d := range p.DataSets {
		out[i] = d.Label
	}

	return strings.Join(out, ",")
}
