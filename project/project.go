// ABOUTME: EIS project model with data sets, recorded analysis results and UI state
// ABOUTME: Implements history.Project so every edit can be snapshotted and restored

// Package project holds the electrochemical impedance spectroscopy project model.
// A project owns measured data sets and the analysis results recorded against them.
// It serializes to a versioned JSON document; the UI section is only written for
// session snapshots used by crash recovery.
package project

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Errors returned by project operations
var (
	ErrUnknownDataSet = errors.New("unknown data set")
	ErrUnknownResult  = errors.New("unknown result")
	ErrPointIndex     = errors.New("point index out of range")
)

// Point is one impedance measurement
type Point struct {
	Frequency float64 `json:"frequency"` // Hz
	Real      float64 `json:"real"`      // ohm
	Imag      float64 `json:"imag"`      // ohm
	Masked    bool    `json:"masked,omitempty"`
}

// DataSet is a measured impedance spectrum
type DataSet struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Path   string  `json:"path,omitempty"` // file it was imported from
	Points []Point `json:"points"`
}

// Unmasked returns the number of points that take part in analyses
func (d DataSet) Unmasked() int {
	n := 0

	for _, p := range d.Points {
		if !p.Masked {
			n++
		}
	}

	return n
}

// ResultKind names the analysis that produced a result
type ResultKind string

// Analysis kinds
const (
	KramersKronig ResultKind = "kramers-kronig"
	Fit           ResultKind = "fit"
	DRT           ResultKind = "drt"
	ZHIT          ResultKind = "zhit"
)

// Result is an analysis outcome recorded against a data set
// The numbers themselves live in Settings; this package never computes them.
type Result struct {
	ID        string            `json:"id"`
	Kind      ResultKind        `json:"kind" validate:"oneof=kramers-kronig fit drt zhit"`
	DataSetID string            `json:"data_set_id" validate:"required"`
	Label     string            `json:"label"`
	Settings  map[string]string `json:"settings,omitempty"`
}

// UIState is the session-only part of a project
type UIState struct {
	ActiveDataSet string `json:"active_data_set,omitempty"`
	Cursor        int    `json:"cursor"`
}

// Project is an EIS project
type Project struct {
	id       uuid.UUID
	Label    string
	Notes    string
	DataSets []DataSet
	Results  []Result
	UI       UIState
}

// New creates an empty project with a fresh id
func New(label string) *Project {
	return &Project{
		id:       uuid.New(),
		Label:    label,
		DataSets: []DataSet{},
		Results:  []Result{},
	}
}

// ID returns the project's uuid as a string
func (p *Project) ID() string {
	return p.id.String()
}

// SetLabel renames the project
func (p *Project) SetLabel(label string) {
	p.Label = label
}

// SetNotes replaces the project notes
func (p *Project) SetNotes(notes string) {
	p.Notes = notes
}

// AddDataSet appends a data set and makes it active
// An empty ID gets a fresh uuid.
func (p *Project) AddDataSet(ds DataSet) DataSet {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}

	if ds.Points == nil {
		ds.Points = []Point{}
	}

	p.DataSets = append(p.DataSets, ds)
	p.UI.ActiveDataSet = ds.ID
	p.UI.Cursor = len(p.DataSets) - 1

	return ds
}

// FindDataSet returns the position of a data set
func (p *Project) FindDataSet(id string) (int, bool) {
	i := slices.IndexFunc(p.DataSets, func(d DataSet) bool { return d.ID == id })

	return i, i >= 0
}

// RemoveDataSet deletes a data set together with its results
func (p *Project) RemoveDataSet(id string) error {
	i, ok := p.FindDataSet(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataSet, id)
	}

	p.DataSets = slices.Delete(p.DataSets, i, i+1)
	p.Results = slices.DeleteFunc(p.Results, func(r Result) bool { return r.DataSetID == id })

	p.fixUI()

	return nil
}

// RenameDataSet changes a data set's label
func (p *Project) RenameDataSet(id, label string) error {
	i, ok := p.FindDataSet(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataSet, id)
	}

	p.DataSets[i].Label = label

	return nil
}

// MoveDataSet shifts a data set by offset positions, clamped to the list bounds
// Returns false when the data set did not move.
func (p *Project) MoveDataSet(id string, offset int) (bool, error) {
	i, ok := p.FindDataSet(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownDataSet, id)
	}

	j := max(0, min(len(p.DataSets)-1, i+offset))
	if j == i {
		return false, nil
	}

	ds := p.DataSets[i]
	p.DataSets = slices.Delete(p.DataSets, i, i+1)
	p.DataSets = slices.Insert(p.DataSets, j, ds)

	if p.UI.ActiveDataSet == id {
		p.UI.Cursor = j
	}

	return true, nil
}

// DuplicateDataSet inserts a copy of a data set right after it
func (p *Project) DuplicateDataSet(id string) (DataSet, error) {
	i, ok := p.FindDataSet(id)
	if !ok {
		return DataSet{}, fmt.Errorf("%w: %s", ErrUnknownDataSet, id)
	}

	src := p.DataSets[i]
	cp := DataSet{
		ID:     uuid.NewString(),
		Label:  src.Label + " (copy)",
		Path:   src.Path,
		Points: slices.Clone(src.Points),
	}

	p.DataSets = slices.Insert(p.DataSets, i+1, cp)
	p.UI.ActiveDataSet = cp.ID
	p.UI.Cursor = i + 1

	return cp, nil
}

// ToggleMask flips the mask flag of one point and returns the new value
func (p *Project) ToggleMask(id string, point int) (bool, error) {
	i, ok := p.FindDataSet(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownDataSet, id)
	}

	pts := p.DataSets[i].Points
	if point < 0 || point >= len(pts) {
		return false, fmt.Errorf("%w: %d of %d", ErrPointIndex, point, len(pts))
	}

	pts[point].Masked = !pts[point].Masked

	return pts[point].Masked, nil
}

// AddResult records an analysis result against an existing data set
func (p *Project) AddResult(r Result) (Result, error) {
	if _, ok := p.FindDataSet(r.DataSetID); !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownDataSet, r.DataSetID)
	}

	if err := validate.Struct(r); err != nil {
		return Result{}, fmt.Errorf("invalid result: %w", err)
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	p.Results = append(p.Results, r)

	return r, nil
}

// RemoveResult deletes a recorded result
func (p *Project) RemoveResult(id string) error {
	i := slices.IndexFunc(p.Results, func(r Result) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownResult, id)
	}

	p.Results = slices.Delete(p.Results, i, i+1)

	return nil
}

// ResultsFor returns the results recorded against a data set
func (p *Project) ResultsFor(dataSetID string) []Result {
	var out []Result

	for _, r := range p.Results {
		if r.DataSetID == dataSetID {
			out = append(out, r)
		}
	}

	return out
}

// fixUI keeps the cursor and active data set pointing at something that exists
func (p *Project) fixUI() {
	if len(p.DataSets) == 0 {
		p.UI = UIState{}
		return
	}

	if i, ok := p.FindDataSet(p.UI.ActiveDataSet); ok {
		p.UI.Cursor = i
		return
	}

	p.UI.Cursor = max(0, min(p.UI.Cursor, len(p.DataSets)-1))
	p.UI.ActiveDataSet = p.DataSets[p.UI.Cursor].ID
}
