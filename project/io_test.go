// ABOUTME: Tests for project file I/O and CSV import
// ABOUTME: Verifies headers, comments, malformed rows and atomic save

package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectCount int
		expectError bool
	}{
		{
			name:        "plain rows",
			content:     "1000,10.5,-2\n100,12,-5\n",
			expectCount: 2,
		},
		{
			name:        "with header",
			content:     "frequency,real,imag\n1000,10.5,-2\n",
			expectCount: 1,
		},
		{
			name:        "with comments and spaces",
			content:     "# cell 3, 25C\n1000, 10.5, -2\n# mid\n10, 30, -9\n",
			expectCount: 2,
		},
		{
			name:        "extra columns ignored",
			content:     "1000,10.5,-2,0.99\n",
			expectCount: 1,
		},
		{
			name:        "too few fields",
			content:     "1000,10.5\n",
			expectError: true,
		},
		{
			name:        "bad number",
			content:     "1000,abc,-2\n",
			expectError: true,
		},
		{
			name:        "NaN value",
			content:     "1000,NaN,-2\n",
			expectError: true,
		},
		{
			name:        "infinite frequency",
			content:     "inf,2,3\n",
			expectError: true,
		},
		{
			name:        "infinite imaginary part",
			content:     "1000,2,-Inf\n",
			expectError: true,
		},
		{
			name:        "non-positive frequency",
			content:     "0,1,1\n",
			expectError: true,
		},
		{
			name:        "header only",
			content:     "frequency,real,imag\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := ParseCSV(strings.NewReader(tt.content))

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got %d points", len(points))
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(points) != tt.expectCount {
				t.Errorf("got %d points, want %d", len(points), tt.expectCount)
			}
		})
	}
}

func TestImportCSV_DefaultLabel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cell-3.csv")

	if err := os.WriteFile(path, []byte("1000,10,-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := ImportCSV(path, "")
	if err != nil {
		t.Fatalf("ImportCSV failed: %v", err)
	}

	if ds.Label != "cell-3" || ds.Path != path || len(ds.Points) != 1 {
		t.Errorf("ImportCSV = %+v", ds)
	}

	if _, err := ImportCSV(filepath.Join(dir, "missing.csv"), ""); err == nil {
		t.Error("missing file should fail")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")

	p := New("cell")
	p.AddDataSet(sampleDataSet("a"))

	if err := p.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p.SetLabel("second")

	if err := p.Save(path); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir holds %d entries, want only the project file", len(entries))
	}

	q, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if q.ID() != p.ID() || q.Label != "second" || len(q.DataSets) != 1 {
		t.Errorf("loaded project = %+v", q)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "nope.json")); err == nil {
		t.Error("missing file should fail")
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"version":1,"uuid":"not-a-uuid"}`), 0o644)

	if _, err := Load(bad); err == nil {
		t.Error("invalid uuid should fail")
	}

	future := filepath.Join(dir, "future.json")
	_ = os.WriteFile(future, []byte(`{"version":99,"uuid":"7d444840-9dc0-11d1-b245-5ffdce74fad2"}`), 0o644)

	if _, err := Load(future); err == nil {
		t.Error("newer document version should fail")
	}
}
