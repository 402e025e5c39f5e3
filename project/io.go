// ABOUTME: Reads and writes project files and imports impedance data from CSV
// ABOUTME: Saving goes through a temp file and rename so a crash never leaves half a project

package project

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Load reads a project file
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	p, err := FromJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return p, nil
}

// Save writes the project to path, replacing any existing file
// UI state is not part of a saved project.
func (p *Project) Save(path string) error {
	data, err := p.Serialize(false)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write project: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close project file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}

	return nil
}

// ParseCSV reads frequency,real,imag rows
// Lines starting with # are comments and a non-numeric first row is treated as a header.
func ParseCSV(r io.Reader) ([]Point, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var points []Point

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		if len(record) < 3 {
			return nil, fmt.Errorf("row %d: expected frequency,real,imag, got %d fields", row, len(record))
		}

		if row == 1 && !numeric(record[0]) {
			continue
		}

		pt, err := parsePoint(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		points = append(points, pt)
	}

	if len(points) == 0 {
		return nil, errors.New("no data points found")
	}

	return points, nil
}

// ImportCSV reads a CSV data file into a new data set labelled label
// An empty label falls back to the file name without extension.
func ImportCSV(path, label string) (DataSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return DataSet{}, fmt.Errorf("failed to open data file: %w", err)
	}

	defer func() {
		_ = file.Close() // read-only
	}()

	points, err := ParseCSV(file)
	if err != nil {
		return DataSet{}, fmt.Errorf("%s: %w", path, err)
	}

	if label == "" {
		label = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return DataSet{Label: label, Path: path, Points: points}, nil
}

func parsePoint(record []string) (Point, error) {
	var vals [3]float64

	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Point{}, fmt.Errorf("invalid number %q", record[i])
		}

		vals[i] = v
	}

	if vals[0] <= 0 {
		return Point{}, fmt.Errorf("frequency must be positive, got %g", vals[0])
	}

	return Point{Frequency: vals[0], Real: vals[1], Imag: vals[2]}, nil
}

func numeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
