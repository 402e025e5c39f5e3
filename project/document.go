// ABOUTME: Versioned JSON document form of a project
// ABOUTME: Serialize/Deserialize back the undo history; the UI block is session-only

package project

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DocumentVersion is written into every serialized project
const DocumentVersion = 1

// ErrIDMismatch is returned when a snapshot of another project is restored
var ErrIDMismatch = errors.New("project id mismatch")

var validate = validator.New(validator.WithRequiredStructEnabled())

type document struct {
	Version  int       `json:"version" validate:"min=1"`
	UUID     string    `json:"uuid" validate:"required,uuid"`
	Label    string    `json:"label"`
	Notes    string    `json:"notes,omitempty"`
	DataSets []DataSet `json:"data_sets"`
	Results  []Result  `json:"results" validate:"dive"`
	UI       *UIState  `json:"ui,omitempty"`
}

// Serialize encodes the project as JSON
// With session set the UI state is included, which recovery files need and undo snapshots don't.
func (p *Project) Serialize(session bool) (string, error) {
	doc := document{
		Version:  DocumentVersion,
		UUID:     p.id.String(),
		Label:    p.Label,
		Notes:    p.Notes,
		DataSets: p.DataSets,
		Results:  p.Results,
	}

	if session {
		ui := p.UI
		doc.UI = &ui
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode project: %w", err)
	}

	return string(data), nil
}

// Deserialize replaces the project's state with a serialized snapshot of the same project
// The id never changes. UI state is only replaced when the snapshot carries it.
func (p *Project) Deserialize(data string) error {
	doc, err := decode(data)
	if err != nil {
		return err
	}

	if doc.UUID != p.id.String() {
		return fmt.Errorf("%w: have %s, snapshot is %s", ErrIDMismatch, p.id, doc.UUID)
	}

	p.apply(doc)

	return nil
}

// FromJSON builds a project from a serialized document, keeping its id
func FromJSON(data string) (*Project, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(doc.UUID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}

	p := &Project{id: id}
	p.apply(doc)

	return p, nil
}

func decode(data string) (document, error) {
	var doc document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode project: %w", err)
	}

	if doc.Version > DocumentVersion {
		return document{}, fmt.Errorf("project document version %d is newer than supported %d", doc.Version, DocumentVersion)
	}

	if err := validate.Struct(doc); err != nil {
		return document{}, fmt.Errorf("invalid project document: %w", err)
	}

	return doc, nil
}

func (p *Project) apply(doc document) {
	p.Label = doc.Label
	p.Notes = doc.Notes
	p.DataSets = doc.DataSets
	p.Results = doc.Results

	if p.DataSets == nil {
		p.DataSets = []DataSet{}
	}

	if p.Results == nil {
		p.Results = []Result{}
	}

	if doc.UI != nil {
		p.UI = *doc.UI
	}

	p.fixUI()
}
