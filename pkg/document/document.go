// Package document converts between annotation snapshots and the exported JSON document.
//
// The document has exactly two top-level fields:
//
//	{
//	  "positionPoints": [{"position": "...", "name": "<id>", "x": 0, "y": 0, "type": "..."}],
//	  "positionLines":  [{"fromName": "<id>", "toName": "<id>", "lineId": "<id>"}]
//	}
//
// The same bytes are used for file export/import and for the key-value store.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/ritzau/annotator/pkg/model"
)

// ErrInvalidDocument is returned when bytes cannot be decoded as a document
var ErrInvalidDocument = errors.New("invalid document")

// PositionPoint is a point as stored in the document.
// Optional fields are pointers so an absent field stays absent on re-export.
type PositionPoint struct {
	Position *string `json:"position,omitempty"` // Label
	Name     *string `json:"name,omitempty"`     // Point id
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Type     *string `json:"type,omitempty"` // Shape kind
}

// PositionLine is an edge as stored in the document
type PositionLine struct {
	FromName string `json:"fromName"`
	ToName   string `json:"toName"`
	LineID   string `json:"lineId"`
}

// Document is the JSON persistence format
type Document struct {
	PositionPoints []PositionPoint `json:"positionPoints"`
	PositionLines  []PositionLine  `json:"positionLines"`
}

// FromSnapshot converts a snapshot to its document form.
// Empty labels and kinds are omitted.
func FromSnapshot(s model.Snapshot) Document {
	doc := Document{
		PositionPoints: make([]PositionPoint, 0, len(s.Points)),
		PositionLines:  make([]PositionLine, 0, len(s.Edges)),
	}

	for _, p := range s.Points {
		doc.PositionPoints = append(doc.PositionPoints, PositionPoint{
			Position: optional(p.Label),
			Name:     optional(p.ID),
			X:        p.X,
			Y:        p.Y,
			Type:     optional(p.Kind),
		})
	}

	for _, e := range s.Edges {
		doc.PositionLines = append(doc.PositionLines, PositionLine{
			FromName: e.FromID,
			ToName:   e.ToID,
			LineID:   e.ID,
		})
	}

	return doc
}

// Snapshot converts the document to a snapshot, preserving order.
// A point without a name cannot be referenced by any line, so it is given a fresh id.
func (d Document) Snapshot() model.Snapshot {
	s := model.Snapshot{
		Points: make([]model.Point, 0, len(d.PositionPoints)),
		Edges:  make([]model.Edge, 0, len(d.PositionLines)),
	}

	for _, pp := range d.PositionPoints {
		id := deref(pp.Name)
		if id == "" {
			id = uuid.NewString()
		}
		s.Points = append(s.Points, model.Point{
			ID:    id,
			Label: deref(pp.Position),
			X:     pp.X,
			Y:     pp.Y,
			Kind:  deref(pp.Type),
		})
	}

	for _, pl := range d.PositionLines {
		s.Edges = append(s.Edges, model.Edge{
			ID:     pl.LineID,
			FromID: pl.FromName,
			ToID:   pl.ToName,
		})
	}

	return s
}

// Decode reads one document from r
func Decode(r io.Reader) (model.Snapshot, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc.Snapshot(), nil
}

// Unmarshal decodes a document from bytes. Empty input is an empty snapshot.
func Unmarshal(data []byte) (model.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.NewSnapshot(), nil
	}
	return Decode(bytes.NewReader(data))
}

// Encode writes s as an indented document, like the "Save JSON" export
func Encode(w io.Writer, s model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromSnapshot(s)); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Marshal returns s as a compact document, like the local-storage copy
func Marshal(s model.Snapshot) ([]byte, error) {
	data, err := json.Marshal(FromSnapshot(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
