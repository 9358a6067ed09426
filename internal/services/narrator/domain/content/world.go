package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingDocID marks a document without an id.
	ErrMissingDocID = errors.New("document id is required")
	// ErrMissingDocName marks a document without a base name.
	ErrMissingDocName = errors.New("document name is required")
)

// Season is one named stretch of a world calendar.
type Season struct {
	Name string `json:"name"`
	Mood string `json:"mood,omitempty"`
}

// Timeworld carries the temporal framing of a world. It is passed through
// to the prompt whole; token discipline may remove seasons or the entire
// object, never individual fields inside it.
type Timeworld struct {
	Era      string   `json:"era,omitempty"`
	Calendar string   `json:"calendar,omitempty"`
	Seasons  []Season `json:"seasons,omitempty"`
}

// WorldOverlay holds locale-specific world fields.
type WorldOverlay struct {
	Name string `json:"name,omitempty"`
}

// WorldDoc is the raw world lore document.
type WorldDoc struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Timeworld *Timeworld              `json:"timeworld,omitempty"`
	I18n      map[string]WorldOverlay `json:"i18n,omitempty"`
}

// LocalName resolves the world name for locale: overlay name, then base.
func (d WorldDoc) LocalName(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Name, d.Name)
}

// ParseWorldDoc decodes and validates a world document.
func ParseWorldDoc(data []byte) (WorldDoc, error) {
	var doc WorldDoc
	if err := decodeStrict(data, &doc); err != nil {
		return WorldDoc{}, fmt.Errorf("parse world doc: %w", err)
	}
	if doc.ID == "" {
		return WorldDoc{}, fmt.Errorf("parse world doc: %w", ErrMissingDocID)
	}
	if doc.Name == "" {
		return WorldDoc{}, fmt.Errorf("parse world doc: %w", ErrMissingDocName)
	}
	return doc, nil
}

// decodeStrict decodes JSON rejecting unknown fields, so schema drift in
// content sources surfaces at ingestion instead of as silently dropped data.
func decodeStrict(data []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}
