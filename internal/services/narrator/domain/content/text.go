package content

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDocSlug marks a text document without a slug.
	ErrMissingDocSlug = errors.New("document slug is required")
	// ErrMissingDocText marks a text document without body text.
	ErrMissingDocText = errors.New("document text is required")
)

// TextOverlay holds locale-specific text document fields.
type TextOverlay struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

// TextDoc is the raw shape of the plain-text layers: framework rules,
// ruleset policy, and entry points. Layer is the free-form label the
// content source attached; the classifier maps it to a scope.
type TextDoc struct {
	Slug  string                 `json:"slug"`
	Name  string                 `json:"name,omitempty"`
	Layer string                 `json:"layer,omitempty"`
	Text  string                 `json:"text"`
	I18n  map[string]TextOverlay `json:"i18n,omitempty"`
}

// LocalName resolves the document name for locale: overlay, base, slug.
func (d TextDoc) LocalName(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Name, d.Name, d.Slug)
}

// LocalText resolves the body text for locale: overlay, then base.
func (d TextDoc) LocalText(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Text, d.Text)
}

// ParseTextDoc decodes and validates a text document.
func ParseTextDoc(data []byte) (TextDoc, error) {
	var doc TextDoc
	if err := decodeStrict(data, &doc); err != nil {
		return TextDoc{}, fmt.Errorf("parse text doc: %w", err)
	}
	if doc.Slug == "" {
		return TextDoc{}, fmt.Errorf("parse text doc: %w", ErrMissingDocSlug)
	}
	if doc.Text == "" {
		return TextDoc{}, fmt.Errorf("parse text doc: %w", ErrMissingDocText)
	}
	return doc, nil
}
