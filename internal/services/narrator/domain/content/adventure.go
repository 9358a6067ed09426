package content

import "fmt"

// CastMember is one entry in an adventure's cast list.
type CastMember struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// AdventureOverlay holds locale-specific adventure fields.
type AdventureOverlay struct {
	Name     string `json:"name,omitempty"`
	Synopsis string `json:"synopsis,omitempty"`
}

// AdventureDoc is the raw scenario document.
type AdventureDoc struct {
	ID       string                      `json:"id"`
	Name     string                      `json:"name"`
	Synopsis string                      `json:"synopsis,omitempty"`
	Cast     []CastMember                `json:"cast,omitempty"`
	I18n     map[string]AdventureOverlay `json:"i18n,omitempty"`
}

// LocalName resolves the adventure name for locale: overlay name, then base.
func (d AdventureDoc) LocalName(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Name, d.Name)
}

// LocalSynopsis resolves the synopsis for locale: overlay, then base.
func (d AdventureDoc) LocalSynopsis(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Synopsis, d.Synopsis)
}

// ParseAdventureDoc decodes and validates an adventure document.
func ParseAdventureDoc(data []byte) (AdventureDoc, error) {
	var doc AdventureDoc
	if err := decodeStrict(data, &doc); err != nil {
		return AdventureDoc{}, fmt.Errorf("parse adventure doc: %w", err)
	}
	if doc.ID == "" {
		return AdventureDoc{}, fmt.Errorf("parse adventure doc: %w", ErrMissingDocID)
	}
	if doc.Name == "" {
		return AdventureDoc{}, fmt.Errorf("parse adventure doc: %w", ErrMissingDocName)
	}
	return doc, nil
}
