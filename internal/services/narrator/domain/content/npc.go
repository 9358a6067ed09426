package content

import "fmt"

// UnknownNPCName is the documented default when an NPC has no display name
// in any overlay or base field.
const UnknownNPCName = "Unknown"

// Style describes how an NPC speaks.
type Style struct {
	Voice    string `json:"voice,omitempty"`
	Register string `json:"register,omitempty"`
}

// NPCOverlay holds locale-specific NPC fields.
type NPCOverlay struct {
	DisplayName string `json:"display_name,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Style       Style  `json:"style,omitempty"`
}

// NPCDoc is the raw character biography document.
type NPCDoc struct {
	ID          string                `json:"id"`
	Version     string                `json:"version,omitempty"`
	DisplayName string                `json:"display_name,omitempty"`
	Archetype   string                `json:"archetype,omitempty"`
	Summary     string                `json:"summary,omitempty"`
	Style       Style                 `json:"style,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	I18n        map[string]NPCOverlay `json:"i18n,omitempty"`
}

// LocalName resolves the display name for locale, defaulting to
// UnknownNPCName when neither overlay nor base has one.
func (d NPCDoc) LocalName(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.DisplayName, d.DisplayName, UnknownNPCName)
}

// LocalSummary resolves the summary for locale: overlay, then base.
func (d NPCDoc) LocalSummary(locale string) string {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Resolve(overlay.Summary, d.Summary)
}

// LocalStyle resolves voice and register per field: overlay, then base.
func (d NPCDoc) LocalStyle(locale string) Style {
	overlay, _ := lookupOverlay(d.I18n, locale)
	return Style{
		Voice:    Resolve(overlay.Style.Voice, d.Style.Voice),
		Register: Resolve(overlay.Style.Register, d.Style.Register),
	}
}

// ParseNPCDoc decodes and validates an NPC document.
func ParseNPCDoc(data []byte) (NPCDoc, error) {
	var doc NPCDoc
	if err := decodeStrict(data, &doc); err != nil {
		return NPCDoc{}, fmt.Errorf("parse npc doc: %w", err)
	}
	if doc.ID == "" {
		return NPCDoc{}, fmt.Errorf("parse npc doc: %w", ErrMissingDocID)
	}
	return doc, nil
}
