package content

import (
	"sort"

	"golang.org/x/text/language"
)

// Resolve returns the first non-empty candidate. It is the single fallback
// helper every overlay chain goes through, so precedence stays visible at
// the call site: Resolve(localized, base, default).
func Resolve(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// matchOverlay picks the overlay key best matching the requested locale.
// Keys are matched as BCP 47 tags, so a pt-BR request finds a pt overlay.
// Returns false when the locale is empty, unparseable, or nothing matches.
func matchOverlay(keys []string, locale string) (string, bool) {
	if locale == "" || len(keys) == 0 {
		return "", false
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return "", false
	}

	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	tags := make([]language.Tag, 0, len(sorted))
	valid := make([]string, 0, len(sorted))
	for _, key := range sorted {
		tag, err := language.Parse(key)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, key)
	}
	if len(tags) == 0 {
		return "", false
	}

	_, index, confidence := language.NewMatcher(tags).Match(requested)
	if confidence == language.No {
		return "", false
	}
	return valid[index], true
}

func overlayKeys[V any](overlays map[string]V) []string {
	keys := make([]string, 0, len(overlays))
	for key := range overlays {
		keys = append(keys, key)
	}
	return keys
}

// lookupOverlay returns the overlay entry matching locale, if any.
func lookupOverlay[V any](overlays map[string]V, locale string) (V, bool) {
	var zero V
	if len(overlays) == 0 {
		return zero, false
	}
	key, ok := matchOverlay(overlayKeys(overlays), locale)
	if !ok {
		return zero, false
	}
	value, ok := overlays[key]
	if !ok {
		return zero, false
	}
	return value, true
}
