// Package scope defines the closed set of content layers and their budget
// priorities.
package scope

import (
	"errors"
	"strings"
)

// Scope identifies a content layer. The set is closed; downstream priority
// lookups never see a value outside the constants below.
type Scope string

const (
	// Core is the framework rules layer.
	Core Scope = "core"
	// Ruleset is the ruleset policy layer.
	Ruleset Scope = "ruleset"
	// World is the world lore layer.
	World Scope = "world"
	// Scenario is the adventure layer.
	Scenario Scope = "scenario"
	// Entry is the entry point layer.
	Entry Scope = "entry"
	// NPC is the character biography layer.
	NPC Scope = "npc"
)

// ErrUnknownScope is returned by Parse for values outside the closed set.
var ErrUnknownScope = errors.New("unknown scope")

// All returns every scope in priority order, highest priority first.
func All() []Scope {
	return []Scope{Core, Ruleset, World, Scenario, Entry, NPC}
}

// Priority returns the evaluation rank of s. Lower ranks are walked first
// by the budget engine. Unknown values rank after every real scope.
func (s Scope) Priority() int {
	switch s {
	case Core:
		return 0
	case Ruleset:
		return 1
	case World:
		return 2
	case Scenario:
		return 3
	case Entry:
		return 4
	case NPC:
		return 5
	default:
		return 6
	}
}

// Protected reports whether pieces in s may never be dropped.
func (s Scope) Protected() bool {
	switch s {
	case Core, Ruleset, World:
		return true
	default:
		return false
	}
}

// Valid reports whether s is one of the closed set.
func (s Scope) Valid() bool {
	switch s {
	case Core, Ruleset, World, Scenario, Entry, NPC:
		return true
	default:
		return false
	}
}

// Parse converts raw into a Scope, rejecting anything outside the closed
// set. Identifier parsing uses Parse; free-form source labels go through
// Classify instead.
func Parse(raw string) (Scope, error) {
	s := Scope(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrUnknownScope
	}
	return s, nil
}

// aliases maps known content-source labels to scopes. Labels are compared
// after normalization.
var aliases = map[string]Scope{
	"core":        Core,
	"framework":   Core,
	"system":      Core,
	"ruleset":     Ruleset,
	"rules":       Ruleset,
	"policy":      Ruleset,
	"world":       World,
	"lore":        World,
	"setting":     World,
	"scenario":    Scenario,
	"adventure":   Scenario,
	"module":      Scenario,
	"entry":       Entry,
	"entrypoint":  Entry,
	"entry-point": Entry,
	"start":       Entry,
	"npc":         NPC,
	"character":   NPC,
	"cast":        NPC,
}

// substringOrder fixes the fallback heuristic: the first scope whose marker
// appears in the label wins, checked in priority order.
var substringOrder = []struct {
	marker string
	scope  Scope
}{
	{"core", Core},
	{"framework", Core},
	{"ruleset", Ruleset},
	{"rule", Ruleset},
	{"world", World},
	{"lore", World},
	{"scenario", Scenario},
	{"adventure", Scenario},
	{"entry", Entry},
	{"start", Entry},
	{"npc", NPC},
	{"character", NPC},
}

// Classify normalizes a free-form content-source label into a Scope. The
// boolean reports whether the label was recognized; unrecognized labels
// default to Core and the caller decides how to surface the warning.
// Classify is pure: the same label always yields the same scope.
func Classify(label string) (Scope, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return Core, false
	}
	if s, ok := aliases[normalized]; ok {
		return s, true
	}
	for _, candidate := range substringOrder {
		if strings.Contains(normalized, candidate.marker) {
			return candidate.scope, true
		}
	}
	return Core, false
}
