// Package assemble turns a set of candidate pieces into a bounded prompt.
// It owns the budget walk: protected scopes always land in the prompt,
// droppable scopes are kept or dropped against the running token sum, and
// every decision is surfaced in the output metadata.
package assemble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/piece"
)

var (
	ErrMissingWorldID        = errors.New("assemble: world id is required")
	ErrMissingEntrySlug      = errors.New("assemble: entry start slug is required")
	ErrBudgetNotPositive     = errors.New("assemble: budget tokens must be positive")
	ErrMissingProtectedScope = errors.New("assemble: no core, ruleset, or world candidate supplied")
)

// Policy action codes. The vocabulary is closed: entry pieces have no drop
// action, which is why the walk treats them as protected.
const (
	ActionScenarioPolicyUndecided = "SCENARIO_POLICY_UNDECIDED"
	ActionScenarioDropped         = "SCENARIO_DROPPED"
	ActionNPCDropped              = "NPC_DROPPED"
)

// ReasonRenderFailed marks a drop caused by a piece that failed to render
// rather than by the budget walk.
const ReasonRenderFailed = "render_failed"

// ScenarioPolicy states whether the caller considers the scenario piece
// droppable when it does not fit the budget.
type ScenarioPolicy int

const (
	// ScenarioPolicyUnspecified means the caller never said. An over-budget
	// scenario is surfaced as undecided and then dropped.
	ScenarioPolicyUnspecified ScenarioPolicy = iota
	// ScenarioPolicyRequired keeps the scenario even over budget.
	ScenarioPolicyRequired
	// ScenarioPolicyOptional drops the scenario when it does not fit.
	ScenarioPolicyOptional
)

// ParseScenarioPolicy maps the wire form of a scenario policy to its enum.
// The empty string is unspecified.
func ParseScenarioPolicy(raw string) (ScenarioPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unspecified":
		return ScenarioPolicyUnspecified, nil
	case "required":
		return ScenarioPolicyRequired, nil
	case "optional":
		return ScenarioPolicyOptional, nil
	default:
		return ScenarioPolicyUnspecified, fmt.Errorf("assemble: unknown scenario policy %q", raw)
	}
}

// Input identifies the content an assembly draws from and the budget it
// must respect. Locale selects i18n overlays during compaction. The zero
// ScenarioPolicy leaves an over-budget scenario undecided.
type Input struct {
	WorldID        string
	RulesetSlug    string
	ScenarioSlug   string
	EntryStartSlug string
	NPCHints       []string
	Model          string
	Locale         string
	BudgetTokens   int
	ScenarioPolicy ScenarioPolicy
}

// Validate rejects inputs the engine cannot work with. It runs before any
// document is fetched.
func (in Input) Validate() error {
	if strings.TrimSpace(in.WorldID) == "" {
		return ErrMissingWorldID
	}
	if strings.TrimSpace(in.EntryStartSlug) == "" {
		return ErrMissingEntrySlug
	}
	if in.BudgetTokens <= 0 {
		return ErrBudgetNotPositive
	}
	return nil
}

// TokenEst reports the token accounting of one assembly. Pct may exceed 1
// when protected content alone is larger than the budget; overage is
// surfaced, never hidden by evicting protected pieces.
type TokenEst struct {
	Input  int     `json:"input"`
	Budget int     `json:"budget"`
	Pct    float64 `json:"pct"`
}

// Meta records every decision of the budget walk. Each candidate id lands
// in exactly one of Included and Dropped.
type Meta struct {
	Included []string `json:"included"`
	Dropped  []string `json:"dropped"`
	Policy   []string `json:"policy"`
	TokenEst TokenEst `json:"token_est"`
}

// Output is the assembled prompt plus the pieces that made it in, in
// prompt order.
type Output struct {
	Prompt string        `json:"prompt"`
	Pieces []piece.Piece `json:"pieces"`
	Meta   Meta          `json:"meta"`
}

// PolicyEntry renders one policy action in its "CODE id" wire form, with
// an optional trailing reason token.
func PolicyEntry(action, id, reason string) string {
	if reason == "" {
		return action + " " + id
	}
	return action + " " + id + " " + reason
}
