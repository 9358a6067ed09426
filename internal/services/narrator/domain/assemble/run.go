package assemble

import (
	"sort"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/piece"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
)

// Run walks the candidate pieces in scope-priority order against the token
// budget and returns the assembled prompt with full decision metadata.
//
// Candidates are never mutated; within a scope the caller's order is kept,
// so npc hints are evaluated in the order they were given. Run is pure and
// safe for unbounded concurrent use.
func Run(candidates []piece.Piece, budget int, policy ScenarioPolicy) (Output, error) {
	if budget <= 0 {
		return Output{}, ErrBudgetNotPositive
	}
	if !hasProtected(candidates) {
		return Output{}, ErrMissingProtectedScope
	}

	ordered := make([]piece.Piece, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Scope.Priority() < ordered[j].Scope.Priority()
	})

	var (
		included []piece.Piece
		meta     = Meta{Included: []string{}, Dropped: []string{}, Policy: []string{}}
		sum      int
	)
	keep := func(p piece.Piece) {
		included = append(included, p)
		sum += p.Tokens
		meta.Included = append(meta.Included, p.ID())
	}

	for _, p := range ordered {
		id := p.ID()
		switch p.Scope {
		case scope.Scenario:
			if sum+p.Tokens <= budget {
				keep(p)
				continue
			}
			switch policy {
			case ScenarioPolicyRequired:
				keep(p)
			case ScenarioPolicyOptional:
				meta.Policy = append(meta.Policy, PolicyEntry(ActionScenarioDropped, id, ""))
				meta.Dropped = append(meta.Dropped, id)
			default:
				meta.Policy = append(meta.Policy,
					PolicyEntry(ActionScenarioPolicyUndecided, id, ""),
					PolicyEntry(ActionScenarioDropped, id, ""))
				meta.Dropped = append(meta.Dropped, id)
			}
		case scope.NPC:
			// Each hint is judged against the unchanged running sum, so a
			// later, cheaper npc can still fit after an expensive one drops.
			if sum+p.Tokens <= budget {
				keep(p)
				continue
			}
			meta.Policy = append(meta.Policy, PolicyEntry(ActionNPCDropped, id, ""))
			meta.Dropped = append(meta.Dropped, id)
		default:
			// core, ruleset, and world are structurally protected. entry
			// rides with them: the policy vocabulary defines no entry drop
			// action, and inventing one silently would change the output
			// contract, so an entry piece is never dropped here.
			keep(p)
		}
	}

	texts := make([]string, len(included))
	for i, p := range included {
		texts[i] = p.Text
	}
	meta.TokenEst = TokenEst{
		Input:  sum,
		Budget: budget,
		Pct:    float64(sum) / float64(budget),
	}

	return Output{
		Prompt: strings.Join(texts, "\n\n"),
		Pieces: included,
		Meta:   meta,
	}, nil
}

func hasProtected(candidates []piece.Piece) bool {
	for _, p := range candidates {
		if p.Scope.Protected() {
			return true
		}
	}
	return false
}
