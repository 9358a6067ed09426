package assemble

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/piece"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
)

func pc(s scope.Scope, slug, text string, tokens int) piece.Piece {
	return piece.Piece{Scope: s, Slug: slug, Text: text, Tokens: tokens}
}

func TestRunWorkedBudget(t *testing.T) {
	// Candidates arrive shuffled so the walk has to order them itself.
	candidates := []piece.Piece{
		pc(scope.NPC, "kiera", "npc kiera", 30),
		pc(scope.World, "highmarch", "the world", 50),
		pc(scope.NPC, "vex", "npc vex", 25),
		pc(scope.Core, "core", "the core rules", 60),
		pc(scope.Scenario, "embers", "the scenario", 90),
		pc(scope.Ruleset, "standard", "the ruleset", 70),
	}

	out, err := Run(candidates, 300, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantIncluded := []string{"core:core", "ruleset:standard", "world:highmarch", "scenario:embers", "npc:kiera"}
	if !reflect.DeepEqual(out.Meta.Included, wantIncluded) {
		t.Fatalf("included = %v, want %v", out.Meta.Included, wantIncluded)
	}
	wantDropped := []string{"npc:vex"}
	if !reflect.DeepEqual(out.Meta.Dropped, wantDropped) {
		t.Fatalf("dropped = %v, want %v", out.Meta.Dropped, wantDropped)
	}
	wantPolicy := []string{"NPC_DROPPED npc:vex"}
	if !reflect.DeepEqual(out.Meta.Policy, wantPolicy) {
		t.Fatalf("policy = %v, want %v", out.Meta.Policy, wantPolicy)
	}
	if out.Meta.TokenEst.Input != 300 || out.Meta.TokenEst.Budget != 300 {
		t.Fatalf("token est = %+v", out.Meta.TokenEst)
	}
	if out.Meta.TokenEst.Pct != 1.0 {
		t.Fatalf("pct = %v, want 1.0", out.Meta.TokenEst.Pct)
	}

	wantPrompt := "the core rules\n\nthe ruleset\n\nthe world\n\nthe scenario\n\nnpc kiera"
	if out.Prompt != wantPrompt {
		t.Fatalf("prompt = %q, want %q", out.Prompt, wantPrompt)
	}
	if len(out.Pieces) != len(wantIncluded) {
		t.Fatalf("pieces = %d, want %d", len(out.Pieces), len(wantIncluded))
	}
}

func TestRunPartitionLaw(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 100),
		pc(scope.Ruleset, "r", "r", 100),
		pc(scope.World, "w", "w", 100),
		pc(scope.Scenario, "s", "s", 100),
		pc(scope.Entry, "e", "e", 100),
		pc(scope.NPC, "n1", "n1", 100),
		pc(scope.NPC, "n2", "n2", 1),
	}

	out, err := Run(candidates, 310, ScenarioPolicyOptional)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	seen := map[string]int{}
	for _, id := range out.Meta.Included {
		seen[id]++
	}
	for _, id := range out.Meta.Dropped {
		seen[id]++
	}
	if len(seen) != len(candidates) {
		t.Fatalf("partition covers %d ids, want %d", len(seen), len(candidates))
	}
	for _, p := range candidates {
		if seen[p.ID()] != 1 {
			t.Fatalf("piece %s appears %d times across included/dropped", p.ID(), seen[p.ID()])
		}
	}
}

func TestRunProtectedNeverDropped(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 500),
		pc(scope.Ruleset, "r", "r", 400),
		pc(scope.World, "w", "w", 300),
	}

	out, err := Run(candidates, 10, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Meta.Dropped) != 0 {
		t.Fatalf("dropped = %v, want none", out.Meta.Dropped)
	}
	if out.Meta.TokenEst.Input != 1200 {
		t.Fatalf("input = %d, want 1200", out.Meta.TokenEst.Input)
	}
	if out.Meta.TokenEst.Pct <= 1 {
		t.Fatalf("pct = %v, want > 1 to surface the overage", out.Meta.TokenEst.Pct)
	}
}

func TestRunEntryNeverDropped(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 90),
		pc(scope.Entry, "gatehouse", "e", 500),
	}

	out, err := Run(candidates, 100, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Meta.Dropped) != 0 {
		t.Fatalf("dropped = %v, want none", out.Meta.Dropped)
	}
	if out.Meta.Included[len(out.Meta.Included)-1] != "entry:gatehouse" {
		t.Fatalf("included = %v, want entry last", out.Meta.Included)
	}
}

func TestRunScenarioPolicies(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 90),
		pc(scope.Scenario, "embers", "s", 50),
	}

	t.Run("unspecified surfaces ambiguity then drops", func(t *testing.T) {
		out, err := Run(candidates, 100, ScenarioPolicyUnspecified)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		wantPolicy := []string{
			"SCENARIO_POLICY_UNDECIDED scenario:embers",
			"SCENARIO_DROPPED scenario:embers",
		}
		if !reflect.DeepEqual(out.Meta.Policy, wantPolicy) {
			t.Fatalf("policy = %v, want %v", out.Meta.Policy, wantPolicy)
		}
		if !reflect.DeepEqual(out.Meta.Dropped, []string{"scenario:embers"}) {
			t.Fatalf("dropped = %v", out.Meta.Dropped)
		}
		if out.Meta.TokenEst.Input != 90 {
			t.Fatalf("input = %d, want 90", out.Meta.TokenEst.Input)
		}
	})

	t.Run("optional drops without ambiguity", func(t *testing.T) {
		out, err := Run(candidates, 100, ScenarioPolicyOptional)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		wantPolicy := []string{"SCENARIO_DROPPED scenario:embers"}
		if !reflect.DeepEqual(out.Meta.Policy, wantPolicy) {
			t.Fatalf("policy = %v, want %v", out.Meta.Policy, wantPolicy)
		}
	})

	t.Run("required includes over budget", func(t *testing.T) {
		out, err := Run(candidates, 100, ScenarioPolicyRequired)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(out.Meta.Policy) != 0 {
			t.Fatalf("policy = %v, want none", out.Meta.Policy)
		}
		if !reflect.DeepEqual(out.Meta.Included, []string{"core:core", "scenario:embers"}) {
			t.Fatalf("included = %v", out.Meta.Included)
		}
		if out.Meta.TokenEst.Pct <= 1 {
			t.Fatalf("pct = %v, want > 1", out.Meta.TokenEst.Pct)
		}
	})

	t.Run("fitting scenario needs no policy", func(t *testing.T) {
		out, err := Run(candidates, 200, ScenarioPolicyUnspecified)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(out.Meta.Policy) != 0 {
			t.Fatalf("policy = %v, want none", out.Meta.Policy)
		}
	})
}

func TestRunLaterCheaperNPCStillFits(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 80),
		pc(scope.NPC, "expensive", "n1", 50),
		pc(scope.NPC, "cheap", "n2", 10),
	}

	out, err := Run(candidates, 100, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(out.Meta.Dropped, []string{"npc:expensive"}) {
		t.Fatalf("dropped = %v, want [npc:expensive]", out.Meta.Dropped)
	}
	if !reflect.DeepEqual(out.Meta.Included, []string{"core:core", "npc:cheap"}) {
		t.Fatalf("included = %v", out.Meta.Included)
	}
	if out.Meta.TokenEst.Input != 90 {
		t.Fatalf("input = %d, want 90", out.Meta.TokenEst.Input)
	}
}

func TestRunKeepsNPCHintOrder(t *testing.T) {
	// Hint order is third then first; the stable sort must keep it.
	candidates := []piece.Piece{
		pc(scope.NPC, "third", "n", 1),
		pc(scope.Core, "core", "c", 1),
		pc(scope.NPC, "first", "n", 1),
	}

	out, err := Run(candidates, 100, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"core:core", "npc:third", "npc:first"}
	if !reflect.DeepEqual(out.Meta.Included, want) {
		t.Fatalf("included = %v, want %v", out.Meta.Included, want)
	}
}

func TestRunMonotonicity(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 50),
		pc(scope.Scenario, "s", "s", 60),
		pc(scope.NPC, "a", "a", 40),
		pc(scope.NPC, "b", "b", 30),
		pc(scope.NPC, "c", "c", 20),
	}

	droppableIncluded := func(budget int) int {
		out, err := Run(candidates, budget, ScenarioPolicyOptional)
		if err != nil {
			t.Fatalf("Run(%d): %v", budget, err)
		}
		n := 0
		for _, p := range out.Pieces {
			if !p.Scope.Protected() {
				n++
			}
		}
		return n
	}

	prev := droppableIncluded(500)
	for budget := 499; budget >= 1; budget-- {
		cur := droppableIncluded(budget)
		if cur > prev {
			t.Fatalf("budget %d includes %d droppable pieces, budget %d included %d", budget, cur, budget+1, prev)
		}
		prev = cur
	}
}

func TestRunIdempotent(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.Core, "core", "c", 100),
		pc(scope.World, "w", "w", 80),
		pc(scope.NPC, "a", "a", 40),
		pc(scope.NPC, "b", "b", 40),
	}

	first, err := Run(candidates, 200, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(candidates, 200, ScenarioPolicyUnspecified)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("outputs differ:\n%+v\nvs\n%+v", first, second)
	}
}

func TestRunDoesNotMutateCandidates(t *testing.T) {
	candidates := []piece.Piece{
		pc(scope.NPC, "n", "n", 10),
		pc(scope.Core, "core", "c", 10),
	}
	before := make([]piece.Piece, len(candidates))
	copy(before, candidates)

	if _, err := Run(candidates, 100, ScenarioPolicyUnspecified); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(candidates, before) {
		t.Fatalf("candidates mutated: %+v", candidates)
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	protected := []piece.Piece{pc(scope.Core, "core", "c", 10)}

	if _, err := Run(protected, 0, ScenarioPolicyUnspecified); !errors.Is(err, ErrBudgetNotPositive) {
		t.Fatalf("zero budget: %v", err)
	}
	if _, err := Run(protected, -5, ScenarioPolicyUnspecified); !errors.Is(err, ErrBudgetNotPositive) {
		t.Fatalf("negative budget: %v", err)
	}

	unprotected := []piece.Piece{
		pc(scope.Entry, "e", "e", 10),
		pc(scope.NPC, "n", "n", 10),
	}
	if _, err := Run(unprotected, 100, ScenarioPolicyUnspecified); !errors.Is(err, ErrMissingProtectedScope) {
		t.Fatalf("no protected scope: %v", err)
	}
	if _, err := Run(nil, 100, ScenarioPolicyUnspecified); !errors.Is(err, ErrMissingProtectedScope) {
		t.Fatalf("no candidates: %v", err)
	}
}
