package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
)

// documentBytes re-encodes the step table as JSON so the strict content
// parsers see exactly what a content file would hold; stray keys in a
// script are rejected the same way schema drift in a content dir is.
func documentBytes(args map[string]any) ([]byte, error) {
	return json.Marshal(args)
}

func (r *Runner) runDocumentStep(step Step) error {
	if step.Kind == "core" {
		if _, ok := step.Args["slug"]; !ok {
			step.Args["slug"] = "core"
		}
	}

	raw, err := documentBytes(step.Args)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", step.Kind, err)
	}

	switch step.Kind {
	case "core":
		doc, err := content.ParseTextDoc(raw)
		if err != nil {
			return err
		}
		r.store.core = &doc
	case "ruleset":
		doc, err := content.ParseTextDoc(raw)
		if err != nil {
			return err
		}
		r.store.rulesets[doc.Slug] = doc
	case "entry":
		doc, err := content.ParseTextDoc(raw)
		if err != nil {
			return err
		}
		r.store.entries[doc.Slug] = doc
	case "world":
		doc, err := content.ParseWorldDoc(raw)
		if err != nil {
			return err
		}
		r.store.worlds[doc.ID] = doc
	case "adventure":
		doc, err := content.ParseAdventureDoc(raw)
		if err != nil {
			return err
		}
		r.store.adventures[doc.ID] = doc
	case "npc":
		doc, err := content.ParseNPCDoc(raw)
		if err != nil {
			return err
		}
		r.store.npcs[doc.ID] = doc
	}
	return nil
}

func (r *Runner) runAssembleStep(ctx context.Context, step Step) error {
	policy, err := assemble.ParseScenarioPolicy(optionalString(step.Args, "scenario_policy", ""))
	if err != nil {
		return err
	}

	input := assemble.Input{
		WorldID:        optionalString(step.Args, "world", ""),
		RulesetSlug:    optionalString(step.Args, "ruleset", ""),
		ScenarioSlug:   optionalString(step.Args, "scenario", ""),
		EntryStartSlug: optionalString(step.Args, "entry", ""),
		NPCHints:       stringList(step.Args, "npcs"),
		Model:          optionalString(step.Args, "model", ""),
		Locale:         optionalString(step.Args, "locale", ""),
		BudgetTokens:   optionalInt(step.Args, "budget", 0),
		ScenarioPolicy: policy,
	}

	out, err := r.svc.Assemble(ctx, input)

	if expected := optionalString(step.Args, "expect_error", ""); expected != "" {
		if err == nil {
			return r.assertf("expected error containing %q, assembly succeeded", expected)
		}
		if !strings.Contains(err.Error(), expected) {
			return r.assertf("expected error containing %q, got %q", expected, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	if want, ok := step.Args["expect_included"]; ok {
		if err := r.assertList("included", out.Meta.Included, want); err != nil {
			return err
		}
	}
	if want, ok := step.Args["expect_dropped"]; ok {
		if err := r.assertList("dropped", out.Meta.Dropped, want); err != nil {
			return err
		}
	}
	if want, ok := step.Args["expect_policy"]; ok {
		if err := r.assertList("policy", out.Meta.Policy, want); err != nil {
			return err
		}
	}
	if substr := optionalString(step.Args, "expect_prompt_contains", ""); substr != "" {
		if !strings.Contains(out.Prompt, substr) {
			return r.assertf("prompt does not contain %q", substr)
		}
	}
	if want, ok := step.Args["expect_token_input"]; ok {
		if got := out.Meta.TokenEst.Input; got != toInt(want) {
			return r.assertf("token input = %d, want %d", got, toInt(want))
		}
	}
	return nil
}

// assertList compares an ordered id list against the script's expectation.
func (r *Runner) assertList(name string, got []string, want any) error {
	expected := toStringList(want)
	if len(got) != len(expected) {
		return r.assertf("%s = %v, want %v", name, got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			return r.assertf("%s = %v, want %v", name, got, expected)
		}
	}
	return nil
}

func optionalString(args map[string]any, key, fallback string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := args[key]; ok {
		return toInt(value)
	}
	return fallback
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringList(args map[string]any, key string) []string {
	value, ok := args[key]
	if !ok {
		return nil
	}
	return toStringList(value)
}

func toStringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
