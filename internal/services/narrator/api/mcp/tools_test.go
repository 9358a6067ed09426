package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perrors "github.com/mistvale/loreweave/internal/platform/errors"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

type fakeNarrator struct {
	assembleIn  assemble.Input
	assembleOut assemble.Output
	assembleErr error

	auditsQuery storage.ListQuery
	auditsPage  storage.AssemblyPage
	auditsErr   error

	worlds     []content.WorldDoc
	adventures []content.AdventureDoc
	npcs       []content.NPCDoc
	listErr    error
}

func (f *fakeNarrator) Assemble(ctx context.Context, in assemble.Input) (assemble.Output, error) {
	f.assembleIn = in
	return f.assembleOut, f.assembleErr
}

func (f *fakeNarrator) EstimateText(text string) int {
	return (len(text) + 3) / 4
}

func (f *fakeNarrator) ClassifyLabel(label string) (scope.Scope, bool) {
	return scope.Classify(label)
}

func (f *fakeNarrator) Audits(ctx context.Context, query storage.ListQuery) (storage.AssemblyPage, error) {
	f.auditsQuery = query
	return f.auditsPage, f.auditsErr
}

func (f *fakeNarrator) Worlds(ctx context.Context) ([]content.WorldDoc, error) {
	return f.worlds, f.listErr
}

func (f *fakeNarrator) Adventures(ctx context.Context) ([]content.AdventureDoc, error) {
	return f.adventures, f.listErr
}

func (f *fakeNarrator) NPCs(ctx context.Context) ([]content.NPCDoc, error) {
	return f.npcs, f.listErr
}

func TestContextAssembleHandler(t *testing.T) {
	fake := &fakeNarrator{
		assembleOut: assemble.Output{
			Prompt: "### World\n\n### Entry",
			Meta: assemble.Meta{
				Included: []string{"core:core", "world:w1", "entry:start"},
				Dropped:  []string{"npc:vex"},
				Policy:   []string{"NPC_DROPPED npc:vex"},
				TokenEst: assemble.TokenEst{Input: 280, Budget: 300, Pct: 280.0 / 300},
			},
		},
	}

	_, result, err := ContextAssembleHandler(fake)(context.Background(), nil, ContextAssembleInput{
		WorldID:        "w1",
		EntryStartSlug: "start",
		NPCHints:       []string{"kiera", "vex"},
		BudgetTokens:   300,
		ScenarioPolicy: "optional",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if fake.assembleIn.WorldID != "w1" {
		t.Errorf("world id = %q, want w1", fake.assembleIn.WorldID)
	}
	if fake.assembleIn.ScenarioPolicy != assemble.ScenarioPolicyOptional {
		t.Errorf("scenario policy = %v, want optional", fake.assembleIn.ScenarioPolicy)
	}
	if result.Prompt != fake.assembleOut.Prompt {
		t.Errorf("prompt = %q", result.Prompt)
	}
	if len(result.Included) != 3 || len(result.Dropped) != 1 {
		t.Errorf("included/dropped = %v / %v", result.Included, result.Dropped)
	}
	if result.TokenInput != 280 || result.TokenBudget != 300 {
		t.Errorf("token est = %d/%d", result.TokenInput, result.TokenBudget)
	}
}

func TestContextAssembleHandlerValidationFailure(t *testing.T) {
	fake := &fakeNarrator{
		assembleErr: perrors.Wrap(perrors.CodeValidation, "assemble input", assemble.ErrMissingEntrySlug),
	}

	_, _, err := ContextAssembleHandler(fake)(context.Background(), nil, ContextAssembleInput{
		WorldID:      "w1",
		BudgetTokens: 300,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), string(perrors.CodeValidation)) {
		t.Errorf("error %q does not carry the validation code", err)
	}
	if !errors.Is(err, assemble.ErrMissingEntrySlug) {
		t.Errorf("error %q does not wrap the domain sentinel", err)
	}
}

func TestContextAssembleHandlerRejectsBadPolicy(t *testing.T) {
	fake := &fakeNarrator{}
	_, _, err := ContextAssembleHandler(fake)(context.Background(), nil, ContextAssembleInput{
		WorldID:        "w1",
		EntryStartSlug: "start",
		BudgetTokens:   300,
		ScenarioPolicy: "mandatory",
	})
	if err == nil {
		t.Fatal("expected error for unknown scenario policy")
	}
	if fake.assembleIn.WorldID != "" {
		t.Error("assemble was called despite bad policy")
	}
}

func TestTokenEstimateHandler(t *testing.T) {
	_, result, err := TokenEstimateHandler(&fakeNarrator{})(context.Background(), nil, TokenEstimateInput{Text: "abcdefgh"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Tokens != 2 {
		t.Errorf("tokens = %d, want 2", result.Tokens)
	}
}

func TestLayerClassifyHandler(t *testing.T) {
	tests := []struct {
		label      string
		scope      string
		recognized bool
	}{
		{"World Lore", "world", true},
		{"adventure", "scenario", true},
		{"mystery-layer", "core", false},
	}
	for _, tt := range tests {
		_, result, err := LayerClassifyHandler(&fakeNarrator{})(context.Background(), nil, LayerClassifyInput{Label: tt.label})
		if err != nil {
			t.Fatalf("classify %q: %v", tt.label, err)
		}
		if result.Scope != tt.scope || result.Recognized != tt.recognized {
			t.Errorf("classify %q = %s/%v, want %s/%v", tt.label, result.Scope, result.Recognized, tt.scope, tt.recognized)
		}
	}
}

func TestPieceIDParseHandler(t *testing.T) {
	_, result, err := PieceIDParseHandler()(context.Background(), nil, PieceIDParseInput{ID: "npc:kiera@2.0.0"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.Scope != "npc" || result.Slug != "kiera" || result.Version != "2.0.0" {
		t.Errorf("parsed = %+v", result)
	}

	_, _, err = PieceIDParseHandler()(context.Background(), nil, PieceIDParseInput{ID: "not-an-id"})
	if err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestAuditListHandler(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	fake := &fakeNarrator{
		auditsPage: storage.AssemblyPage{
			Assemblies: []storage.AssemblyRecord{{
				ID:           "rec1",
				CreatedAt:    created,
				WorldID:      "w1",
				BudgetTokens: 300,
				InputTokens:  300,
				Pct:          1.0,
				Included:     []string{"core:core"},
				Dropped:      []string{},
				Policy:       []string{},
				PromptSHA256: "abc",
			}},
			NextPageToken: "next",
		},
	}

	_, result, err := AuditListHandler(fake)(context.Background(), nil, AuditListInput{
		Filter:   `world_id = "w1"`,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if fake.auditsQuery.Filter != `world_id = "w1"` || fake.auditsQuery.PageSize != 10 {
		t.Errorf("query = %+v", fake.auditsQuery)
	}
	if len(result.Assemblies) != 1 || result.NextPageToken != "next" {
		t.Fatalf("result = %+v", result)
	}
	if result.Assemblies[0].CreatedAt != "2026-03-14T09:26:53.000Z" {
		t.Errorf("created_at = %q", result.Assemblies[0].CreatedAt)
	}
}

func TestAuditListHandlerPropagatesError(t *testing.T) {
	fake := &fakeNarrator{auditsErr: perrors.New(perrors.CodeInternal, "audit store is not configured")}
	_, _, err := AuditListHandler(fake)(context.Background(), nil, AuditListInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), string(perrors.CodeInternal)) {
		t.Errorf("error %q does not carry the internal code", err)
	}
}
