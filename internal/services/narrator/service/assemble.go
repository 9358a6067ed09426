package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	perrors "github.com/mistvale/loreweave/internal/platform/errors"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/compact"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/piece"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/token"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

// Assemble builds one bounded prompt for the given input.
//
// Protected content (core rules, the requested ruleset, the world, the
// entry point) must resolve or the whole assembly fails. Scenario and npc
// content degrades instead: a fetch or parse failure drops the piece with
// a render_failed policy marker and assembly continues.
func (s *Service) Assemble(ctx context.Context, in assemble.Input) (assemble.Output, error) {
	if err := in.Validate(); err != nil {
		return assemble.Output{}, perrors.Wrap(perrors.CodeValidation, "assemble input", err)
	}

	ctx, span := s.tracer.Start(ctx, "narrator.assemble")
	defer span.End()
	span.SetAttributes(
		attribute.String("narrator.world_id", in.WorldID),
		attribute.Int("narrator.budget_tokens", in.BudgetTokens),
	)

	var (
		candidates []piece.Piece
		preDropped []string
		prePolicy  []string
	)

	coreDoc, err := s.fetchText(ctx, "core", "core", func(ctx context.Context) (content.TextDoc, error) {
		return s.content.CoreRules(ctx)
	})
	if err != nil {
		return assemble.Output{}, protectedFetchErr("core rules", err)
	}
	s.checkLayer(coreDoc.Layer)
	candidates = append(candidates, textPiece(scope.Core, coreDoc.Slug, coreDoc, in.Locale))

	if in.RulesetSlug != "" {
		rulesetDoc, err := s.fetchText(ctx, "ruleset", in.RulesetSlug, func(ctx context.Context) (content.TextDoc, error) {
			return s.content.Ruleset(ctx, in.RulesetSlug)
		})
		if err != nil {
			return assemble.Output{}, protectedFetchErr("ruleset "+in.RulesetSlug, err)
		}
		s.checkLayer(rulesetDoc.Layer)
		candidates = append(candidates, textPiece(scope.Ruleset, in.RulesetSlug, rulesetDoc, in.Locale))
	}

	worldDoc, err := s.fetchWorld(ctx, in.WorldID)
	if err != nil {
		return assemble.Output{}, protectedFetchErr("world "+in.WorldID, err)
	}
	world := compact.CompactWorld(worldDoc, in.Locale)
	worldCost := compact.DisciplineWorld(&world, s.docCap)
	candidates = append(candidates, piece.Piece{
		Scope:  scope.World,
		Slug:   in.WorldID,
		Text:   world.Render(),
		Tokens: worldCost,
	})

	if in.ScenarioSlug != "" {
		advDoc, err := s.fetchAdventure(ctx, in.ScenarioSlug)
		if err != nil {
			droppedID := piece.FormatID(scope.Scenario, in.ScenarioSlug, "")
			preDropped = append(preDropped, droppedID)
			prePolicy = append(prePolicy, assemble.PolicyEntry(assemble.ActionScenarioDropped, droppedID, assemble.ReasonRenderFailed))
			s.logf("narrator: scenario %s failed to render: %v", in.ScenarioSlug, err)
		} else {
			adv := compact.CompactAdventure(advDoc, in.Locale)
			advCost := compact.DisciplineAdventure(&adv, s.docCap)
			candidates = append(candidates, piece.Piece{
				Scope:  scope.Scenario,
				Slug:   in.ScenarioSlug,
				Text:   adv.Render(),
				Tokens: advCost,
			})
		}
	}

	entryDoc, err := s.fetchText(ctx, "entry", in.EntryStartSlug, func(ctx context.Context) (content.TextDoc, error) {
		return s.content.Entry(ctx, in.EntryStartSlug)
	})
	if err != nil {
		return assemble.Output{}, protectedFetchErr("entry "+in.EntryStartSlug, err)
	}
	s.checkLayer(entryDoc.Layer)
	candidates = append(candidates, textPiece(scope.Entry, in.EntryStartSlug, entryDoc, in.Locale))

	for _, hint := range in.NPCHints {
		npcDoc, err := s.fetchNPC(ctx, hint)
		if err != nil {
			droppedID := piece.FormatID(scope.NPC, hint, "")
			preDropped = append(preDropped, droppedID)
			prePolicy = append(prePolicy, assemble.PolicyEntry(assemble.ActionNPCDropped, droppedID, assemble.ReasonRenderFailed))
			s.logf("narrator: npc %s failed to render: %v", hint, err)
			continue
		}
		npc := compact.CompactNPC(npcDoc, in.Locale)
		npc.ID = hint
		npc.Version = npcDoc.Version
		text := npc.Render()
		candidates = append(candidates, piece.Piece{
			Scope:   scope.NPC,
			Slug:    hint,
			Version: npcDoc.Version,
			Text:    text,
			Tokens:  token.Estimate(text),
		})
	}

	out, err := assemble.Run(candidates, in.BudgetTokens, in.ScenarioPolicy)
	if err != nil {
		if errors.Is(err, assemble.ErrMissingProtectedScope) {
			return assemble.Output{}, perrors.Wrap(perrors.CodeMissingProtectedScope, "assemble", err)
		}
		return assemble.Output{}, perrors.Wrap(perrors.CodeValidation, "assemble", err)
	}

	// Render failures were decided before the budget walk, so they lead
	// the dropped and policy lists.
	if len(preDropped) > 0 {
		out.Meta.Dropped = append(preDropped, out.Meta.Dropped...)
		out.Meta.Policy = append(prePolicy, out.Meta.Policy...)
	}

	s.recordAudit(ctx, in, out)

	span.SetAttributes(
		attribute.Int("narrator.included", len(out.Meta.Included)),
		attribute.Int("narrator.dropped", len(out.Meta.Dropped)),
		attribute.Int("narrator.token_input", out.Meta.TokenEst.Input),
		attribute.Float64("narrator.token_pct", out.Meta.TokenEst.Pct),
	)
	return out, nil
}

// recordAudit persists the assembly outcome when an audit store is
// configured. Audit failures are logged, never returned: the assembly
// already succeeded.
func (s *Service) recordAudit(ctx context.Context, in assemble.Input, out assemble.Output) {
	if s.audit == nil {
		return
	}
	recordID, err := s.idGenerator()
	if err != nil {
		s.logf("narrator: audit id: %v", err)
		return
	}
	digest := sha256.Sum256([]byte(out.Prompt))
	record := storage.AssemblyRecord{
		ID:           recordID,
		CreatedAt:    s.clock(),
		WorldID:      in.WorldID,
		Model:        in.Model,
		BudgetTokens: in.BudgetTokens,
		InputTokens:  out.Meta.TokenEst.Input,
		Pct:          out.Meta.TokenEst.Pct,
		Included:     out.Meta.Included,
		Dropped:      out.Meta.Dropped,
		Policy:       out.Meta.Policy,
		PromptSHA256: hex.EncodeToString(digest[:]),
	}
	if err := s.audit.PutAssembly(ctx, record); err != nil {
		s.logf("narrator: audit assembly %s: %v", recordID, err)
	}
}

// protectedFetchErr wraps a fetch failure for content the output contract
// cannot do without.
func protectedFetchErr(what string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return perrors.Wrap(perrors.CodeNotFound, "fetch "+what, err)
	}
	return perrors.Wrap(perrors.CodeRenderFailed, "fetch "+what, err)
}

func textPiece(sc scope.Scope, slug string, doc content.TextDoc, locale string) piece.Piece {
	text := doc.LocalText(locale)
	return piece.Piece{Scope: sc, Slug: slug, Text: text, Tokens: token.Estimate(text)}
}

func (s *Service) fetchText(ctx context.Context, kind, slug string, fetch func(context.Context) (content.TextDoc, error)) (content.TextDoc, error) {
	if s.cache == nil {
		return fetch(ctx)
	}
	doc, err := s.cache.GetOrFetch(kind+":"+slug, func() (cachedDoc, error) {
		d, err := fetch(ctx)
		if err != nil {
			return cachedDoc{}, err
		}
		return cachedDoc{text: d}, nil
	})
	if err != nil {
		return content.TextDoc{}, err
	}
	return doc.text, nil
}

func (s *Service) fetchWorld(ctx context.Context, worldID string) (content.WorldDoc, error) {
	if s.cache == nil {
		return s.content.World(ctx, worldID)
	}
	doc, err := s.cache.GetOrFetch("world:"+worldID, func() (cachedDoc, error) {
		d, err := s.content.World(ctx, worldID)
		if err != nil {
			return cachedDoc{}, err
		}
		return cachedDoc{world: d}, nil
	})
	if err != nil {
		return content.WorldDoc{}, err
	}
	return doc.world, nil
}

func (s *Service) fetchAdventure(ctx context.Context, slug string) (content.AdventureDoc, error) {
	if s.cache == nil {
		return s.content.Adventure(ctx, slug)
	}
	doc, err := s.cache.GetOrFetch("adventure:"+slug, func() (cachedDoc, error) {
		d, err := s.content.Adventure(ctx, slug)
		if err != nil {
			return cachedDoc{}, err
		}
		return cachedDoc{adventure: d}, nil
	})
	if err != nil {
		return content.AdventureDoc{}, err
	}
	return doc.adventure, nil
}

func (s *Service) fetchNPC(ctx context.Context, slug string) (content.NPCDoc, error) {
	if s.cache == nil {
		return s.content.NPC(ctx, slug)
	}
	doc, err := s.cache.GetOrFetch("npc:"+slug, func() (cachedDoc, error) {
		d, err := s.content.NPC(ctx, slug)
		if err != nil {
			return cachedDoc{}, err
		}
		return cachedDoc{npc: d}, nil
	})
	if err != nil {
		return content.NPCDoc{}, err
	}
	return doc.npc, nil
}
