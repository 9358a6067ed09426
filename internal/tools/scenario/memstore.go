package scenario

import (
	"context"
	"sort"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

// memStore is the in-memory content source scenario scripts populate with
// document steps. An optional fallback store serves anything the script
// did not declare, so scripts can layer on top of a real content dir.
type memStore struct {
	core       *content.TextDoc
	rulesets   map[string]content.TextDoc
	worlds     map[string]content.WorldDoc
	adventures map[string]content.AdventureDoc
	entries    map[string]content.TextDoc
	npcs       map[string]content.NPCDoc

	fallback storage.ContentStore
}

func newMemStore(fallback storage.ContentStore) *memStore {
	return &memStore{
		rulesets:   map[string]content.TextDoc{},
		worlds:     map[string]content.WorldDoc{},
		adventures: map[string]content.AdventureDoc{},
		entries:    map[string]content.TextDoc{},
		npcs:       map[string]content.NPCDoc{},
		fallback:   fallback,
	}
}

func (m *memStore) CoreRules(ctx context.Context) (content.TextDoc, error) {
	if m.core != nil {
		return *m.core, nil
	}
	if m.fallback != nil {
		return m.fallback.CoreRules(ctx)
	}
	return content.TextDoc{}, storage.ErrNotFound
}

func (m *memStore) Ruleset(ctx context.Context, slug string) (content.TextDoc, error) {
	if doc, ok := m.rulesets[slug]; ok {
		return doc, nil
	}
	if m.fallback != nil {
		return m.fallback.Ruleset(ctx, slug)
	}
	return content.TextDoc{}, storage.ErrNotFound
}

func (m *memStore) World(ctx context.Context, id string) (content.WorldDoc, error) {
	if doc, ok := m.worlds[id]; ok {
		return doc, nil
	}
	if m.fallback != nil {
		return m.fallback.World(ctx, id)
	}
	return content.WorldDoc{}, storage.ErrNotFound
}

func (m *memStore) Adventure(ctx context.Context, slug string) (content.AdventureDoc, error) {
	if doc, ok := m.adventures[slug]; ok {
		return doc, nil
	}
	if m.fallback != nil {
		return m.fallback.Adventure(ctx, slug)
	}
	return content.AdventureDoc{}, storage.ErrNotFound
}

func (m *memStore) Entry(ctx context.Context, slug string) (content.TextDoc, error) {
	if doc, ok := m.entries[slug]; ok {
		return doc, nil
	}
	if m.fallback != nil {
		return m.fallback.Entry(ctx, slug)
	}
	return content.TextDoc{}, storage.ErrNotFound
}

func (m *memStore) NPC(ctx context.Context, slug string) (content.NPCDoc, error) {
	if doc, ok := m.npcs[slug]; ok {
		return doc, nil
	}
	if m.fallback != nil {
		return m.fallback.NPC(ctx, slug)
	}
	return content.NPCDoc{}, storage.ErrNotFound
}

func (m *memStore) ListWorlds(ctx context.Context) ([]content.WorldDoc, error) {
	ids := make([]string, 0, len(m.worlds))
	for id := range m.worlds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]content.WorldDoc, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, m.worlds[id])
	}
	return docs, nil
}

func (m *memStore) ListAdventures(ctx context.Context) ([]content.AdventureDoc, error) {
	slugs := make([]string, 0, len(m.adventures))
	for slug := range m.adventures {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	docs := make([]content.AdventureDoc, 0, len(slugs))
	for _, slug := range slugs {
		docs = append(docs, m.adventures[slug])
	}
	return docs, nil
}

func (m *memStore) ListNPCs(ctx context.Context) ([]content.NPCDoc, error) {
	slugs := make([]string, 0, len(m.npcs))
	for slug := range m.npcs {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	docs := make([]content.NPCDoc, 0, len(slugs))
	for _, slug := range slugs {
		docs = append(docs, m.npcs[slug])
	}
	return docs, nil
}
