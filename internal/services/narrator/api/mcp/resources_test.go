package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
)

func TestWorldListResourceHandler(t *testing.T) {
	fake := &fakeNarrator{
		worlds: []content.WorldDoc{
			{ID: "w1", Name: "Aethermoor", Timeworld: &content.Timeworld{
				Seasons: []content.Season{{Name: "Bloom"}, {Name: "Ash"}},
			}},
			{ID: "w2", Name: "Hollowdeep"},
		},
	}

	result, err := WorldListResourceHandler(fake)(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(result.Contents))
	}
	if result.Contents[0].URI != worldListURI {
		t.Errorf("uri = %q", result.Contents[0].URI)
	}

	var payload WorldListPayload
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Worlds) != 2 {
		t.Fatalf("worlds = %d, want 2", len(payload.Worlds))
	}
	if payload.Worlds[0].Seasons != 2 {
		t.Errorf("seasons = %d, want 2", payload.Worlds[0].Seasons)
	}
	if payload.Worlds[1].Seasons != 0 {
		t.Errorf("seasons without timeworld = %d, want 0", payload.Worlds[1].Seasons)
	}
}

func TestAdventureListResourceHandler(t *testing.T) {
	fake := &fakeNarrator{
		adventures: []content.AdventureDoc{
			{ID: "a1", Name: "Saltmarsh", Cast: []content.CastMember{{Name: "Keledek"}}},
		},
	}

	result, err := AdventureListResourceHandler(fake)(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	var payload AdventureListPayload
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Adventures) != 1 || payload.Adventures[0].CastSize != 1 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestNPCListResourceHandler(t *testing.T) {
	fake := &fakeNarrator{
		npcs: []content.NPCDoc{
			{ID: "kiera", Version: "2.0.0", DisplayName: "Kiera", Archetype: "smuggler"},
			{ID: "nameless"},
		},
	}

	result, err := NPCListResourceHandler(fake)(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	var payload NPCListPayload
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.NPCs) != 2 {
		t.Fatalf("npcs = %d, want 2", len(payload.NPCs))
	}
	if payload.NPCs[0].Name != "Kiera" || payload.NPCs[0].Version != "2.0.0" {
		t.Errorf("npc[0] = %+v", payload.NPCs[0])
	}
	if payload.NPCs[1].Name != content.UnknownNPCName {
		t.Errorf("nameless npc rendered as %q, want %q", payload.NPCs[1].Name, content.UnknownNPCName)
	}
}
