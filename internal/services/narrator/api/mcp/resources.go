package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	worldListURI     = "loreweave://content/worlds"
	adventureListURI = "loreweave://content/adventures"
	npcListURI       = "loreweave://content/npcs"
)

// WorldListEntry is one world in the content listing payload.
type WorldListEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Seasons int    `json:"seasons,omitempty"`
}

// WorldListPayload is the MCP resource payload for world listings.
type WorldListPayload struct {
	Worlds []WorldListEntry `json:"worlds"`
}

// AdventureListEntry is one adventure in the content listing payload.
type AdventureListEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Synopsis string `json:"synopsis,omitempty"`
	CastSize int    `json:"cast_size"`
}

// AdventureListPayload is the MCP resource payload for adventure listings.
type AdventureListPayload struct {
	Adventures []AdventureListEntry `json:"adventures"`
}

// NPCListEntry is one character in the content listing payload.
type NPCListEntry struct {
	ID        string   `json:"id"`
	Version   string   `json:"version,omitempty"`
	Name      string   `json:"name"`
	Archetype string   `json:"archetype,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// NPCListPayload is the MCP resource payload for character listings.
type NPCListPayload struct {
	NPCs []NPCListEntry `json:"npcs"`
}

func worldListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "world_list",
		Title:       "Worlds",
		Description: "Readable listing of world lore documents",
		MIMEType:    "application/json",
		URI:         worldListURI,
	}
}

func adventureListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "adventure_list",
		Title:       "Adventures",
		Description: "Readable listing of adventure documents",
		MIMEType:    "application/json",
		URI:         adventureListURI,
	}
}

func npcListResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "npc_list",
		Title:       "Characters",
		Description: "Readable listing of character biography documents",
		MIMEType:    "application/json",
		URI:         npcListURI,
	}
}

// WorldListResourceHandler serves the world listing resource.
func WorldListResourceHandler(svc Narrator) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		docs, err := svc.Worlds(ctx)
		if err != nil {
			return nil, fmt.Errorf("world list failed: %w", err)
		}
		payload := WorldListPayload{Worlds: make([]WorldListEntry, 0, len(docs))}
		for _, doc := range docs {
			entry := WorldListEntry{ID: doc.ID, Name: doc.Name}
			if doc.Timeworld != nil {
				entry.Seasons = len(doc.Timeworld.Seasons)
			}
			payload.Worlds = append(payload.Worlds, entry)
		}
		return resourceResult(worldListURI, payload)
	}
}

// AdventureListResourceHandler serves the adventure listing resource.
func AdventureListResourceHandler(svc Narrator) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		docs, err := svc.Adventures(ctx)
		if err != nil {
			return nil, fmt.Errorf("adventure list failed: %w", err)
		}
		payload := AdventureListPayload{Adventures: make([]AdventureListEntry, 0, len(docs))}
		for _, doc := range docs {
			payload.Adventures = append(payload.Adventures, AdventureListEntry{
				ID:       doc.ID,
				Name:     doc.Name,
				Synopsis: doc.Synopsis,
				CastSize: len(doc.Cast),
			})
		}
		return resourceResult(adventureListURI, payload)
	}
}

// NPCListResourceHandler serves the character listing resource.
func NPCListResourceHandler(svc Narrator) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		docs, err := svc.NPCs(ctx)
		if err != nil {
			return nil, fmt.Errorf("npc list failed: %w", err)
		}
		payload := NPCListPayload{NPCs: make([]NPCListEntry, 0, len(docs))}
		for _, doc := range docs {
			payload.NPCs = append(payload.NPCs, NPCListEntry{
				ID:        doc.ID,
				Version:   doc.Version,
				Name:      doc.LocalName(""),
				Archetype: doc.Archetype,
				Tags:      doc.Tags,
			})
		}
		return resourceResult(npcListURI, payload)
	}
}

func resourceResult(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode resource payload: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
