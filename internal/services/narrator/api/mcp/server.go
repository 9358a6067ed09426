// Package mcp exposes the narrator service to agent tooling over the
// Model Context Protocol: assembly and estimation tools plus readable
// content listing resources.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

const (
	serverName    = "loreweave-narrator"
	serverVersion = "0.1.0"

	serverInstructions = "Assembles bounded narrative prompts from layered content. " +
		"Use context_assemble to build a prompt under a token budget; core, ruleset, " +
		"and world layers are always included, scenario and npc layers drop when the " +
		"budget runs out. token_estimate, layer_classify, and piece_id_parse expose " +
		"the supporting primitives. assembly_audit_list pages recorded assemblies."
)

// Narrator is the service surface the MCP handlers need. The narrator
// service implements it; tests substitute fakes.
type Narrator interface {
	Assemble(ctx context.Context, in assemble.Input) (assemble.Output, error)
	EstimateText(text string) int
	ClassifyLabel(label string) (scope.Scope, bool)
	Audits(ctx context.Context, query storage.ListQuery) (storage.AssemblyPage, error)
	Worlds(ctx context.Context) ([]content.WorldDoc, error)
	Adventures(ctx context.Context) ([]content.AdventureDoc, error)
	NPCs(ctx context.Context) ([]content.NPCDoc, error)
}

// NewServer builds the MCP server with every narrator tool and resource
// registered. The caller picks the transport.
func NewServer(svc Narrator) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: serverVersion},
		&mcp.ServerOptions{Instructions: serverInstructions},
	)
	registerTools(server, svc)
	registerResources(server, svc)
	return server
}

func registerTools(server *mcp.Server, svc Narrator) {
	mcp.AddTool(server, contextAssembleTool(), ContextAssembleHandler(svc))
	mcp.AddTool(server, tokenEstimateTool(), TokenEstimateHandler(svc))
	mcp.AddTool(server, layerClassifyTool(), LayerClassifyHandler(svc))
	mcp.AddTool(server, pieceIDParseTool(), PieceIDParseHandler())
	mcp.AddTool(server, auditListTool(), AuditListHandler(svc))
}

func registerResources(server *mcp.Server, svc Narrator) {
	server.AddResource(worldListResource(), WorldListResourceHandler(svc))
	server.AddResource(adventureListResource(), AdventureListResourceHandler(svc))
	server.AddResource(npcListResource(), NPCListResourceHandler(svc))
}
