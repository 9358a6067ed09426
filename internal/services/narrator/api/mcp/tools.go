package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	perrors "github.com/mistvale/loreweave/internal/platform/errors"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/piece"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

// ContextAssembleInput represents the MCP tool input for prompt assembly.
type ContextAssembleInput struct {
	WorldID        string   `json:"world_id" jsonschema:"world content identifier (required)"`
	RulesetSlug    string   `json:"ruleset_slug,omitempty" jsonschema:"optional ruleset policy slug"`
	ScenarioSlug   string   `json:"scenario_slug,omitempty" jsonschema:"optional adventure slug"`
	EntryStartSlug string   `json:"entry_start_slug" jsonschema:"entry point slug (required)"`
	NPCHints       []string `json:"npc_hints,omitempty" jsonschema:"npc slugs in inclusion-priority order"`
	Model          string   `json:"model,omitempty" jsonschema:"target model name, recorded in the audit trail"`
	Locale         string   `json:"locale,omitempty" jsonschema:"BCP 47 locale for i18n overlays"`
	BudgetTokens   int      `json:"budget_tokens" jsonschema:"global token budget (required, positive)"`
	ScenarioPolicy string   `json:"scenario_policy,omitempty" jsonschema:"unspecified, required, or optional"`
}

// ContextAssembleResult represents the MCP tool output for prompt assembly.
type ContextAssembleResult struct {
	Prompt      string   `json:"prompt" jsonschema:"assembled prompt text"`
	Included    []string `json:"included" jsonschema:"piece ids included, in prompt order"`
	Dropped     []string `json:"dropped" jsonschema:"piece ids dropped"`
	Policy      []string `json:"policy" jsonschema:"policy action entries, in decision order"`
	TokenInput  int      `json:"token_input" jsonschema:"estimated tokens of included pieces"`
	TokenBudget int      `json:"token_budget" jsonschema:"token budget the assembly ran under"`
	TokenPct    float64  `json:"token_pct" jsonschema:"token_input divided by token_budget; may exceed 1"`
}

func contextAssembleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "context_assemble",
		Description: "Assembles a bounded narrative prompt from layered content under a token budget",
	}
}

// ContextAssembleHandler executes one prompt assembly.
func ContextAssembleHandler(svc Narrator) mcp.ToolHandlerFor[ContextAssembleInput, ContextAssembleResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ContextAssembleInput) (*mcp.CallToolResult, ContextAssembleResult, error) {
		policy, err := assemble.ParseScenarioPolicy(input.ScenarioPolicy)
		if err != nil {
			return nil, ContextAssembleResult{}, toolError(perrors.Wrap(perrors.CodeValidation, "scenario policy", err))
		}

		out, err := svc.Assemble(ctx, assemble.Input{
			WorldID:        input.WorldID,
			RulesetSlug:    input.RulesetSlug,
			ScenarioSlug:   input.ScenarioSlug,
			EntryStartSlug: input.EntryStartSlug,
			NPCHints:       input.NPCHints,
			Model:          input.Model,
			Locale:         input.Locale,
			BudgetTokens:   input.BudgetTokens,
			ScenarioPolicy: policy,
		})
		if err != nil {
			return nil, ContextAssembleResult{}, toolError(err)
		}

		return nil, ContextAssembleResult{
			Prompt:      out.Prompt,
			Included:    out.Meta.Included,
			Dropped:     out.Meta.Dropped,
			Policy:      out.Meta.Policy,
			TokenInput:  out.Meta.TokenEst.Input,
			TokenBudget: out.Meta.TokenEst.Budget,
			TokenPct:    out.Meta.TokenEst.Pct,
		}, nil
	}
}

// TokenEstimateInput represents the MCP tool input for token estimation.
type TokenEstimateInput struct {
	Text string `json:"text" jsonschema:"text to estimate"`
}

// TokenEstimateResult represents the MCP tool output for token estimation.
type TokenEstimateResult struct {
	Tokens int `json:"tokens" jsonschema:"estimated token cost"`
}

func tokenEstimateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "token_estimate",
		Description: "Estimates the token cost of text using the assembly estimator",
	}
}

// TokenEstimateHandler estimates text cost under the shared estimator.
func TokenEstimateHandler(svc Narrator) mcp.ToolHandlerFor[TokenEstimateInput, TokenEstimateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TokenEstimateInput) (*mcp.CallToolResult, TokenEstimateResult, error) {
		return nil, TokenEstimateResult{Tokens: svc.EstimateText(input.Text)}, nil
	}
}

// LayerClassifyInput represents the MCP tool input for layer classification.
type LayerClassifyInput struct {
	Label string `json:"label" jsonschema:"free-form content-source label"`
}

// LayerClassifyResult represents the MCP tool output for layer classification.
type LayerClassifyResult struct {
	Scope      string `json:"scope" jsonschema:"canonical scope the label maps to"`
	Recognized bool   `json:"recognized" jsonschema:"false when the label fell back to the core default"`
}

func layerClassifyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "layer_classify",
		Description: "Maps a free-form content-source label to its canonical scope",
	}
}

// LayerClassifyHandler normalizes a content-source label into a scope.
func LayerClassifyHandler(svc Narrator) mcp.ToolHandlerFor[LayerClassifyInput, LayerClassifyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LayerClassifyInput) (*mcp.CallToolResult, LayerClassifyResult, error) {
		s, recognized := svc.ClassifyLabel(input.Label)
		return nil, LayerClassifyResult{Scope: string(s), Recognized: recognized}, nil
	}
}

// PieceIDParseInput represents the MCP tool input for identifier parsing.
type PieceIDParseInput struct {
	ID string `json:"id" jsonschema:"piece identifier, scope:slug or scope:slug@version"`
}

// PieceIDParseResult represents the MCP tool output for identifier parsing.
type PieceIDParseResult struct {
	Scope   string `json:"scope" jsonschema:"piece scope"`
	Slug    string `json:"slug" jsonschema:"piece slug"`
	Version string `json:"version,omitempty" jsonschema:"piece version when present"`
}

func pieceIDParseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "piece_id_parse",
		Description: "Parses a piece identifier into scope, slug, and version",
	}
}

// PieceIDParseHandler splits a piece identifier into its parts.
func PieceIDParseHandler() mcp.ToolHandlerFor[PieceIDParseInput, PieceIDParseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PieceIDParseInput) (*mcp.CallToolResult, PieceIDParseResult, error) {
		parsed, err := piece.ParseID(input.ID)
		if err != nil {
			return nil, PieceIDParseResult{}, toolError(perrors.Wrap(perrors.CodeValidation, "parse piece id", err))
		}
		return nil, PieceIDParseResult{
			Scope:   string(parsed.Scope),
			Slug:    parsed.Slug,
			Version: parsed.Version,
		}, nil
	}
}

// AuditListInput represents the MCP tool input for audit listing.
type AuditListInput struct {
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter over world_id, model, budget_tokens, input_tokens, pct, created_at"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"records per page"`
	PageToken string `json:"page_token,omitempty" jsonschema:"cursor from a previous page"`
}

// AuditEntry is one recorded assembly in an audit listing.
type AuditEntry struct {
	ID           string   `json:"id"`
	CreatedAt    string   `json:"created_at"`
	WorldID      string   `json:"world_id"`
	Model        string   `json:"model,omitempty"`
	BudgetTokens int      `json:"budget_tokens"`
	InputTokens  int      `json:"input_tokens"`
	Pct          float64  `json:"pct"`
	Included     []string `json:"included"`
	Dropped      []string `json:"dropped"`
	Policy       []string `json:"policy"`
	PromptSHA256 string   `json:"prompt_sha256"`
}

// AuditListResult represents the MCP tool output for audit listing.
type AuditListResult struct {
	Assemblies    []AuditEntry `json:"assemblies" jsonschema:"recorded assemblies, newest first"`
	NextPageToken string       `json:"next_page_token,omitempty" jsonschema:"cursor for the next page"`
}

func auditListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "assembly_audit_list",
		Description: "Lists recorded assembly audits with optional filtering and pagination",
	}
}

// AuditListHandler pages recorded assemblies from the audit store.
func AuditListHandler(svc Narrator) mcp.ToolHandlerFor[AuditListInput, AuditListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AuditListInput) (*mcp.CallToolResult, AuditListResult, error) {
		page, err := svc.Audits(ctx, storage.ListQuery{
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
			Filter:    input.Filter,
		})
		if err != nil {
			return nil, AuditListResult{}, toolError(err)
		}

		result := AuditListResult{
			Assemblies:    make([]AuditEntry, 0, len(page.Assemblies)),
			NextPageToken: page.NextPageToken,
		}
		for _, record := range page.Assemblies {
			result.Assemblies = append(result.Assemblies, AuditEntry{
				ID:           record.ID,
				CreatedAt:    record.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
				WorldID:      record.WorldID,
				Model:        record.Model,
				BudgetTokens: record.BudgetTokens,
				InputTokens:  record.InputTokens,
				Pct:          record.Pct,
				Included:     record.Included,
				Dropped:      record.Dropped,
				Policy:       record.Policy,
				PromptSHA256: record.PromptSHA256,
			})
		}
		return nil, result, nil
	}
}

// toolError flattens a service error into the tool failure message, keeping
// the machine-readable code in front so clients can branch on it.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", perrors.CodeOf(err), err)
}
