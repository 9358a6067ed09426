package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
)

// ErrNotFound indicates a requested document or record is missing.
var ErrNotFound = errors.New("record not found")

// ContentStore fetches parsed content documents. Implementations validate
// documents at read time, so callers never see a half-formed doc.
type ContentStore interface {
	// CoreRules returns the always-present core framing document.
	CoreRules(ctx context.Context) (content.TextDoc, error)
	Ruleset(ctx context.Context, slug string) (content.TextDoc, error)
	World(ctx context.Context, id string) (content.WorldDoc, error)
	Adventure(ctx context.Context, slug string) (content.AdventureDoc, error)
	Entry(ctx context.Context, slug string) (content.TextDoc, error)
	NPC(ctx context.Context, slug string) (content.NPCDoc, error)

	ListWorlds(ctx context.Context) ([]content.WorldDoc, error)
	ListAdventures(ctx context.Context) ([]content.AdventureDoc, error)
	ListNPCs(ctx context.Context) ([]content.NPCDoc, error)
}

// AssemblyRecord stores the audited outcome of one prompt assembly. Records
// are append-only: enough decision metadata to reproduce and debug an
// assembly without retaining the prompt text itself.
type AssemblyRecord struct {
	ID        string
	CreatedAt time.Time

	WorldID string
	Model   string

	BudgetTokens int
	InputTokens  int
	Pct          float64

	Included []string
	Dropped  []string
	Policy   []string

	// PromptSHA256 is the hex digest of the assembled prompt, stored in
	// place of the prompt so audits stay small and content stays private.
	PromptSHA256 string
}

// AssemblyPage is a paged set of assembly records.
type AssemblyPage struct {
	Assemblies    []AssemblyRecord
	NextPageToken string
}

// ListQuery narrows and pages an assembly listing. Filter holds an AIP-160
// expression over the indexed record fields; empty means no filtering.
type ListQuery struct {
	PageSize  int
	PageToken string
	Filter    string
}

// AuditStore persists append-only assembly records.
type AuditStore interface {
	PutAssembly(ctx context.Context, record AssemblyRecord) error
	ListAssemblies(ctx context.Context, query ListQuery) (AssemblyPage, error)
}
