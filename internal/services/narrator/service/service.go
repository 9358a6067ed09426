// Package service orchestrates prompt assembly: it fetches content through
// an optional cache, compacts and degrades documents, runs the budget walk,
// and records an audit trail of every decision.
package service

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	perrors "github.com/mistvale/loreweave/internal/platform/errors"
	"github.com/mistvale/loreweave/internal/platform/id"
	"github.com/mistvale/loreweave/internal/platform/ttlcache"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/compact"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/content"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/scope"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/token"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
)

// cachedDoc carries one parsed document of any kind through the shared
// cache. Exactly one field is set, matching the key's kind prefix.
type cachedDoc struct {
	text      content.TextDoc
	world     content.WorldDoc
	adventure content.AdventureDoc
	npc       content.NPCDoc
}

// Option configures a Service.
type Option func(*Service)

// WithAudit sets the audit store assemblies are recorded to.
func WithAudit(audit storage.AuditStore) Option {
	return func(s *Service) { s.audit = audit }
}

// WithCache sets the document cache used by Assemble fetches.
func WithCache(cache *ttlcache.Cache[string, cachedDoc]) Option {
	return func(s *Service) { s.cache = cache }
}

// NewDocCache returns a document cache suitable for WithCache.
func NewDocCache(ttl time.Duration, now func() time.Time) *ttlcache.Cache[string, cachedDoc] {
	return ttlcache.New[string, cachedDoc](ttl, now)
}

// WithDocCap overrides the per-document token cap the degradation ladders
// enforce.
func WithDocCap(capTokens int) Option {
	return func(s *Service) { s.docCap = capTokens }
}

// WithLogf sets the logger used for warnings and audit failures.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Service) { s.logf = logf }
}

// WithIDGenerator sets the audit record id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.idGenerator = gen }
}

// WithClock sets the clock audit records are stamped with.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// Service assembles prompts from a content store.
type Service struct {
	content storage.ContentStore
	audit   storage.AuditStore
	cache   *ttlcache.Cache[string, cachedDoc]

	docCap      int
	logf        func(format string, args ...any)
	idGenerator func() (string, error)
	clock       func() time.Time
	tracer      trace.Tracer

	warnedMu sync.Mutex
	warned   map[string]struct{}
}

// New returns a Service reading from content, configured by opts.
func New(contentStore storage.ContentStore, opts ...Option) *Service {
	s := &Service{
		content:     contentStore,
		docCap:      compact.DefaultDocCap,
		logf:        log.Printf,
		idGenerator: id.NewID,
		clock:       time.Now,
		tracer:      otel.Tracer("loreweave/narrator"),
		warned:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EstimateText returns the token cost of text under the shared estimator.
func (s *Service) EstimateText(text string) int {
	return token.Estimate(text)
}

// ClassifyLabel maps a free-form layer label to its scope and reports
// whether the label was recognized.
func (s *Service) ClassifyLabel(label string) (scope.Scope, bool) {
	return scope.Classify(label)
}

// Worlds lists every world document in the content source.
func (s *Service) Worlds(ctx context.Context) ([]content.WorldDoc, error) {
	return s.content.ListWorlds(ctx)
}

// Adventures lists every adventure document in the content source.
func (s *Service) Adventures(ctx context.Context) ([]content.AdventureDoc, error) {
	return s.content.ListAdventures(ctx)
}

// NPCs lists every character document in the content source.
func (s *Service) NPCs(ctx context.Context) ([]content.NPCDoc, error) {
	return s.content.ListNPCs(ctx)
}

// Audits returns a page of recorded assemblies. The page size is defaulted
// and capped here so callers cannot request unbounded pages.
func (s *Service) Audits(ctx context.Context, query storage.ListQuery) (storage.AssemblyPage, error) {
	if s.audit == nil {
		return storage.AssemblyPage{}, perrors.New(perrors.CodeInternal, "audit store is not configured")
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultAuditPageSize
	}
	if query.PageSize > maxAuditPageSize {
		query.PageSize = maxAuditPageSize
	}
	return s.audit.ListAssemblies(ctx, query)
}

// warnLabel logs one warning per unrecognized layer label for the lifetime
// of the service, so noisy content cannot flood the log.
func (s *Service) warnLabel(label string) {
	s.warnedMu.Lock()
	defer s.warnedMu.Unlock()
	if _, ok := s.warned[label]; ok {
		return
	}
	s.warned[label] = struct{}{}
	s.logf("narrator: unrecognized layer label %q, defaulting to core", label)
}

// checkLayer classifies a document's declared layer label and warns when
// the label is unknown. The slot a document was fetched for always decides
// its scope; the label is advisory content metadata.
func (s *Service) checkLayer(label string) {
	if label == "" {
		return
	}
	if _, ok := scope.Classify(label); !ok {
		s.warnLabel(label)
	}
}
