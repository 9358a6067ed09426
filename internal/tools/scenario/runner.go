// Package scenario runs Lua verification scripts against an in-process
// narrator service. Scripts declare content documents inline and assert on
// the inclusion, drop, and policy decisions of assemblies, which makes
// budget regressions scriptable without writing Go.
package scenario

import (
	"context"
	"errors"
	"log"
	"os"

	narratorservice "github.com/mistvale/loreweave/internal/services/narrator/service"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
)

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// DocCap overrides the per-document token cap when positive.
	DocCap int
	// Content optionally backs the script's inline documents with a real
	// content store; script documents shadow it.
	Content storage.ContentStore
}

// Runner executes scenario steps against the narrator service.
type Runner struct {
	store      *memStore
	svc        *narratorservice.Service
	assertions Assertions
	logger     *log.Logger
	verbose    bool
}

// NewRunner prepares a scenario runner with a fresh in-memory content
// store layered over cfg.Content.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	store := newMemStore(cfg.Content)
	opts := []narratorservice.Option{
		narratorservice.WithLogf(logger.Printf),
	}
	if cfg.DocCap > 0 {
		opts = append(opts, narratorservice.WithDocCap(cfg.DocCap))
	}

	return &Runner{
		store:      store,
		svc:        narratorservice.New(store, opts...),
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	for i, step := range scenario.Steps {
		if r.verbose {
			r.logger.Printf("step %d: %s", i+1, step.Kind)
		}
		if err := r.runStep(ctx, step); err != nil {
			return r.failf("step %d (%s): %v", i+1, step.Kind, err)
		}
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	switch step.Kind {
	case "core", "ruleset", "world", "adventure", "entry", "npc":
		return r.runDocumentStep(step)
	case "assemble":
		return r.runAssembleStep(ctx, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) logf(format string, args ...any) {
	if r.verbose {
		r.logger.Printf(format, args...)
	}
}
