// Package assemble parses assemble command flags and runs one prompt
// assembly against a content directory.
package assemble

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mistvale/loreweave/internal/platform/config"
	"github.com/mistvale/loreweave/internal/services/narrator/domain/assemble"
	"github.com/mistvale/loreweave/internal/services/narrator/service"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/fsrepo"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/sqlite"
)

// Config holds assemble command configuration.
type Config struct {
	ContentDir     string `env:"LOREWEAVE_CONTENT_DIR"     envDefault:"./content"`
	AuditDB        string `env:"LOREWEAVE_AUDIT_DB"`
	World          string `env:"LOREWEAVE_WORLD"`
	Ruleset        string `env:"LOREWEAVE_RULESET"`
	Scenario       string `env:"LOREWEAVE_SCENARIO"`
	Entry          string `env:"LOREWEAVE_ENTRY"`
	NPCHints       string `env:"LOREWEAVE_NPC_HINTS"`
	Locale         string `env:"LOREWEAVE_LOCALE"`
	Model          string `env:"LOREWEAVE_MODEL"`
	Budget         int    `env:"LOREWEAVE_BUDGET_TOKENS"   envDefault:"4096"`
	DocCap         int    `env:"LOREWEAVE_DOC_CAP"`
	ScenarioPolicy string `env:"LOREWEAVE_SCENARIO_POLICY"`
	JSON           bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory")
	fs.StringVar(&cfg.AuditDB, "audit-db", cfg.AuditDB, "SQLite audit database path (empty disables auditing)")
	fs.StringVar(&cfg.World, "world", cfg.World, "world id")
	fs.StringVar(&cfg.Ruleset, "ruleset", cfg.Ruleset, "ruleset slug")
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "adventure slug")
	fs.StringVar(&cfg.Entry, "entry", cfg.Entry, "entry point slug")
	fs.StringVar(&cfg.NPCHints, "npcs", cfg.NPCHints, "comma-separated npc slugs, in inclusion-priority order")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "BCP 47 locale for i18n overlays")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "target model name, recorded in the audit trail")
	fs.IntVar(&cfg.Budget, "budget", cfg.Budget, "global token budget")
	fs.IntVar(&cfg.DocCap, "doc-cap", cfg.DocCap, "per-document token cap (0 uses the default)")
	fs.StringVar(&cfg.ScenarioPolicy, "scenario-policy", cfg.ScenarioPolicy, "scenario drop policy: unspecified, required, or optional")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the full output as JSON instead of the prompt")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// jsonOutput is the -json wire shape: the prompt plus the audit metadata,
// without the internal piece structs.
type jsonOutput struct {
	Prompt string        `json:"prompt"`
	Meta   assemble.Meta `json:"meta"`
}

// Run performs one assembly and writes the prompt to out and decision
// metadata to errOut.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	policy, err := assemble.ParseScenarioPolicy(cfg.ScenarioPolicy)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogf(func(format string, args ...any) {
			fmt.Fprintf(errOut, format+"\n", args...)
		}),
	}
	if cfg.DocCap > 0 {
		opts = append(opts, service.WithDocCap(cfg.DocCap))
	}
	if cfg.AuditDB != "" {
		store, err := sqlite.Open(ctx, cfg.AuditDB)
		if err != nil {
			return fmt.Errorf("open audit db: %w", err)
		}
		defer store.Close()
		opts = append(opts, service.WithAudit(store))
	}

	if _, err := os.Stat(cfg.ContentDir); err != nil {
		return fmt.Errorf("content dir: %w", err)
	}
	svc := service.New(fsrepo.New(os.DirFS(cfg.ContentDir)), opts...)

	output, err := svc.Assemble(ctx, assemble.Input{
		WorldID:        cfg.World,
		RulesetSlug:    cfg.Ruleset,
		ScenarioSlug:   cfg.Scenario,
		EntryStartSlug: cfg.Entry,
		NPCHints:       splitHints(cfg.NPCHints),
		Model:          cfg.Model,
		Locale:         cfg.Locale,
		BudgetTokens:   cfg.Budget,
		ScenarioPolicy: policy,
	})
	if err != nil {
		return err
	}

	if cfg.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jsonOutput{Prompt: output.Prompt, Meta: output.Meta})
	}

	if _, err := fmt.Fprintln(out, output.Prompt); err != nil {
		return err
	}
	est := output.Meta.TokenEst
	fmt.Fprintf(errOut, "tokens: %d/%d (%.0f%%)\n", est.Input, est.Budget, est.Pct*100)
	fmt.Fprintf(errOut, "included: %s\n", strings.Join(output.Meta.Included, " "))
	if len(output.Meta.Dropped) > 0 {
		fmt.Fprintf(errOut, "dropped: %s\n", strings.Join(output.Meta.Dropped, " "))
	}
	for _, action := range output.Meta.Policy {
		fmt.Fprintf(errOut, "policy: %s\n", action)
	}
	return nil
}

// splitHints turns the comma-separated npc flag into ordered hints,
// dropping empty segments so trailing commas are harmless.
func splitHints(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var hints []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			hints = append(hints, trimmed)
		}
	}
	return hints
}
