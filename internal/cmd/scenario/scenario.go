// Package scenario parses scenario command flags and runs a Lua scenario
// script against an in-process narrator service.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mistvale/loreweave/internal/platform/config"
	"github.com/mistvale/loreweave/internal/services/narrator/storage"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/fsrepo"
	"github.com/mistvale/loreweave/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Script     string `env:"LOREWEAVE_SCENARIO_FILE"`
	ContentDir string `env:"LOREWEAVE_CONTENT_DIR"`
	Assertions bool   `env:"LOREWEAVE_SCENARIO_ASSERT" envDefault:"true"`
	Verbose    bool   `env:"LOREWEAVE_SCENARIO_VERBOSE"`
	DocCap     int    `env:"LOREWEAVE_DOC_CAP"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Script, "scenario", cfg.Script, "path to scenario lua file")
	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "optional content directory backing the script's documents")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.IntVar(&cfg.DocCap, "doc-cap", cfg.DocCap, "per-document token cap (0 uses the default)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the scenario command.
func Run(ctx context.Context, cfg Config, errOut io.Writer) error {
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Script == "" {
		return errors.New("scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	var fallback storage.ContentStore
	if cfg.ContentDir != "" {
		if _, err := os.Stat(cfg.ContentDir); err != nil {
			return fmt.Errorf("content dir: %w", err)
		}
		fallback = fsrepo.New(os.DirFS(cfg.ContentDir))
	}

	return scenario.RunFile(ctx, scenario.Config{
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
		DocCap:     cfg.DocCap,
		Content:    fallback,
	}, cfg.Script)
}
