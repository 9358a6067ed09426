// Package mcp parses MCP command flags and serves the narrator MCP server
// over stdio or HTTP.
package mcp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mistvale/loreweave/internal/platform/config"
	"github.com/mistvale/loreweave/internal/platform/otel"
	narratormcp "github.com/mistvale/loreweave/internal/services/narrator/api/mcp"
	"github.com/mistvale/loreweave/internal/services/narrator/service"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/fsrepo"
	"github.com/mistvale/loreweave/internal/services/narrator/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	ContentDir string        `env:"LOREWEAVE_CONTENT_DIR"   envDefault:"./content"`
	AuditDB    string        `env:"LOREWEAVE_AUDIT_DB"`
	Transport  string        `env:"LOREWEAVE_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr   string        `env:"LOREWEAVE_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	CacheTTL   time.Duration `env:"LOREWEAVE_CACHE_TTL"     envDefault:"5m"`
	DocCap     int           `env:"LOREWEAVE_DOC_CAP"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory")
	fs.StringVar(&cfg.AuditDB, "audit-db", cfg.AuditDB, "SQLite audit database path (empty disables auditing)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (for http transport)")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "document cache TTL (0 disables caching)")
	fs.IntVar(&cfg.DocCap, "doc-cap", cfg.DocCap, "per-document token cap (0 uses the default)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the narrator service and serves MCP until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "mcp")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	if cfg.Transport != "stdio" && cfg.Transport != "http" {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	if _, err := os.Stat(cfg.ContentDir); err != nil {
		return fmt.Errorf("content dir: %w", err)
	}

	opts := []service.Option{}
	if cfg.DocCap > 0 {
		opts = append(opts, service.WithDocCap(cfg.DocCap))
	}
	if cfg.CacheTTL > 0 {
		opts = append(opts, service.WithCache(service.NewDocCache(cfg.CacheTTL, time.Now)))
	}
	if cfg.AuditDB != "" {
		store, err := sqlite.Open(ctx, cfg.AuditDB)
		if err != nil {
			return fmt.Errorf("open audit db: %w", err)
		}
		defer store.Close()
		opts = append(opts, service.WithAudit(store))
	}

	svc := service.New(fsrepo.New(os.DirFS(cfg.ContentDir)), opts...)
	server := narratormcp.NewServer(svc)

	switch cfg.Transport {
	case "http":
		return serveHTTP(ctx, server, cfg.HTTPAddr)
	default:
		return server.Run(ctx, &sdk.StdioTransport{})
	}
}

// serveHTTP serves the MCP server over streamable HTTP until ctx ends.
func serveHTTP(ctx context.Context, server *sdk.Server, addr string) error {
	handler := sdk.NewStreamableHTTPHandler(func(*http.Request) *sdk.Server {
		return server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
