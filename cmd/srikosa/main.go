// Command srikosa serves and searches the Śrīkoṣa scripture library.
// It provides the web UI, the REST API, an MCP server and maintenance
// commands over a data directory or an imported SQLite catalog.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/srikosa/srikosa/core/scripture"
	"github.com/srikosa/srikosa/internal/api"
	"github.com/srikosa/srikosa/internal/catalog"
	"github.com/srikosa/srikosa/internal/logging"
	"github.com/srikosa/srikosa/internal/mcpserver"
	"github.com/srikosa/srikosa/internal/metrics"
	"github.com/srikosa/srikosa/internal/search"
	"github.com/srikosa/srikosa/internal/server"
	"github.com/srikosa/srikosa/internal/validation"
	"github.com/srikosa/srikosa/internal/web"
)

const version = "0.1.0"

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// Globals are the flags shared by every command.
type Globals struct {
	Data      string        `name:"data" help:"Data directory holding categories.json and scriptures/" default:"./data" type:"path"`
	DB        string        `name:"db" help:"Read from an imported SQLite catalog instead of --data" type:"path"`
	LogLevel  string        `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string        `name:"log-format" help:"Log format (json, text)" default:"json" enum:"json,text"`
	CacheTTL  time.Duration `name:"cache-ttl" help:"Reuse a loaded snapshot while the data is unchanged, revalidating after this long (0 disables)" default:"0s"`
	Workers   int           `name:"workers" help:"Parallel decode and match workers (0 = number of CPUs)" default:"0"`
}

// CLI defines the command-line interface for srikosa.
type CLI struct {
	Globals

	Web      WebCmd      `cmd:"" help:"Start web UI server"`
	API      APICmd      `cmd:"" name:"api" help:"Start REST API server"`
	Search   SearchCmd   `cmd:"" help:"Search the library from the command line"`
	Validate ValidateCmd `cmd:"" help:"Load every document and report problems"`
	Import   ImportCmd   `cmd:"" help:"Import the data directory into a SQLite catalog"`
	MCP      MCPCmd      `cmd:"" name:"mcp" help:"Serve MCP tools over stdio"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// initLogging configures the global logger. Logs always go to w, never to
// command output.
func (g *Globals) initLogging(w io.Writer) error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLoggerTo(w, level, format)
	return nil
}

// openStore returns the configured store, checking the data directory up
// front when reading JSON.
func (g *Globals) openStore(m *metrics.Metrics) (catalog.Store, error) {
	if g.DB == "" {
		if err := validation.ValidateDataDir(g.Data); err != nil {
			return nil, fmt.Errorf("invalid data directory: %w", err)
		}
	}
	return catalog.Open(catalog.Options{
		DataDir:  g.Data,
		DBPath:   g.DB,
		CacheTTL: g.CacheTTL,
		Workers:  g.Workers,
		Metrics:  m,
	}), nil
}

func (g *Globals) newEngine(m *metrics.Metrics) (*search.Engine, error) {
	store, err := g.openStore(m)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(store, search.WithMetrics(m), search.WithWorkers(g.Workers)), nil
}

// TLSFlags are the HTTPS flags shared by the servers.
type TLSFlags struct {
	TLS     bool   `name:"tls" help:"Serve HTTPS"`
	TLSCert string `name:"tls-cert" help:"TLS certificate file" type:"path"`
	TLSKey  string `name:"tls-key" help:"TLS private key file" type:"path"`
}

func (f TLSFlags) config() server.TLSConfig {
	return server.TLSConfig{Enabled: f.TLS, CertFile: f.TLSCert, KeyFile: f.TLSKey}
}

// WebCmd starts the web UI server.
type WebCmd struct {
	Port int `help:"HTTP server port" default:"8080"`
	TLSFlags
}

func (c *WebCmd) Run(ctx context.Context, g *Globals) error {
	m := metrics.New()
	engine, err := g.newEngine(m)
	if err != nil {
		return err
	}
	return web.Start(ctx, web.Config{
		Port:    c.Port,
		DataDir: g.Data,
		TLS:     c.config(),
	}, engine, m)
}

// APICmd starts the REST API server.
type APICmd struct {
	Port           int      `help:"HTTP server port" default:"8081"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute per client IP (0 disables)" default:"0"`
	RateBurst      int      `name:"rate-burst" help:"Burst size for rate limiting" default:"10"`
	AllowedOrigins []string `name:"allowed-origins" help:"CORS and websocket origins (empty allows all)" sep:","`
	WSRate         int      `name:"ws-rate" help:"Live search queries per second per connection" default:"10"`
	WSMaxMessage   int64    `name:"ws-max-message" help:"Largest live search frame in bytes" default:"4096"`
	TLSFlags
}

func (c *APICmd) Run(ctx context.Context, g *Globals) error {
	m := metrics.New()
	engine, err := g.newEngine(m)
	if err != nil {
		return err
	}
	return api.Start(ctx, api.Config{
		Port:              c.Port,
		Version:           version,
		DataDir:           g.Data,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateBurst,
		TLS:               c.config(),
		AllowedOrigins:    c.AllowedOrigins,
		WebSocket:         api.WebSocketConfig{MaxMessageRate: c.WSRate, MaxMessageSize: c.WSMaxMessage},
	}, engine, m)
}

// SearchCmd runs one query.
type SearchCmd struct {
	Query []string `arg:"" help:"Query words"`
	JSON  bool     `name:"json" help:"Print the results as JSON"`
}

func (c *SearchCmd) Run(ctx context.Context, g *Globals) error {
	query := strings.Join(c.Query, " ")
	if _, err := search.Validate(query); err != nil {
		return err
	}
	engine, err := g.newEngine(nil)
	if err != nil {
		return err
	}
	resp, err := engine.Run(ctx, query)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if len(resp.Results) == 0 {
		fmt.Fprintf(stdout, "No results for %q\n", resp.Query)
		return nil
	}
	fmt.Fprintf(stdout, "%d of %d results for %q\n\n", len(resp.Results), resp.Total, resp.Query)
	for _, r := range resp.Results {
		fmt.Fprintf(stdout, "[%s] %s\n", r.Type, r.Title)
		if r.Subtitle != "" {
			fmt.Fprintf(stdout, "    %s\n", r.Subtitle)
		}
		if r.Content != "" {
			fmt.Fprintf(stdout, "    %s\n", search.Truncate(r.Content, 120))
		}
		fmt.Fprintf(stdout, "    %s\n", r.URL)
	}
	return nil
}

// ValidateCmd loads everything and reports counts and dangling references.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx context.Context, g *Globals) error {
	store, err := g.openStore(nil)
	if err != nil {
		return err
	}
	snap, err := store.Load(ctx)
	if err != nil {
		return err
	}

	report := validateSnapshot(snap)
	fmt.Fprintf(stdout, "categories: %d\nscriptures: %d\nverses:     %d\n",
		len(snap.Categories), len(snap.Scriptures), report.verses)
	for _, w := range report.warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	return nil
}

type validationReport struct {
	verses   int
	warnings []string
}

// validateSnapshot flags data that loads but will not browse cleanly:
// duplicate slugs, scriptures filed under no known category and cycles.
func validateSnapshot(snap *catalog.Snapshot) validationReport {
	var r validationReport

	names := make(map[string]bool, len(snap.Categories))
	seen := make(map[string]bool, len(snap.Categories))
	for _, c := range snap.Categories {
		names[c.Name] = true
		if seen[c.Slug] {
			r.warnings = append(r.warnings, fmt.Sprintf("duplicate category slug %q", c.Slug))
		}
		seen[c.Slug] = true
	}

	seen = make(map[string]bool, len(snap.Scriptures))
	for _, s := range snap.Scriptures {
		slug := s.Metadata.Slug
		if seen[slug] {
			r.warnings = append(r.warnings, fmt.Sprintf("duplicate scripture slug %q", slug))
		}
		seen[slug] = true
		if !names[s.Metadata.Category] {
			r.warnings = append(r.warnings, fmt.Sprintf("scripture %q is filed under unknown category %q", slug, s.Metadata.Category))
		}
		err := scripture.Walk(s.Content.Sections, func(scripture.Visit) bool {
			r.verses++
			return true
		})
		if err != nil {
			r.warnings = append(r.warnings, fmt.Sprintf("scripture %q: %v", slug, err))
		}
	}
	return r
}

// ImportCmd copies the data directory into a new SQLite catalog.
type ImportCmd struct {
	Out string `required:"" help:"SQLite file to create" type:"path"`
}

func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	if err := validation.ValidateDataDir(g.Data); err != nil {
		return fmt.Errorf("invalid data directory: %w", err)
	}
	if err := validation.ValidatePath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	stats, err := catalog.Import(ctx, catalog.NewDirStore(g.Data, catalog.WithWorkers(g.Workers)), c.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d categories, %d scriptures, %d verses into %s\n",
		stats.Categories, stats.Scriptures, stats.Verses, c.Out)
	return nil
}

// MCPCmd serves MCP tools over stdin/stdout.
type MCPCmd struct{}

func (c *MCPCmd) Run(ctx context.Context, g *Globals) error {
	engine, err := g.newEngine(nil)
	if err != nil {
		return err
	}
	return mcpserver.New(engine, version).Serve(ctx, os.Stdin, os.Stdout)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "srikosa version %s\n", version)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("srikosa"),
		kong.Description("Śrīkoṣa - search and browse a library of sacred texts"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	// stdout belongs to command output and, for mcp, the protocol.
	kctx.FatalIfErrorf(cli.initLogging(os.Stderr))

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
