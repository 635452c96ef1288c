package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/bkayser/concierge"
	conciergefs "github.com/bkayser/concierge/fs"
	"github.com/bkayser/concierge/gemini"
	"github.com/bkayser/concierge/goquery"
	conciergehttp "github.com/bkayser/concierge/http"
	"github.com/bkayser/concierge/ingest"
	"github.com/bkayser/concierge/langchaingo"
	"github.com/bkayser/concierge/ollama"
	"github.com/bkayser/concierge/pdf"
	"github.com/bkayser/concierge/postgres"
	conciergeslog "github.com/bkayser/concierge/slog"
	"github.com/bkayser/concierge/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// DotenvPath is loaded before the config. Empty disables it.
	DotenvPath string

	// Config, if set, is used instead of loading one.
	Config *Config

	// Index, if set, is used instead of opening the configured index.
	Index concierge.Index

	// TokenCounter, if set, replaces the local Gemini tokenizer.
	TokenCounter concierge.TokenCounter

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{DotenvPath: ".env"}
}

// Close releases the index connection.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("concierge"),
		kong.Description("Ingest referee documents and web pages into a searchable index"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'concierge --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := LoadDotenv(m.DotenvPath); err != nil {
		return err
	}
	config := m.Config
	if config == nil {
		if config, err = LoadConfig(cli.Config); err != nil {
			return err
		}
	}

	cmd := kongCtx.Command()
	switch {
	case strings.HasPrefix(cmd, "ingest"):
		cli.Ingest.applyTo(config)
	case strings.HasPrefix(cmd, "search"):
		cli.Search.applyTo(config)
	}
	if err := config.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Config: config,
	}

	defer m.Close()
	idx := m.Index
	if idx == nil {
		if idx, err = m.openIndex(ctx, config); err != nil {
			return err
		}
	}
	deps.Index = conciergeslog.NewLoggingIndex(idx, logger)

	if strings.HasPrefix(cmd, "ingest") {
		p, err := buildPipeline(config, deps.Index, logger)
		if err != nil {
			return err
		}
		p.TokenCounter = m.tokenCounter(logger)
		deps.Pipeline = p
	}

	return kongCtx.Run(deps)
}

// openIndex connects the configured embedder and index.
func (m *Main) openIndex(ctx context.Context, config *Config) (concierge.Index, error) {
	embedder, err := newEmbedder(ctx, config)
	if err != nil {
		return nil, err
	}

	switch config.Index.Backend {
	case BackendPostgres:
		idx, err := postgres.Open(ctx, postgres.Config{
			ConnString: config.Index.PostgresURL,
			TableName:  config.Index.Table,
			Dimension:  config.Embedder.Dimensions,
		}, embedder)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres index: %w", err)
		}
		m.closers = append(m.closers, func() error { idx.Close(); return nil })
		return idx, nil
	default:
		if dir := filepath.Dir(config.Index.SQLitePath); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		db := sqlite.NewDB(config.Index.SQLitePath)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("failed to open index at %q: %w", config.Index.SQLitePath, err)
		}
		m.closers = append(m.closers, db.Close)
		return sqlite.NewIndex(db, embedder), nil
	}
}

func newEmbedder(ctx context.Context, config *Config) (concierge.Embedder, error) {
	switch config.Embedder.Provider {
	case ProviderOllama:
		emb, err := ollama.New(ollama.Config{
			Model:     config.Embedder.Model,
			ServerURL: config.Embedder.OllamaURL,
		})
		if err != nil {
			return nil, err
		}
		return emb, nil
	default:
		client, err := gemini.NewClient(ctx, config.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewEmbedder(client.Models,
			gemini.WithModel(config.Embedder.Model),
			gemini.WithDimensions(config.Embedder.Dimensions),
		), nil
	}
}

// buildPipeline wires the loaders, splitter and index for one ingestion.
func buildPipeline(config *Config, idx concierge.Index, logger *slog.Logger) (*ingest.Pipeline, error) {
	urls, err := readURLList(config.URLFile)
	if err != nil {
		return nil, err
	}

	fetcher := &ingest.Fetcher{
		Classifier: concierge.NewClassifier(),
		Resolver: conciergeslog.NewLoggingResolver(
			conciergehttp.NewResolver(goquery.NewRedirectFinder(),
				conciergehttp.WithMaxHops(config.Fetch.MaxHops),
				conciergehttp.WithTimeout(config.Fetch.Timeout),
			), logger),
		RateLimiter: ingest.NewDomainLimiter(config.Fetch.RequestsPerSecond),
		Concurrency: config.Fetch.Concurrency,
	}
	if creds := config.Credentials(); creds.Complete() {
		fetcher.Authenticator = conciergeslog.NewLoggingAuthenticator(
			conciergehttp.NewAuthenticator(creds, goquery.NewFormParser(),
				conciergehttp.WithLoginURL(config.Fetch.LoginURL),
				conciergehttp.WithAuthTimeout(config.Fetch.Timeout),
			), logger)
	}

	p := &ingest.Pipeline{
		Files:      conciergefs.NewLoader(config.DataDir, pdf.NewReader(), conciergefs.WithExcludedPaths(config.URLFile)),
		Web:        ingest.NewWebLoader(fetcher, goquery.NewExtractor()),
		URLs:       urls,
		Normalizer: concierge.NewNormalizer(),
		Splitter: langchaingo.NewSplitter(
			langchaingo.WithChunkSize(config.Chunk.Size),
			langchaingo.WithChunkOverlap(config.Chunk.Overlap),
		),
		Index:     idx,
		BatchSize: config.Index.BatchSize,
	}
	return p, nil
}

// tokenCounter returns m.TokenCounter or the local Gemini tokenizer. A
// tokenizer that cannot be built disables token counts.
func (m *Main) tokenCounter(logger *slog.Logger) concierge.TokenCounter {
	if m.TokenCounter != nil {
		return m.TokenCounter
	}
	tc, err := gemini.NewTokenCounter("")
	if err != nil {
		logger.Warn("token counting disabled", "err", err)
		return nil
	}
	return tc
}

// readURLList returns the URLs in the list file at path. A missing file
// yields no URLs.
func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := concierge.ParseURLList(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return concierge.URLs(entries), nil
}
