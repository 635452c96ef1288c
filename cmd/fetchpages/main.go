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
	"time"

	"github.com/alecthomas/kong"
	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/bloom"
	conciergefs "github.com/bkayser/concierge/fs"
	"github.com/bkayser/concierge/goquery"
	"github.com/bkayser/concierge/htmltomarkdown"
	conciergehttp "github.com/bkayser/concierge/http"
	"github.com/bkayser/concierge/ingest"
	"github.com/bkayser/concierge/readability"
	conciergeslog "github.com/bkayser/concierge/slog"
	"github.com/bkayser/concierge/trafilatura"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
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
	// DotenvPath is loaded before reading credentials. Empty disables it.
	DotenvPath string
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{DotenvPath: ".env"}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URLs        []string      `arg:"" optional:"" name:"url" help:"URLs to fetch and convert"`
	File        string        `short:"f" type:"path" help:"File with URLs, one per line, optionally followed by an output name"`
	Out         string        `short:"o" type:"path" default:"data" help:"Output directory"`
	Sitemap     string        `short:"s" help:"Also fetch the pages listed in this site's sitemaps"`
	Filter      []string      `short:"F" help:"Keep sitemap URLs matching this regex (repeatable)"`
	Extractor   string        `short:"e" enum:"goquery,trafilatura,readability" default:"goquery" help:"Main-content extractor (goquery, trafilatura, readability)"`
	MaxHops     int           `default:"3" help:"Redirects followed per URL"`
	Concurrency int           `short:"c" default:"2" help:"Concurrent fetch limit"`
	Timeout     time.Duration `short:"t" default:"30s" help:"Timeout per request"`
	Verbose     bool          `short:"v" help:"Log debug output to stderr"`
}

// credentials are read from the environment only.
type credentials struct {
	Username string `env:"REFTOWN_USERNAME"`
	Password string `env:"REFTOWN_PASSWORD"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fetchpages"),
		kong.Description("Fetch web pages and save them as Markdown for curation"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no URLs provided")
	}
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	creds, err := m.loadCredentials()
	if err != nil {
		return err
	}

	fetcher := &ingest.Fetcher{
		Classifier: concierge.NewClassifier(),
		Resolver: conciergeslog.NewLoggingResolver(
			conciergehttp.NewResolver(goquery.NewRedirectFinder(),
				conciergehttp.WithMaxHops(cli.MaxHops),
				conciergehttp.WithTimeout(cli.Timeout),
			), logger),
		RateLimiter: ingest.NewDomainLimiter(ingest.DefaultRequestsPerSecond),
		Concurrency: cli.Concurrency,
	}
	if creds.Complete() {
		fetcher.Authenticator = conciergeslog.NewLoggingAuthenticator(
			conciergehttp.NewAuthenticator(creds, goquery.NewFormParser(),
				conciergehttp.WithAuthTimeout(cli.Timeout),
			), logger)
	}

	extractor, err := newExtractor(cli.Extractor)
	if err != nil {
		return err
	}

	cmd := &FetchCmd{
		URLs:    cli.URLs,
		File:    cli.File,
		Out:     cli.Out,
		Sitemap: cli.Sitemap,
		Filter:  cli.Filter,
	}
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Curator: &ingest.Curator{
			Fetcher:   fetcher,
			Extractor: extractor,
			Converter: htmltomarkdown.NewConverter(),
			Store:     conciergefs.NewWriter(cli.Out),
			Sitemaps:  conciergeslog.NewLoggingSitemapService(conciergehttp.NewSitemapService(nil), logger),
			Seen:      bloom.NewFilter(bloom.DefaultCapacity, bloom.DefaultFPRate),
		},
	}
	return cmd.Run(deps)
}

func (m *Main) loadCredentials() (concierge.Credentials, error) {
	if m.DotenvPath != "" {
		if err := godotenv.Load(m.DotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return concierge.Credentials{}, fmt.Errorf("loading %s: %w", m.DotenvPath, err)
		}
	}
	var c credentials
	if err := env.Parse(&c); err != nil {
		return concierge.Credentials{}, fmt.Errorf("parse env: %w", err)
	}
	return concierge.Credentials{Username: c.Username, Password: c.Password}, nil
}

func newExtractor(name string) (concierge.Extractor, error) {
	switch name {
	case "", "goquery":
		return goquery.NewExtractor(), nil
	case "trafilatura":
		return trafilatura.NewExtractor(), nil
	case "readability":
		return readability.NewExtractor(), nil
	}
	return nil, concierge.Errorf(concierge.EINVALID, "unknown extractor %q", name)
}
