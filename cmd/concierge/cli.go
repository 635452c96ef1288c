package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/ingest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Config   *Config
	Pipeline *ingest.Pipeline
	Index    concierge.Index
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"C" type:"path" help:"Config file (default: concierge.yaml or ~/.config/concierge/config.yaml)"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`

	Ingest IngestCmd `cmd:"" help:"Load files and URLs, then rebuild the index"`
	Search SearchCmd `cmd:"" help:"Search the index"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Data        string `short:"d" type:"path" help:"Data root with .txt, .md and .pdf files"`
	URLs        string `short:"u" name:"urls" type:"path" help:"URL list file (default: <data>/_urls.txt)"`
	Index       string `help:"Index backend (sqlite, postgres)"`
	Embedder    string `help:"Embedding provider (gemini, ollama)"`
	Concurrency int    `short:"c" help:"Concurrent fetch limit"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string `arg:"" help:"Search query"`
	K        int    `short:"k" default:"4" help:"Number of results"`
	Index    string `help:"Index backend (sqlite, postgres)"`
	Embedder string `help:"Embedding provider (gemini, ollama)"`
}

// applyTo overrides config values with the flags that were set.
func (c *IngestCmd) applyTo(config *Config) {
	if c.Data != "" {
		if config.URLFile == defaultURLFile(config.DataDir) {
			config.URLFile = defaultURLFile(c.Data)
		}
		config.DataDir = c.Data
	}
	if c.URLs != "" {
		config.URLFile = c.URLs
	}
	if c.Index != "" {
		config.Index.Backend = c.Index
	}
	setProvider(config, c.Embedder)
	if c.Concurrency > 0 {
		config.Fetch.Concurrency = c.Concurrency
	}
}

// applyTo overrides config values with the flags that were set.
func (c *SearchCmd) applyTo(config *Config) {
	if c.Index != "" {
		config.Index.Backend = c.Index
	}
	setProvider(config, c.Embedder)
}

// setProvider switches the embedding provider, resetting the model to the
// new provider's default.
func setProvider(config *Config, provider string) {
	if provider == "" || provider == config.Embedder.Provider {
		return
	}
	config.Embedder.Provider = provider
	config.Embedder.Model = ""
	applyDefaults(config)
}
