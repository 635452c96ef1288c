package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bkayser/concierge"
	"github.com/bkayser/concierge/gemini"
	conciergehttp "github.com/bkayser/concierge/http"
	"github.com/bkayser/concierge/ingest"
	"github.com/bkayser/concierge/langchaingo"
	"github.com/bkayser/concierge/ollama"
	"github.com/bkayser/concierge/postgres"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for the concierge command. Values come from a YAML
// file, then the environment, then defaults for anything still unset.
type Config struct {
	DataDir string `yaml:"data_dir" env:"CONCIERGE_DATA_DIR"`

	// URLFile defaults to the URL list inside DataDir.
	URLFile string `yaml:"url_file" env:"CONCIERGE_URL_FILE"`

	Index    IndexConfig    `yaml:"index" envPrefix:"CONCIERGE_INDEX_"`
	Embedder EmbedderConfig `yaml:"embedder" envPrefix:"CONCIERGE_EMBEDDER_"`
	Fetch    FetchConfig    `yaml:"fetch" envPrefix:"CONCIERGE_FETCH_"`
	Chunk    ChunkConfig    `yaml:"chunk" envPrefix:"CONCIERGE_CHUNK_"`

	// Secrets are read from the environment only.
	Username     string `yaml:"-" env:"REFTOWN_USERNAME"`
	Password     string `yaml:"-" env:"REFTOWN_PASSWORD"`
	GeminiAPIKey string `yaml:"-" env:"GEMINI_API_KEY"`
}

// IndexConfig selects and configures the vector index.
type IndexConfig struct {
	Backend     string `yaml:"backend" env:"BACKEND"`
	SQLitePath  string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	PostgresURL string `yaml:"postgres_url" env:"POSTGRES_URL"`
	Table       string `yaml:"table" env:"TABLE"`
	BatchSize   int    `yaml:"batch_size" env:"BATCH_SIZE"`
}

// EmbedderConfig selects and configures the embedding model.
type EmbedderConfig struct {
	Provider   string `yaml:"provider" env:"PROVIDER"`
	Model      string `yaml:"model" env:"MODEL"`
	OllamaURL  string `yaml:"ollama_url" env:"OLLAMA_URL"`
	Dimensions int    `yaml:"dimensions" env:"DIMENSIONS"`
}

// FetchConfig controls web fetching.
type FetchConfig struct {
	Concurrency       int           `yaml:"concurrency" env:"CONCURRENCY"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	MaxHops           int           `yaml:"max_hops" env:"MAX_HOPS"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	LoginURL          string        `yaml:"login_url" env:"LOGIN_URL"`
}

// ChunkConfig sizes chunks for embedding.
type ChunkConfig struct {
	Size    int `yaml:"size" env:"SIZE"`
	Overlap int `yaml:"overlap" env:"OVERLAP"`
}

// Index backends and embedding providers.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// DefaultDimensions is the embedding size shared by the default models.
const DefaultDimensions = 768

// configLocations are searched in order when no config path is given.
func configLocations() []string {
	locations := []string{"concierge.yaml", "concierge.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "concierge", "config.yaml"))
	}
	return locations
}

// LoadConfig reads the YAML file at path, or the first default location
// that exists when path is empty, overlays the environment and applies
// defaults. A missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		for _, loc := range configLocations() {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, concierge.Errorf(concierge.EINVALID, "parsing config file %s: %v", path, err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, concierge.Errorf(concierge.EINVALID, "parsing environment: %v", err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadDotenv loads variables from a .env file without overriding the
// environment. A missing file is ignored.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func applyDefaults(config *Config) {
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	if config.URLFile == "" {
		config.URLFile = defaultURLFile(config.DataDir)
	}

	if config.Index.Backend == "" {
		config.Index.Backend = BackendSQLite
	}
	if config.Index.SQLitePath == "" {
		config.Index.SQLitePath = defaultSQLitePath()
	}
	if config.Index.Table == "" {
		config.Index.Table = postgres.DefaultTableName
	}
	if config.Index.BatchSize == 0 {
		config.Index.BatchSize = ingest.DefaultBatchSize
	}

	if config.Embedder.Provider == "" {
		config.Embedder.Provider = ProviderGemini
	}
	if config.Embedder.Model == "" {
		switch config.Embedder.Provider {
		case ProviderOllama:
			config.Embedder.Model = ollama.DefaultModel
		default:
			config.Embedder.Model = gemini.DefaultEmbeddingModel
		}
	}
	if config.Embedder.OllamaURL == "" {
		config.Embedder.OllamaURL = ollama.DefaultServerURL
	}
	if config.Embedder.Dimensions == 0 {
		config.Embedder.Dimensions = DefaultDimensions
	}

	if config.Fetch.Concurrency == 0 {
		config.Fetch.Concurrency = ingest.DefaultConcurrency
	}
	if config.Fetch.RequestsPerSecond == 0 {
		config.Fetch.RequestsPerSecond = ingest.DefaultRequestsPerSecond
	}
	if config.Fetch.MaxHops == 0 {
		config.Fetch.MaxHops = concierge.DefaultMaxHops
	}
	if config.Fetch.Timeout == 0 {
		config.Fetch.Timeout = conciergehttp.DefaultTimeout
	}
	if config.Fetch.LoginURL == "" {
		config.Fetch.LoginURL = conciergehttp.DefaultLoginURL
	}

	if config.Chunk.Size == 0 {
		config.Chunk.Size = langchaingo.DefaultChunkSize
	}
	if config.Chunk.Overlap == 0 {
		config.Chunk.Overlap = langchaingo.DefaultChunkOverlap
	}
}

// Validate returns an error if the config names an unknown backend or
// provider or has impossible sizes.
func (c *Config) Validate() error {
	switch c.Index.Backend {
	case BackendSQLite, BackendPostgres:
	default:
		return concierge.Errorf(concierge.EINVALID, "unknown index backend %q", c.Index.Backend)
	}
	switch c.Embedder.Provider {
	case ProviderGemini, ProviderOllama:
	default:
		return concierge.Errorf(concierge.EINVALID, "unknown embedder provider %q", c.Embedder.Provider)
	}
	if c.Chunk.Overlap >= c.Chunk.Size {
		return concierge.Errorf(concierge.EINVALID, "chunk overlap %d must be smaller than chunk size %d", c.Chunk.Overlap, c.Chunk.Size)
	}
	return nil
}

// Credentials returns the login for the authenticated site.
func (c *Config) Credentials() concierge.Credentials {
	return concierge.Credentials{Username: c.Username, Password: c.Password}
}

func defaultURLFile(dataDir string) string {
	return filepath.Join(dataDir, concierge.DefaultURLListName)
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "concierge.db"
	}
	return filepath.Join(home, ".concierge", "concierge.db")
}
