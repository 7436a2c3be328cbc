package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFileName = "docdex.yaml"

type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Search   SearchConfig   `yaml:"search"`
}

type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	AuthToken  string `yaml:"auth_token,omitempty"` // empty = no authentication
	EnableCORS bool   `yaml:"enable_cors"`
}

type StoreConfig struct {
	Backend   string         `yaml:"backend"` // pinecone | qdrant | postgres
	Namespace string         `yaml:"namespace,omitempty"`
	Pinecone  PineconeConfig `yaml:"pinecone,omitempty"`
	Qdrant    QdrantConfig   `yaml:"qdrant,omitempty"`
	Postgres  PostgresConfig `yaml:"postgres,omitempty"`
}

type PineconeConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Host   string `yaml:"host"` // index host URL, e.g. "https://my-index-abc123.svc.pinecone.io"
	Index  string `yaml:"index,omitempty"`
}

type QdrantConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key,omitempty"`
	UseTLS     bool   `yaml:"use_tls,omitempty"`
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table,omitempty"`
}

type EmbedderConfig struct {
	Provider   string `yaml:"provider"` // openai | ollama
	Model      string `yaml:"model"`
	Endpoint   string `yaml:"endpoint,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
	Dimensions *int   `yaml:"dimensions,omitempty"`
}

// GetDimensions returns the configured dimensions or a default value.
// For OpenAI, defaults to 3072 (text-embedding-3-large).
// For Ollama, defaults to 768 (nomic-embed-text).
func (e *EmbedderConfig) GetDimensions() int {
	if e.Dimensions != nil {
		return *e.Dimensions
	}
	switch e.Provider {
	case "openai":
		return 3072
	default:
		return 768
	}
}

type SearchConfig struct {
	DefaultTopK     int      `yaml:"default_top_k"`
	MaxContentChars int      `yaml:"max_content_chars"`
	TextKeys        []string `yaml:"text_keys"` // metadata keys checked in order for document text
}

func DefaultConfig() *Config {
	defaultDim := 3072
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8000,
			EnableCORS: true,
		},
		Store: StoreConfig{
			Backend: "pinecone",
		},
		Embedder: EmbedderConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-large",
			Endpoint:   "https://api.openai.com/v1",
			Dimensions: &defaultDim,
		},
		Search: SearchConfig{
			DefaultTopK:     8,
			MaxContentChars: 50000,
			TextKeys:        []string{"text", "chunk", "content"},
		},
	}
}

// Load reads the config file at path, applies defaults for missing values,
// then applies environment variable overrides. A missing file is not an
// error: the defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults + env
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return cfg, nil
}

// applyDefaults fills in missing configuration values with sensible defaults.
// This keeps older config files working when new fields are added.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == 0 {
		c.Version = defaults.Version
	}

	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}

	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	if c.Store.Backend == "qdrant" && c.Store.Qdrant.Port <= 0 {
		c.Store.Qdrant.Port = 6334
	}
	if c.Store.Backend == "postgres" && c.Store.Postgres.Table == "" {
		c.Store.Postgres.Table = "documents"
	}

	if c.Embedder.Provider == "" {
		c.Embedder.Provider = defaults.Embedder.Provider
	}
	if c.Embedder.Model == "" {
		switch c.Embedder.Provider {
		case "openai":
			c.Embedder.Model = "text-embedding-3-large"
		case "ollama":
			c.Embedder.Model = "nomic-embed-text"
		}
	}
	if c.Embedder.Endpoint == "" {
		switch c.Embedder.Provider {
		case "ollama":
			c.Embedder.Endpoint = "http://localhost:11434"
		default:
			c.Embedder.Endpoint = defaults.Embedder.Endpoint
		}
	}
	if c.Embedder.Dimensions == nil {
		dim := c.Embedder.GetDimensions()
		c.Embedder.Dimensions = &dim
	}

	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = defaults.Search.DefaultTopK
	}
	if c.Search.MaxContentChars <= 0 {
		c.Search.MaxContentChars = defaults.Search.MaxContentChars
	}
	if len(c.Search.TextKeys) == 0 {
		c.Search.TextKeys = defaults.Search.TextKeys
	}
}

// applyEnv overrides config values from environment variables. The env
// surface mirrors the deployment conventions of hosted vector indexes,
// so a fully env-configured server needs no config file at all.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SECRET_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}

	if v := os.Getenv("PINECONE_API_KEY"); v != "" {
		c.Store.Pinecone.APIKey = v
	}
	if v := os.Getenv("PINECONE_INDEX_HOST"); v != "" {
		c.Store.Pinecone.Host = v
	}
	if v := os.Getenv("PINECONE_INDEX"); v != "" {
		c.Store.Pinecone.Index = v
	}
	if v := os.Getenv("NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}

	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		c.Embedder.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		c.Embedder.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if dim, err := strconv.Atoi(v); err == nil && dim > 0 {
			c.Embedder.Dimensions = &dim
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.Embedder.APIKey == "" {
		c.Embedder.APIKey = v
	}

	if v := os.Getenv("DEFAULT_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.DefaultTopK = k
		}
	}
	if v := os.Getenv("MAX_CONTENT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxContentChars = n
		}
	}
	if v := os.Getenv("METADATA_TEXT_KEYS"); v != "" {
		keys := make([]string, 0, 4)
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			c.Search.TextKeys = keys
		}
	}
}

func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigFileName
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists(path string) bool {
	if path == "" {
		path = ConfigFileName
	}
	_, err := os.Stat(path)
	return err == nil
}
