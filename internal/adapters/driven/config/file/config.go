// Package file provides TOML-backed configuration with change
// watching, so the córdoba exchange rate can be updated without a
// restart when the central bank publishes a new one.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/Arturo-valle/Firabase-1-sub000/internal/core/domain"
	"github.com/Arturo-valle/Firabase-1-sub000/internal/logger"
)

// Config is the application configuration.
type Config struct {
	// DataDir is where the SQLite database lives. Empty uses the
	// store's default under the home directory.
	DataDir string `toml:"data_dir"`

	Server    ServerConfig    `toml:"server"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Context   ContextConfig   `toml:"context"`
	Ingest    IngestConfig    `toml:"ingest"`
	Currency  CurrencyConfig  `toml:"currency"`
	Cache     CacheConfig     `toml:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// OpenAIConfig configures the embedding and generation services. The
// API key is taken from the OPENAI_API_KEY environment variable when
// not set here.
type OpenAIConfig struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	EmbeddingModel    string `toml:"embedding_model"`
	LLMModel          string `toml:"llm_model"`
	Dimensions        int    `toml:"dimensions"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// RetrievalConfig configures semantic search.
type RetrievalConfig struct {
	CandidateLimit int `toml:"candidate_limit"`
	TopK           int `toml:"top_k"`
}

// ContextConfig configures prompt context assembly.
type ContextConfig struct {
	Budget    int `toml:"budget"`
	PerDocCap int `toml:"per_doc_cap"`
}

// IngestConfig configures document processing.
type IngestConfig struct {
	MaxDocs int `toml:"max_docs"`
}

// CurrencyConfig configures córdoba-to-USD normalization.
type CurrencyConfig struct {
	Rate            float64 `toml:"rate"`
	MaxPlausibleUSD float64 `toml:"max_plausible_usd"`
}

// CacheConfig configures the comparison and insight cache.
type CacheConfig struct {
	TTLMinutes int `toml:"ttl_minutes"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	policy := domain.DefaultCurrencyPolicy()
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Currency: CurrencyConfig{
			Rate:            policy.Rate,
			MaxPlausibleUSD: policy.MaxPlausibleUSD,
		},
		Cache: CacheConfig{
			TTLMinutes: 5,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.nicmarket/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nicmarket", "config.toml"), nil
}

// Load reads a config file over the defaults. A missing file is not
// an error: the defaults apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// Store holds the live configuration and reloads it when the backing
// file changes.
type Store struct {
	mu      sync.RWMutex
	path    string
	cfg     *Config
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStore loads the config at path and returns a store around it.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path: path,
		cfg:  cfg,
	}, nil
}

// Config returns the current configuration snapshot.
func (s *Store) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// CurrencyPolicy returns the current normalization policy. Handed to
// the metrics service as a function so reloads take effect on the
// next extraction.
func (s *Store) CurrencyPolicy() domain.CurrencyPolicy {
	cfg := s.Config()
	policy := domain.CurrencyPolicy{
		Rate:            cfg.Currency.Rate,
		MaxPlausibleUSD: cfg.Currency.MaxPlausibleUSD,
	}
	if policy.Rate <= 0 {
		policy.Rate = domain.DefaultCurrencyPolicy().Rate
	}
	if policy.MaxPlausibleUSD <= 0 {
		policy.MaxPlausibleUSD = domain.DefaultCurrencyPolicy().MaxPlausibleUSD
	}
	return policy
}

// Watch reloads the configuration whenever the file is rewritten.
// Watching the directory rather than the file survives the
// rename-and-replace pattern editors and deploy tools use.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	s.watcher = watcher
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				s.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: %v", err)
			}
		}
	}()

	return nil
}

// reload swaps in the file's current content. A file that fails to
// parse keeps the previous configuration.
func (s *Store) reload() {
	cfg, err := Load(s.path)
	if err != nil {
		logger.Warn("config reload failed, keeping previous: %v", err)
		return
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	logger.Info("config reloaded from %s (rate %.4f)", s.path, cfg.Currency.Rate)
}

// Close stops the watcher if one is running.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	return err
}
