package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/twitterwatch/internal/inference"
	"github.com/ppiankov/twitterwatch/internal/privacy"
	"github.com/ppiankov/twitterwatch/internal/sentiment"
	"github.com/ppiankov/twitterwatch/internal/source"
	"github.com/ppiankov/twitterwatch/internal/summarize"
)

const (
	DefaultConfigFile         = "config.yaml"
	DefaultSearchBackend      = "snscrape"
	DefaultSnscrapePath       = "snscrape"
	DefaultNitterURL          = source.DefaultNitterURL
	DefaultNitterTimeout      = 30 * time.Second
	DefaultSentimentBackend   = "huggingface"
	DefaultSentimentModel     = sentiment.DefaultModel
	DefaultSentimentBatch     = 32
	DefaultMeanPolicy         = "global"
	DefaultSummarizeBackend   = "huggingface"
	DefaultSummarizeModel     = summarize.DefaultModel
	DefaultLLMKeyEnv          = "OPENAI_API_KEY"
	DefaultHuggingFaceKeyEnv  = "HF_API_TOKEN"
	DefaultHuggingFaceURL     = inference.DefaultBaseURL
	DefaultHuggingFaceTimeout = 2 * time.Minute
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Handle      string            `yaml:"handle"`
	Search      SearchConfig      `yaml:"search"`
	Sentiment   SentimentConfig   `yaml:"sentiment"`
	Summarize   SummarizeConfig   `yaml:"summarize"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Log         LogConfig         `yaml:"log"`
	Privacy     PrivacyConfig     `yaml:"privacy"`
}

type SearchConfig struct {
	Backend  string         `yaml:"backend"`
	Snscrape SnscrapeConfig `yaml:"snscrape"`
	Nitter   NitterConfig   `yaml:"nitter"`
}

type SnscrapeConfig struct {
	Path string `yaml:"path"`
}

type NitterConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

type SentimentConfig struct {
	Backend     string              `yaml:"backend"`
	Model       string              `yaml:"model"`
	Labels      []string            `yaml:"labels"`
	Mean        string              `yaml:"mean"`
	BatchSize   int                 `yaml:"batch_size"`
	Lexicon     map[string][]string `yaml:"lexicon"`
	LexiconFile string              `yaml:"lexicon_file"`
}

type SummarizeConfig struct {
	Backend string    `yaml:"backend"`
	Model   string    `yaml:"model"`
	LLM     LLMConfig `yaml:"llm"`
}

type LLMConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	Endpoint  string `yaml:"endpoint"`

	// Resolved from env var at load time.
	APIKey string `yaml:"-"`
}

type HuggingFaceConfig struct {
	APIKeyEnv string   `yaml:"api_key_env"`
	BaseURL   string   `yaml:"base_url"`
	Timeout   Duration `yaml:"timeout"`

	// Resolved from env var at load time.
	APIToken string `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PrivacyConfig struct {
	Redact RedactConfig `yaml:"redact"`
}

type RedactConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns"`
}

// Overrides are environment variables that take precedence over the file.
type Overrides struct {
	Handle        string `env:"TWITTERWATCH_HANDLE"`
	LogLevel      string `env:"TWITTERWATCH_LOG_LEVEL"`
	LogFormat     string `env:"TWITTERWATCH_LOG_FORMAT"`
	SearchBackend string `env:"TWITTERWATCH_SEARCH_BACKEND"`
}

// Load reads config.yaml from dir, applies env overrides and defaults,
// resolves secrets, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Sentiment.LexiconFile != "" {
		lexPath := cfg.Sentiment.LexiconFile
		if !filepath.IsAbs(lexPath) {
			lexPath = filepath.Join(dir, lexPath)
		}
		lex, err := LoadLexicon(lexPath)
		if err != nil {
			return nil, err
		}
		cfg.Sentiment.Lexicon = lex
	}

	return finish(&cfg)
}

// Default returns a validated config built from defaults and the
// environment alone, for running without a config file.
func Default() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	if err := applyOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	resolveEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyOverrides(cfg *Config) error {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.Handle != "" {
		cfg.Handle = o.Handle
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	if o.SearchBackend != "" {
		cfg.Search.Backend = o.SearchBackend
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Handle = strings.TrimPrefix(strings.TrimSpace(cfg.Handle), "@")

	if cfg.Search.Backend == "" {
		cfg.Search.Backend = DefaultSearchBackend
	}
	if cfg.Search.Snscrape.Path == "" {
		cfg.Search.Snscrape.Path = DefaultSnscrapePath
	}
	if cfg.Search.Nitter.BaseURL == "" {
		cfg.Search.Nitter.BaseURL = DefaultNitterURL
	}
	if cfg.Search.Nitter.Timeout.Duration == 0 {
		cfg.Search.Nitter.Timeout.Duration = DefaultNitterTimeout
	}

	if cfg.Sentiment.Backend == "" {
		cfg.Sentiment.Backend = DefaultSentimentBackend
	}
	if cfg.Sentiment.Model == "" {
		cfg.Sentiment.Model = DefaultSentimentModel
	}
	if len(cfg.Sentiment.Labels) == 0 {
		cfg.Sentiment.Labels = slices.Clone(sentiment.DefaultLabels)
	}
	if cfg.Sentiment.Mean == "" {
		cfg.Sentiment.Mean = DefaultMeanPolicy
	}
	if cfg.Sentiment.BatchSize == 0 {
		cfg.Sentiment.BatchSize = DefaultSentimentBatch
	}

	if cfg.Summarize.Backend == "" {
		cfg.Summarize.Backend = DefaultSummarizeBackend
	}
	if cfg.Summarize.Model == "" {
		cfg.Summarize.Model = DefaultSummarizeModel
	}
	if cfg.Summarize.LLM.APIKeyEnv == "" {
		cfg.Summarize.LLM.APIKeyEnv = DefaultLLMKeyEnv
	}

	if cfg.HuggingFace.APIKeyEnv == "" {
		cfg.HuggingFace.APIKeyEnv = DefaultHuggingFaceKeyEnv
	}
	if cfg.HuggingFace.BaseURL == "" {
		cfg.HuggingFace.BaseURL = DefaultHuggingFaceURL
	}
	if cfg.HuggingFace.Timeout.Duration == 0 {
		cfg.HuggingFace.Timeout.Duration = DefaultHuggingFaceTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Summarize.LLM.APIKeyEnv != "" {
		cfg.Summarize.LLM.APIKey = os.Getenv(cfg.Summarize.LLM.APIKeyEnv)
	}
	if cfg.HuggingFace.APIKeyEnv != "" {
		cfg.HuggingFace.APIToken = os.Getenv(cfg.HuggingFace.APIKeyEnv)
	}
}

func validate(cfg *Config) error {
	switch cfg.Search.Backend {
	case "snscrape", "nitter":
		// valid
	default:
		return fmt.Errorf("search.backend: unknown backend %q (want snscrape or nitter)", cfg.Search.Backend)
	}

	switch cfg.Sentiment.Backend {
	case "huggingface", "lexicon":
		// valid
	default:
		return fmt.Errorf("sentiment.backend: unknown backend %q (want huggingface or lexicon)", cfg.Sentiment.Backend)
	}
	switch cfg.Sentiment.Mean {
	case "global", "per_label":
		// valid
	default:
		return fmt.Errorf("sentiment.mean: unknown policy %q (want global or per_label)", cfg.Sentiment.Mean)
	}
	if cfg.Sentiment.BatchSize < 0 {
		return fmt.Errorf("sentiment.batch_size: must be positive, got %d", cfg.Sentiment.BatchSize)
	}

	switch cfg.Summarize.Backend {
	case "huggingface", "extractive", "llm":
		// valid
	default:
		return fmt.Errorf("summarize.backend: unknown backend %q (want huggingface, llm or extractive)", cfg.Summarize.Backend)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("log.format: unknown format %q (want text or json)", cfg.Log.Format)
	}

	if cfg.Privacy.Redact.Enabled {
		if _, err := privacy.New(cfg.Privacy.Redact.Patterns); err != nil {
			return fmt.Errorf("privacy.redact: %w", err)
		}
	}

	return nil
}
