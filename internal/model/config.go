package model

import (
	"runtime"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Extraction   ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Proxy        ProxyConfig       `yaml:"proxy" mapstructure:"proxy"`
	Defaults     AnalysisSettings  `yaml:"default_settings" mapstructure:"default_settings"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	AllowedOrigin  string        `yaml:"allowed_origin" mapstructure:"allowed_origin"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory, sqlite, postgres
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // file path for sqlite, URL for postgres
}

// LLMConfig configures the summarization provider
type LLMConfig struct {
	Provider              string `yaml:"provider" mapstructure:"provider"`     // huggingface, openai, ollama, none
	Model                 string `yaml:"model" mapstructure:"model"`           // Used for short documents
	LongModel             string `yaml:"long_model" mapstructure:"long_model"` // Used above LongDocumentThreshold
	LongDocumentThreshold int    `yaml:"long_document_threshold" mapstructure:"long_document_threshold"`
	APIKey                string `yaml:"-" mapstructure:"api_key"`
	BaseURL               string `yaml:"base_url" mapstructure:"base_url"`
	Timeout               int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxLength             int    `yaml:"max_length" mapstructure:"max_length"`
	MinLength             int    `yaml:"min_length" mapstructure:"min_length"`
}

// CacheConfig configures the summary cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
	RedisPass string        `yaml:"-" mapstructure:"redis_pass"`
}

// RateLimitConfig throttles outbound summarization calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ExtractionConfig holds the card assembly limits
type ExtractionConfig struct {
	MaxCandidates  int `yaml:"max_candidates" mapstructure:"max_candidates"`
	MinCardLength  int `yaml:"min_card_length" mapstructure:"min_card_length"`
	MaxCards       int `yaml:"max_cards" mapstructure:"max_cards"`
	TitleMaxLength int `yaml:"title_max_length" mapstructure:"title_max_length"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// ProxyConfig configures outbound proxies for provider calls
type ProxyConfig struct {
	HTTPProxy  string `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":5000",
			MaxUploadBytes: 10 * 1024 * 1024,
			AllowedOrigin:  "*",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute, // Long documents go through the slower model
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		LLM: LLMConfig{
			Provider:              "huggingface",
			LongDocumentThreshold: 3500,
			MaxLength:             1024,
			MinLength:             200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Backend:   "memory",
			Dir:       ".debatecards/cache",
			TTL:       24 * time.Hour,
			RedisAddr: "localhost:6379",
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Extraction: ExtractionConfig{
			MaxCandidates:  5,
			MinCardLength:  50,
			MaxCards:       3,
			TitleMaxLength: 50,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

