package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/debatecards/internal/model"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile     string
	verbose     bool
	llmProvider string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "debatecards",
	Short: "debatecards - turn source documents into debate evidence cards",
	Long: `debatecards reads a source document and a research prompt, highlights
statistics and key arguments, cuts up to three evidence cards with a
relevance grade and a debate category, and asks a summarization model
for a short narrative.

Run it as an HTTP service (serve) or directly on local text files
(analyze, batch).`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("debatecards %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.debatecards/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&llmProvider, "provider", "", "summarization provider (huggingface, openai, ollama, none)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".debatecards"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// DEBATECARDS_LLM_PROVIDER overrides llm.provider
	viper.SetEnvPrefix("DEBATECARDS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper(), model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("server.allowed_origin", d.Server.AllowedOrigin)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.long_model", d.LLM.LongModel)
	v.SetDefault("llm.long_document_threshold", d.LLM.LongDocumentThreshold)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_length", d.LLM.MaxLength)
	v.SetDefault("llm.min_length", d.LLM.MinLength)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_db", d.Cache.RedisDB)
	v.SetDefault("cache.redis_pass", d.Cache.RedisPass)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("extraction.max_candidates", d.Extraction.MaxCandidates)
	v.SetDefault("extraction.min_card_length", d.Extraction.MinCardLength)
	v.SetDefault("extraction.max_cards", d.Extraction.MaxCards)
	v.SetDefault("extraction.title_max_length", d.Extraction.TitleMaxLength)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("output.verbose", d.Output.Verbose)

	v.SetDefault("proxy.http_proxy", d.Proxy.HTTPProxy)
	v.SetDefault("proxy.https_proxy", d.Proxy.HTTPSProxy)
	v.SetDefault("proxy.no_proxy", d.Proxy.NoProxy)

	v.SetDefault("default_settings.bold_key_arguments", d.Defaults.BoldKeyArguments)
	v.SetDefault("default_settings.highlight_statistics", d.Defaults.HighlightStatistics)
	v.SetDefault("default_settings.include_citations", d.Defaults.IncludeCitations)
}

// loadConfig resolves the effective configuration: flags > env > config file > defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvFallbacks(cfg, os.Getenv)
	return cfg, nil
}

// applyEnvFallbacks fills provider credentials from the provider's conventional variables
func applyEnvFallbacks(cfg *model.Config, getenv func(string) string) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "huggingface", "hf":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = getenv("HUGGINGFACE_API_KEY")
		}
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
		}
	}
}
