// Package config provides configuration management for the sentiment pipeline.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Weights   WeightsConfig   `mapstructure:"weights"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Output    OutputConfig    `mapstructure:"output"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider string         `mapstructure:"provider"` // groq, deepseek, gemini
	Groq     GroqConfig     `mapstructure:"groq"`
	DeepSeek DeepSeekConfig `mapstructure:"deepseek"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DeepSeekConfig holds DeepSeek-specific configuration.
type DeepSeekConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// WeightsConfig holds the per-source weights used by the aggregator.
// The weights do not have to sum to 1.0; the aggregator normalizes.
type WeightsConfig struct {
	News    float64 `mapstructure:"news"`
	Social  float64 `mapstructure:"social"`
	Analyst float64 `mapstructure:"analyst"`
	Web     float64 `mapstructure:"web"`
}

// ProvidersConfig holds evidence provider configuration.
type ProvidersConfig struct {
	FinnhubAPIKey    string        `mapstructure:"finnhub_api_key"`
	FinnhubBaseURL   string        `mapstructure:"finnhub_base_url"`
	FinvizBaseURL    string        `mapstructure:"finviz_base_url"`
	ApeWisdomBaseURL string        `mapstructure:"apewisdom_base_url"`
	YahooRSSBaseURL  string        `mapstructure:"yahoo_rss_base_url"`
	DuckDuckGoURL    string        `mapstructure:"duckduckgo_url"`
	UserAgent        string        `mapstructure:"user_agent"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	AnalystCooldown  time.Duration `mapstructure:"analyst_cooldown"`
}

// OutputConfig holds report output configuration.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (don't error if not found)
	envFiles := []string{".env", ".env.local"}
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Printf("Warning: could not load %s: %v\n", envFile, err)
			}
		}
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("Warning: could not read config file: %v\n", err)
		}
	} else {
		// Look for config in default locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		_ = v.ReadInConfig()
	}

	// Read from environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")

	// LLM defaults
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")

	// Source weights. Analyst data is the most reliable signal
	// (institutional consensus from dozens of analysts), followed by news
	// headlines. Social and web are noisier: social measures volume rather
	// than direction, and web scraping is inconsistent across runs.
	v.SetDefault("weights.news", 0.30)
	v.SetDefault("weights.social", 0.15)
	v.SetDefault("weights.analyst", 0.35)
	v.SetDefault("weights.web", 0.20)

	// Evidence provider defaults
	v.SetDefault("providers.finnhub_base_url", "https://finnhub.io/api/v1")
	v.SetDefault("providers.finviz_base_url", "https://finviz.com")
	v.SetDefault("providers.apewisdom_base_url", "https://apewisdom.io/api/v1.0")
	v.SetDefault("providers.yahoo_rss_base_url", "https://feeds.finance.yahoo.com/rss/2.0/headline")
	v.SetDefault("providers.duckduckgo_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("providers.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("providers.request_timeout", "10s")
	v.SetDefault("providers.analyst_cooldown", "5s")

	// Output defaults
	v.SetDefault("output.dir", "./output")
}

// bindEnvVars binds environment variables to config keys.
func bindEnvVars(v *viper.Viper) {
	// App
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("app.log_level", "LOG_LEVEL")

	// Server
	_ = v.BindEnv("server.port", "SERVER_PORT")

	// LLM
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm.groq.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("llm.groq.model", "GROQ_MODEL")
	_ = v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("llm.deepseek.model", "DEEPSEEK_MODEL")
	_ = v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.gemini.model", "GEMINI_MODEL")

	// Weights
	_ = v.BindEnv("weights.news", "WEIGHT_NEWS")
	_ = v.BindEnv("weights.social", "WEIGHT_SOCIAL")
	_ = v.BindEnv("weights.analyst", "WEIGHT_ANALYST")
	_ = v.BindEnv("weights.web", "WEIGHT_WEB")

	// Providers
	_ = v.BindEnv("providers.finnhub_api_key", "FINNHUB_API_KEY")

	// Output
	_ = v.BindEnv("output.dir", "OUTPUT_DIR")
}

// IsDevelopment returns true if the app is in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if the app is in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
