package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/artem13815/freelance/pkg/secrets"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int32

	Redis       RedisConfig
	JWT         JWTConfig
	LLM         LLMConfig
	Embedding   EmbeddingConfig
	Match       MatchConfig
	Explanation ExplanationConfig

	TaxJurisdictionsFile string

	LogJSON  bool
	LogDebug bool
}

type RedisConfig struct {
	// Пустой Addr отключает кэш в Redis.
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	TTLMinutes int
}

type LLMConfig struct {
	Provider   string
	OpenRouter OpenRouterConfig
	Gemini     GeminiConfig
}

type OpenRouterConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	AppTitle       string
	Referer        string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type EmbeddingConfig struct {
	Dimensions      int
	RefreshOnChange bool
}

type MatchConfig struct {
	Concurrency     int
	DefaultLimit    int
	DefaultMinScore float64
	FuzzySkills     bool
}

type ExplanationConfig struct {
	Temperature float32
	MaxTokens   int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_ttl", "24h")
	v.SetDefault("jwt_secret", "dev-secret-change")
	v.SetDefault("jwt_issuer", "freelance-platform")
	v.SetDefault("jwt_ttl_minutes", 60)
	v.SetDefault("llm_provider", ProviderOpenRouter)
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_app_title", "freelance-matching")
	v.SetDefault("embedding_dimensions", 1536)
	v.SetDefault("embedding_refresh_on_change", false)
	v.SetDefault("match_concurrency", 8)
	v.SetDefault("match_default_limit", 10)
	v.SetDefault("match_default_min_score", 0.5)
	v.SetDefault("match_fuzzy_skills", false)
	v.SetDefault("explanation_temperature", 0.7)
	v.SetDefault("explanation_max_tokens", 150)
	v.SetDefault("log_json", false)
	v.SetDefault("log_debug", false)
}

// Load reads environment variables, optionally from a .env file if present.
// Keys are looked up in v, so flags bound to v take precedence over the environment.
func Load(v *viper.Viper) (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	v.AutomaticEnv()
	SetDefaults(v)

	cfg := Config{
		Port:        v.GetString("port"),
		DatabaseURL: v.GetString("database_url"),
		DBMaxConns:  v.GetInt32("db_max_conns"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			TTL:      v.GetDuration("redis_ttl"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt_secret"),
			Issuer:     v.GetString("jwt_issuer"),
			TTLMinutes: v.GetInt("jwt_ttl_minutes"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
			OpenRouter: OpenRouterConfig{
				BaseURL:        v.GetString("openrouter_base_url"),
				Model:          v.GetString("openrouter_model"),
				EmbeddingModel: v.GetString("openrouter_embedding_model"),
				AppTitle:       v.GetString("openrouter_app_title"),
				Referer:        v.GetString("openrouter_referer"),
			},
			Gemini: GeminiConfig{
				Model:          v.GetString("gemini_model"),
				EmbeddingModel: v.GetString("gemini_embedding_model"),
			},
		},
		Embedding: EmbeddingConfig{
			Dimensions:      v.GetInt("embedding_dimensions"),
			RefreshOnChange: v.GetBool("embedding_refresh_on_change"),
		},
		Match: MatchConfig{
			Concurrency:     v.GetInt("match_concurrency"),
			DefaultLimit:    v.GetInt("match_default_limit"),
			DefaultMinScore: v.GetFloat64("match_default_min_score"),
			FuzzySkills:     v.GetBool("match_fuzzy_skills"),
		},
		Explanation: ExplanationConfig{
			Temperature: float32(v.GetFloat64("explanation_temperature")),
			MaxTokens:   v.GetInt("explanation_max_tokens"),
		},
		TaxJurisdictionsFile: v.GetString("tax_jurisdictions_file"),
		LogJSON:              v.GetBool("log_json"),
		LogDebug:             v.GetBool("log_debug"),
	}

	var err error
	if cfg.LLM.OpenRouter.APIKey, err = optionalSecret(v, "openrouter api key", "openrouter_api_key"); err != nil {
		return Config{}, err
	}
	if cfg.LLM.Gemini.APIKey, err = optionalSecret(v, "gemini api key", "gemini_api_key"); err != nil {
		return Config{}, err
	}

	switch cfg.LLM.Provider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		return Config{}, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.Provider)
	}
	return cfg, nil
}

// optionalSecret reads KEY or the file named by KEY_FILE. Both unset yields "".
func optionalSecret(v *viper.Viper, name, key string) (string, error) {
	src := secrets.Source{Name: name, Value: v.GetString(key), File: v.GetString(key + "_file")}
	if strings.TrimSpace(src.Value) == "" && strings.TrimSpace(src.File) == "" {
		return "", nil
	}
	return secrets.Load(src)
}

// JWTTTL returns the token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTLMinutes) * time.Minute
}
