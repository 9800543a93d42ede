package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string   `mapstructure:"PORT"`
	Env                  string   `mapstructure:"ENV"`
	MongoURI             string   `mapstructure:"MONGO_URI"`
	MongoDatabase        string   `mapstructure:"MONGO_DATABASE"`
	OpenAIAPIKey         string   `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL        string   `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel          string   `mapstructure:"OPENAI_MODEL"`
	SummaryModel         string   `mapstructure:"SUMMARY_MODEL"`
	AssistantAPIKey      string   `mapstructure:"ASSISTANT_API_KEY"`
	CORSOrigins          []string `mapstructure:"CORS_ORIGINS"`
	PromptsDir           string   `mapstructure:"PROMPTS_DIR"`
	ReconcileIntervalSec int      `mapstructure:"RECONCILE_INTERVAL_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "patient_data")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4-turbo")
	v.SetDefault("SUMMARY_MODEL", "gpt-4o")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("PROMPTS_DIR", "./prompts")
	v.SetDefault("RECONCILE_INTERVAL_SECONDS", 15)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("MONGO_URI")
	v.BindEnv("MONGO_DATABASE")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_BASE_URL")
	v.BindEnv("OPENAI_MODEL")
	v.BindEnv("SUMMARY_MODEL")
	v.BindEnv("ASSISTANT_API_KEY")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("PROMPTS_DIR")
	v.BindEnv("RECONCILE_INTERVAL_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.ReconcileIntervalSec <= 0 {
		cfg.ReconcileIntervalSec = 15
	}

	return cfg, nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
