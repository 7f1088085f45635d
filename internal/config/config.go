package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	LLM     LLMConfig
	Server  ServerConfig
	Session SessionConfig
	Auth    AuthConfig
	Prompt  PromptConfig
	Log     LogConfig
}

// LLMConfig holds the completion endpoint configuration
type LLMConfig struct {
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float32 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// SessionConfig holds session identity and transcript storage settings
type SessionConfig struct {
	Secret       string `mapstructure:"secret"`
	HistoryDir   string `mapstructure:"history_dir"`
	RegistryPath string `mapstructure:"registry_path"`
}

// AuthConfig holds the optional password gate. An empty password disables the gate.
type AuthConfig struct {
	Password string `mapstructure:"password"`
}

// PromptConfig selects the system prompt. Custom, when set, overrides Profile.
type PromptConfig struct {
	Profile string `mapstructure:"profile"`
	Custom  string `mapstructure:"custom"`
}

// LogConfig holds the log level
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from config.yaml (or the file named by CONFIG_PATH)
// and validates that every required value is present. A missing required value is a
// fatal startup condition for callers; the returned error names the missing key.
func Load() (*Config, error) {
	v := viper.New()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env values to Unmarshal for keys that
	// have no default and no file entry; bind the defaultless keys explicitly so
	// e.g. MENTOR_SESSION_SECRET satisfies validation on its own.
	for _, key := range []string{
		"llm.base_url",
		"llm.api_key",
		"llm.model",
		"session.secret",
		"auth.password",
		"prompt.custom",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("session.history_dir", "sessions")
	v.SetDefault("session.registry_path", "sessions.db")
	v.SetDefault("prompt.profile", "mentor")
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"llm.base_url", c.LLM.BaseURL},
		{"llm.model", c.LLM.Model},
		{"session.secret", c.Session.Secret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required config value: %s", r.key)
		}
	}
	return nil
}
