package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"sopgen/internal/llm"
)

const (
	DefaultLLMType  = "groq"
	DefaultEndpoint = "http://localhost:8080/api/generate-sop"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
	Client ClientConfig `mapstructure:"client"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Metrics        bool          `mapstructure:"metrics"`
}

type LLMConfig struct {
	URL         string  `mapstructure:"url"`
	Model       string  `mapstructure:"model"`
	Token       string  `mapstructure:"token"`
	Type        string  `mapstructure:"type"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	// CredentialEnv names the environment variable the token was looked up
	// in. It is for server-side logs only.
	CredentialEnv string `mapstructure:"-"`
}

type ClientConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Timeout        time.Duration `mapstructure:"timeout"`
	NoticeDuration time.Duration `mapstructure:"notice_duration"`
	OutputDir      string        `mapstructure:"output_dir"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.metrics", true)
	v.SetDefault("llm.type", DefaultLLMType)
	v.SetDefault("llm.url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.token", "")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.temperature", 0.5)
	v.SetDefault("client.endpoint", DefaultEndpoint)
	v.SetDefault("client.timeout", "90s")
	v.SetDefault("client.notice_duration", "3s")
	v.SetDefault("client.output_dir", ".")
}

// Load reads the global viper instance.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v and resolves the provider credential. A missing
// credential is not an error here: the endpoint reports it per request.
func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	SetDefaults(v)
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.LLM.Type = strings.ToLower(strings.TrimSpace(cfg.LLM.Type))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	binding, _ := llm.Lookup(cfg.LLM.Type)
	cfg.LLM.CredentialEnv = binding.CredentialEnv
	if strings.TrimSpace(cfg.LLM.Token) == "" {
		key := "credentials." + binding.Name
		if err := v.BindEnv(key, binding.CredentialEnv); err != nil {
			return cfg, err
		}
		cfg.LLM.Token = strings.TrimSpace(v.GetString(key))
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := llm.Lookup(c.LLM.Type); !ok {
		return fmt.Errorf("invalid llm.type: %s (want one of %s)", c.LLM.Type, strings.Join(llm.Names(), ", "))
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("invalid llm.max_tokens: %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("invalid llm.temperature: %v", c.LLM.Temperature)
	}
	if c.Server.RequestTimeout < 0 || c.Client.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// HasCredential reports whether a provider token is configured.
func (c LLMConfig) HasCredential() bool {
	return c.Token != ""
}

// Settings maps the llm section onto provider settings.
func (c LLMConfig) Settings() llm.Settings {
	return llm.Settings{
		Type:  c.Type,
		URL:   c.URL,
		Model: c.Model,
		Token: c.Token,
	}
}
