// Package config loads and saves the YAML configuration file. Secrets are
// resolved from the environment so the file can be committed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"leadscout/internal/language"
)

type Reddit struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	UserAgent    string `yaml:"user_agent"`
	UseMock      bool   `yaml:"use_mock"`
}

type Pipeline struct {
	FetchLimit      int  `yaml:"fetch_limit"`
	SignalThreshold int  `yaml:"signal_threshold"`
	BatchSize       int  `yaml:"batch_size"`
	BatchPauseMS    int  `yaml:"batch_pause_ms"`
	RequireWorthy   bool `yaml:"require_worthiness"`
}

func (p Pipeline) BatchPause() time.Duration {
	return time.Duration(p.BatchPauseMS) * time.Millisecond
}

type LLM struct {
	Provider      string `yaml:"provider"` // gemini or none
	APIKey        string `yaml:"api_key"`
	ScoringModel  string `yaml:"scoring_model"`
	ResponseModel string `yaml:"response_model"`
}

type Config struct {
	Reddit       Reddit   `yaml:"reddit"`
	Subreddits   []string `yaml:"subreddits"`
	Pipeline     Pipeline `yaml:"pipeline"`
	LLM          LLM      `yaml:"llm"`
	DataDir      string   `yaml:"data_dir"`
	DBPath       string   `yaml:"db_path"`
	MetricsAddr  string   `yaml:"metrics_addr"`
	LoopEveryMin int      `yaml:"loop_every_min"`
}

// Default returns the configuration written by the init command. The
// subreddit list starts from the full language registry.
func Default() Config {
	return Config{
		Reddit: Reddit{
			UserAgent: "leadscout/0.1 (lead discovery; contact mods for removal)",
		},
		Subreddits: language.AllSubreddits(),
		Pipeline: Pipeline{
			FetchLimit:      100,
			SignalThreshold: 7,
			BatchSize:       5,
			BatchPauseMS:    2000,
			RequireWorthy:   true,
		},
		LLM: LLM{
			Provider:      "gemini",
			ScoringModel:  "gemma-3-27b-it",
			ResponseModel: "gemini-2.0-flash",
		},
		DataDir:      "./data",
		DBPath:       "./leadscout.db",
		LoopEveryMin: 60,
	}
}

// Load reads path and layers environment overrides on top.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.resolveEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating it with private permissions.
func Save(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// resolveEnv fills secrets from the environment when unset in the file.
func (c *Config) resolveEnv() {
	envOr := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	envOr(&c.Reddit.ClientID, "REDDIT_CLIENT_ID")
	envOr(&c.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	envOr(&c.Reddit.Username, "REDDIT_USERNAME")
	envOr(&c.Reddit.Password, "REDDIT_PASSWORD")
	envOr(&c.LLM.APIKey, "GEMINI_API_KEY")
	envOr(&c.MetricsAddr, "METRICS_ADDR")
}

func (c *Config) validate() error {
	if len(c.Subreddits) == 0 {
		return fmt.Errorf("config: no subreddits configured")
	}
	if c.Pipeline.SignalThreshold < 1 || c.Pipeline.SignalThreshold > 10 {
		return fmt.Errorf("config: signal_threshold must be 1-10, got %d", c.Pipeline.SignalThreshold)
	}
	switch c.LLM.Provider {
	case "gemini", "none", "":
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}
