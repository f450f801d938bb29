package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PlaceholderAPIKey is the documented sentinel meaning "no remote project is
// configured"; sync is treated as disabled when it is present.
const PlaceholderAPIKey = "PLACEHOLDER_API_KEY"

// Remote is the hosting environment's remote-store project configuration.
type Remote struct {
	APIKey            string `mapstructure:"apiKey"`
	AuthDomain        string `mapstructure:"authDomain"`
	ProjectID         string `mapstructure:"projectId"`
	StorageBucket     string `mapstructure:"storageBucket"`
	MessagingSenderID string `mapstructure:"messagingSenderId"`
	AppID             string `mapstructure:"appId"`
}

// Configured reports whether a real remote project is set up.
func (r Remote) Configured() bool {
	return r.APIKey != "" && r.APIKey != PlaceholderAPIKey
}

// Course identifies the course this installation tracks.
type Course struct {
	ID          string `mapstructure:"id"`
	Units       int    `mapstructure:"units"`
	QuizBaseURL string `mapstructure:"quizBaseUrl"`
}

// Privacy holds the user's consent preferences. Sync false disables the
// reconciliation engine for the session.
type Privacy struct {
	Sync bool `mapstructure:"sync"`
}

// Config is the full host configuration.
type Config struct {
	Course   Course  `mapstructure:"course"`
	Remote   Remote  `mapstructure:"remote"`
	Privacy  Privacy `mapstructure:"privacy"`
	LogLevel string  `mapstructure:"logLevel"`
}

// Load reads lessontrack.yaml from path (or the working directory and
// ~/.config/lessontrack when path is empty), with LESSONTRACK_* environment
// overrides. A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("course.id", "default")
	v.SetDefault("course.units", 30)
	v.SetDefault("privacy.sync", true)
	v.SetDefault("logLevel", "info")
	v.SetDefault("remote.apiKey", PlaceholderAPIKey)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lessontrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lessontrack")
	}

	v.SetEnvPrefix("LESSONTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Course.Units < 1 {
		return nil, fmt.Errorf("course.units must be at least 1, got %d", cfg.Course.Units)
	}
	return &cfg, nil
}
