// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Genres   GenresConfig   `yaml:"genres"`
	Organize OrganizeConfig `yaml:"organize"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr          string   `yaml:"addr" default:"127.0.0.1:8080"`
	BaseURL       string   `yaml:"base_url" default:"http://127.0.0.1:8080"`
	CORSOrigins   []string `yaml:"cors_origins"`
	SessionTTLMin int      `yaml:"session_ttl_min" default:"1440" validate:"gte=1"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" validate:"required"`
	RefreshToken string `yaml:"refresh_token"` // only needed by the headless CLI
	Market       string `yaml:"market" validate:"omitempty,len=2"`
	LibraryLimit int    `yaml:"library_limit" default:"2000" validate:"gte=1"`
}

// GenresConfig represents genre source configuration.
type GenresConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents a single genre source provider.
type ProviderConfig struct {
	Type     string         `yaml:"type" validate:"required"`
	Settings map[string]any `yaml:"settings"`
}

// GenreRuleConfig represents one genre normalization rule.
type GenreRuleConfig struct {
	Pattern  string `yaml:"pattern" validate:"required"`
	Category string `yaml:"category" validate:"required"`
}

// OrganizeConfig overrides the built-in organization tables. Empty sections
// keep the defaults.
type OrganizeConfig struct {
	GenreRules  []GenreRuleConfig `yaml:"genre_rules"`
	Moods       map[string]string `yaml:"moods"`
	MoodBuckets []string          `yaml:"mood_buckets"`
	Emoji       map[string]string `yaml:"emoji"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info"`
}

// Load loads configuration from a YAML file. Environment variables take
// precedence over file values for credentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// With no providers configured, Spotify artist genres are the only source.
	if len(cfg.Genres.Providers) == 0 {
		cfg.Genres.Providers = []ProviderConfig{{Type: "spotify"}}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		for i := range c.Genres.Providers {
			if c.Genres.Providers[i].Type == "lastfm" {
				if c.Genres.Providers[i].Settings == nil {
					c.Genres.Providers[i].Settings = make(map[string]any)
				}
				c.Genres.Providers[i].Settings["api_key"] = v
				break
			}
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return errors.Newf("server base_url must be an http(s) URL: %q", c.Server.BaseURL)
	}

	return nil
}

// RedirectURL returns the OAuth callback URL derived from the server base URL.
// It must match the redirect URI registered with the Spotify application.
func (c *Config) RedirectURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/") + "/callback"
}
