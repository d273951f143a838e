// Package config handles Lineup configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Environment variables (LINEUP_*)
//  2. Config file (~/.config/lineup/config.yaml)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lineup-dev/lineup/internal/paths"
)

const (
	// DefaultAPIURL is the default Lineup platform API endpoint.
	DefaultAPIURL = "https://api.lineup.dev"
	// DefaultWatchInterval is the default reconciliation interval in seconds.
	DefaultWatchInterval = 30
	// DefaultSubsample is the number of cycles between position/feedback polls.
	DefaultSubsample = 10
)

// Wildcard requests all certified projects instead of an explicit id list.
const Wildcard = "all"

// Config holds the Lineup configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("api.url", DefaultAPIURL)
	v.SetDefault("watch.interval", DefaultWatchInterval)
	v.SetDefault("watch.subsample", DefaultSubsample)
	v.SetDefault("feedbacks.enabled", false)

	if configDir, err := paths.ConfigRoot(); err == nil {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("LINEUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found, but warn on other errors)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Get returns a configuration value.
func (c *Config) Get(key string) interface{} {
	return c.v.Get(key)
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns a configuration value as int.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// Set sets a configuration value and persists it.
func (c *Config) Set(key string, value interface{}) error {
	c.v.Set(key, value)

	configDir, err := paths.ConfigRoot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	return c.v.WriteConfigAs(filepath.Join(configDir, "config.yaml"))
}

// All returns all configuration as a map.
func (c *Config) All() map[string]interface{} {
	return c.v.AllSettings()
}

// APIURL returns the configured API URL.
func (c *Config) APIURL() string {
	return c.GetString("api.url")
}

// WatchInterval returns the reconciliation interval.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.GetInt("watch.interval")) * time.Second
}

// Subsample returns the number of cycles between position/feedback polls.
func (c *Config) Subsample() int {
	return c.GetInt("watch.subsample")
}

// Languages returns the configured working languages.
func (c *Config) Languages() []string {
	return c.v.GetStringSlice("projects.languages")
}

// CertifiedProjects returns the project-id to display-name mapping the
// user is certified for.
func (c *Config) CertifiedProjects() map[string]string {
	return c.v.GetStringMapString("projects.certified")
}

// RequestedProjects returns the raw requested project ids (possibly the
// wildcard). Use ResolveRequestedProjects for the validated set.
func (c *Config) RequestedProjects() []string {
	return c.v.GetStringSlice("projects.requested")
}

// PushAccessToken returns the optional push provider access token.
func (c *Config) PushAccessToken() string {
	return c.GetString("push.access_token")
}

// FeedbacksEnabled returns whether feedback polling is on.
func (c *Config) FeedbacksEnabled() bool {
	return c.v.GetBool("feedbacks.enabled")
}

// TokenExpiry returns the recorded access token expiry, or the zero time
// when none is stored.
func (c *Config) TokenExpiry() time.Time {
	raw := strings.TrimSpace(c.GetString("auth.token_expiry"))
	if raw == "" {
		return time.Time{}
	}

	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return expiry
}

// ResolveRequestedProjects validates requested against certified and
// returns the resolved, sorted project-id list. The wildcard (or an empty
// request) resolves to every certified project. Requested ids outside the
// certified set are returned as the second value; callers treat a
// non-empty remainder as a fatal configuration error.
func ResolveRequestedProjects(requested []string, certified map[string]string) (ids []string, uncertified []string) {
	if len(certified) == 0 {
		return nil, nil
	}

	wildcard := len(requested) == 0
	for _, id := range requested {
		if strings.EqualFold(strings.TrimSpace(id), Wildcard) {
			wildcard = true
			break
		}
	}

	if wildcard {
		for id := range certified {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		return ids, nil
	}

	seen := make(map[string]bool, len(requested))

	for _, raw := range requested {
		id := strings.TrimSpace(raw)
		if id == "" || seen[id] {
			continue
		}

		seen[id] = true

		if _, ok := certified[id]; !ok {
			uncertified = append(uncertified, id)
			continue
		}

		ids = append(ids, id)
	}

	sort.Strings(ids)
	sort.Strings(uncertified)

	return ids, uncertified
}
