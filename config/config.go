package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/KaueAmbrosio/WebSiteEsporte/upstream"
)

type Config struct {
	APIKey    string
	BaseURL   string
	LeagueID  string
	Season    string
	Port      int
	CacheTTL  time.Duration
	StaticDir string
	// Storage selects the cache provider: "memory", "sqlite:<file>" or
	// "postgres:<dsn>".
	Storage string
	Timeout time.Duration
}

// file mirrors Config as written in YAML. Durations and the port are kept
// as strings so that a bad value falls back to the default instead of
// failing the whole file.
type file struct {
	APIKey    string `yaml:"apiKey"`
	BaseURL   string `yaml:"baseUrl"`
	LeagueID  string `yaml:"leagueId"`
	Season    string `yaml:"season"`
	Port      string `yaml:"port"`
	CacheTTL  string `yaml:"cacheTtl"`
	StaticDir string `yaml:"staticDir"`
	Storage   string `yaml:"storage"`
	Timeout   string `yaml:"timeout"`
}

func Default() Config {
	return Config{
		APIKey:    upstream.DefaultAPIKey,
		BaseURL:   upstream.DefaultBaseURL,
		LeagueID:  upstream.DefaultLeagueID,
		Season:    "2024-2025",
		Port:      3000,
		CacheTTL:  5 * time.Minute,
		StaticDir: "public",
		Storage:   "memory",
		Timeout:   upstream.DefaultTimeout,
	}
}

// Load reads the config file, if any, and applies environment overrides.
func Load(filename string) (Config, error) {
	var f file
	if filename != "" {
		configBytes, err := os.ReadFile(filename)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(configBytes, &f); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", filename, err)
		}
	}
	f.overrideFromEnv(os.Getenv)
	return f.resolve()
}

func (f *file) overrideFromEnv(getenv func(string) string) {
	for env, field := range map[string]*string{
		"SPORTSDB_API_KEY":  &f.APIKey,
		"SPORTSDB_BASE_URL": &f.BaseURL,
		"LEAGUE_ID":         &f.LeagueID,
		"SEASON":            &f.Season,
		"PORT":              &f.Port,
		"CACHE_TTL":         &f.CacheTTL,
		"STATIC_DIR":        &f.StaticDir,
		"STORAGE":           &f.Storage,
		"UPSTREAM_TIMEOUT":  &f.Timeout,
	} {
		if v := strings.TrimSpace(getenv(env)); v != "" {
			*field = v
		}
	}
}

func (f file) resolve() (Config, error) {
	c := Default()
	setString(&c.APIKey, f.APIKey)
	setString(&c.BaseURL, f.BaseURL)
	setString(&c.LeagueID, f.LeagueID)
	setString(&c.Season, f.Season)
	setString(&c.StaticDir, f.StaticDir)
	setString(&c.Storage, f.Storage)

	if f.Port != "" {
		if port, err := strconv.Atoi(f.Port); err == nil && port > 0 && port < 65536 {
			c.Port = port
		} else {
			log.Warn().Str("port", f.Port).Msgf("Invalid port, using %d", c.Port)
		}
	}
	setDuration(&c.CacheTTL, f.CacheTTL, "cacheTtl")
	setDuration(&c.Timeout, f.Timeout, "timeout")

	scheme, _, _ := strings.Cut(c.Storage, ":")
	switch scheme {
	case "memory", "sqlite", "postgres":
	default:
		return c, fmt.Errorf("unsupported storage provider: %s", scheme)
	}
	return c, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, name string) {
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str(name, v).Msgf("Invalid duration, using %s", *dst)
		return
	}
	*dst = d
}
