package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "scoreboard.yml")
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func clearEnv(t *testing.T) {
	for _, env := range []string{"SPORTSDB_API_KEY", "SPORTSDB_BASE_URL", "LEAGUE_ID", "SEASON", "PORT", "CACHE_TTL", "STATIC_DIR", "STORAGE", "UPSTREAM_TIMEOUT"} {
		t.Setenv(env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c != Default() {
		t.Fatalf("got %+v", c)
	}
}

func TestLoadFile(t *testing.T) {
	filename := writeConfig(t, `
apiKey: secret
leagueId: "4351"
season: 2023-2024
port: 8080
cacheTtl: 2m
storage: sqlite:cache.db
timeout: 3s
`)
	clearEnv(t)
	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.APIKey != "secret" || c.LeagueID != "4351" || c.Season != "2023-2024" {
		t.Errorf("bad upstream settings %+v", c)
	}
	if c.Port != 8080 || c.CacheTTL != 2*time.Minute || c.Timeout != 3*time.Second {
		t.Errorf("bad numeric settings %+v", c)
	}
	if c.Storage != "sqlite:cache.db" || c.StaticDir != "public" {
		t.Errorf("bad storage settings %+v", c)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	filename := writeConfig(t, "port: 8080\nseason: 2023-2024\n")
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SPORTSDB_API_KEY", "envkey")

	c, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9090 || c.APIKey != "envkey" || c.Season != "2023-2024" {
		t.Fatalf("got %+v", c)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	f := file{Port: "http", CacheTTL: "soon", Timeout: "-1s"}
	c, err := f.resolve()
	if err != nil {
		t.Fatal(err)
	}
	d := Default()
	if c.Port != d.Port || c.CacheTTL != d.CacheTTL || c.Timeout != d.Timeout {
		t.Fatalf("got %+v", c)
	}
}

func TestUnknownStorage(t *testing.T) {
	f := file{Storage: "redis:localhost"}
	if _, err := f.resolve(); err == nil {
		t.Fatal("expected error for unknown storage")
	}
}

func TestOverrideFromEnv(t *testing.T) {
	env := map[string]string{"STORAGE": "postgres:dbname=scores", "CACHE_TTL": "1m", "LEAGUE_ID": " "}
	f := file{LeagueID: "4328"}
	f.overrideFromEnv(func(k string) string { return env[k] })
	if f.Storage != "postgres:dbname=scores" || f.CacheTTL != "1m" || f.LeagueID != "4328" {
		t.Fatalf("got %+v", f)
	}
}
