package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Default file locations layered under the environment.
const (
	DefaultConfigPath      = "config/orbit.toml"
	DefaultLocalConfigPath = "orbit-data/config.local.toml"
)

// Config is the agent's fully resolved runtime configuration.
type Config struct {
	ContainersRoot string   `toml:"containers_root"`
	LogLevel       string   `toml:"log_level"`
	ApiBind        string   `toml:"api_bind"`
	DbPath         string   `toml:"db_path"`
	AuthEnabled    bool     `toml:"auth_enabled"`
	AdminToken     string   `toml:"admin_token"`
	ApiTokens      []string `toml:"api_tokens"`
}

// Default returns the built-in baseline, matching spec.md's defaults
// table before any file or environment override is applied.
func Default() Config {
	return Config{
		ContainersRoot: "sandboxes",
		LogLevel:       "info",
		ApiBind:        "127.0.0.1:7443",
		DbPath:         "orbit-data/agent.db",
		AuthEnabled:    false,
	}
}

// Load resolves the layered configuration: Default(), overlaid by
// defaultsPath if present, overlaid by localPath if present, overlaid
// by environment variables. A missing file at either path is not an
// error; a present-but-malformed one is.
func Load(defaultsPath, localPath string) (Config, error) {
	cfg := Default()

	if err := mergeFile(&cfg, defaultsPath); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", defaultsPath, err)
	}
	if err := mergeFile(&cfg, localPath); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", localPath, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(raw, cfg)
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("ORBIT_CONTAINERS_ROOT"); ok {
		cfg.ContainersRoot = v
	}
	if v, ok := os.LookupEnv("ORBIT_LOG"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("ORBIT_API_BIND"); ok {
		cfg.ApiBind = v
	}
	if v, ok := os.LookupEnv("ORBIT_DB_PATH"); ok {
		cfg.DbPath = v
	}
	if v, ok := os.LookupEnv("ORBIT_AUTH_ENABLED"); ok {
		cfg.AuthEnabled = parseBool(v)
	}
	if v, ok := os.LookupEnv("ORBIT_ADMIN_TOKEN"); ok {
		cfg.AdminToken = v
	}
	if v, ok := os.LookupEnv("ORBIT_API_TOKENS"); ok {
		cfg.ApiTokens = parseTokenList(v)
	}
}

// parseBool recognizes "1", "true", and "TRUE" as enabled; anything
// else is disabled.
func parseBool(v string) bool {
	return v == "1" || v == "true" || v == "TRUE"
}

// parseTokenList splits a comma-separated list, trimming whitespace
// and dropping empty entries.
func parseTokenList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
