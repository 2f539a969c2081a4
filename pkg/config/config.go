// Package config resolves relay settings from defaults, an optional TOML
// file, a .env file, and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvUpstreamURL = "OPEN_WEBUI_URL"
	EnvAPIKey      = "OPEN_WEBUI_API_KEY"
	EnvListenAddr  = "RELAY_LISTEN_ADDR"
	EnvDebug       = "RELAY_DEBUG"

	DefaultListenAddr  = ":8000"
	DefaultUpstreamURL = "http://localhost:3000"
)

// Config is the relay configuration.
type Config struct {
	// Address to listen on (e.g., ":8000")
	ListenAddr string `toml:"listen"`

	// Open WebUI base URL; /api/chat is appended per request
	UpstreamURL string `toml:"upstream_url"`

	// Bearer token for Open WebUI. Empty means no Authorization header.
	APIKey string `toml:"api_key"`

	Debug bool `toml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:  DefaultListenAddr,
		UpstreamURL: DefaultUpstreamURL,
	}
}

// Load builds a Config. path names an optional TOML file; pass "" to skip it.
// A .env file in the working directory is loaded into the environment if it
// exists, without overriding variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("could not load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUpstreamURL); ok && v != "" {
		c.UpstreamURL = v
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}
