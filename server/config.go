package server

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/carn181/phplsp/logging"
	"github.com/carn181/phplsp/util"
)

// Config is the optional phplsp.json at the workspace root.
type Config struct {
	// Exclude patterns are doublestar globs over workspace-relative
	// paths; matching files and directories are skipped by the scanner
	// and the watcher.
	Exclude []string `json:"exclude,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
}

func (c *Config) UnmarshalJSON(content []byte) error {
	type config Config
	cfg := config(defaultConfig())
	if err := json.Unmarshal(content, &cfg); err != nil {
		return err
	}
	*c = Config(cfg)
	return nil
}

func defaultConfig() Config {
	return Config{
		Exclude:  []string{".git/**"},
		LogLevel: "info",
	}
}

func LoadConfig(root util.Path) Config {
	content, err := os.ReadFile(filepath.Join(root, "phplsp.json"))
	if err != nil {
		return defaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		logging.Logger.Error("invalid phplsp.json", "error", err)
		return defaultConfig()
	}
	return cfg
}

func (c *Config) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
