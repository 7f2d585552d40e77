package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// config is the YAML config file layout.
//
//	engine: regexp2
//	flags: i
//	patterns:
//	  url:
//	    expr: |
//	      start; group(lit("${SCHEME}")); lit("://"); any; end
//	    flags: m
//
// ${VAR} references are expanded from the environment. The .env and
// .env.local files next to the config are loaded first; variables that
// are already set are not overridden.
type config struct {
	Engine       string        `yaml:"engine"`
	Flags        string        `yaml:"flags"`
	Format       string        `yaml:"format"`
	GroupsFormat string        `yaml:"groups_format"`
	Timeout      time.Duration `yaml:"timeout"`

	Patterns map[string]patternConfig `yaml:"patterns"`
}

type patternConfig struct {
	Expr  string `yaml:"expr"`
	Flags string `yaml:"flags"`
}

func loadConfig(path string) (*config, error) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(filepath.Dir(path), name)
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for name, pat := range cfg.Patterns {
		if pat.Expr == "" {
			return nil, fmt.Errorf("pattern %q: empty expr", name)
		}
	}
	return &cfg, nil
}

func (c *config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = defaultEngine
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if c.GroupsFormat == "" {
		c.GroupsFormat = defaultGroupsFormat
	}
	if c.Patterns == nil {
		c.Patterns = map[string]patternConfig{}
	}
}
