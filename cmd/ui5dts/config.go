package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = ".ui5dts/config.yaml"

// ProjectConfig holds the contents of .ui5dts/config.yaml.
type ProjectConfig struct {
	Version string `yaml:"version"`
	// APIDir is searched recursively for api.json and .dtsgenrc files.
	APIDir string `yaml:"api_dir"`
	OutDir string `yaml:"out_dir"`
	// Directives are .dtsgenrc files outside APIDir.
	Directives []string `yaml:"directives"`
	// Preambles maps a library to a file inserted after the version comment.
	Preambles map[string]string `yaml:"preambles"`
	// Dependencies add explicit library dependencies.
	Dependencies    map[string][]string `yaml:"dependencies"`
	Libraries       []string            `yaml:"libraries"`
	GenerateGlobals bool                `yaml:"generate_globals"`
	Check           bool                `yaml:"check"`
	LogLevel        string              `yaml:"log_level"`
	LogFormat       string              `yaml:"log_format"`
	MCPLog          string              `yaml:"mcp_log"`
}

// loadProjectConfig reads the config at path. A missing file yields nil and
// no error. Relative paths in the file are resolved against the project
// root: the parent of .ui5dts, or the config's own directory elsewhere.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "parsing %s", path), "the config is YAML; see the README for the keys")
	}

	base := filepath.Dir(path)
	if filepath.Base(base) == ".ui5dts" {
		base = filepath.Dir(base)
	}
	cfg.APIDir = resolvePath(base, cfg.APIDir)
	cfg.OutDir = resolvePath(base, cfg.OutDir)
	cfg.MCPLog = resolvePath(base, cfg.MCPLog)
	for i, p := range cfg.Directives {
		cfg.Directives[i] = resolvePath(base, p)
	}
	for lib, p := range cfg.Preambles {
		cfg.Preambles[lib] = resolvePath(base, p)
	}
	return &cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// firstNonEmpty implements the resolution chain flag → config → default.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
