package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProjectConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".ui5dts", "config.yaml")
	writeFile(t, path, `version: "1"
api_dir: api
out_dir: /abs/types
directives: [rc/.dtsgenrc]
preambles:
  sap.m: preambles/sap.m.d.ts
dependencies:
  sap.f: [sap.m]
libraries: [sap.m, sap.f]
generate_globals: true
log_level: debug
`)

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, filepath.Join(root, "api"), cfg.APIDir)
	assert.Equal(t, "/abs/types", cfg.OutDir)
	assert.Equal(t, []string{filepath.Join(root, "rc", ".dtsgenrc")}, cfg.Directives)
	assert.Equal(t, filepath.Join(root, "preambles", "sap.m.d.ts"), cfg.Preambles["sap.m"])
	assert.Equal(t, []string{"sap.m"}, cfg.Dependencies["sap.f"])
	assert.Equal(t, []string{"sap.m", "sap.f"}, cfg.Libraries)
	assert.True(t, cfg.GenerateGlobals)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.MCPLog)
}

func TestLoadProjectConfig_OutsideDotDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "ui5dts.yaml")
	writeFile(t, path, "api_dir: api\n")

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "api"), cfg.APIDir)
}

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), ".ui5dts", "config.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ui5dts", "config.yaml")
	writeFile(t, path, "libraries: [sap.m\n")

	_, err := loadProjectConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "flag", firstNonEmpty("flag", "config", "default"))
	assert.Equal(t, "config", firstNonEmpty("", "config", "default"))
	assert.Equal(t, "default", firstNonEmpty("", "", "default"))
	assert.Empty(t, firstNonEmpty())
}
