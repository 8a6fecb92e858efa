package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreJSON = `{
  "library": "sap.ui.core",
  "version": "1.120.0",
  "symbols": [
    {"kind": "class", "name": "sap.ui.base.Object", "module": "sap/ui/base/Object", "export": "", "visibility": "public"},
    {"kind": "class", "name": "sap.ui.core.Control", "module": "sap/ui/core/Control", "export": "", "visibility": "public",
     "extends": "sap.ui.base.Object"}
  ]
}`

const mJSON = `{
  "library": "sap.m",
  "version": "1.120.0",
  "symbols": [
    {"kind": "class", "name": "sap.m.Button", "module": "sap/m/Button", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Control",
     "ui5-metadata": {"properties": [{"name": "text", "type": "string", "visibility": "public"}]}}
  ]
}`

// project lays out api.json files under root/api and returns root.
func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "api", "sap.ui.core", "api.json"), coreJSON)
	writeFile(t, filepath.Join(root, "api", "sap.m", "api.json"), mJSON)
	return root
}

// run executes the root command and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func projectArgs(root string, args ...string) []string {
	return append([]string{
		"--config", filepath.Join(root, ".ui5dts", "config.yaml"),
		"--api-dir", filepath.Join(root, "api"),
		"--out-dir", filepath.Join(root, "types"),
		"--log-level", "error",
	}, args...)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ui5dts "+version+"\n", out)
}

func TestGenerate_WritesFiles(t *testing.T) {
	root := project(t)
	out, err := run(t, projectArgs(root, "generate", "sap.m")...)
	require.NoError(t, err)
	assert.Contains(t, out, "sap.m.d.ts")
	assert.Contains(t, out, "modules")

	data, err := os.ReadFile(filepath.Join(root, "types", "sap.m.d.ts"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "// For Library Version: 1.120.0\n"))
	assert.Contains(t, text, `declare module "sap/m/Button" {`)
	assert.NoFileExists(t, filepath.Join(root, "types", "sap.ui.core.d.ts"))
}

func TestGenerate_Stdout(t *testing.T) {
	root := project(t)
	out, err := run(t, projectArgs(root, "generate", "--stdout", "sap.m")...)
	require.NoError(t, err)
	assert.Contains(t, out, `declare module "sap/m/Button" {`)
	assert.NoDirExists(t, filepath.Join(root, "types"))
}

func TestGenerate_AllWithCheck(t *testing.T) {
	root := project(t)
	_, err := run(t, projectArgs(root, "generate", "--all", "--check")...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "types", "sap.m.d.ts"))
	assert.FileExists(t, filepath.Join(root, "types", "sap.ui.core.d.ts"))
}

func TestGenerate_LibrariesFromConfig(t *testing.T) {
	root := project(t)
	writeFile(t, filepath.Join(root, ".ui5dts", "config.yaml"), "api_dir: api\nout_dir: out\nlibraries: [sap.ui.core]\n")

	_, err := run(t, "--config", filepath.Join(root, ".ui5dts", "config.yaml"), "--log-level", "error", "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "out", "sap.ui.core.d.ts"))
}

func TestGenerate_Errors(t *testing.T) {
	root := project(t)

	_, err := run(t, projectArgs(root, "generate")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no library to generate")

	_, err = run(t, projectArgs(root, "generate", "sap.x")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown library")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.d.ts")
	writeFile(t, good, "declare module \"sap/x\" {\n  export default class X {}\n}\n")
	bad := filepath.Join(dir, "bad.d.ts")
	writeFile(t, bad, "declare module \"sap/x\" {\n  export default class X {\n")

	out, err := run(t, "--config", filepath.Join(dir, "none.yaml"), "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "0 error(s), 0 warning(s)")

	report := filepath.Join(dir, "report.txt")
	out, err = run(t, "--config", filepath.Join(dir, "none.yaml"), "check", "--report", report, bad)
	require.Error(t, err)
	assert.Contains(t, out, "error:")
	data, readErr := os.ReadFile(report)
	require.NoError(t, readErr)
	assert.Equal(t, out, string(data))
}

func TestInspect(t *testing.T) {
	root := project(t)
	out, err := run(t, projectArgs(root, "inspect", "sap.m.Button")...)
	require.NoError(t, err)
	assert.Contains(t, out, "sap.m.Button  [Class]")
	assert.Contains(t, out, "library  sap.m")
	assert.Contains(t, out, "module   sap/m/Button")
	assert.Contains(t, out, "class Button extends Control {")

	out, err = run(t, projectArgs(root, "inspect", "--ast", "sap.m.Button")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Button")

	_, err = run(t, projectArgs(root, "inspect", "sap.mx.Nothing")...)
	assert.Error(t, err)
}
