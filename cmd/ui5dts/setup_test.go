package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeObject(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	return obj
}

func TestMergeServerEntry_EmptyFile(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", []string{"serve"}, nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	servers := decodeObject(t, out)["mcpServers"].(map[string]any)
	entry := servers["ui5dts"].(map[string]any)
	assert.Equal(t, "ui5dts", entry["command"])
	assert.Equal(t, []any{"serve"}, entry["args"])
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

func TestMergeServerEntry_KeepsOtherServers(t *testing.T) {
	existing := []byte(`{"mcpServers": {"other": {"command": "other", "args": ["start"]}}, "theme": "dark"}`)
	out, err := mergeServerEntry(existing, "mcpServers", []string{"serve"}, nil)
	require.NoError(t, err)

	obj := decodeObject(t, out)
	assert.Equal(t, "dark", obj["theme"])
	servers := obj["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other")
	assert.Contains(t, servers, "ui5dts")
}

func TestMergeServerEntry_AlreadyConfigured(t *testing.T) {
	existing := []byte(`{"servers": {"ui5dts": {"command": "ui5dts", "args": ["serve"]}}}`)
	out, err := mergeServerEntry(existing, "servers", []string{"serve"}, nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestMergeServerEntry_ExtraFieldsAndArgs(t *testing.T) {
	out, err := mergeServerEntry(nil, "servers", []string{"serve", "--config", "/p/.ui5dts/config.yaml"}, map[string]string{"type": "stdio"})
	require.NoError(t, err)

	entry := decodeObject(t, out)["servers"].(map[string]any)["ui5dts"].(map[string]any)
	assert.Equal(t, "stdio", entry["type"])
	assert.Equal(t, []any{"serve", "--config", "/p/.ui5dts/config.yaml"}, entry["args"])
}

func TestMergeServerEntry_InvalidJSON(t *testing.T) {
	_, err := mergeServerEntry([]byte("not json"), "mcpServers", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"nope\n", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var w bytes.Buffer
			assert.Equal(t, tt.want, confirm(bufio.NewReader(strings.NewReader(tt.input)), &w, "Continue?"))
			assert.Equal(t, "Continue? [Y/n] ", w.String())
		})
	}
}

func TestServeArgs(t *testing.T) {
	assert.Equal(t, []string{"serve"}, serveArgs(defaultConfigPath))
	assert.Equal(t, []string{"serve"}, serveArgs(""))

	args := serveArgs("other.yaml")
	require.Len(t, args, 3)
	assert.Equal(t, "--config", args[1])
	assert.True(t, filepath.IsAbs(args[2]))
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".vscode"), 0o755))
	writeFile(t, filepath.Join(root, ".cursor", "mcp.json"), `{"mcpServers": {"ui5dts": {}}}`)

	d := detector{root: root, lookPath: func(string) (string, error) { return "", os.ErrNotExist }}
	byName := map[string]detected{}
	for _, found := range d.detect() {
		byName[found.name] = found
	}

	assert.NotContains(t, byName, "Claude Code")
	require.Contains(t, byName, "VS Code")
	assert.False(t, byName["VS Code"].configured)
	assert.Equal(t, filepath.Join(root, ".vscode", "mcp.json"), byName["VS Code"].path)
	require.Contains(t, byName, "Cursor")
	assert.True(t, byName["Cursor"].configured)
}

func TestRunSetup_WritesFileAgents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".vscode"), 0o755))
	writeFile(t, filepath.Join(root, ".cursor", "mcp.json"), `{"mcpServers": {"ui5dts": {}}}`)

	d := detector{root: root, lookPath: func(string) (string, error) { return "", os.ErrNotExist }}
	var found []detected
	for _, f := range d.detect() {
		if f.name != "Claude Desktop" {
			found = append(found, f)
		}
	}

	var w bytes.Buffer
	require.NoError(t, runSetup(strings.NewReader(""), &w, found, []string{"serve"}, true))
	assert.Contains(t, w.String(), "Cursor (already configured)")
	assert.Contains(t, w.String(), "+ VS Code configured")

	data, err := os.ReadFile(filepath.Join(root, ".vscode", "mcp.json"))
	require.NoError(t, err)
	entry := decodeObject(t, data)["servers"].(map[string]any)["ui5dts"].(map[string]any)
	assert.Equal(t, "stdio", entry["type"])
}

func TestRunSetup_Declined(t *testing.T) {
	root := t.TempDir()
	found := []detected{{
		agent: agent{name: "VS Code", serversKey: "servers"},
		path:  filepath.Join(root, ".vscode", "mcp.json"),
	}}
	var w bytes.Buffer
	require.NoError(t, runSetup(strings.NewReader("n\n"), &w, found, []string{"serve"}, false))
	assert.NoFileExists(t, found[0].path)
}

func TestRunSetup_NothingDetected(t *testing.T) {
	var w bytes.Buffer
	require.NoError(t, runSetup(strings.NewReader(""), &w, nil, nil, false))
	assert.Equal(t, "No supported AI agents detected.\n", w.String())
}
