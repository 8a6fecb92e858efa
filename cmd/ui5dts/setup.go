package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
)

const serverName = "ui5dts"

// agent describes how one MCP client is detected and configured.
type agent struct {
	name string
	// binary, when set, registers the server with "<binary> mcp add".
	binary string
	// markers are project directories whose presence reveals the agent.
	markers []string
	// config returns the JSON config file of a file-configured agent.
	config     func(root string) string
	serversKey string
	extra      map[string]string
}

var agents = []agent{
	{name: "Claude Code", binary: "claude", config: func(root string) string { return filepath.Join(root, ".mcp.json") }, serversKey: "mcpServers"},
	{
		name: "VS Code", markers: []string{".vscode"},
		config:     func(root string) string { return filepath.Join(root, ".vscode", "mcp.json") },
		serversKey: "servers", extra: map[string]string{"type": "stdio"},
	},
	{
		name: "Cursor", markers: []string{".cursor"},
		config:     func(root string) string { return filepath.Join(root, ".cursor", "mcp.json") },
		serversKey: "mcpServers",
	},
	{name: "Claude Desktop", config: func(string) string { return claudeDesktopConfig() }, serversKey: "mcpServers"},
}

func claudeDesktopConfig() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	}
	return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
}

// detected is an agent found for the project at root.
type detected struct {
	agent
	path       string
	configured bool
}

// detector finds agents. lookPath is replaced in tests.
type detector struct {
	root     string
	lookPath func(string) (string, error)
}

func (d detector) detect() []detected {
	var found []detected
	for _, ag := range agents {
		path := ag.config(d.root)
		switch {
		case ag.binary != "":
			if _, err := d.lookPath(ag.binary); err != nil {
				continue
			}
		case len(ag.markers) > 0:
			if !anyExists(d.root, ag.markers) {
				continue
			}
		default:
			if !fileExists(filepath.Dir(path)) {
				continue
			}
		}
		found = append(found, detected{agent: ag, path: path, configured: hasServerEntry(path, ag.serversKey)})
	}
	return found
}

func anyExists(root string, names []string) bool {
	for _, name := range names {
		if fileExists(filepath.Join(root, name)) {
			return true
		}
	}
	return false
}

func readJSONObject(data []byte) (map[string]any, error) {
	obj := make(map[string]any)
	if len(data) == 0 {
		return obj, nil
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	return obj, nil
}

func hasServerEntry(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	obj, err := readJSONObject(data)
	if err != nil {
		return false
	}
	servers, _ := obj[serversKey].(map[string]any)
	_, ok := servers[serverName]
	return ok
}

// mergeServerEntry adds the server under serversKey of the JSON document
// existing. It returns nil when the entry is already present.
func mergeServerEntry(existing []byte, serversKey string, args []string, extra map[string]string) ([]byte, error) {
	obj, err := readJSONObject(existing)
	if err != nil {
		return nil, err
	}
	servers, ok := obj[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	cmdArgs := make([]any, len(args))
	for i, a := range args {
		cmdArgs[i] = a
	}
	entry := map[string]any{"command": serverName, "args": cmdArgs}
	for k, v := range extra {
		entry[k] = v
	}
	servers[serverName] = entry
	obj[serversKey] = servers

	out, err := json.Marshal(obj, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func writeServerEntry(d detected, args []string) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	existing, err := os.ReadFile(d.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "reading %s", d.path)
	}
	merged, err := mergeServerEntry(existing, d.serversKey, args, d.extra)
	if err != nil || merged == nil {
		return err
	}
	return os.WriteFile(d.path, merged, 0o644)
}

func registerWithCLI(d detected, args []string, w io.Writer) error {
	cmdArgs := append([]string{"mcp", "add", "--scope", "project", serverName, "--", serverName}, args...)
	c := exec.Command(d.binary, cmdArgs...)
	c.Stdout = w
	c.Stderr = w
	return c.Run()
}

// confirm asks question and reads y/n. Empty input and EOF mean yes.
func confirm(r *bufio.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s [Y/n] ", question)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// serveArgs are the arguments agents start the server with. A config path
// other than the default is passed along as an absolute path.
func serveArgs(configPath string) []string {
	args := []string{"serve"}
	if configPath != "" && configPath != defaultConfigPath {
		if abs, err := filepath.Abs(configPath); err == nil {
			configPath = abs
		}
		args = append(args, "--config", configPath)
	}
	return args
}

func newSetupCmd(a *app) *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with the AI agents found for this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := detector{root: ".", lookPath: exec.LookPath}
			return runSetup(cmd.InOrStdin(), out(cmd), d.detect(), serveArgs(a.opts.configPath), auto)
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "configure every agent without asking")
	return cmd
}

func runSetup(in io.Reader, w io.Writer, found []detected, args []string, auto bool) error {
	if len(found) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return nil
	}
	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range found {
		note := ""
		if d.configured {
			note = " (already configured)"
		}
		fmt.Fprintf(w, "  * %s%s\n", d.name, note)
	}

	r := bufio.NewReader(in)
	var failed error
	for _, d := range found {
		if d.configured {
			continue
		}
		if !auto && !confirm(r, w, fmt.Sprintf("Add %s to %s?", serverName, d.name)) {
			continue
		}
		var err error
		if d.binary != "" {
			err = registerWithCLI(d, args, w)
		} else {
			err = writeServerEntry(d, args)
		}
		if err != nil {
			fmt.Fprintf(w, "  ! %s: %v\n", d.name, err)
			failed = errors.CombineErrors(failed, errors.Wrap(err, d.name))
			continue
		}
		fmt.Fprintf(w, "  + %s configured\n", d.name)
	}
	return failed
}
