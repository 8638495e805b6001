// Package register adds this server to the MCP configuration of a project or user.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lexandro/iconview-mcp/fileutil"
)

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// ErrUsage is returned when the register arguments are malformed.
var ErrUsage = errors.New("invalid register arguments")

// Run executes the register subcommand, adding serverName to the MCP client
// configuration of the chosen scope.
// args is os.Args[2:] (everything after "register"); the confirmation line
// goes to out and usage help to errOut.
func Run(serverName string, args []string, out io.Writer, errOut io.Writer) error {
	if len(args) == 0 {
		printUsage(errOut)
		return ErrUsage
	}

	scope := args[0]
	if scope != "project" && scope != "user" {
		printUsage(errOut)
		return fmt.Errorf("%w: unknown scope %q (must be \"project\" or \"user\")", ErrUsage, scope)
	}

	var directory string
	var serverArgs []string

	if scope == "project" {
		directory, serverArgs = parseProjectArgs(args[1:])
	} else {
		serverArgs = parseUserArgs(args[1:])
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return fmt.Errorf("detecting binary path: %w", err)
	}

	configPath, err := resolveConfigPath(scope, directory)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	if scope == "project" {
		serverArgs = pinRoot(serverArgs, filepath.Dir(configPath))
	}
	entry := buildEntry(binaryPath, serverArgs)

	if err := writeConfig(configPath, serverName, entry); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(out, "Registered %q in %s\n", serverName, configPath)
	return nil
}

func printUsage(w io.Writer) {
	binaryName := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s register project [directory]  # → <directory>/.mcp.json, icons from <directory> (default: .)\n", binaryName)
	fmt.Fprintf(w, "  %s register user                 # → ~/.claude.json\n", binaryName)
	fmt.Fprintf(w, "  %s register project . -- -http 127.0.0.1:8765  # forward args to server\n", binaryName)
	fmt.Fprintf(w, "  %s register user -- -root ~/icons            # forward args to server\n", binaryName)
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func parseProjectArgs(args []string) (directory string, serverArgs []string) {
	directory = "."
	for i, arg := range args {
		if arg == "--" {
			serverArgs = args[i+1:]
			return directory, serverArgs
		}
		// First non-separator arg is the directory
		if i == 0 {
			directory = arg
		}
	}
	return directory, nil
}

// pinRoot makes a project registration import the project directory even when
// the MCP client starts the server elsewhere. An explicit -root is kept.
func pinRoot(serverArgs []string, projectDir string) []string {
	for _, arg := range serverArgs {
		name := strings.TrimLeft(arg, "-")
		if name == "root" || strings.HasPrefix(name, "root=") {
			return serverArgs
		}
	}
	return append([]string{"-root", projectDir}, serverArgs...)
}

func parseUserArgs(args []string) (serverArgs []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == "project" {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	// user scope
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := []string{"/C", binaryPath}
		args = append(args, serverArgs...)
		return mcpServerEntry{
			Command: "cmd",
			Args:    args,
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    serverArgs,
	}
}

func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	// Read existing config or start fresh
	config := map[string]any{
		"mcpServers": map[string]any{},
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		// File exists, parse it
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	// Ensure mcpServers key exists
	servers, ok := config["mcpServers"]
	if !ok {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}

	serversMap, ok := servers.(map[string]any)
	if !ok {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}

	// Add/update the server entry
	serversMap[serverName] = entry

	// Write back
	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	return fileutil.WriteAtomic(configPath, output, ".mcp-*.tmp")
}
