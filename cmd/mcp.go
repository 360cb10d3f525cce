package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/tubehack/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing the scraping and generation stages",
	Long: `Run a Model Context Protocol (MCP) server that exposes tubehack as tools.

Scraping tools:
- list_videos: videos of a channel page or a search
- get_video_metadata: title and thumbnail of a video
- get_transcript: captions, with optional paid audio transcription

Generation tools, sharing one in-memory session:
- analyze_videos, extract_patterns, generate_ideas, generate_ideas_from_theme, generate_script
- get_session, stop_analysis, reset_session

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)

With mcp_log = true in config.toml, tool calls are logged to the cache directory.`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  tubehack mcp

  # Run MCP server with HTTP transport on port 8080
  tubehack mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  tubehack mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		config.Verbose = false
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("unsupported transport: %s (use stdio or http)", transport)
		}

		if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
			config.Provider = provider
		}
		if err := internal.ValidateProvider(config.Provider); err != nil {
			return err
		}

		internal.InitMCPLogging(config)
		app := internal.NewApp(config, internal.WithUIManager(internal.NewQuietUIManager()))
		mcpServer := internal.NewMCPServer(app, version)

		if transport == "http" {
			fmt.Fprintf(os.Stderr, "Starting tubehack MCP server on HTTP port %d...\n", port)
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Register the tubehack MCP server with Claude Desktop",
	Long: `Add tubehack to claude_desktop_config.json so Claude Desktop starts it as an
MCP server. Other configured servers are kept. The current XDG directories and
provider API keys are passed along, since Claude Desktop does not inherit the
shell environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating tubehack binary: %w", err)
		}
		if execPath, err = filepath.EvalSymlinks(execPath); err != nil {
			return fmt.Errorf("resolving tubehack binary: %w", err)
		}

		desktopConfig, err := claudeDesktopConfigPath(runtime.GOOS)
		if err != nil {
			return err
		}
		if err := registerMCPServer(desktopConfig, internal.AppName, defaultMCPServerEntry(execPath)); err != nil {
			return err
		}

		fmt.Printf("Registered %s in %s\nRestart Claude Desktop to load it\n", internal.AppName, desktopConfig)
		return nil
	},
}

// mcpServerEntry is one server in claude_desktop_config.json
type mcpServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

func newMCPServerEntry(execPath string, getenv func(string) string) mcpServerEntry {
	env := map[string]string{
		"XDG_CONFIG_HOME": xdg.ConfigHome,
		"XDG_DATA_HOME":   xdg.DataHome,
		"XDG_CACHE_HOME":  xdg.CacheHome,
	}
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"} {
		if value := getenv(key); value != "" {
			env[key] = value
		}
	}
	return mcpServerEntry{Command: execPath, Args: []string{"mcp"}, Env: env}
}

func defaultMCPServerEntry(execPath string) mcpServerEntry {
	return newMCPServerEntry(execPath, os.Getenv)
}

// registerMCPServer sets mcpServers[name] in an existing Claude Desktop
// config, leaving every other key of the file untouched.
func registerMCPServer(path, name string, entry mcpServerEntry) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no Claude Desktop config at %s; start Claude Desktop once first", path)
	}
	if err != nil {
		return fmt.Errorf("reading Claude Desktop config: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing Claude Desktop config: %w", err)
		}
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := doc["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
	}
	if servers[name], err = json.Marshal(entry); err != nil {
		return err
	}
	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding Claude Desktop config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

func claudeDesktopConfigPath(goos string) (string, error) {
	const file = "claude_desktop_config.json"
	switch goos {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", file), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", errors.New("APPDATA is not set")
		}
		return filepath.Join(appData, "Claude", file), nil
	case "linux":
		return filepath.Join(xdg.ConfigHome, "Claude", file), nil
	default:
		return "", fmt.Errorf("no known Claude Desktop config location on %s", goos)
	}
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	mcpCmd.Flags().String("provider", "", "Generation provider (gemini or openai)")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
