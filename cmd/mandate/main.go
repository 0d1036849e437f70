// Mandate: Constitutional Compliance MCP Server
//
// An MCP server that integrates with any AI coding tool
// (Claude Code, OpenCode, Gemini CLI, Codex, Cursor, VS Code Copilot)
// to validate AI-generated artifacts against engineering mandates
// before they reach the user.
//
// Usage:
//
//	mandate serve [rulebook-file]   # Start MCP server (stdio transport)
//	mandate version                 # Print the version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	mandateserver "github.com/mvca-labs/mandate/internal/server"
	"github.com/mvca-labs/mandate/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		rulebookPath := ""
		if len(os.Args) > 2 {
			rulebookPath = os.Args[2]
		}
		if err := run(rulebookPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("mandate v%s\n", mandateserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(rulebookPath string) error {
	s, cleanup, err := mandateserver.New(rulebookPath)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check writes to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort; network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(mandateserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Mandate v%s — Constitutional Compliance MCP Server

Usage:
  mandate serve [rulebook-file]   Start the MCP server (stdio transport)
  mandate version                 Print the version

The optional rulebook file (JSON or YAML) replaces the builtin mandates
and classification rules.

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "mandate": {
        "command": "mandate",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/mvca-labs/mandate
`, mandateserver.Version)
}
