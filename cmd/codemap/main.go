package main

import (
	"fmt"
	"os"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `codemap indexes source code into a normalized, language-agnostic model.

Usage:
  codemap index [flags]       index a project tree
  codemap zoom [flags]        drill into one declaration
  codemap serve-mcp [flags]   run the MCP server
  codemap version             print version and exit
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	switch args[0] {
	case "index":
		return runIndex(args[1:])
	case "zoom":
		return runZoom(args[1:])
	case "serve-mcp":
		return runServeMCP(args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "-h", "--help", "help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
