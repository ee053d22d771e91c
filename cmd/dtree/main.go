package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"

	apppkg "github.com/kk-code-lab/dtree/internal/app"
	"github.com/kk-code-lab/dtree/internal/config"
	"github.com/kk-code-lab/dtree/internal/shellsetup"
)

func printHelp() {
	fmt.Print(`dtree - Terminal directory tree browser

USAGE:
    dtree [OPTIONS] [PATH]

OPTIONS:
    -h, --help            Show this help message and exit
    -s, --setup [SHELL]   Output shell integration snippet (optionally force SHELL)
`)
}

func main() {
	// Set UTF-8 as fallback encoding for maximum compatibility
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)

	startPath := ""
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printHelp()
			os.Exit(0)
		case arg == "-s" || arg == "--setup":
			shellOverride := ""
			if i+1 < len(args) {
				shellOverride = args[i+1]
			}
			shellsetup.PrintSetup(shellOverride)
			os.Exit(0)
		case strings.HasPrefix(arg, "--setup="):
			shellsetup.PrintSetup(strings.TrimPrefix(arg, "--setup="))
			os.Exit(0)
		default:
			startPath = arg
		}
	}

	if startPath == "" {
		cwd, err := apppkg.GetCwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		startPath = cwd
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.Default()
	}

	app, err := apppkg.NewApplication(startPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing application: %v\n", err)
		os.Exit(1)
	}

	app.Run()
	resultPath := app.ResultPath()
	_ = app.Close()

	// Write the chosen directory to a temp file for the shell wrapper.
	// The PID keeps the filename unique across concurrent instances.
	if resultPath != "" {
		resultFile := filepath.Join(os.TempDir(), fmt.Sprintf("dtree_result_%d.txt", os.Getpid()))
		if err := os.WriteFile(resultFile, []byte(resultPath), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write result file: %v\n", err)
		}
	}
}
