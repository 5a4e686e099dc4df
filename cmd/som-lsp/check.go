package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-som-lsp/internal/adapter"
	"github.com/CWBudde/go-som-lsp/internal/config"
	"github.com/CWBudde/go-som-lsp/internal/server"
	"github.com/CWBudde/go-som-lsp/internal/workspace"
)

// errProblems is returned when a checked file has an error diagnostic.
var errProblems = errors.New("problems found")

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Report the diagnostics of source files",
	Long: `Parse the given files the way the language server does and print their
diagnostics. The exit status is non-zero when any file has an error.

Examples:
  som-lsp check Hello.som
  som-lsp check src/*.som main.dws`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	router := server.NewWithConfig(cfg).Router()

	failed, err := check(cmd.Context(), router, args, cfg.MaxProblems, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if failed {
		return errProblems
	}

	return nil
}

// check prints the diagnostics of every file to w and reports whether any of
// them is an error.
func check(ctx context.Context, router *adapter.Router, paths []string, maxProblems int, w io.Writer) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	failed := false

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return failed, fmt.Errorf("resolve %s: %w", path, err)
		}

		uri := workspace.PathToURI(abs)
		if !router.Handles(uri) {
			fmt.Fprintf(w, "%s: skipped, unknown language\n", path)
			continue
		}

		content, err := os.ReadFile(abs)
		if err != nil {
			return failed, fmt.Errorf("read %s: %w", path, err)
		}

		diags, err := router.Parse(ctx, string(content), uri)
		if err != nil {
			return failed, err
		}

		for i, d := range diags {
			if maxProblems > 0 && i == maxProblems {
				fmt.Fprintf(w, "%s: %d more problem(s)\n", path, len(diags)-i)
				break
			}

			severity := severityName(d.Severity)
			if severity == "error" {
				failed = true
			}

			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
				path, d.Range.Start.Line+1, d.Range.Start.Character+1, severity, d.Message)
		}
	}

	return failed, nil
}

func severityName(severity *protocol.DiagnosticSeverity) string {
	if severity == nil {
		return "error"
	}

	switch *severity {
	case protocol.DiagnosticSeverityWarning:
		return "warning"
	case protocol.DiagnosticSeverityInformation:
		return "info"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	default:
		return "error"
	}
}
