package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"

	"github.com/CWBudde/go-som-lsp/internal/config"
	"github.com/CWBudde/go-som-lsp/internal/lsp"
	"github.com/CWBudde/go-som-lsp/internal/server"
)

var (
	tcpMode    bool
	tcpPort    int
	logLevel   string
	logFile    string
	configPath string
	metrics    bool
)

var log = commonlog.GetLogger("som-lsp")

var rootCmd = &cobra.Command{
	Use:   "som-lsp",
	Short: "Language server for SOM and DWScript",
	Long: `som-lsp serves the Language Server Protocol for SOM (.som) and
DWScript (.dws, .pas) sources over stdio, or over TCP for debugging.`,
	Version:       lsp.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	rootCmd.SetVersionTemplate("som-lsp version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, notice, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: som-lsp.yaml in the working directory)")

	rootCmd.Flags().BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	rootCmd.Flags().IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with --tcp)")
	rootCmd.Flags().BoolVar(&metrics, "metrics", false, "Periodically write parse metrics to the log file or stderr")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := setupLogging(); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if metrics {
		shutdown, err := setupMetrics(logFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Errorf("metrics shutdown: %s", err)
			}
		}()
	}

	lsp.SetServer(server.NewWithConfig(cfg))
	glspServer := glspserver.NewServer(lsp.Handler(), lsp.Name, logLevel == "debug")

	if tcpMode {
		addr := fmt.Sprintf("127.0.0.1:%d", tcpPort)
		log.Noticef("starting TCP server on %s", addr)
		if err := glspServer.RunTCP(addr); err != nil {
			return fmt.Errorf("TCP server: %w", err)
		}
		return nil
	}

	log.Notice("starting stdio server")
	if err := glspServer.RunStdio(); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	return nil
}

var verbosities = map[string]int{
	"debug":  2,
	"info":   1,
	"notice": 0,
	"warn":   -1,
	"error":  -2,
}

// setupLogging configures commonlog from the --log-level and --log-file flags.
func setupLogging() error {
	verbosity, ok := verbosities[logLevel]
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	var path *string
	if logFile != "" {
		path = &logFile
	} else if verbosity > 0 {
		fmt.Fprintf(os.Stderr, "som-lsp %s logging to stderr\n", lsp.Version)
	}

	commonlog.Configure(verbosity, path)

	return nil
}
