package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/internal/repository"
	"github.com/KostasZigo/commitgraph/utils"
)

var verbose bool

// rootCmd defines the base command for the commitgraph CLI.
// The graph and log subcommands register under this root.
var rootCmd = &cobra.Command{
	Use:   "commitgraph",
	Short: "Visualize the commit history of a git repository",
	Long: `Commitgraph reads a git repository's object store directly, walks the history
of a branch oldest-first and renders one node per commit, labeled with the files
of its root tree, through Graphviz.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(newGraphCmd(), newLogCmd())
}

// Execute runs the root command and handles exit codes.
// Called from main.go to start CLI execution.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// configureLogging routes slog output to stderr, at debug level when verbose.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// maximumArgs validates command receives at most n positional arguments.
// Returns error with usage help if argument limit exceeded.
func maximumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			cmd.SilenceUsage = false
			return fmt.Errorf("%s command accepts at most %d arg(s), received %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}

// findRepoRoot locates the .git directory by walking up from the working directory.
func findRepoRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := start; ; {
		gitPath := filepath.Join(dir, constants.GitDir)
		if info, err := os.Stat(gitPath); err == nil && info.IsDir() {
			return dir, nil
		}

		// Dir returns all but the last element of path
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s not found in %s or any parent",
				repository.ErrNotARepository, constants.GitDir, utils.BuildDirPath(start))
		}
		dir = parent
	}
}
