package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/KostasZigo/commitgraph/internal/graph"
	"github.com/KostasZigo/commitgraph/internal/history"
	"github.com/KostasZigo/commitgraph/utils"
)

func newLogCmd() *cobra.Command {
	opts := &options{}
	var full bool

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "List the commits of a branch oldest first with their files",
		Long: `Print the first-parent history of a branch, oldest commit first, one line per
commit with the entries of its root tree. Uses the same walk as the graph command.`,
		SilenceUsage: true,
		Args:         maximumArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd, opts, full)
		},
	}

	opts.bindRepoFlags(logCmd.Flags())
	logCmd.Flags().BoolVar(&full, "full-hash", false, "Print full 40-character hashes")

	return logCmd
}

// runLog prints each commit of the configured branch with its file list.
func runLog(cmd *cobra.Command, opts *options, full bool) error {
	cfg, err := opts.resolve(cmd.Flags())
	if err != nil {
		return err
	}

	repo, store, err := openStore(cfg)
	if err != nil {
		return err
	}

	commits, err := history.NewWalker(store).WalkBranch(repo, cfg.Branch)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		return errNoCommits
	}

	assembler, err := graph.NewAssembler(store, graph.Options{Exclude: cfg.Exclude})
	if err != nil {
		return err
	}

	hashColor := color.New(color.FgYellow)
	out := cmd.OutOrStdout()
	for _, hash := range commits {
		files, err := assembler.ChangedFiles(hash)
		if err != nil {
			return err
		}

		display := utils.ShortHash(hash)
		if full {
			display = hash
		}
		hashColor.Fprint(out, display)
		fmt.Fprintf(out, " %s\n", strings.Join(files, ", "))
	}
	return nil
}
