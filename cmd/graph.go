package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/KostasZigo/commitgraph/internal/config"
	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/internal/graph"
	"github.com/KostasZigo/commitgraph/internal/history"
)

var errNoCommits = errors.New("no commits found in the repository")

func newGraphCmd() *cobra.Command {
	opts := &options{}

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the commit history of a branch as a graph",
		Long: `Walk the branch from its first commit to its tip and render one node per commit,
labeled with the commit hash and the entries of its root tree, with an edge to
the next commit.

Examples:
  # Render the checked-out branch of the current repository to commit_graph.png
  commitgraph graph

  # Render branch develop of another repository as SVG
  commitgraph graph --repo-path ../service --branch develop --format svg -o out/history

  # Write the Graphviz source only
  commitgraph graph --format dot`,
		SilenceUsage: true,
		Args:         maximumArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts)
		},
	}

	flags := graphCmd.Flags()
	opts.bindRepoFlags(flags)
	flags.StringVarP(&opts.values.OutputPath, flagOutputPath, "o", config.DefaultOutputPath, "Output file path; the format extension is appended")
	flags.StringVar(&opts.values.GraphvizPath, flagGraphvizPath, "", "Directory containing the Graphviz dot executable (default: search PATH)")
	flags.StringVarP(&opts.values.Format, flagFormat, "f", constants.DefaultFormat, "Output format: png, svg, pdf, jpg or dot")
	flags.IntVarP(&opts.values.Workers, flagWorkers, "j", 0, "Commits decoded concurrently (default: number of CPUs)")

	return graphCmd
}

// runGraph walks the configured branch, assembles the graph and renders it.
func runGraph(cmd *cobra.Command, opts *options) error {
	cfg, err := opts.resolve(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.ValidateOutput(); err != nil {
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

	assembler, err := graph.NewAssembler(store, graph.Options{
		Workers: cfg.Workers,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return err
	}

	g, err := assembler.Assemble(cmd.Context(), commits)
	if err != nil {
		return fmt.Errorf("failed to assemble graph: %w", err)
	}

	path, err := graph.NewRenderer(cfg.Format, cfg.GraphvizPath).Render(cmd.Context(), g, cfg.OutputPath)
	if err != nil {
		return err
	}

	slog.Debug("Rendered commit graph",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"output", path)

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Dependency graph saved to %s\n", path)
	return nil
}
