package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/KostasZigo/commitgraph/internal/objects"
)

// Node is one commit in the graph.
type Node struct {
	Hash  string
	Files []string
	Label string
}

// Edge links a commit to its chronological successor.
type Edge struct {
	From string
	To   string
}

// Graph is the assembled commit graph, nodes oldest first.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// IsEmpty reports whether the graph has no commits.
func (g *Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Options configures an Assembler.
type Options struct {
	// Workers bounds concurrent file-list computation. Zero uses GOMAXPROCS.
	Workers int

	// Exclude holds doublestar patterns; matching entry names are left out of labels.
	Exclude []string
}

// Assembler turns an ordered commit list into a Graph.
type Assembler struct {
	source  objects.Source
	workers int
	exclude []string
}

func NewAssembler(source objects.Source, opts Options) (*Assembler, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Assembler{
		source:  source,
		workers: workers,
		exclude: opts.Exclude,
	}, nil
}

// Assemble builds one node per commit and one edge per adjacent pair.
// File lists are computed concurrently; node order always follows commits.
func (a *Assembler) Assemble(ctx context.Context, commits []string) (*Graph, error) {
	files := make([][]string, len(commits))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(a.workers)

	for i, hash := range commits {
		i, hash := i, hash
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			list, err := a.ChangedFiles(hash)
			if err != nil {
				return err
			}
			files[i] = list
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	graph := &Graph{
		Nodes: make([]Node, 0, len(commits)),
		Edges: make([]Edge, 0, max(len(commits)-1, 0)),
	}

	for i, hash := range commits {
		graph.Nodes = append(graph.Nodes, Node{
			Hash:  hash,
			Files: files[i],
			Label: Label(hash, files[i]),
		})
		if i > 0 {
			graph.Edges = append(graph.Edges, Edge{From: commits[i-1], To: hash})
		}
	}

	return graph, nil
}

// ChangedFiles lists the top-level entry names of the commit's root tree.
// A commit or tree that cannot be decoded yields an empty list; missing or
// unreadable objects are returned as errors.
func (a *Assembler) ChangedFiles(hash string) ([]string, error) {
	commit, err := objects.ReadCommit(a.source, hash)
	if errors.Is(err, objects.ErrMalformedCommit) {
		slog.Warn("Malformed commit, listing no files",
			"commit", hash,
			"error", err)
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries, err := objects.ReadTree(a.source, commit.TreeHash)
	if errors.Is(err, objects.ErrMalformedTree) {
		slog.Warn("Malformed tree for commit, listing no files",
			"commit", hash,
			"tree", commit.TreeHash,
			"error", err)
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, name := range objects.EntryNames(entries) {
		if a.excluded(name) {
			slog.Debug("Skipping excluded entry", "commit", hash, "name", name)
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (a *Assembler) excluded(name string) bool {
	for _, pattern := range a.exclude {
		// patterns are validated in NewAssembler
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Label renders the human-readable node label of a commit.
func Label(hash string, files []string) string {
	return fmt.Sprintf("Commit: %s\nFiles: %s", hash, strings.Join(files, ", "))
}
