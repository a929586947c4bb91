package history

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KostasZigo/commitgraph/internal/objects"
	"github.com/KostasZigo/commitgraph/internal/repository"
)

// ErrCycle is returned when a parent chain revisits a commit.
var ErrCycle = errors.New("commit history contains a cycle")

// Walker follows first-parent links through an object source.
type Walker struct {
	source objects.Source
}

func NewWalker(source objects.Source) *Walker {
	return &Walker{source: source}
}

// Walk returns the first-parent lineage of start, oldest commit first.
// Only parent links are decoded: a commit without a usable tree line is still
// walked. Missing or corrupt objects discard the commits collected so far.
func (w *Walker) Walk(start string) ([]string, error) {
	var commits []string
	seen := make(map[string]struct{})

	for current := start; current != ""; {
		if _, ok := seen[current]; ok {
			return nil, fmt.Errorf("%w: %s", ErrCycle, current)
		}
		seen[current] = struct{}{}
		commits = append(commits, current)

		commit, err := objects.ReadParents(w.source, current)
		if err != nil {
			return nil, fmt.Errorf("failed to walk history at %s: %w", current, err)
		}
		if commit.IsMerge() {
			slog.Debug("Following first parent of merge commit",
				"hash", current,
				"ignoredParents", len(commit.ExtraParents))
		}

		current = commit.ParentHash
	}

	slices.Reverse(commits)
	return commits, nil
}

// WalkBranch resolves branch (or HEAD when empty) in repo and walks from it.
// A branch without commits yields an empty history.
func (w *Walker) WalkBranch(repo *repository.Repository, branch string) ([]string, error) {
	start, err := repo.ResolveHead(branch)
	if err != nil {
		return nil, err
	}

	commits, err := w.Walk(start)
	if err != nil {
		return nil, err
	}

	slog.Debug("Walked history", "start", start, "commits", len(commits))
	return commits, nil
}
