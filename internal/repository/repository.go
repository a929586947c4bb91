package repository

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

var (
	ErrRepositoryNotFound = errors.New("repository path does not exist")
	ErrNotARepository     = errors.New("not a git repository")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrInvalidRef         = errors.New("invalid reference")
)

// Repository is a read-only handle on a working tree with a .git directory.
type Repository struct {
	Root   string
	GitDir string
}

// Open checks that path exists and holds a .git directory.
func Open(path string) (*Repository, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRepositoryNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check repository path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotARepository, path)
	}

	gitDir := filepath.Join(path, constants.GitDir)
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s has no %s directory", ErrNotARepository, path, constants.GitDir)
	}

	return &Repository{Root: path, GitDir: gitDir}, nil
}

// CurrentBranch reads HEAD and returns the branch name if HEAD is a symbolic
// ref ("ref: refs/heads/main" → "main"). A detached HEAD returns "".
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.readHead()
	if err != nil {
		return "", err
	}

	if ref, ok := strings.CutPrefix(head, constants.SymbolicRefPrefix); ok {
		return strings.TrimPrefix(strings.TrimSpace(ref), constants.BranchRefPrefix), nil
	}
	return "", nil
}

// ResolveBranch returns the commit hash stored in refs/heads/<name>.
// Branches packed by git gc are looked up in packed-refs.
// An existing but empty ref resolves to "" (a branch without commits).
func (r *Repository) ResolveBranch(name string) (string, error) {
	refPath := filepath.Join(r.GitDir, constants.Refs, constants.Heads, filepath.FromSlash(name))

	data, err := os.ReadFile(refPath)
	if errors.Is(err, fs.ErrNotExist) {
		hash, found, packedErr := r.lookupPackedRef(constants.BranchRefPrefix + name)
		if packedErr != nil {
			return "", packedErr
		}
		if !found {
			return "", fmt.Errorf("%w: '%s' in repository at %s", ErrBranchNotFound, name, r.Root)
		}
		slog.Debug("Resolved branch from packed refs", "branch", name, "hash", hash)
		return hash, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read branch %s: %w", name, err)
	}

	hash := strings.TrimSpace(string(data))
	if hash != "" && !utils.IsObjectHash(hash) {
		return "", fmt.Errorf("%w: branch %s holds %q", ErrInvalidRef, name, hash)
	}
	return hash, nil
}

// ResolveHead returns the starting commit for a walk: the given branch if set,
// otherwise the checked-out branch, otherwise the detached HEAD commit.
func (r *Repository) ResolveHead(branch string) (string, error) {
	if branch != "" {
		return r.ResolveBranch(branch)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return "", err
	}
	if current != "" {
		return r.ResolveBranch(current)
	}

	head, err := r.readHead()
	if err != nil {
		return "", err
	}
	if !utils.IsObjectHash(head) {
		return "", fmt.Errorf("%w: detached %s holds %q", ErrInvalidRef, constants.Head, head)
	}
	return head, nil
}

func (r *Repository) readHead() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, constants.Head))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s missing in repository at %s", ErrBranchNotFound, constants.Head, r.Root)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", constants.Head, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// lookupPackedRef scans packed-refs for "<hash> <ref>" lines.
func (r *Repository) lookupPackedRef(ref string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, constants.PackedRefs))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", constants.PackedRefs, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		// comments ("# pack-refs with: ...") and peeled tag lines ("^<hash>")
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		hash, name, ok := strings.Cut(line, " ")
		if ok && name == ref && utils.IsObjectHash(hash) {
			return hash, true, nil
		}
	}
	return "", false, scanner.Err()
}
