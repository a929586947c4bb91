package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/testutils"
	"github.com/agiledragon/gomonkey/v2"
)

// openRepository opens path and fails the test on error.
func openRepository(t *testing.T, path string) *Repository {
	t.Helper()

	repo, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return repo
}

// TestOpen verifies a repository skeleton opens.
func TestOpen(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithInit(t)

	repo := openRepository(t, repoPath)
	if repo.GitDir != filepath.Join(repoPath, constants.GitDir) {
		t.Errorf("Unexpected git dir %s", repo.GitDir)
	}
}

// TestOpen_MissingPath verifies error for a path that does not exist.
func TestOpen_MissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrRepositoryNotFound) {
		t.Fatalf("Expected %v, got %v", ErrRepositoryNotFound, err)
	}
}

// TestOpen_NotARepository verifies error for a directory without .git.
func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNotARepository) {
		t.Fatalf("Expected %v, got %v", ErrNotARepository, err)
	}

	file := testutils.CreateTestFile(t, t.TempDir(), "file.txt", []byte("x"))
	_, err = Open(file)
	if !errors.Is(err, ErrNotARepository) {
		t.Fatalf("Expected %v for a file path, got %v", ErrNotARepository, err)
	}
}

// TestCurrentBranch verifies symbolic and detached HEAD handling.
func TestCurrentBranch(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	repo := openRepository(t, builder.Root)

	branch, err := repo.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != constants.DefaultBranch {
		t.Errorf("Expected branch %s, got %s", constants.DefaultBranch, branch)
	}

	builder.SetHead("ref: refs/heads/feature/login")
	branch, err = repo.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "feature/login" {
		t.Errorf("Expected branch feature/login, got %s", branch)
	}

	builder.SetHead(testutils.RandomHash())
	branch, err = repo.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch failed: %v", err)
	}
	if branch != "" {
		t.Errorf("Expected detached HEAD to report no branch, got %s", branch)
	}
}

// TestResolveBranch verifies the ref file content is trimmed.
func TestResolveBranch(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	hashes := builder.LinearHistory(1)
	repo := openRepository(t, builder.Root)

	hash, err := repo.ResolveBranch(constants.DefaultBranch)
	if err != nil {
		t.Fatalf("ResolveBranch failed: %v", err)
	}
	if hash != hashes[0] {
		t.Errorf("Expected %s, got %s", hashes[0], hash)
	}
}

// TestResolveBranch_Missing verifies ErrBranchNotFound for a missing ref file.
func TestResolveBranch_Missing(t *testing.T) {
	repo := openRepository(t, testutils.SetupTestRepoWithInit(t))

	_, err := repo.ResolveBranch("main")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("Expected %v, got %v", ErrBranchNotFound, err)
	}
}

// TestResolveBranch_Empty verifies an empty ref resolves to no commit.
func TestResolveBranch_Empty(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	builder.SetBranch("main", "")
	repo := openRepository(t, builder.Root)

	hash, err := repo.ResolveBranch("main")
	if err != nil {
		t.Fatalf("ResolveBranch failed: %v", err)
	}
	if hash != "" {
		t.Errorf("Expected empty hash, got %s", hash)
	}
}

// TestResolveBranch_Invalid verifies a ref holding garbage is rejected.
func TestResolveBranch_Invalid(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	builder.SetBranch("main", "not-a-hash")
	repo := openRepository(t, builder.Root)

	_, err := repo.ResolveBranch("main")
	if !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("Expected %v, got %v", ErrInvalidRef, err)
	}
}

// TestResolveBranch_PackedRefs verifies fallback to packed-refs.
func TestResolveBranch_PackedRefs(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	packedHash := testutils.RandomHash()
	tagHash := testutils.RandomHash()

	content := "# pack-refs with: peeled fully-peeled sorted\n" +
		tagHash + " refs/tags/v1.0\n" +
		"^" + testutils.RandomHash() + "\n" +
		packedHash + " refs/heads/release\n"
	testutils.CreateTestFile(t, filepath.Join(builder.Root, constants.GitDir), constants.PackedRefs, []byte(content))

	repo := openRepository(t, builder.Root)

	hash, err := repo.ResolveBranch("release")
	if err != nil {
		t.Fatalf("ResolveBranch failed: %v", err)
	}
	if hash != packedHash {
		t.Errorf("Expected %s, got %s", packedHash, hash)
	}

	_, err = repo.ResolveBranch("v1.0")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Expected tags not to resolve as branches, got %v", err)
	}
}

// TestResolveHead verifies override, symbolic and detached resolution.
func TestResolveHead(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	hashes := builder.LinearHistory(2)
	builder.SetBranch("other", hashes[0])
	repo := openRepository(t, builder.Root)

	hash, err := repo.ResolveHead("")
	if err != nil {
		t.Fatalf("ResolveHead failed: %v", err)
	}
	if hash != hashes[1] {
		t.Errorf("Expected current branch head %s, got %s", hashes[1], hash)
	}

	hash, err = repo.ResolveHead("other")
	if err != nil {
		t.Fatalf("ResolveHead(other) failed: %v", err)
	}
	if hash != hashes[0] {
		t.Errorf("Expected override head %s, got %s", hashes[0], hash)
	}

	builder.SetHead(hashes[0])
	hash, err = repo.ResolveHead("")
	if err != nil {
		t.Fatalf("ResolveHead detached failed: %v", err)
	}
	if hash != hashes[0] {
		t.Errorf("Expected detached head %s, got %s", hashes[0], hash)
	}
}

// TestResolveHead_MissingHead verifies ErrBranchNotFound without a HEAD file.
func TestResolveHead_MissingHead(t *testing.T) {
	repoPath := testutils.SetupTestRepoWithGitDir(t)
	repo := openRepository(t, repoPath)

	_, err := repo.ResolveHead("")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("Expected %v, got %v", ErrBranchNotFound, err)
	}
}

// TestResolveBranch_ReadFailure verifies read errors are not reported as a missing branch.
func TestResolveBranch_ReadFailure(t *testing.T) {
	builder := testutils.NewRepoBuilder(t)
	builder.LinearHistory(1)
	repo := openRepository(t, builder.Root)

	mockError := errors.New("mocked read failure")
	patches := gomonkey.ApplyFunc(os.ReadFile, func(_ string) ([]byte, error) {
		return nil, mockError
	})
	defer patches.Reset()

	_, err := repo.ResolveBranch("main")
	if !errors.Is(err, mockError) {
		t.Errorf("Expected error to wrap the mock error, but got: %v", err)
	}
	if errors.Is(err, ErrBranchNotFound) {
		t.Errorf("Read failure must not be reported as %v", ErrBranchNotFound)
	}
}
