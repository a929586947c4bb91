package testutils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/KostasZigo/commitgraph/internal/constants"
)

// RandomString generates a random hex string of n bytes
func RandomString(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// RandomHash generates a random 40-character SHA-1 hash
func RandomHash() string {
	return RandomString(constants.HashByteLength)
}

// SetupTestRepoWithGitDir creates a temporary directory with only the .git/objects structure.
func SetupTestRepoWithGitDir(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	objectsDir := filepath.Join(repoPath, constants.GitDir, constants.Objects)

	if err := os.MkdirAll(objectsDir, constants.DirPerms); err != nil {
		t.Fatalf("Failed to create %s/%s: %v", constants.GitDir, constants.Objects, err)
	}

	return repoPath
}

// SetupTestRepoWithInit creates a git repository skeleton:
// objects/, refs/heads/ and a HEAD file pointing at the default branch.
func SetupTestRepoWithInit(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	gitDir := filepath.Join(repoPath, constants.GitDir)

	dirs := []string{
		filepath.Join(gitDir, constants.Objects),
		filepath.Join(gitDir, constants.Refs, constants.Heads),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.DirPerms); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	headPath := filepath.Join(gitDir, constants.Head)
	headContent := []byte(constants.SymbolicRefPrefix + constants.BranchRefPrefix + constants.DefaultBranch + "\n")
	if err := os.WriteFile(headPath, headContent, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create %s file: %v", constants.Head, err)
	}

	return repoPath
}

// CreateTestFile creates a file with given content in the specified directory.
// Returns the full path to the created file.
func CreateTestFile(t *testing.T, dir, filename string, content []byte) string {
	t.Helper()

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, content, constants.FilePerms); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filename, err)
	}

	return filePath
}

// AssertFileExists checks that a file exists at the given path.
// Fails the test if the file doesn't exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected file to exist at %s", path)
	}
}

// AssertFileNotExists checks that a file does NOT exist at the given path.
// Fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to NOT exist at %s", path)
	}
}

// AssertHashesEqual compares two hash sequences element by element.
func AssertHashesEqual(t *testing.T, actual, expected []string) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("Expected %d hashes, got %d: %v", len(expected), len(actual), actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("Hash %d mismatch: expected [%s], got [%s]", i, expected[i], actual[i])
		}
	}
}
