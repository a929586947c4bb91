package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/testutils"
	"github.com/KostasZigo/commitgraph/utils"
)

// sharedBinaryPath stores compiled commitgraph binary path built once in TestMain.
// All E2E tests execute this binary to verify end-to-end behavior.
var sharedBinaryPath string

// TestMain builds the commitgraph binary once into a temporary directory,
// runs the suite and removes the binary afterwards.
func TestMain(m *testing.M) {
	tempDir, err := os.MkdirTemp("", "commitgraph-e2e-*")
	if err != nil {
		panic("Failed to create temp directory: " + err.Error())
	}

	binaryName := "commitgraph"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	sharedBinaryPath = filepath.Join(tempDir, binaryName)

	buildCmd := exec.Command("go", "build", "-o", sharedBinaryPath, ".")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		os.RemoveAll(tempDir)
		panic("Failed to build binary: " + err.Error() + "\n" + string(output))
	}

	code := m.Run()
	os.RemoveAll(tempDir)
	os.Exit(code)
}

// runBinary executes the binary in dir with args and returns combined output.
func runBinary(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	cmd := exec.Command(sharedBinaryPath, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// TestE2E_GraphCommand verifies the A/B scenario produces two nodes and one edge.
func TestE2E_GraphCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	builder := testutils.NewRepoBuilder(t)
	a := builder.CommitFiles("", "Initial commit", map[string]string{"file1.txt": "Content of file1"})
	b := builder.CommitFiles(a, "Second commit", map[string]string{
		"file1.txt": "Content of file1",
		"file2.txt": "Content of file2",
	})
	builder.SetBranch(constants.DefaultBranch, b)

	output := filepath.Join(t.TempDir(), "commit_graph")
	stdout, err := runBinary(t, t.TempDir(), constants.GraphCmdName,
		"--repo-path", builder.Root, "--output-path", output, "--format", constants.DOTFormat)
	if err != nil {
		t.Fatalf("Binary execution failed: %v\nOutput: %s", err, stdout)
	}

	if !strings.Contains(stdout, "Dependency graph saved to "+output+".dot") {
		t.Errorf("Unexpected output: %s", stdout)
	}

	content, err := os.ReadFile(output + ".dot")
	if err != nil {
		t.Fatalf("Failed to read graph: %v", err)
	}
	source := string(content)

	for _, expected := range []string{"Commit: " + a, "Commit: " + b, "file1.txt, file2.txt"} {
		if !strings.Contains(source, expected) {
			t.Errorf("Graph source missing %q:\n%s", expected, source)
		}
	}
	if edges := strings.Count(source, "->"); edges != 1 {
		t.Errorf("Expected 1 edge, got %d", edges)
	}
}

// TestE2E_GraphCommand_Failures verifies the process exits non-zero on bad input.
func TestE2E_GraphCommand_Failures(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	empty := testutils.NewRepoBuilder(t)
	empty.SetBranch(constants.DefaultBranch, "")

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"missing repository", []string{"--repo-path", filepath.Join(t.TempDir(), "missing")}, "repository path does not exist"},
		{"missing branch", []string{"--repo-path", empty.Root, "--branch", "nope"}, "branch not found"},
		{"no commits", []string{"--repo-path", empty.Root}, "no commits found in the repository"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{constants.GraphCmdName, "--format", constants.DOTFormat,
				"--output-path", filepath.Join(t.TempDir(), "g")}, tt.args...)

			output, err := runBinary(t, t.TempDir(), args...)
			if err == nil {
				t.Fatalf("Expected non-zero exit, output: %s", output)
			}
			if !strings.Contains(output, "Error: ") || !strings.Contains(output, tt.expected) {
				t.Errorf("Expected error containing %q, got: %s", tt.expected, output)
			}
		})
	}
}

// TestE2E_LogCommand verifies history is printed oldest first.
func TestE2E_LogCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	builder := testutils.NewRepoBuilder(t)
	hashes := builder.LinearHistory(3)

	output, err := runBinary(t, builder.Root, constants.LogCmdName)
	if err != nil {
		t.Fatalf("Binary execution failed: %v\nOutput: %s", err, output)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != len(hashes) {
		t.Fatalf("Expected %d lines, got: %s", len(hashes), output)
	}
	for i, hash := range hashes {
		if !strings.Contains(lines[i], utils.ShortHash(hash)) {
			t.Errorf("Line %d = %q, want hash %s", i, lines[i], utils.ShortHash(hash))
		}
	}
}

// TestE2E_HelpCommand verifies help output contains expected sections.
func TestE2E_HelpCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	output, err := runBinary(t, t.TempDir(), "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	expectedTexts := []string{
		"Commitgraph reads a git repository",
		"Available Commands:",
		constants.GraphCmdName,
		constants.LogCmdName,
		"Flags:",
		"-h, --help",
		"--verbose",
	}
	for _, text := range expectedTexts {
		if !strings.Contains(output, text) {
			t.Errorf("Help output missing %q, got: %s", text, output)
		}
	}
}

// TestE2E_InvalidCommand verifies error for unknown commands.
func TestE2E_InvalidCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	output, err := runBinary(t, t.TempDir(), "nonexistent")
	if err == nil {
		t.Error("Expected error for invalid command")
	}
	if !strings.Contains(output, "unknown command") {
		t.Errorf("Expected 'unknown command' error, got: %s", output)
	}
}
