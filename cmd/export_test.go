package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// createTestRootCmd creates fresh root command with the given subcommand.
func createTestRootCmd(cmd *cobra.Command) *cobra.Command {
	color.NoColor = true

	testRootCmd := &cobra.Command{Use: "commitgraph"}
	testRootCmd.AddCommand(cmd)
	return testRootCmd
}

// captureStdout returns command stdout output as string.
func captureStdout(cmd *cobra.Command) *bytes.Buffer {
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	return &stdout
}

// captureStderr returns command stderr output as string.
func captureStderr(cmd *cobra.Command) *bytes.Buffer {
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	return &stderr
}

// executeCommand runs sub with args under a fresh root and returns its stdout.
func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	testRootCmd := createTestRootCmd(sub)
	stdout := captureStdout(testRootCmd)
	captureStderr(testRootCmd)
	testRootCmd.SetArgs(append([]string{sub.Name()}, args...))

	err := testRootCmd.Execute()
	return stdout.String(), err
}

// changeToRepoDir changes working directory to repo path and registers cleanup.
func changeToRepoDir(t *testing.T, repoPath string) {
	t.Helper()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	if err := os.Chdir(repoPath); err != nil {
		t.Fatalf("Failed to change to directory %s: %v", repoPath, err)
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
	})
}
