package objects

import (
	"errors"
	"testing"

	"github.com/KostasZigo/commitgraph/testutils"
)

// newStoreWithBuilder creates a repository fixture and a store reading from it.
func newStoreWithBuilder(t *testing.T, opts ...StoreOption) (*LooseStore, *testutils.RepoBuilder) {
	t.Helper()

	builder := testutils.NewRepoBuilder(t)
	return NewLooseStore(builder.Root, opts...), builder
}

// readObject reads hash and fails the test on error.
func readObject(t *testing.T, src Source, hash string) *RawObject {
	t.Helper()

	obj, err := src.Read(hash)
	if err != nil {
		t.Fatalf("Failed to read object %s: %v", hash, err)
	}
	return obj
}

// assertErrorIs verifies err wraps target.
func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected error wrapping [%v], got nil", target)
	}
	if !errors.Is(err, target) {
		t.Fatalf("Expected error wrapping [%v], got [%v]", target, err)
	}
}

// assertTreeEntryEqual verifies two tree entries match.
func assertTreeEntryEqual(t *testing.T, actual TreeEntry, expected testutils.TreeEntry) {
	t.Helper()

	if actual.Name != expected.Name {
		t.Errorf("Entry name mismatch: expected %s, got %s", expected.Name, actual.Name)
	}
	if actual.Hash != expected.Hash {
		t.Errorf("Entry hash mismatch: expected %s, got %s", expected.Hash, actual.Hash)
	}
	if string(actual.Mode) != expected.Mode {
		t.Errorf("Entry mode mismatch: expected %s, got %s", expected.Mode, actual.Mode)
	}
}
