package constants

import "os"

// Command name constants used in tests and error messages.
// Cobra Use fields remain inline for CLI discoverability.
const (
	GraphCmdName = "graph"
	LogCmdName   = "log"
)

// Repository directory and file names of the git metadata structure.
const (
	// GitDir is the repository metadata directory.
	GitDir = ".git"

	// Objects stores content-addressable objects (blobs, trees, commits).
	Objects = "objects"

	// Refs contains branch and tag references.
	Refs = "refs"

	// Heads stores branch pointers under refs/.
	Heads = "heads"

	// Head points to current branch or detached commit.
	Head = "HEAD"

	// PackedRefs holds references packed by git gc.
	PackedRefs = "packed-refs"
)

// Reference values.
const (
	// DefaultBranch is the branch name used by test fixtures.
	DefaultBranch = "main"

	// SymbolicRefPrefix starts a symbolic HEAD ("ref: refs/heads/main").
	SymbolicRefPrefix = "ref: "

	// BranchRefPrefix is the full ref path prefix of local branches.
	BranchRefPrefix = "refs/heads/"
)

// File system permissions for fixture files and rendered output.
const (
	// DirPerms grants read/write/execute to owner, read/execute to others (rwxr-xr-x).
	DirPerms os.FileMode = 0755

	// FilePerms grants read/write to owner, read-only to others (rw-r--r--).
	FilePerms os.FileMode = 0644
)

// Cryptographic hash properties.
const (
	// HashByteLength is byte length of SHA-1 hash (20 bytes).
	HashByteLength = 20

	// HashStringLength is hex string length of SHA-1 hash (40 characters).
	HashStringLength = 40

	// HashDirPrefixLength is subdirectory prefix length under objects/ (2 characters).
	HashDirPrefixLength = 2

	// ShortHashLength is the abbreviated hash length used for display (7 characters).
	ShortHashLength = 7
)

// Commit header prefixes.
const (
	// CommitTreePrefix marks the tree line in commit objects.
	CommitTreePrefix = "tree "

	// CommitParentPrefix marks parent commit lines in commit objects.
	CommitParentPrefix = "parent "

	// CommitAuthorPrefix marks author metadata in commit objects.
	CommitAuthorPrefix = "author "

	// CommitCommitterPrefix marks committer metadata in commit objects.
	CommitCommitterPrefix = "committer "
)

// Object format constants.
const (
	// NullByte separates header from content in git objects and names from hashes in trees.
	NullByte = '\x00'
)

// Time conversion constants for timezone formatting.
const (
	SecondsPerHour   = 3600
	SecondsPerMinute = 60
)

// Rendering defaults.
const (
	// DefaultFormat is the image format produced by graphviz.
	DefaultFormat = "png"

	// DOTFormat writes the graph source without invoking graphviz.
	DOTFormat = "dot"

	// GraphvizBinary is the graphviz layout executable.
	GraphvizBinary = "dot"
)
