package testutils

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

// Tree entry modes as git writes them.
const (
	ModeRegularFile = "100644"
	ModeExecutable  = "100755"
	ModeDirectory   = "40000"
)

// Author identifies commit author/committer in fixture commits.
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

// DefaultAuthor is used by RepoBuilder commits.
var DefaultAuthor = Author{
	Name:      "Test Author",
	Email:     "test@example.com",
	Timestamp: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
}

// TreeEntry describes one entry written into a fixture tree.
type TreeEntry struct {
	Mode string
	Name string
	Hash string
}

// RepoBuilder writes loose objects and refs in the real git on-disk format.
type RepoBuilder struct {
	t       *testing.T
	Root    string
	commits int
}

// NewRepoBuilder creates a temporary repository with .git/objects, .git/refs/heads
// and a HEAD pointing at the default branch.
func NewRepoBuilder(t *testing.T) *RepoBuilder {
	t.Helper()

	return &RepoBuilder{t: t, Root: SetupTestRepoWithInit(t)}
}

// EncodeObject frames content with its header and zlib-compresses it.
// Returns the object hash and the bytes git would store on disk.
func EncodeObject(t *testing.T, objectType utils.ObjectType, content []byte) (string, []byte) {
	t.Helper()

	data := append(utils.ObjectHeader(objectType, len(content)), content...)
	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Failed to compress %s object: %v", objectType, err)
	}
	return utils.HashData(data), compressed
}

// Compress zlib-compresses data.
func Compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	// Call Close in order to flush any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// WriteObject stores content as a loose object and returns its hash.
func (b *RepoBuilder) WriteObject(objectType utils.ObjectType, content []byte) string {
	b.t.Helper()

	hash, compressed := EncodeObject(b.t, objectType, content)
	b.WriteRawObject(hash, compressed)
	return hash
}

// WriteRawObject stores arbitrary bytes at the loose object path of hash.
func (b *RepoBuilder) WriteRawObject(hash string, raw []byte) {
	b.t.Helper()

	objectFile := b.ObjectPath(hash)
	if err := os.MkdirAll(filepath.Dir(objectFile), constants.DirPerms); err != nil {
		b.t.Fatalf("Failed to create object directory: %v", err)
	}
	if err := os.WriteFile(objectFile, raw, constants.FilePerms); err != nil {
		b.t.Fatalf("Failed to write object file: %v", err)
	}
}

// ObjectPath returns the loose object path of hash.
func (b *RepoBuilder) ObjectPath(hash string) string {
	return filepath.Join(b.Root, constants.GitDir, constants.Objects,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

func (b *RepoBuilder) WriteBlob(content string) string {
	b.t.Helper()
	return b.WriteObject(utils.BlobObjectType, []byte(content))
}

// WriteTree sorts entries the way git does and stores the tree.
func (b *RepoBuilder) WriteTree(entries ...TreeEntry) string {
	b.t.Helper()

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, compareTreeEntries)

	content, err := BuildTreeContent(sorted)
	if err != nil {
		b.t.Fatalf("Failed to build tree: %v", err)
	}
	return b.WriteObject(utils.TreeObjectType, content)
}

// WriteCommit stores a commit; the author timestamp advances one minute per commit
// so identical trees still yield distinct commits.
func (b *RepoBuilder) WriteCommit(treeHash string, parents []string, message string) string {
	b.t.Helper()

	author := DefaultAuthor
	author.Timestamp = author.Timestamp.Add(time.Duration(b.commits) * time.Minute)
	b.commits++

	return b.WriteObject(utils.CommitObjectType, BuildCommitContent(treeHash, parents, message, author))
}

// CommitFiles writes one blob per file, a flat tree holding them and a commit.
func (b *RepoBuilder) CommitFiles(parent string, message string, files map[string]string) string {
	b.t.Helper()

	entries := make([]TreeEntry, 0, len(files))
	for name, content := range files {
		entries = append(entries, TreeEntry{Mode: ModeRegularFile, Name: name, Hash: b.WriteBlob(content)})
	}

	var parents []string
	if parent != "" {
		parents = []string{parent}
	}
	return b.WriteCommit(b.WriteTree(entries...), parents, message)
}

// LinearHistory commits n times on top of each other, commit i adding file<i>.txt.
// Returns the hashes oldest first and points the default branch at the last one.
func (b *RepoBuilder) LinearHistory(n int) []string {
	b.t.Helper()

	hashes := make([]string, 0, n)
	files := make(map[string]string)
	parent := ""
	for i := 1; i <= n; i++ {
		files[fmt.Sprintf("file%d.txt", i)] = fmt.Sprintf("Content of file%d", i)
		parent = b.CommitFiles(parent, fmt.Sprintf("Commit %d", i), files)
		hashes = append(hashes, parent)
	}
	if n > 0 {
		b.SetBranch(constants.DefaultBranch, parent)
	}
	return hashes
}

// SetBranch writes refs/heads/<name>.
func (b *RepoBuilder) SetBranch(name, hash string) {
	b.t.Helper()

	refPath := filepath.Join(b.Root, constants.GitDir, constants.Refs, constants.Heads, name)
	if err := os.MkdirAll(filepath.Dir(refPath), constants.DirPerms); err != nil {
		b.t.Fatalf("Failed to create ref directory: %v", err)
	}
	if err := os.WriteFile(refPath, []byte(hash+"\n"), constants.FilePerms); err != nil {
		b.t.Fatalf("Failed to write ref %s: %v", name, err)
	}
}

// SetHead rewrites HEAD with raw content ("ref: refs/heads/x" or a hash).
func (b *RepoBuilder) SetHead(content string) {
	b.t.Helper()

	headPath := filepath.Join(b.Root, constants.GitDir, constants.Head)
	if err := os.WriteFile(headPath, []byte(content+"\n"), constants.FilePerms); err != nil {
		b.t.Fatalf("Failed to write %s: %v", constants.Head, err)
	}
}

// BuildTreeContent creates the raw tree body:
// <mode> <name>\0<20-byte binary SHA> , ex:
// 100644 README.md\0[binary SHA for README blob]
// 40000 src\0[binary SHA for src/ tree]
func BuildTreeContent(entries []TreeEntry) ([]byte, error) {
	var buf bytes.Buffer

	for _, entry := range entries {
		hashBytes, err := hex.DecodeString(entry.Hash)
		if err != nil || len(hashBytes) != constants.HashByteLength {
			return nil, fmt.Errorf("invalid entry hash %q for %s", entry.Hash, entry.Name)
		}

		buf.WriteString(entry.Mode)
		buf.WriteByte(' ')
		buf.WriteString(entry.Name)
		buf.WriteByte(constants.NullByte)
		buf.Write(hashBytes)
	}

	return buf.Bytes(), nil
}

// compareTreeEntries implements git's tree entry ordering: directory names
// compare as if they had a trailing "/".
func compareTreeEntries(a, b TreeEntry) int {
	return strings.Compare(sortableName(a), sortableName(b))
}

func sortableName(entry TreeEntry) string {
	if entry.Mode == ModeDirectory {
		return entry.Name + "/"
	}
	return entry.Name
}

// BuildCommitContent creates the raw commit body.
func BuildCommitContent(treeHash string, parents []string, message string, author Author) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s%s\n", constants.CommitTreePrefix, treeHash)
	for _, parent := range parents {
		fmt.Fprintf(&buf, "%s%s\n", constants.CommitParentPrefix, parent)
	}

	_, timeZoneOffset := author.Timestamp.Zone()
	timezone := calculateTimezone(timeZoneOffset)
	fmt.Fprintf(&buf, "%s%s <%s> %d %s\n", constants.CommitAuthorPrefix, author.Name, author.Email, author.Timestamp.Unix(), timezone)
	fmt.Fprintf(&buf, "%s%s <%s> %d %s\n", constants.CommitCommitterPrefix, author.Name, author.Email, author.Timestamp.Unix(), timezone)

	// Blank line before message
	buf.WriteByte('\n')
	buf.WriteString(message)

	if len(message) > 0 && message[len(message)-1] != '\n' {
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func calculateTimezone(offset int) string {
	// offset is in seconds, convert to ±HHMM format
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute

	if minutes < 0 {
		minutes = -minutes
	}

	return fmt.Sprintf("%+03d%02d", hours, minutes)
}
