package objects

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

// CommitRecord holds the links of a commit that history walking needs.
type CommitRecord struct {
	Hash       string
	TreeHash   string
	ParentHash string // first parent, "" for a root commit

	// ExtraParents are the second and later parents of a merge commit.
	// They are recorded but never followed.
	ExtraParents []string
}

// IsInitialCommit reports whether the commit has no parent.
func (c *CommitRecord) IsInitialCommit() bool {
	return c.ParentHash == ""
}

// IsMerge reports whether the commit has more than one parent.
func (c *CommitRecord) IsMerge() bool {
	return len(c.ExtraParents) > 0
}

func (c *CommitRecord) String() string {
	return fmt.Sprintf("Commit{hash: %s, tree: %s, parent: %s}", c.Hash, c.TreeHash, c.ParentHash)
}

// DecodeCommit extracts the tree and first parent of a commit body.
//
// Only the header block (everything before the first blank line) is scanned,
// one line at a time, so hash-like text inside the message is never matched.
func DecodeCommit(hash string, body []byte) (*CommitRecord, error) {
	record := &CommitRecord{Hash: hash}

	for _, line := range headerLines(body) {
		switch {
		case strings.HasPrefix(line, constants.CommitTreePrefix):
			if record.TreeHash != "" {
				continue
			}
			value := strings.TrimPrefix(line, constants.CommitTreePrefix)
			if !utils.IsObjectHash(value) {
				return nil, fmt.Errorf("%w %s: invalid tree hash %q", ErrMalformedCommit, hash, value)
			}
			record.TreeHash = value

		case strings.HasPrefix(line, constants.CommitParentPrefix):
			value := strings.TrimPrefix(line, constants.CommitParentPrefix)
			if !utils.IsObjectHash(value) {
				return nil, fmt.Errorf("%w %s: invalid parent hash %q", ErrMalformedCommit, hash, value)
			}
			if record.ParentHash == "" {
				record.ParentHash = value
			} else {
				record.ExtraParents = append(record.ExtraParents, value)
			}
		}
	}

	if record.TreeHash == "" {
		return nil, fmt.Errorf("%w %s: no tree line", ErrMalformedCommit, hash)
	}

	return record, nil
}

// DecodeParents extracts only the parent links of a commit body. It never fails:
// tree lines are ignored and parent values that are not object hashes are
// skipped, so a commit whose only usable link is broken reads as a root commit.
func DecodeParents(hash string, body []byte) *CommitRecord {
	record := &CommitRecord{Hash: hash}

	for _, line := range headerLines(body) {
		value, ok := strings.CutPrefix(line, constants.CommitParentPrefix)
		if !ok {
			continue
		}
		if !utils.IsObjectHash(value) {
			slog.Warn("Ignoring invalid parent line", "commit", hash, "parent", value)
			continue
		}
		if record.ParentHash == "" {
			record.ParentHash = value
		} else {
			record.ExtraParents = append(record.ExtraParents, value)
		}
	}
	return record
}

// headerLines returns the lines before the first blank line of a commit body.
func headerLines(body []byte) []string {
	header := body
	if idx := bytes.Index(body, []byte("\n\n")); idx != -1 {
		header = body[:idx]
	}
	return strings.Split(string(header), "\n")
}

// ReadParents reads hash from src and decodes its parent links only.
// Missing, unreadable or non-commit objects are still errors.
func ReadParents(src Source, hash string) (*CommitRecord, error) {
	obj, err := readTyped(src, hash, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	return DecodeParents(hash, obj.Body), nil
}

// ReadCommit reads hash from src and decodes it as a commit.
func ReadCommit(src Source, hash string) (*CommitRecord, error) {
	obj, err := readTyped(src, hash, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(hash, obj.Body)
}
