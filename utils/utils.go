package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/commitgraph/internal/constants"
)

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
	TagObjectType    ObjectType = "tag"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType, TagObjectType:
		return true
	default:
		return false
	}
}

// ComputeHash calculates SHA-1 hash for object content
func ComputeHash(content []byte, objectType ObjectType) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	// format: "ObjectType <size>\0<content>"
	return HashData(append(ObjectHeader(objectType, len(content)), content...)), nil
}

// ObjectHeader builds the "<type> <size>\0" prefix of a stored object.
func ObjectHeader(objectType ObjectType, size int) []byte {
	return []byte(fmt.Sprintf("%v %d\x00", objectType, size))
}

// HashData returns the hex SHA-1 of already framed object data.
func HashData(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// IsObjectHash reports whether s is a 40-character lowercase hex SHA-1.
func IsObjectHash(s string) bool {
	if len(s) != constants.HashStringLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// ShortHash returns the abbreviated form of a hash for display.
func ShortHash(hash string) string {
	if len(hash) <= constants.ShortHashLength {
		return hash
	}
	return hash[:constants.ShortHashLength]
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
