package objects

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "40000"  // Directory (tree), written without a leading zero
	ModeSubmodule   FileMode = "160000" // Git submodule
)

// TreeEntry represents a single entry in a tree object
type TreeEntry struct {
	Mode FileMode
	Name string
	Hash string // hex form of the 20 raw bytes following the name
}

func (e TreeEntry) IsDirectory() bool {
	return e.Mode == ModeDirectory || e.Mode == "040000"
}

func (e TreeEntry) IsExecutable() bool {
	return e.Mode == ModeExecutable
}

// DecodeTree parses a tree body into its entries, in on-disk order.
//
// Each record is "<mode> <name>\0<20 raw hash bytes>". The body must not
// include the "tree <size>\0" object header; readers strip it.
func DecodeTree(body []byte) ([]TreeEntry, error) {
	var entries []TreeEntry

	index := 0
	for index < len(body) {
		modeEnd := bytes.IndexByte(body[index:], ' ')
		if modeEnd == -1 {
			return nil, fmt.Errorf("%w: no mode terminator at offset %d", ErrMalformedTree, index)
		}
		modeEnd += index

		nameEnd := bytes.IndexByte(body[modeEnd+1:], constants.NullByte)
		if nameEnd == -1 {
			return nil, fmt.Errorf("%w: no name terminator at offset %d", ErrMalformedTree, modeEnd+1)
		}
		nameEnd += modeEnd + 1

		hashEnd := nameEnd + 1 + constants.HashByteLength
		if hashEnd > len(body) {
			return nil, fmt.Errorf("%w: truncated entry hash at offset %d", ErrMalformedTree, nameEnd+1)
		}

		entries = append(entries, TreeEntry{
			Mode: FileMode(body[index:modeEnd]),
			Name: string(body[modeEnd+1 : nameEnd]),
			Hash: hex.EncodeToString(body[nameEnd+1 : hashEnd]),
		})

		index = hashEnd
	}

	return entries, nil
}

// ReadTree reads hash from src and decodes it as a tree.
func ReadTree(src Source, hash string) ([]TreeEntry, error) {
	obj, err := readTyped(src, hash, utils.TreeObjectType)
	if err != nil {
		return nil, err
	}
	return DecodeTree(obj.Body)
}

// EntryNames returns the names of entries, preserving order.
func EntryNames(entries []TreeEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}
