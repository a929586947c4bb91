package objects

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zlib"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

// DefaultCacheSize is the number of decoded objects a LooseStore keeps by default.
const DefaultCacheSize = 1024

var objectsRelativeFilePath = filepath.Join(constants.GitDir, constants.Objects)

// LooseStore reads loose objects from .git/objects/<first 2 chars>/<rest>.
// It never writes to the repository.
type LooseStore struct {
	repoPath string // Path to repository root
	verify   bool
	cache    *lru.Cache[string, *RawObject]
}

// StoreOption configures a LooseStore.
type StoreOption func(*LooseStore)

// WithCacheSize bounds the decoded-object cache. Zero disables caching.
func WithCacheSize(size int) StoreOption {
	return func(store *LooseStore) {
		if size <= 0 {
			store.cache = nil
			return
		}
		cache, err := lru.New[string, *RawObject](size)
		if err != nil {
			slog.Warn("Failed to create object cache, reading uncached",
				"size", size,
				"error", err)
			store.cache = nil
			return
		}
		store.cache = cache
	}
}

// WithHashVerification makes Read check the SHA-1 of every object it decompresses.
func WithHashVerification(verify bool) StoreOption {
	return func(store *LooseStore) {
		store.verify = verify
	}
}

func NewLooseStore(repoPath string, opts ...StoreOption) *LooseStore {
	store := &LooseStore{
		repoPath: repoPath,
	}
	WithCacheSize(DefaultCacheSize)(store)
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// ObjectPath returns the file holding the object with the given hash.
func (store *LooseStore) ObjectPath(hash string) string {
	return filepath.Join(store.repoPath, objectsRelativeFilePath,
		hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// Read reads and decompresses the object stored under hash.
func (store *LooseStore) Read(hash string) (*RawObject, error) {
	if !utils.IsObjectHash(hash) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}

	if store.cache != nil {
		if obj, ok := store.cache.Get(hash); ok {
			slog.Debug("Object cache hit", "hash", hash)
			return obj, nil
		}
	}

	compressedData, err := os.ReadFile(store.ObjectPath(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}

	obj, err := decodeLoose(hash, compressedData, store.verify)
	if err != nil {
		return nil, err
	}

	if store.cache != nil {
		store.cache.Add(hash, obj)
	}
	return obj, nil
}

// Exists checks if an object exists in storage
func (store *LooseStore) Exists(hash string) bool {
	if !utils.IsObjectHash(hash) {
		return false
	}
	_, err := os.Stat(store.ObjectPath(hash))
	return err == nil
}

// decodeLoose inflates one loose object file and parses its header.
func decodeLoose(hash string, compressedData []byte, verify bool) (*RawObject, error) {
	data, err := inflate(compressedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompression, hash, err)
	}

	if verify {
		if actual := utils.HashData(data); actual != hash {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, hash, actual)
		}
	}

	return parseObject(hash, data)
}

func inflate(compressedData []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var buffer bytes.Buffer
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
