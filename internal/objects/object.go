package objects

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/KostasZigo/commitgraph/internal/constants"
	"github.com/KostasZigo/commitgraph/utils"
)

// Errors returned while locating and decoding stored objects.
var (
	ErrInvalidHash     = errors.New("invalid object hash")
	ErrObjectNotFound  = errors.New("object not found")
	ErrDecompression   = errors.New("object decompression failed")
	ErrMalformedObject = errors.New("malformed object")
	ErrHashMismatch    = errors.New("object hash mismatch")
	ErrUnexpectedType  = errors.New("unexpected object type")
	ErrMalformedCommit = errors.New("malformed commit")
	ErrMalformedTree   = errors.New("malformed tree")
)

// Source is a content-addressed view of an object store: hash in, object out.
// Decoders only ever see a Source, never the on-disk layout behind it.
type Source interface {
	// Read returns the decompressed object stored under hash.
	Read(hash string) (*RawObject, error)
}

// RawObject is one decompressed object with its "<type> <size>\0" header parsed off.
type RawObject struct {
	Hash string
	Type utils.ObjectType
	Size int
	Body []byte
}

func (o *RawObject) String() string {
	return fmt.Sprintf("RawObject{hash: %s, type: %s, size: %d}", o.Hash, o.Type, o.Size)
}

// parseObject splits decompressed object data into header fields and body.
func parseObject(hash string, data []byte) (*RawObject, error) {
	nullByteIndex := bytes.IndexByte(data, constants.NullByte)
	if nullByteIndex == -1 {
		return nil, fmt.Errorf("%w %s: no null byte after header", ErrMalformedObject, hash)
	}

	header := data[:nullByteIndex]
	body := data[nullByteIndex+1:]

	typeName, sizeField, ok := bytes.Cut(header, []byte{' '})
	if !ok {
		return nil, fmt.Errorf("%w %s: invalid header %q", ErrMalformedObject, hash, header)
	}

	objectType := utils.ObjectType(typeName)
	if !objectType.IsValid() {
		return nil, fmt.Errorf("%w %s: unknown type %q", ErrMalformedObject, hash, typeName)
	}

	size, err := strconv.Atoi(string(sizeField))
	if err != nil {
		return nil, fmt.Errorf("%w %s: invalid size %q", ErrMalformedObject, hash, sizeField)
	}
	if size != len(body) {
		return nil, fmt.Errorf("%w %s: size mismatch (header=%d, actual=%d)", ErrMalformedObject, hash, size, len(body))
	}

	return &RawObject{
		Hash: hash,
		Type: objectType,
		Size: size,
		Body: body,
	}, nil
}

// readTyped reads hash from src and checks it has the wanted type.
func readTyped(src Source, hash string, want utils.ObjectType) (*RawObject, error) {
	obj, err := src.Read(hash)
	if err != nil {
		return nil, err
	}
	if obj.Type != want {
		return nil, fmt.Errorf("%w: object %s is a %s, want %s", ErrUnexpectedType, hash, obj.Type, want)
	}
	return obj, nil
}
