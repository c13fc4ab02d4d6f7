// Package disk provides the block devices a volume lives on.
package disk

import (
	"errors"

	gdisk "github.com/tchajed/goose/machine/disk"
)

// Block is a 4096-byte buffer
type Block = []byte

const BlockSize uint64 = gdisk.BlockSize

var (
	ErrOutOfBounds = errors.New("disk: out-of-bounds access")
	ErrClosed      = errors.New("disk: closed")
)

// Disk provides access to a logical block-based disk
type Disk interface {
	// Read reads a whole disk block by address
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// ReadTo reads the first len(b) bytes of the disk block at a into b and
	// returns the number of bytes transferred.
	//
	// Expects a < Size() and len(b) <= BlockSize.
	ReadTo(a uint64, b Block) (uint64, error)

	// Write overwrites the first len(v) bytes of the disk block at a; the
	// rest of the block is unchanged.
	//
	// Expects a < Size() and len(v) <= BlockSize.
	Write(a uint64, v Block) (uint64, error)

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

func checkAccess(a uint64, n int, size uint64) error {
	if a >= size || uint64(n) > BlockSize {
		return ErrOutOfBounds
	}
	return nil
}
