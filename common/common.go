package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	BlockSize uint64 = disk.BlockSize

	MAGIC uint32 = 0xf0f03410

	SUPERBLK Bnum = 0 // superblock
	INODEBLK Bnum = 1 // first block of the inode table

	INODESZ   uint64 = 32 // on-disk size
	NINODEBLK uint64 = BlockSize / INODESZ

	PTRSZ   uint64 = 4 // on-disk size of a block pointer
	NDIRECT uint64 = 5
	NINDPTR uint64 = BlockSize / PTRSZ // # ptrs per indirect block

	MINBLOCKS uint64 = 3       // superblock, one inode block, one data block
	MAXBLOCKS uint64 = 1 << 20 // ptrs are 32-bit byte offsets
)

type Inum uint64
type Bnum = uint64

const (
	NULLBNUM Bnum = 0
)

// Ptr is an on-disk block pointer: the byte offset of the block it refers
// to, or 0 if the slot is empty. Block 0 holds the superblock so it can
// never be the target of a pointer.
type Ptr uint32

const NULLPTR Ptr = 0

func MkPtr(bn Bnum) Ptr {
	if bn == NULLBNUM || bn >= MAXBLOCKS {
		panic("MkPtr")
	}
	return Ptr(bn * BlockSize)
}

// Block returns the block number p refers to and false if p is empty.
func (p Ptr) Block() (Bnum, bool) {
	if p == NULLPTR {
		return NULLBNUM, false
	}
	return Bnum(p) / BlockSize, true
}

func (p Ptr) IsNull() bool {
	return p == NULLPTR
}

func (p Ptr) Aligned() bool {
	return uint64(p)%BlockSize == 0
}
