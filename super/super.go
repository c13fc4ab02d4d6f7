// Package super describes the volume layout:
//
//	[ superblock | inode table (InodeBlocks) | data blocks ]
//	  0            1 .. InodeBlocks             DataStart() ..
package super

import (
	"errors"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-sfs/addr"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/util"
)

var (
	ErrBadSize     = errors.New("bad volume size")
	ErrBadMagic    = errors.New("bad magic number")
	ErrBadGeometry = errors.New("inconsistent geometry")
)

// on-disk size of the superblock fields; the rest of block 0 is zero
const SUPERSZ uint64 = 16

type Superblock struct {
	Magic       uint32
	Blocks      uint64
	InodeBlocks uint64
	Inodes      uint64
}

// MkSuper computes the layout of a volume of sz bytes.
func MkSuper(sz uint64) (*Superblock, error) {
	if sz%common.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d is not a multiple of %d",
			ErrBadSize, sz, common.BlockSize)
	}
	nblocks := sz / common.BlockSize
	if nblocks < common.MINBLOCKS {
		return nil, fmt.Errorf("%w: need at least %d blocks, have %d",
			ErrBadSize, common.MINBLOCKS, nblocks)
	}
	if nblocks > common.MAXBLOCKS {
		return nil, fmt.Errorf("%w: at most %d blocks, have %d",
			ErrBadSize, common.MAXBLOCKS, nblocks)
	}
	ninodeblk := util.RoundUp(nblocks, 10)
	sb := &Superblock{
		Magic:       common.MAGIC,
		Blocks:      nblocks,
		InodeBlocks: ninodeblk,
		Inodes:      ninodeblk * common.NINODEBLK,
	}
	util.DPrintf(1, "MkSuper: %v\n", sb)
	return sb, nil
}

func (sb *Superblock) String() string {
	return fmt.Sprintf("magic %#x blocks %d inode blocks %d inodes %d",
		sb.Magic, sb.Blocks, sb.InodeBlocks, sb.Inodes)
}

// Encode returns block 0 of the volume.
func (sb *Superblock) Encode() []byte {
	enc := marshal.NewEnc(common.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(uint32(sb.Blocks))
	enc.PutInt32(uint32(sb.InodeBlocks))
	enc.PutInt32(uint32(sb.Inodes))
	return enc.Finish()
}

// Decode parses and validates block 0 of a volume.
func Decode(blk []byte) (*Superblock, error) {
	if uint64(len(blk)) < SUPERSZ {
		return nil, fmt.Errorf("%w: short superblock", ErrBadGeometry)
	}
	dec := marshal.NewDec(blk)
	sb := &Superblock{}
	sb.Magic = dec.GetInt32()
	sb.Blocks = uint64(dec.GetInt32())
	sb.InodeBlocks = uint64(dec.GetInt32())
	sb.Inodes = uint64(dec.GetInt32())
	if sb.Magic != common.MAGIC {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, sb.Magic)
	}
	if err := sb.validate(); err != nil {
		return nil, err
	}
	return sb, nil
}

func (sb *Superblock) validate() error {
	if sb.Blocks < common.MINBLOCKS || sb.Blocks > common.MAXBLOCKS {
		return fmt.Errorf("%w: %d blocks", ErrBadGeometry, sb.Blocks)
	}
	if sb.InodeBlocks == 0 || sb.InodeBlocks+1 >= sb.Blocks {
		return fmt.Errorf("%w: %d inode blocks in %d blocks",
			ErrBadGeometry, sb.InodeBlocks, sb.Blocks)
	}
	if sb.Inodes != sb.InodeBlocks*common.NINODEBLK {
		return fmt.Errorf("%w: %d inodes in %d inode blocks",
			ErrBadGeometry, sb.Inodes, sb.InodeBlocks)
	}
	return nil
}

func (sb *Superblock) InodeStart() common.Bnum {
	return common.INODEBLK
}

func (sb *Superblock) DataStart() common.Bnum {
	return sb.InodeStart() + common.Bnum(sb.InodeBlocks)
}

func (sb *Superblock) MaxBnum() common.Bnum {
	return common.Bnum(sb.Blocks)
}

func (sb *Superblock) NInode() common.Inum {
	return common.Inum(sb.Inodes)
}

func (sb *Superblock) Inum2Addr(inum common.Inum) addr.Addr {
	return addr.MkInodeAddr(sb.InodeStart(), inum)
}

// IsData reports whether bn may hold file data or an indirect block.
func (sb *Superblock) IsData(bn common.Bnum) bool {
	return bn >= sb.DataStart() && bn < sb.MaxBnum()
}
