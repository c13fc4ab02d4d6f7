package inode

import (
	"errors"
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/util"
)

var ErrMisaligned = errors.New("misaligned block pointer")

// The on-disk inode:
//
//	valid u32 | size u32 | direct [5]u32 | indirect u32
type Inode struct {
	Valid    bool
	Size     uint64
	Direct   [common.NDIRECT]common.Ptr
	Indirect common.Ptr
}

func (ip *Inode) String() string {
	return fmt.Sprintf("v %v sz %d d %v i %d", ip.Valid, ip.Size, ip.Direct, ip.Indirect)
}

func MaxFileSize() uint64 {
	return (common.NDIRECT + common.NINDPTR) * common.BlockSize
}

// Offset splits a byte offset into a logical block number and the offset
// within that block.
func Offset(off uint64) (uint64, uint64) {
	return off / common.BlockSize, off % common.BlockSize
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	if ip.Valid {
		enc.PutInt32(1)
	} else {
		enc.PutInt32(0)
	}
	enc.PutInt32(uint32(ip.Size))
	for _, p := range ip.Direct {
		enc.PutInt32(uint32(p))
	}
	enc.PutInt32(uint32(ip.Indirect))
	return enc.Finish()
}

func Decode(data []byte) *Inode {
	if uint64(len(data)) != common.INODESZ {
		panic("inode.Decode")
	}
	ip := &Inode{}
	dec := marshal.NewDec(data)
	ip.Valid = dec.GetInt32() != 0
	ip.Size = uint64(dec.GetInt32())
	for i := range ip.Direct {
		ip.Direct[i] = common.Ptr(dec.GetInt32())
	}
	ip.Indirect = common.Ptr(dec.GetInt32())
	return ip
}

// Reset turns ip into a valid, empty file.
func (ip *Inode) Reset() {
	*ip = Inode{Valid: true}
}

// NBlocks is the number of data blocks holding the file's bytes.
func (ip *Inode) NBlocks() uint64 {
	return util.RoundUp(ip.Size, common.BlockSize)
}

// CheckPtrs verifies that the direct pointers in use and the indirect pointer
// are block aligned.
func (ip *Inode) CheckPtrs() error {
	n := util.Min(ip.NBlocks(), common.NDIRECT)
	for i, p := range ip.Direct[:n] {
		if !p.Aligned() {
			return fmt.Errorf("direct %d = %d: %w", i, p, ErrMisaligned)
		}
	}
	if !ip.Indirect.Aligned() {
		return fmt.Errorf("indirect = %d: %w", ip.Indirect, ErrMisaligned)
	}
	return nil
}

// Ptr returns the pointer to logical block lbn. tbl is the inode's indirect
// table and is only consulted for lbn >= NDIRECT.
func (ip *Inode) Ptr(lbn uint64, tbl *Table) common.Ptr {
	if lbn < common.NDIRECT {
		return ip.Direct[lbn]
	}
	if tbl == nil || lbn-common.NDIRECT >= common.NINDPTR {
		return common.NULLPTR
	}
	return tbl.Get(lbn - common.NDIRECT)
}

// SetPtr makes p logical block lbn. tbl must be the inode's indirect table
// for lbn >= NDIRECT.
func (ip *Inode) SetPtr(lbn uint64, p common.Ptr, tbl *Table) bool {
	if lbn < common.NDIRECT {
		ip.Direct[lbn] = p
		return true
	}
	if tbl == nil || lbn-common.NDIRECT >= common.NINDPTR {
		return false
	}
	tbl.Set(lbn-common.NDIRECT, p)
	return true
}

// IndirectSlots is the number of indirect-table slots in use. Slots past it
// are empty, whatever the table block holds.
func (ip *Inode) IndirectSlots() uint64 {
	n := ip.NBlocks()
	if n <= common.NDIRECT {
		return 0
	}
	return n - common.NDIRECT
}

// Blocks lists the blocks ip refers to directly: the direct blocks holding
// file data and the indirect block.
func (ip *Inode) Blocks() []common.Bnum {
	var bns []common.Bnum
	n := util.Min(ip.NBlocks(), common.NDIRECT)
	for _, p := range ip.Direct[:n] {
		if bn, ok := p.Block(); ok {
			bns = append(bns, bn)
		}
	}
	if bn, ok := ip.Indirect.Block(); ok {
		bns = append(bns, bn)
	}
	return bns
}
