package inode

import (
	"fmt"

	"github.com/mit-pdos/go-sfs/addr"
	"github.com/mit-pdos/go-sfs/buf"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/util"
)

// Table is the content of an indirect block: NINDPTR block pointers.
type Table struct {
	b *buf.Buf
}

// MkTable returns an empty table to be stored in block bn.
func MkTable(bn common.Bnum) *Table {
	blk := make([]byte, common.BlockSize)
	t := &Table{b: buf.MkBufLoad(addr.MkAddr(bn, 0), common.BlockSize, blk)}
	t.b.SetDirty()
	return t
}

// LoadTable wraps blk, the content of indirect block bn.
func LoadTable(bn common.Bnum, blk []byte) *Table {
	return &Table{b: buf.MkBufLoad(addr.MkAddr(bn, 0), common.BlockSize, blk)}
}

func (t *Table) Bnum() common.Bnum {
	return t.b.Addr.Blkno
}

func (t *Table) Data() []byte {
	return t.b.Data
}

func (t *Table) IsDirty() bool {
	return t.b.IsDirty()
}

func (t *Table) Get(i uint64) common.Ptr {
	return t.b.PtrGet(i * common.PTRSZ)
}

func (t *Table) Set(i uint64, p common.Ptr) {
	t.b.PtrPut(i*common.PTRSZ, p)
}

// Ptrs returns the non-empty pointers among the first n slots, in slot
// order.
func (t *Table) Ptrs(n uint64) []common.Ptr {
	var ps []common.Ptr
	for i := uint64(0); i < util.Min(n, common.NINDPTR); i++ {
		if p := t.Get(i); !p.IsNull() {
			ps = append(ps, p)
		}
	}
	return ps
}

// CheckPtrs verifies that the first n slots are block aligned.
func (t *Table) CheckPtrs(n uint64) error {
	for i := uint64(0); i < util.Min(n, common.NINDPTR); i++ {
		if p := t.Get(i); !p.Aligned() {
			return fmt.Errorf("indirect block %d slot %d = %d: %w",
				t.Bnum(), i, p, ErrMisaligned)
		}
	}
	return nil
}
