package sfs

import (
	"fmt"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/inode"
)

// blockMap resolves logical blocks of one inode, loading the indirect table
// at most once, and links new blocks after the last one.
type blockMap struct {
	v    *Volume
	ip   *inode.Inode
	tbl  *inode.Table
	next uint64 // logical block the next link fills
}

func (v *Volume) mkBlockMap(ip *inode.Inode) *blockMap {
	return &blockMap{v: v, ip: ip, next: ip.NBlocks()}
}

func (m *blockMap) table() (*inode.Table, error) {
	if m.tbl != nil {
		return m.tbl, nil
	}
	ibn, ok := m.ip.Indirect.Block()
	if !ok {
		return nil, nil
	}
	tbl, err := m.v.readTable(ibn)
	if err != nil {
		return nil, err
	}
	m.tbl = tbl
	return tbl, nil
}

// get returns the block holding logical block lbn.
func (m *blockMap) get(lbn uint64) (common.Bnum, error) {
	var tbl *inode.Table
	if lbn >= common.NDIRECT {
		t, err := m.table()
		if err != nil {
			return 0, err
		}
		tbl = t
	}
	p := m.ip.Ptr(lbn, tbl)
	bn, ok := p.Block()
	if !ok || !p.Aligned() || !m.v.sb.IsData(bn) {
		return 0, fmt.Errorf("%w: logical block %d of %v maps to %d",
			ErrCorruptVolume, lbn, m.ip, p)
	}
	return bn, nil
}

// link stores p in the first slot past the file's blocks: a direct slot,
// else the indirect table. Whatever that slot held before is overwritten.
// newIndirect supplies the block for the table if the inode has none yet;
// it is called at most once.
func (m *blockMap) link(p common.Ptr, newIndirect func() (common.Bnum, error)) error {
	lbn := m.next
	var tbl *inode.Table
	if lbn >= common.NDIRECT {
		t, err := m.table()
		if err != nil {
			return err
		}
		if t == nil {
			ibn, err := newIndirect()
			if err != nil {
				return err
			}
			t = inode.MkTable(ibn)
			m.ip.Indirect = common.MkPtr(ibn)
			m.tbl = t
		}
		tbl = t
	}
	if !m.ip.SetPtr(lbn, p, tbl) {
		return fmt.Errorf("%w: inode %v has no slot for block %d", ErrFileTooLarge, m.ip, lbn)
	}
	m.next++
	return nil
}
