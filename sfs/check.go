package sfs

import (
	"fmt"

	"github.com/mit-pdos/go-sfs/alloc"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/util"
)

// scan builds the free-block bitmap described by the inode table: the
// superblock, the inode table, and every block a valid inode refers to,
// including its indirect block. Indirect slots past the file's last block
// are not looked at.
func (v *Volume) scan() (*alloc.Alloc, error) {
	a := alloc.MkAlloc(v.sb.Blocks)
	for bn := common.SUPERBLK; bn < v.sb.DataStart(); bn++ {
		a.MarkUsed(bn)
	}
	err := v.eachInode(func(inum common.Inum, ip *inode.Inode) error {
		if !ip.Valid {
			return nil
		}
		return v.markInode(a, inum, ip)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (v *Volume) markBlock(a *alloc.Alloc, inum common.Inum, bn common.Bnum) error {
	if !v.sb.IsData(bn) {
		return fmt.Errorf("%w: inode %d refers to block %d outside the data region",
			ErrCorruptVolume, inum, bn)
	}
	if a.IsUsed(bn) {
		return fmt.Errorf("%w: inode %d refers to block %d, which is already in use",
			ErrCorruptVolume, inum, bn)
	}
	a.MarkUsed(bn)
	return nil
}

func (v *Volume) markInode(a *alloc.Alloc, inum common.Inum, ip *inode.Inode) error {
	if err := ip.CheckPtrs(); err != nil {
		return fmt.Errorf("%w: inode %d: %v", ErrCorruptVolume, inum, err)
	}
	for _, bn := range ip.Blocks() {
		if err := v.markBlock(a, inum, bn); err != nil {
			return err
		}
	}
	ibn, ok := ip.Indirect.Block()
	if !ok {
		return nil
	}
	tbl, err := v.readTable(ibn)
	if err != nil {
		return err
	}
	if err := tbl.CheckPtrs(ip.IndirectSlots()); err != nil {
		return fmt.Errorf("%w: inode %d: %v", ErrCorruptVolume, inum, err)
	}
	for _, p := range tbl.Ptrs(ip.IndirectSlots()) {
		bn, _ := p.Block()
		if err := v.markBlock(a, inum, bn); err != nil {
			return err
		}
	}
	return nil
}

func usedString(used bool) string {
	if used {
		return "used"
	}
	return "free"
}

// Check rebuilds the bitmap from the inode table and compares it with the
// one in memory.
func (v *Volume) Check() error {
	if err := v.begin(); err != nil {
		return err
	}
	defer v.end()
	v.allocMu.Lock()
	defer v.allocMu.Unlock()
	a, err := v.scan()
	if err != nil {
		return err
	}
	if bn, diff := v.alloc.FirstDiff(a); diff {
		return fmt.Errorf("%w: block %d is %s in memory but %s on disk",
			ErrCorruptVolume, bn, usedString(v.alloc.IsUsed(bn)), usedString(a.IsUsed(bn)))
	}
	util.DPrintf(1, "Check: ok, %d blocks free\n", a.NumFree())
	return nil
}
