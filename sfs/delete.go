package sfs

import (
	"fmt"
	"time"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/util"
)

// Delete frees the blocks of inode inum and marks it invalid. Deleting an
// inode that holds no file does nothing.
func (v *Volume) Delete(inum common.Inum) error {
	if err := v.begin(); err != nil {
		return err
	}
	defer v.end()
	defer v.ops[opDelete].Record(time.Now())

	if err := v.checkInum(inum); err != nil {
		return err
	}
	v.ilocks.Acquire(uint64(inum))
	defer v.ilocks.Release(uint64(inum))
	return v.deleteLocked(inum)
}

// deleteLocked requires the inode lock for inum.
func (v *Volume) deleteLocked(inum common.Inum) error {
	ip, err := v.readInode(inum)
	if err != nil {
		return err
	}
	if !ip.Valid {
		return nil
	}
	if err := ip.CheckPtrs(); err != nil {
		return fmt.Errorf("%w: inode %d: %v", ErrCorruptVolume, inum, err)
	}

	v.allocMu.Lock()
	defer v.allocMu.Unlock()

	bns := ip.Blocks()
	if ibn, ok := ip.Indirect.Block(); ok {
		tbl, err := v.readTable(ibn)
		if err != nil {
			return err
		}
		if err := tbl.CheckPtrs(ip.IndirectSlots()); err != nil {
			return fmt.Errorf("%w: inode %d: %v", ErrCorruptVolume, inum, err)
		}
		for _, p := range tbl.Ptrs(ip.IndirectSlots()) {
			bn, _ := p.Block()
			bns = append(bns, bn)
		}
	}

	// size and pointers stay on disk; only the valid word changes
	ip.Valid = false
	if err := v.writeInode(inum, ip); err != nil {
		return err
	}
	for _, bn := range bns {
		if v.sb.IsData(bn) {
			v.alloc.FreeNum(bn)
		}
	}
	util.DPrintf(5, "Delete %d: freed %d blocks\n", inum, len(bns))
	return nil
}
