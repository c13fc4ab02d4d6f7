package sfs

import (
	"fmt"
	"time"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/util"
)

// Write appends p to the end of the file and returns len(p). The cursor is
// not moved. Either all of p is appended or the file is left unchanged.
func (f *File) Write(p []byte) (uint64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	v := f.v
	if err := v.begin(); err != nil {
		return 0, err
	}
	defer v.end()
	defer v.ops[opWrite].Record(time.Now())

	v.ilocks.Acquire(uint64(f.inum))
	defer v.ilocks.Release(uint64(f.inum))

	node, err := f.refresh()
	if err != nil {
		return 0, err
	}
	count := uint64(len(p))
	if count == 0 {
		f.node = node
		return 0, nil
	}
	if util.SumOverflows(node.Size, count) || node.Size+count > inode.MaxFileSize() {
		return 0, fmt.Errorf("%w: %d + %d bytes, max %d",
			ErrFileTooLarge, node.Size, count, inode.MaxFileSize())
	}

	v.allocMu.Lock()
	defer v.allocMu.Unlock()

	size0 := node.Size
	lastLbn, boff := inode.Offset(size0)
	var room uint64
	if boff != 0 {
		room = common.BlockSize - boff
	}
	nnew := util.RoundUp(count-util.Min(count, room), common.BlockSize)
	nalloc := nnew
	if node.Indirect.IsNull() && node.NBlocks()+nnew > common.NDIRECT {
		nalloc++
	}
	bns, ok := v.alloc.FindFree(nalloc)
	if !ok {
		return 0, fmt.Errorf("%w: need %d blocks, %d free",
			ErrOutOfSpace, nalloc, v.alloc.NumFree())
	}

	m := v.mkBlockMap(&node)
	var last common.Bnum
	if room != 0 {
		last, err = m.get(lastLbn)
		if err != nil {
			return 0, err
		}
	}

	var marked []common.Bnum
	mark := func(bn common.Bnum) {
		v.alloc.MarkUsed(bn)
		marked = append(marked, bn)
	}
	abort := func(err error) (uint64, error) {
		for _, bn := range marked {
			v.alloc.FreeNum(bn)
		}
		util.DPrintf(5, "Write %d: abort, released %v: %v\n", f.inum, marked, err)
		return 0, err
	}

	next := 0
	take := func() common.Bnum {
		bn := bns[next]
		next++
		return bn
	}
	data := make([]common.Bnum, 0, nnew)
	for i := uint64(0); i < nnew; i++ {
		bn := take()
		var ibn common.Bnum
		created := false
		err := m.link(common.MkPtr(bn), func() (common.Bnum, error) {
			ibn = take()
			created = true
			return ibn, nil
		})
		if err != nil {
			return abort(err)
		}
		if created {
			mark(ibn)
		}
		mark(bn)
		data = append(data, bn)
	}

	var n uint64
	if room != 0 {
		blk := make([]byte, common.BlockSize)
		if _, err := v.readBlock(blk, last); err != nil {
			return abort(err)
		}
		n = util.Min(count, room)
		copy(blk[boff:], p[:n])
		if _, err := v.writeBlock(blk, last); err != nil {
			return abort(err)
		}
	}
	for _, bn := range data {
		sz := util.Min(count-n, common.BlockSize)
		b := p[n : n+sz]
		if sz < common.BlockSize {
			b = make([]byte, common.BlockSize)
			copy(b, p[n:n+sz])
		}
		if _, err := v.writeBlock(b, bn); err != nil {
			return abort(err)
		}
		n += sz
	}

	if m.tbl != nil && m.tbl.IsDirty() {
		if _, err := v.writeBlock(m.tbl.Data(), m.tbl.Bnum()); err != nil {
			return abort(err)
		}
	}
	node.Size = size0 + count
	if err := v.writeInode(f.inum, &node); err != nil {
		return abort(err)
	}
	f.node = node
	util.DPrintf(5, "Write %d: %d bytes, %d new blocks, size %d\n",
		f.inum, count, len(data), node.Size)
	return count, nil
}
