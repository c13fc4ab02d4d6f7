package sfs

import (
	"time"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/util"
)

// Read reads up to len(p) bytes at the cursor and advances it by the number
// of bytes read. At or past the end of the file it returns 0 and no error.
func (f *File) Read(p []byte) (uint64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	v := f.v
	if err := v.begin(); err != nil {
		return 0, err
	}
	defer v.end()
	defer v.ops[opRead].Record(time.Now())

	v.ilocks.Acquire(uint64(f.inum))
	defer v.ilocks.Release(uint64(f.inum))

	node, err := f.refresh()
	if err != nil {
		return 0, err
	}
	off := f.off
	var count uint64
	if off < node.Size {
		count = util.Min(uint64(len(p)), node.Size-off)
	}
	if count == 0 {
		f.node = node
		return 0, nil
	}

	m := v.mkBlockMap(&node)
	var n uint64

	// partial first block
	lbn, boff := inode.Offset(off)
	if boff != 0 {
		bn, err := m.get(lbn)
		if err != nil {
			return 0, err
		}
		blk := make([]byte, common.BlockSize)
		if _, err := v.readBlock(blk, bn); err != nil {
			return 0, err
		}
		n = util.Min(count, common.BlockSize-boff)
		copy(p[:n], blk[boff:boff+n])
	}

	// whole blocks, and then a prefix of the last one, straight into p
	for n < count {
		lbn, _ := inode.Offset(off + n)
		bn, err := m.get(lbn)
		if err != nil {
			return 0, err
		}
		sz := util.Min(count-n, common.BlockSize)
		if _, err := v.readBlock(p[n:n+sz], bn); err != nil {
			return 0, err
		}
		n += sz
	}

	if err := v.writeInode(f.inum, &node); err != nil {
		return 0, err
	}
	f.node = node
	f.off = off + n
	util.DPrintf(5, "Read %d: %d bytes at %d\n", f.inum, n, off)
	return n, nil
}
