package sfs

import (
	"errors"
	"fmt"

	"github.com/mit-pdos/go-sfs/buf"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/disk"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/util"
)

func (v *Volume) checkBounds(b []byte, bn common.Bnum) error {
	if bn >= v.sb.MaxBnum() || uint64(len(b)) > common.BlockSize {
		return fmt.Errorf("%w: %d bytes at block %d of %d",
			ErrIoBounds, len(b), bn, v.sb.MaxBnum())
	}
	return nil
}

func ioError(op string, bn common.Bnum, err error) error {
	if errors.Is(err, disk.ErrOutOfBounds) {
		return fmt.Errorf("%w: %s block %d: %v", ErrIoBounds, op, bn, err)
	}
	return fmt.Errorf("%s block %d: %w", op, bn, err)
}

// readBlock fills b with the first len(b) bytes of block bn.
func (v *Volume) readBlock(b []byte, bn common.Bnum) (uint64, error) {
	if err := v.checkBounds(b, bn); err != nil {
		return 0, err
	}
	n, err := v.d.ReadTo(bn, b)
	if err != nil {
		return 0, ioError("read", bn, err)
	}
	util.DPrintf(10, "readBlock %d: %d bytes\n", bn, n)
	return n, nil
}

// writeBlock overwrites the first len(b) bytes of block bn.
func (v *Volume) writeBlock(b []byte, bn common.Bnum) (uint64, error) {
	if err := v.checkBounds(b, bn); err != nil {
		return 0, err
	}
	n, err := v.d.Write(bn, b)
	if err != nil {
		return 0, ioError("write", bn, err)
	}
	util.DPrintf(10, "writeBlock %d: %d bytes\n", bn, n)
	return n, nil
}

// ReadBlock transfers the first len(b) bytes of block bn into b and returns
// the number of bytes read.
func (v *Volume) ReadBlock(b []byte, bn common.Bnum) (uint64, error) {
	if err := v.begin(); err != nil {
		return 0, err
	}
	defer v.end()
	return v.readBlock(b, bn)
}

// WriteBlock transfers b to the start of block bn and returns the number of
// bytes written. It bypasses the file system; use with care.
func (v *Volume) WriteBlock(b []byte, bn common.Bnum) (uint64, error) {
	if err := v.begin(); err != nil {
		return 0, err
	}
	defer v.end()
	return v.writeBlock(b, bn)
}

func (v *Volume) readInode(inum common.Inum) (*inode.Inode, error) {
	a := v.sb.Inum2Addr(inum)
	blk := make([]byte, common.BlockSize)
	if _, err := v.readBlock(blk, a.Blkno); err != nil {
		return nil, err
	}
	b := buf.MkBufLoad(a, common.INODESZ, blk)
	return inode.Decode(b.Data), nil
}

// writeInode stores ip in its slot of the inode table; the other records in
// the same block are left as they are on disk.
func (v *Volume) writeInode(inum common.Inum, ip *inode.Inode) error {
	a := v.sb.Inum2Addr(inum)
	v.blocks.Acquire(a.Blkno)
	defer v.blocks.Release(a.Blkno)
	blk := make([]byte, common.BlockSize)
	if _, err := v.readBlock(blk, a.Blkno); err != nil {
		return err
	}
	b := buf.MkBuf(a, common.INODESZ, ip.Encode())
	b.Install(blk)
	if _, err := v.writeBlock(blk, a.Blkno); err != nil {
		return err
	}
	util.DPrintf(10, "writeInode %d: %v\n", inum, ip)
	return nil
}

func (v *Volume) readTable(bn common.Bnum) (*inode.Table, error) {
	blk := make([]byte, common.BlockSize)
	if _, err := v.readBlock(blk, bn); err != nil {
		return nil, err
	}
	return inode.LoadTable(bn, blk), nil
}

// eachInode calls f on every inode record, in inode-number order.
func (v *Volume) eachInode(f func(inum common.Inum, ip *inode.Inode) error) error {
	blk := make([]byte, common.BlockSize)
	for i := uint64(0); i < v.sb.InodeBlocks; i++ {
		bn := v.sb.InodeStart() + i
		if _, err := v.readBlock(blk, bn); err != nil {
			return err
		}
		for j := uint64(0); j < common.NINODEBLK; j++ {
			inum := common.Inum(i*common.NINODEBLK + j)
			a := v.sb.Inum2Addr(inum)
			b := buf.MkBufLoad(a, common.INODESZ, blk)
			if err := f(inum, inode.Decode(b.Data)); err != nil {
				return err
			}
		}
	}
	return nil
}
