package sfs

import (
	"fmt"
	"time"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/util"
)

type Mode int

const (
	// ModeRead opens an existing file.
	ModeRead Mode = iota
	// ModeWrite truncates the file, creating it if needed.
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// A File is an open inode with a read cursor. Writes always append at the
// end of the file and do not move the cursor.
//
// A File is not safe for concurrent use; distinct Files are.
type File struct {
	v      *Volume
	inum   common.Inum
	node   inode.Inode
	off    uint64
	closed bool
}

func (v *Volume) checkInum(inum common.Inum) error {
	if inum >= v.sb.NInode() {
		return fmt.Errorf("%w: %d, volume has %d inodes",
			ErrInodeIndexOutOfRange, inum, v.sb.NInode())
	}
	return nil
}

// Open returns a handle on inode inum. ModeRead requires the inode to hold a
// file; ModeWrite frees whatever the inode held and leaves an empty file.
func (v *Volume) Open(inum common.Inum, mode Mode) (*File, error) {
	if err := v.begin(); err != nil {
		return nil, err
	}
	defer v.end()
	defer v.ops[opOpen].Record(time.Now())

	if mode != ModeRead && mode != ModeWrite {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	if err := v.checkInum(inum); err != nil {
		return nil, err
	}
	v.ilocks.Acquire(uint64(inum))
	defer v.ilocks.Release(uint64(inum))

	ip, err := v.readInode(inum)
	if err != nil {
		return nil, err
	}
	if mode == ModeRead && !ip.Valid {
		return nil, fmt.Errorf("%w: inode %d", ErrFileNotFound, inum)
	}
	if mode == ModeWrite {
		if err := v.deleteLocked(inum); err != nil {
			return nil, err
		}
		ip.Reset()
		if err := v.writeInode(inum, ip); err != nil {
			return nil, err
		}
	}
	util.DPrintf(5, "Open %d %v: %v\n", inum, mode, ip)
	return &File{v: v, inum: inum, node: *ip}, nil
}

// Close discards the handle. Everything has already been persisted.
func (f *File) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	return nil
}

func (f *File) Inum() common.Inum {
	return f.inum
}

// Seek moves the read cursor; it may be placed past the end of the file.
func (f *File) Seek(off uint64) error {
	if f.closed {
		return ErrClosed
	}
	f.off = off
	return nil
}

func (f *File) Tell() uint64 {
	return f.off
}

// Size is the file size as of the last operation on this handle.
func (f *File) Size() uint64 {
	return f.node.Size
}

// refresh reloads the inode under the inode lock, in case another handle
// changed it.
func (f *File) refresh() (inode.Inode, error) {
	ip, err := f.v.readInode(f.inum)
	if err != nil {
		return inode.Inode{}, err
	}
	if !ip.Valid {
		return inode.Inode{}, fmt.Errorf("%w: inode %d was deleted", ErrFileNotFound, f.inum)
	}
	return *ip, nil
}
