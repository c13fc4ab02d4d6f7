// Package sfs is a small inode file system stored inside a single volume
// (a file or any disk.Disk). Files are named by inode number.
package sfs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mit-pdos/go-sfs/alloc"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/disk"
	"github.com/mit-pdos/go-sfs/inode"
	"github.com/mit-pdos/go-sfs/lockmap"
	"github.com/mit-pdos/go-sfs/super"
	"github.com/mit-pdos/go-sfs/util"
	"github.com/mit-pdos/go-sfs/util/stats"
)

type Volume struct {
	// held shared by every operation and exclusively by Unmount
	life    sync.RWMutex
	mounted bool

	d     disk.Disk
	timed *disk.Timed // nil unless mounted WithStats
	sb    *super.Superblock

	// allocMu makes find-free, link and mark a single reservation, and
	// keeps Check from seeing a write or delete half done.
	allocMu sync.Mutex
	alloc   *alloc.Alloc

	ilocks *lockmap.LockMap // by inode number
	blocks *lockmap.LockMap // by inode-table block

	ops [numOps]stats.Op
}

type options struct {
	stats bool
}

type Option func(*options)

// WithStats records the latency of every disk access; see WriteStats.
func WithStats() Option {
	return func(o *options) {
		o.stats = true
	}
}

func sizeError(err error) error {
	if errors.Is(err, super.ErrBadSize) {
		return fmt.Errorf("%w: %v", ErrInvalidVolumeSize, err)
	}
	return err
}

// Format creates (or truncates) the file at path and writes an empty file
// system of size bytes into it.
func Format(path string, size uint64) error {
	sb, err := super.MkSuper(size)
	if err != nil {
		return sizeError(err)
	}
	d, err := disk.NewFileDisk(path, sb.Blocks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVolumeOpenFailure, err)
	}
	err = format(d, sb)
	if cerr := d.Close(); err == nil {
		err = cerr
	}
	return err
}

// FormatDisk writes an empty file system onto d, using all of it. d stays
// open.
func FormatDisk(d disk.Disk) error {
	n, err := d.Size()
	if err != nil {
		return err
	}
	if n > common.MAXBLOCKS {
		return fmt.Errorf("%w: %d blocks", ErrInvalidVolumeSize, n)
	}
	sb, err := super.MkSuper(n * common.BlockSize)
	if err != nil {
		return sizeError(err)
	}
	return format(d, sb)
}

func format(d disk.Disk, sb *super.Superblock) error {
	v := &Volume{d: d, sb: sb}
	if _, err := v.writeBlock(sb.Encode(), common.SUPERBLK); err != nil {
		return err
	}
	zero := make([]byte, common.BlockSize)
	for bn := common.SUPERBLK + 1; bn < sb.MaxBnum(); bn++ {
		if _, err := v.writeBlock(zero, bn); err != nil {
			return err
		}
	}
	if err := d.Barrier(); err != nil {
		return err
	}
	util.DPrintf(1, "Format: %v\n", sb)
	return nil
}

// Mount opens the volume stored in the file at path.
func Mount(path string, opts ...Option) (*Volume, error) {
	d, err := disk.OpenFileDisk(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVolumeOpenFailure, err)
	}
	return MountDisk(d, opts...)
}

// MountDisk reads the superblock of d and rebuilds the free-block bitmap
// from the inode table. On failure d is closed.
func MountDisk(d disk.Disk, opts ...Option) (*Volume, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	v := &Volume{
		d:      d,
		ilocks: lockmap.MkLockMap(),
		blocks: lockmap.MkLockMap(),
	}
	if o.stats {
		v.timed = disk.NewTimed(d)
		v.d = v.timed
	}
	if err := v.load(); err != nil {
		d.Close()
		return nil, err
	}
	v.mounted = true
	util.DPrintf(1, "Mount: %v, %d blocks free\n", v.sb, v.alloc.NumFree())
	return v, nil
}

func (v *Volume) load() error {
	n, err := v.d.Size()
	if err != nil {
		return err
	}
	if n < common.MINBLOCKS {
		return fmt.Errorf("%w: device has %d blocks", ErrCorruptVolume, n)
	}
	blk := make([]byte, common.BlockSize)
	if _, err := v.d.ReadTo(common.SUPERBLK, blk); err != nil {
		return fmt.Errorf("reading superblock: %w", err)
	}
	sb, err := super.Decode(blk)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptVolume, err)
	}
	if sb.Blocks > n {
		return fmt.Errorf("%w: superblock says %d blocks, device has %d",
			ErrCorruptVolume, sb.Blocks, n)
	}
	v.sb = sb
	a, err := v.scan()
	if err != nil {
		return err
	}
	v.alloc = a
	return nil
}

// Unmount syncs and closes the device. Later operations return
// ErrNotMounted; unmounting twice is a no-op.
func (v *Volume) Unmount() error {
	v.life.Lock()
	defer v.life.Unlock()
	if !v.mounted {
		return nil
	}
	v.mounted = false
	v.alloc = nil
	err := v.d.Barrier()
	if cerr := v.d.Close(); err == nil {
		err = cerr
	}
	util.DPrintf(1, "Unmount: %v\n", err)
	return err
}

func (v *Volume) begin() error {
	v.life.RLock()
	if !v.mounted {
		v.life.RUnlock()
		return ErrNotMounted
	}
	return nil
}

func (v *Volume) end() {
	v.life.RUnlock()
}

// Super returns a copy of the superblock.
func (v *Volume) Super() super.Superblock {
	return *v.sb
}

type Statfs struct {
	Blocks      uint64
	InodeBlocks uint64
	Inodes      uint64
	DataStart   common.Bnum
	FreeBlocks  uint64
	UsedInodes  uint64
}

func (v *Volume) Statfs() (Statfs, error) {
	if err := v.begin(); err != nil {
		return Statfs{}, err
	}
	defer v.end()
	st := Statfs{
		Blocks:      v.sb.Blocks,
		InodeBlocks: v.sb.InodeBlocks,
		Inodes:      v.sb.Inodes,
		DataStart:   v.sb.DataStart(),
		FreeBlocks:  v.alloc.NumFree(),
	}
	err := v.eachInode(func(inum common.Inum, ip *inode.Inode) error {
		if ip.Valid {
			st.UsedInodes++
		}
		return nil
	})
	return st, err
}
