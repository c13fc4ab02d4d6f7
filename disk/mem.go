package disk

import (
	"fmt"
	"sync"

	gdisk "github.com/tchajed/goose/machine/disk"
)

var _ Disk = (*gooseDisk)(nil)

// gooseDisk adapts a goose disk, which panics on bad accesses and only moves
// whole blocks, to Disk.
type gooseDisk struct {
	l      *sync.Mutex // makes partial writes atomic
	d      gdisk.Disk
	closed bool
}

// Wrap adapts a goose disk.
func Wrap(d gdisk.Disk) Disk {
	return &gooseDisk{l: new(sync.Mutex), d: d}
}

// NewMemDisk returns a zeroed in-memory disk of numBlocks blocks.
func NewMemDisk(numBlocks uint64) Disk {
	return Wrap(gdisk.NewMemDisk(numBlocks))
}

func (d *gooseDisk) ReadTo(a uint64, buf Block) (uint64, error) {
	d.l.Lock()
	defer d.l.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	if err := checkAccess(a, len(buf), d.d.Size()); err != nil {
		return 0, fmt.Errorf("read at %v: %w", a, err)
	}
	if uint64(len(buf)) == BlockSize {
		d.d.ReadTo(a, buf)
	} else {
		copy(buf, d.d.Read(a))
	}
	return uint64(len(buf)), nil
}

func (d *gooseDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	_, err := d.ReadTo(a, buf)
	return buf, err
}

func (d *gooseDisk) Write(a uint64, v Block) (uint64, error) {
	d.l.Lock()
	defer d.l.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	if err := checkAccess(a, len(v), d.d.Size()); err != nil {
		return 0, fmt.Errorf("write at %v: %w", a, err)
	}
	if uint64(len(v)) == BlockSize {
		d.d.Write(a, v)
	} else {
		blk := d.d.Read(a)
		copy(blk, v)
		d.d.Write(a, blk)
	}
	return uint64(len(v)), nil
}

func (d *gooseDisk) Size() (uint64, error) {
	return d.d.Size(), nil
}

func (d *gooseDisk) Barrier() error {
	d.l.Lock()
	defer d.l.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.d.Barrier()
	return nil
}

func (d *gooseDisk) Close() error {
	d.l.Lock()
	defer d.l.Unlock()
	if !d.closed {
		d.closed = true
		d.d.Close()
	}
	return nil
}
