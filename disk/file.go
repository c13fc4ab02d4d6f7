package disk

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-sfs/util"
)

var _ Disk = (*FileDisk)(nil)

// FileDisk is a disk backed by a regular file (or a block device).
type FileDisk struct {
	mu        sync.RWMutex // protects fd against Close
	fd        int
	numBlocks uint64
}

// NewFileDisk creates (or truncates) path to hold numBlocks zeroed blocks.
func NewFileDisk(path string, numBlocks uint64) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0666)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	err = unix.Ftruncate(fd, int64(numBlocks*BlockSize))
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("truncating %s: %w", path, err)
	}
	util.DPrintf(1, "NewFileDisk: %s %d blocks\n", path, numBlocks)
	return &FileDisk{fd: fd, numBlocks: numBlocks}, nil
}

// OpenFileDisk opens an existing disk image; its size is the file size
// rounded down to whole blocks.
func OpenFileDisk(path string) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	numBlocks := uint64(stat.Size) / BlockSize
	util.DPrintf(1, "OpenFileDisk: %s %d blocks\n", path, numBlocks)
	return &FileDisk{fd: fd, numBlocks: numBlocks}, nil
}

func (d *FileDisk) ReadTo(a uint64, buf Block) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.fd < 0 {
		return 0, ErrClosed
	}
	if err := checkAccess(a, len(buf), d.numBlocks); err != nil {
		return 0, fmt.Errorf("read at %v: %w", a, err)
	}
	n, err := unix.Pread(d.fd, buf, int64(a*BlockSize))
	if err != nil {
		return uint64(n), fmt.Errorf("read at %v: %w", a, err)
	}
	if n < len(buf) {
		return uint64(n), fmt.Errorf("read at %v: %w", a, io.ErrUnexpectedEOF)
	}
	util.DPrintf(20, "read: %v %d bytes\n", a, n)
	return uint64(n), nil
}

func (d *FileDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	_, err := d.ReadTo(a, buf)
	return buf, err
}

func (d *FileDisk) Write(a uint64, v Block) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.fd < 0 {
		return 0, ErrClosed
	}
	if err := checkAccess(a, len(v), d.numBlocks); err != nil {
		return 0, fmt.Errorf("write at %v: %w", a, err)
	}
	n, err := unix.Pwrite(d.fd, v, int64(a*BlockSize))
	if err != nil {
		return uint64(n), fmt.Errorf("write at %v: %w", a, err)
	}
	if n < len(v) {
		return uint64(n), fmt.Errorf("write at %v: %w", a, io.ErrShortWrite)
	}
	util.DPrintf(20, "write: %v %d bytes\n", a, n)
	return uint64(n), nil
}

func (d *FileDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *FileDisk) Barrier() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.fd < 0 {
		return ErrClosed
	}
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	err := unix.Fsync(d.fd)
	if err != nil {
		return fmt.Errorf("file sync failed: %w", err)
	}
	util.DPrintf(20, "barrier\n")
	return nil
}

func (d *FileDisk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}
