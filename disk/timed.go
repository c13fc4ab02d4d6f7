package disk

import (
	"io"
	"time"

	"github.com/mit-pdos/go-sfs/util/stats"
)

// Timed records the latency of every operation on the disk it wraps.
type Timed struct {
	d   Disk
	ops [3]stats.Op
}

func NewTimed(d Disk) *Timed {
	return &Timed{d: d}
}

const (
	readOp int = iota
	writeOp
	barrierOp
)

var ops = []string{"disk.Read", "disk.Write", "disk.Barrier"}

// assert that Timed implements Disk
var _ Disk = &Timed{}

func (d *Timed) ReadTo(a uint64, b Block) (uint64, error) {
	defer d.ops[readOp].Record(time.Now())
	return d.d.ReadTo(a, b)
}

func (d *Timed) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	_, err := d.ReadTo(a, buf)
	return buf, err
}

func (d *Timed) Write(a uint64, b Block) (uint64, error) {
	defer d.ops[writeOp].Record(time.Now())
	return d.d.Write(a, b)
}

func (d *Timed) Barrier() error {
	defer d.ops[barrierOp].Record(time.Now())
	return d.d.Barrier()
}

func (d *Timed) Size() (uint64, error) {
	return d.d.Size()
}

func (d *Timed) Close() error {
	return d.d.Close()
}

func (d *Timed) WriteStats(w io.Writer) {
	stats.WriteTable(ops, d.ops[:], w)
}

func (d *Timed) ResetStats() {
	for i := range d.ops {
		d.ops[i].Reset()
	}
}
