package sfs

import (
	"io"

	"github.com/mit-pdos/go-sfs/util/stats"
)

const (
	opOpen int = iota
	opRead
	opWrite
	opDelete
	numOps
)

var opNames = []string{"OPEN", "READ", "WRITE", "DELETE"}

// WriteStats prints the number and latency of file operations and, for a
// volume mounted WithStats, of disk accesses.
func (v *Volume) WriteStats(w io.Writer) {
	stats.WriteTable(opNames, v.ops[:], w)
	if v.timed != nil {
		v.timed.WriteStats(w)
	}
}

func (v *Volume) ResetStats() {
	for i := range v.ops {
		v.ops[i].Reset()
	}
	if v.timed != nil {
		v.timed.ResetStats()
	}
}
