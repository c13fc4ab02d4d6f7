package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord(t *testing.T) {
	var op Op
	op.Record(time.Now().Add(-2 * time.Millisecond))
	op.Record(time.Now().Add(-2 * time.Millisecond))
	assert.Equal(t, uint32(2), op.Count())
	assert.True(t, op.MicrosPerOp() >= 2000, "at least 2ms per op")

	op.Reset()
	assert.Equal(t, uint32(0), op.Count())
	assert.Equal(t, float64(0), op.MicrosPerOp())
}

func TestFormatTable(t *testing.T) {
	ops := make([]Op, 2)
	ops[0].Record(time.Now())
	s := FormatTable([]string{"disk.Read", "disk.Write"}, ops)
	assert.Contains(t, s, "disk.Read")
	assert.Contains(t, s, "disk.Write")
	assert.Contains(t, s, "total")
	assert.Equal(t, 4, len(strings.Split(strings.TrimSpace(s), "\n")),
		"header, two ops and the total")
}

func TestMismatchedNames(t *testing.T) {
	assert.Panics(t, func() {
		FormatTable([]string{"a"}, nil)
	})
}
