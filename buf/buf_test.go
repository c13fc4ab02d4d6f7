package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-sfs/addr"
	"github.com/mit-pdos/go-sfs/common"
)

func TestInstall(t *testing.T) {
	blk := make([]byte, common.BlockSize)
	blk[31] = 0xEE
	blk[64] = 0xEE
	b := MkBuf(addr.MkAddr(1, 32), 32, []byte{
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
		17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32,
	})
	b.Install(blk)
	assert.Equal(t, byte(0xEE), blk[31], "byte before is untouched")
	assert.Equal(t, byte(1), blk[32])
	assert.Equal(t, byte(32), blk[63])
	assert.Equal(t, byte(0xEE), blk[64], "byte after is untouched")
}

func TestLoadAliases(t *testing.T) {
	blk := make([]byte, common.BlockSize)
	blk[100] = 7
	b := MkBufLoad(addr.MkAddr(2, 96), 32, blk)
	assert.Equal(t, byte(7), b.Data[4])
	b.Data[5] = 9
	assert.Equal(t, byte(9), blk[101])
	assert.False(t, b.IsDirty())
}

func TestPtrGetPut(t *testing.T) {
	blk := make([]byte, common.BlockSize)
	b := MkBufLoad(addr.MkAddr(5, 0), common.BlockSize, blk)
	b.PtrPut(8, common.MkPtr(3))
	assert.True(t, b.IsDirty())
	assert.Equal(t, common.MkPtr(3), b.PtrGet(8))
	assert.Equal(t, common.NULLPTR, b.PtrGet(4))
	// little-endian byte offset 3*4096 = 0x3000
	assert.Equal(t, []byte{0x00, 0x30, 0x00, 0x00}, blk[8:12])
}

func TestMkBufBadSize(t *testing.T) {
	assert.Panics(t, func() {
		MkBuf(addr.MkAddr(1, 4080), 32, make([]byte, 32))
	})
}
