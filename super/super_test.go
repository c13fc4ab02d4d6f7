package super

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-sfs/addr"
	"github.com/mit-pdos/go-sfs/common"
)

func TestMkSuper(t *testing.T) {
	assert := assert.New(t)

	sb, err := MkSuper(4 * 4096)
	require.NoError(t, err)
	assert.Equal(uint64(4), sb.Blocks)
	assert.Equal(uint64(1), sb.InodeBlocks)
	assert.Equal(uint64(128), sb.Inodes)
	assert.Equal(common.Bnum(2), sb.DataStart())

	sb, err = MkSuper(30 * 4096)
	require.NoError(t, err)
	assert.Equal(uint64(3), sb.InodeBlocks, "exactly a tenth")

	sb, err = MkSuper(31 * 4096)
	require.NoError(t, err)
	assert.Equal(uint64(4), sb.InodeBlocks, "rounded up")
	assert.Equal(uint64(4*128), sb.Inodes)
}

func TestMkSuperBadSize(t *testing.T) {
	for _, sz := range []uint64{0, 4095, 4097, 2 * 4096, 3*4096 + 1,
		(common.MAXBLOCKS + 1) * 4096} {
		_, err := MkSuper(sz)
		assert.ErrorIs(t, err, ErrBadSize, "size %d", sz)
	}
	_, err := MkSuper(3 * 4096)
	assert.NoError(t, err, "smallest volume")
}

func TestEncodeLayout(t *testing.T) {
	sb, err := MkSuper(4 * 4096)
	require.NoError(t, err)
	blk := sb.Encode()
	require.Equal(t, int(common.BlockSize), len(blk))
	assert.Equal(t, uint32(0xf0f03410), binary.LittleEndian.Uint32(blk[0:4]))
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(blk[4:8]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(blk[8:12]))
	assert.Equal(t, uint32(128), binary.LittleEndian.Uint32(blk[12:16]))
	assert.Equal(t, make([]byte, common.BlockSize-SUPERSZ), blk[SUPERSZ:],
		"padded with zeros")
}

func TestDecode(t *testing.T) {
	sb, err := MkSuper(100 * 4096)
	require.NoError(t, err)
	sb2, err := Decode(sb.Encode())
	require.NoError(t, err)
	assert.Equal(t, sb, sb2)
}

func TestDecodeBad(t *testing.T) {
	_, err := Decode(make([]byte, common.BlockSize))
	assert.ErrorIs(t, err, ErrBadMagic)

	sb, _ := MkSuper(10 * 4096)
	blk := sb.Encode()
	binary.LittleEndian.PutUint32(blk[12:16], 7)
	_, err = Decode(blk)
	assert.ErrorIs(t, err, ErrBadGeometry, "inode count")

	blk = sb.Encode()
	binary.LittleEndian.PutUint32(blk[8:12], 9)
	_, err = Decode(blk)
	assert.ErrorIs(t, err, ErrBadGeometry, "no data blocks")
}

func TestInum2Addr(t *testing.T) {
	sb, _ := MkSuper(40 * 4096)
	assert.Equal(t, addr.MkAddr(1, 0), sb.Inum2Addr(0))
	assert.Equal(t, addr.MkAddr(4, 127*32), sb.Inum2Addr(sb.NInode()-1))
	assert.False(t, sb.IsData(4))
	assert.True(t, sb.IsData(5))
	assert.True(t, sb.IsData(39))
	assert.False(t, sb.IsData(40))
}
