// buf manages sub-block disk objects, to be packed into disk blocks
package buf

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-sfs/addr"
	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/util"
)

// A Buf is a disk object (an inode record, an indirect block or a whole data
// block) and the bytes it currently holds.
type Buf struct {
	Addr  addr.Addr
	Sz    uint64 // number of bytes
	Data  []byte
	dirty bool // has this object been written to?
}

func MkBuf(addr addr.Addr, sz uint64, data []byte) *Buf {
	if uint64(len(data)) != sz || addr.Off+sz > common.BlockSize {
		panic("MkBuf")
	}
	b := &Buf{
		Addr:  addr,
		Sz:    sz,
		Data:  data,
		dirty: false,
	}
	return b
}

// Load the bytes of a disk block into a new buf, as specified by addr. The
// buf aliases blk.
func MkBufLoad(addr addr.Addr, sz uint64, blk []byte) *Buf {
	if addr.Off+sz > uint64(len(blk)) {
		panic("MkBufLoad")
	}
	data := blk[addr.Off : addr.Off+sz]
	b := &Buf{
		Addr:  addr,
		Sz:    sz,
		Data:  data,
		dirty: false,
	}
	return b
}

// Install the bytes from buf into blk.
func (buf *Buf) Install(blk []byte) {
	util.DPrintf(20, "%v: install\n", buf.Addr)
	copy(blk[buf.Addr.Off:buf.Addr.Off+buf.Sz], buf.Data)
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

// PtrGet decodes the block pointer at byte off of buf.
func (buf *Buf) PtrGet(off uint64) common.Ptr {
	dec := marshal.NewDec(buf.Data[off : off+common.PTRSZ])
	return common.Ptr(dec.GetInt32())
}

func (buf *Buf) PtrPut(off uint64, v common.Ptr) {
	enc := marshal.NewEnc(common.PTRSZ)
	enc.PutInt32(uint32(v))
	copy(buf.Data[off:off+common.PTRSZ], enc.Finish())
	buf.SetDirty()
}
