package alloc

import (
	"sync"

	"github.com/mit-pdos/go-sfs/util"
)

// Alloc is a bit map of block numbers: bit n is set iff block n is in use.
// Bit n lives in byte n/8 at position n%8.
//
// AllocNum and FindFree only look for free numbers; a number becomes used
// when its owner calls MarkUsed.
type Alloc struct {
	mu     *sync.Mutex // protects bitmap
	bitmap []byte
	len    uint64 // number of valid bits
}

func MkAlloc(len uint64) *Alloc {
	return &Alloc{
		mu:     new(sync.Mutex),
		bitmap: make([]byte, util.RoundUp(len, 8)),
		len:    len,
	}
}

func (a *Alloc) Len() uint64 {
	return a.len
}

func (a *Alloc) isUsed(num uint64) bool {
	return a.bitmap[num/8]&(1<<(num%8)) != 0
}

// first free number >= start
func (a *Alloc) findFree(start uint64) (uint64, bool) {
	for num := start; num < a.len; num++ {
		if num%8 == 0 && a.bitmap[num/8] == 0xFF {
			num += 7
			continue
		}
		if !a.isUsed(num) {
			return num, true
		}
	}
	return 0, false
}

// AllocNum returns the lowest free number without marking it.
func (a *Alloc) AllocNum() (uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	num, ok := a.findFree(0)
	util.DPrintf(15, "AllocNum: %d %v\n", num, ok)
	return num, ok
}

// FindFree returns the n lowest free numbers without marking them, or false
// if there are fewer than n.
func (a *Alloc) FindFree(n uint64) ([]uint64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	nums := make([]uint64, 0, n)
	var start uint64 = 0
	for uint64(len(nums)) < n {
		num, ok := a.findFree(start)
		if !ok {
			util.DPrintf(5, "FindFree: only %d of %d free\n", len(nums), n)
			return nil, false
		}
		nums = append(nums, num)
		start = num + 1
	}
	return nums, true
}

func (a *Alloc) MarkUsed(num uint64) {
	if num >= a.len {
		panic("MarkUsed")
	}
	a.mu.Lock()
	a.bitmap[num/8] |= 1 << (num % 8)
	a.mu.Unlock()
}

func (a *Alloc) FreeNum(num uint64) {
	if num >= a.len {
		panic("FreeNum")
	}
	a.mu.Lock()
	a.bitmap[num/8] &= ^(1 << (num % 8))
	a.mu.Unlock()
}

func (a *Alloc) IsUsed(num uint64) bool {
	if num >= a.len {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.isUsed(num)
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumFree returns the number of free numbers.
func (a *Alloc) NumFree() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var used uint64
	for _, b := range a.bitmap {
		used += popCnt(b)
	}
	return a.len - used
}

// Used lists the used numbers in increasing order.
func (a *Alloc) Used() []uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var nums []uint64
	for num := uint64(0); num < a.len; num++ {
		if a.isUsed(num) {
			nums = append(nums, num)
		}
	}
	return nums
}

// FirstDiff returns the lowest number whose state differs between a and b.
func (a *Alloc) FirstDiff(b *Alloc) (uint64, bool) {
	if a.len != b.len {
		return util.Min(a.len, b.len), true
	}
	for num := uint64(0); num < a.len; num++ {
		if a.IsUsed(num) != b.IsUsed(num) {
			return num, true
		}
	}
	return 0, false
}
