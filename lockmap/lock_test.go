package lockmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireRelease(t *testing.T) {
	l := MkLockMap()
	l.Acquire(1)
	l.Acquire(1 + NSHARD) // same shard, different lock
	assert.Equal(t, 2, l.nlocks())
	l.Release(1)
	l.Release(1 + NSHARD)
	assert.Equal(t, 0, l.nlocks(), "free locks take no space")
}

func TestMutualExclusion(t *testing.T) {
	l := MkLockMap()
	var wg sync.WaitGroup
	counters := make([]int, 3)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				a := uint64(i % 3)
				l.Acquire(a)
				counters[a]++
				l.Release(a)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8*334, counters[0])
	assert.Equal(t, 8*333, counters[1])
	assert.Equal(t, 8*333, counters[2])
	assert.Equal(t, 0, l.nlocks())
}

func TestReleaseUnheld(t *testing.T) {
	l := MkLockMap()
	assert.Panics(t, func() { l.Release(5) })
}
