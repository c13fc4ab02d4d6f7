// lockmap is a sharded map of locks.
//
// A LockMap behaves as if it held one mutex for every uint64 (an inode number,
// or a block number); Acquire(a) locks the mutex of a and Release(a) unlocks
// it. Only locks that are held or waited for take up space. Locks live in a
// fixed number of shards, shard i holding the state of every a with
// a % NSHARD == i.
package lockmap

import (
	"sync"
)

type lockState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type lockShard struct {
	mu    *sync.Mutex
	state map[uint64]*lockState
}

func mkLockShard() *lockShard {
	return &lockShard{
		mu:    new(sync.Mutex),
		state: make(map[uint64]*lockState),
	}
}

func (lmap *lockShard) acquire(addr uint64) {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	state, ok := lmap.state[addr]
	if !ok {
		state = &lockState{cond: sync.NewCond(lmap.mu)}
		lmap.state[addr] = state
	}
	for state.held {
		state.waiters++
		state.cond.Wait()
		state.waiters--
	}
	state.held = true
}

func (lmap *lockShard) release(addr uint64) {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	state, ok := lmap.state[addr]
	if !ok || !state.held {
		panic("lockmap: release of unheld lock")
	}
	state.held = false
	if state.waiters > 0 {
		state.cond.Signal()
	} else {
		delete(lmap.state, addr)
	}
}

func (lmap *lockShard) size() int {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	return len(lmap.state)
}

const NSHARD uint64 = 43

type LockMap struct {
	shards []*lockShard
}

func MkLockMap() *LockMap {
	shards := make([]*lockShard, NSHARD)
	for i := range shards {
		shards[i] = mkLockShard()
	}
	return &LockMap{shards: shards}
}

func (lmap *LockMap) Acquire(addr uint64) {
	lmap.shards[addr%NSHARD].acquire(addr)
}

func (lmap *LockMap) Release(addr uint64) {
	lmap.shards[addr%NSHARD].release(addr)
}

// nlocks counts the locks that are held or waited for.
func (lmap *LockMap) nlocks() int {
	n := 0
	for _, s := range lmap.shards {
		n += s.size()
	}
	return n
}
