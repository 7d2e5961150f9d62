package workflow

import (
	"context"
	"hash/fnv"
	"sync"
)

// threadLocks serializes turns per thread id with a sharded mutex map.
// Turns for distinct threads proceed in parallel; two turns for the same
// thread never interleave. Cross-process serialization, when needed, is
// layered on by the caller via distlock before ProcessEmail.
type threadLocks struct {
	shards [lockShards]lockShard
}

const lockShards = 32

type lockShard struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	tl := &threadLocks{}
	for i := range tl.shards {
		tl.shards[i].locks = map[string]*threadLock{}
	}
	return tl
}

func (tl *threadLocks) shard(threadID string) *lockShard {
	h := fnv.New32a()
	h.Write([]byte(threadID))
	return &tl.shards[h.Sum32()%lockShards]
}

// acquire blocks until the thread's logical lock is held, honoring
// context cancellation while waiting. The returned function releases the
// lock and drops the map entry once no turn references it.
func (tl *threadLocks) acquire(ctx context.Context, threadID string) (func(), error) {
	shard := tl.shard(threadID)

	shard.mu.Lock()
	lock, ok := shard.locks[threadID]
	if !ok {
		lock = &threadLock{}
		shard.locks[threadID] = lock
	}
	lock.refs++
	shard.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		lock.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// The goroutine will still take the mutex; hand it straight back.
		go func() {
			<-acquired
			lock.mu.Unlock()
			tl.unref(shard, threadID, lock)
		}()
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			lock.mu.Unlock()
			tl.unref(shard, threadID, lock)
		})
	}
	return release, nil
}

func (tl *threadLocks) unref(shard *lockShard, threadID string, lock *threadLock) {
	shard.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(shard.locks, threadID)
	}
	shard.mu.Unlock()
}
