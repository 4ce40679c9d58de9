package indexer

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrIndexingInProgress is returned when an indexing run is already
// underway for the same project root.
var ErrIndexingInProgress = errors.New("indexing already in progress for this project")

// IndexLock provides non-blocking lock semantics using atomic operations.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IndexLock) Release() {
	l.state.Store(0)
}

// lockRegistry hands out one IndexLock per project root so concurrent
// runs on the same root are rejected while distinct roots proceed
// independently.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*IndexLock
}

func (r *lockRegistry) forRoot(rootPath string) *IndexLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[rootPath]
	if !ok {
		l = &IndexLock{}
		r.locks[rootPath] = l
	}
	return l
}

var locks = lockRegistry{locks: make(map[string]*IndexLock)}
