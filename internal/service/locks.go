package service

import (
	"sync"
)

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks serializes processing per userId. Turns for different users run
// in parallel; two concurrent turns (or a turn and an external deposit/payout
// event) for the same user never interleave their read-modify-write.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// Acquire blocks until the lock for userID is held and returns the release
// function. Lock entries are removed once no one holds or waits on them.
func (l *userLocks) Acquire(userID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[userID]
	if !ok {
		lock = &userLock{}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
