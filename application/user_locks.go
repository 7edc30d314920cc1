package application

import "sync"

// UserLocks serializes work per username inside this process.
// Entries are reference counted and removed when the last holder unlocks.
type UserLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewUserLocks creates an empty lock table
func NewUserLocks() *UserLocks {
	return &UserLocks{
		locks: make(map[string]*userLock),
	}
}

// Lock blocks until username is free and returns the matching unlock
func (l *UserLocks) Lock(username string) func() {
	l.mu.Lock()
	lock, ok := l.locks[username]
	if !ok {
		lock = &userLock{}
		l.locks[username] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.mu.Unlock()

			l.mu.Lock()
			lock.refs--
			if lock.refs == 0 {
				delete(l.locks, username)
			}
			l.mu.Unlock()
		})
	}
}

// size returns the number of live entries
func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
