package build

import "sync"

// NamedLock is a set of mutexes keyed by name.  A mutex is created the first
// time its name is locked and is released once no goroutine holds or waits on
// it, so the set only ever contains names that are in use.
type NamedLock struct {
	m     sync.Mutex
	locks map[string]*namedMutex
}

// namedMutex is a mutex with a count of the goroutines holding or waiting on
// it.  The count is guarded by the NamedLock's mutex.
type namedMutex struct {
	sync.Mutex
	refs int
}

// NewNamedLock creates an empty named lock set.
func NewNamedLock() *NamedLock {
	return &NamedLock{locks: make(map[string]*namedMutex)}
}

// Lock acquires the mutex for name.
func (nl *NamedLock) Lock(name string) {
	nl.m.Lock()
	nm, ok := nl.locks[name]
	if !ok {
		nm = &namedMutex{}
		nl.locks[name] = nm
	}
	nm.refs++
	nl.m.Unlock()

	nm.Lock()
}

// Unlock releases the mutex for name.  It panics if the name is not locked.
func (nl *NamedLock) Unlock(name string) {
	nl.m.Lock()
	defer nl.m.Unlock()

	nm, ok := nl.locks[name]
	if !ok {
		panic("build: unlock of unlocked name " + name)
	}

	nm.refs--
	if nm.refs == 0 {
		delete(nl.locks, name)
	}

	nm.Unlock()
}

// Len returns the number of names currently held or waited on.
func (nl *NamedLock) Len() int {
	nl.m.Lock()
	defer nl.m.Unlock()

	return len(nl.locks)
}
