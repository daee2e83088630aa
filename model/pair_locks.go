package model

import (
	"sync"

	"github.com/Slm0nB/play-together-api-sub000/relation"
)

// pairLocks hands out one mutex per unordered user pair. Entries live only
// while someone holds or waits for them.
type pairLocks struct {
	mu    sync.Mutex
	locks map[[2]int64]*pairLock
}

type pairLock struct {
	sync.Mutex
	refs int
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[[2]int64]*pairLock)}
}

// lock blocks until the pair is free and returns the matching unlock.
func (p *pairLocks) lock(user1, user2 int64) func() {

	a, b := relation.Normalize(user1, user2)
	key := [2]int64{a, b}

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pairLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

func (p *pairLocks) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
