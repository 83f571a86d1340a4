package concurrency

import (
	"sync"
)

const (
	// DefaultMax default max
	DefaultMax = 16
)

// GoLimit go limit
type GoLimit struct {
	ch chan struct{}
}

// NewGoLimit new go limit
func NewGoLimit(max int) *GoLimit {
	if max <= 0 {
		max = DefaultMax
	}

	return &GoLimit{
		ch: make(chan struct{}, max),
	}
}

// Add blocks until a slot is free
func (g *GoLimit) Add() {
	g.ch <- struct{}{}
}

// Done release a slot
func (g *GoLimit) Done() {
	<-g.ch
}

// KeyedMutex one mutex per key, entries are dropped once nobody holds or waits for them
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// NewKeyedMutex new keyed mutex
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*keyedLock),
	}
}

// Lock locks key and returns the unlock func
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len number of keys held or waited on
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.locks)
}
