package main

import (
	"time"

	"github.com/juju/mutex/v2"
)

const lockName = "mountroulette-store"

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realClock) Now() time.Time {
	return time.Now()
}

// acquireLock acquires the machine wide lock which guards the data store.
// It returns an error when the lock could not be acquired before timeout.
func acquireLock(timeout time.Duration) (mutex.Releaser, error) {
	return mutex.Acquire(mutex.Spec{
		Name:    lockName,
		Clock:   realClock{},
		Delay:   100 * time.Millisecond,
		Timeout: timeout,
	})
}
