// Package progress drives the simulated advance of a long-running request whose
// backend reports no progress of its own.
package progress

import (
	"fmt"
	"sync"
	"time"

	apperrors "exodash/internal/errors"
)

// Config shapes the simulated curve: every Tick the value advances by Step until it
// reaches Cap. Cap stays below 100 so that only real completion shows 100.
type Config struct {
	Tick time.Duration
	Step int
	Cap  int
}

// DefaultConfig advances 10 points every half second, stalling at 90.
func DefaultConfig() Config {
	return Config{Tick: 500 * time.Millisecond, Step: 10, Cap: 90}
}

// Validate rejects curves that never move or that could reach 100.
func (c Config) Validate() error {
	switch {
	case c.Tick <= 0:
		return apperrors.ConfigInvalid("progress tick must be positive")
	case c.Step <= 0:
		return apperrors.ConfigInvalid("progress step must be positive")
	case c.Cap <= 0 || c.Cap >= 100:
		return apperrors.ConfigInvalid(fmt.Sprintf("progress cap must be in 1..99, got %d", c.Cap))
	}
	return nil
}

// Advance returns the next value after current, never above Cap. A current value
// already past Cap is returned unchanged.
func (c Config) Advance(current int) int {
	if current >= c.Cap {
		return current
	}
	next := current + c.Step
	if next > c.Cap {
		next = c.Cap
	}
	return next
}

// Ticker calls a function on a fixed interval until stopped.
type Ticker struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Start begins calling fn every interval on its own goroutine.
func Start(interval time.Duration, fn func()) *Ticker {
	t := &Ticker{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(t.done)
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Stop ends the ticker and waits for an in-flight call to return, so no call starts
// after Stop. Safe to call more than once. Must not be called from fn or while
// holding a lock fn takes.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
	<-t.done
}
