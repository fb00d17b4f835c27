package tripsim

import (
	"sync"
	"time"
)

// Clock reports the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// Timer is a handle to a periodic callback.
type Timer interface {
	// Stop cancels future callbacks. It must not block on an in-flight callback.
	Stop()
}

// Scheduler runs fn every d until the returned Timer is stopped.
type Scheduler interface {
	Every(d time.Duration, fn func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TickerScheduler drives callbacks from a time.Ticker on its own goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
