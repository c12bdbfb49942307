package tracker

import (
	"sync"
	"time"
)

type Scheduler interface {
	// Every calls fn each d until the returned cancel func is called.
	Every(d time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs fn on its own goroutine. Cancel doesn't wait for an in-flight fn.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// ticker and done can both be ready
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
