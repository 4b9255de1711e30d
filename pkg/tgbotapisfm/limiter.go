package tgbotapisfm

import (
	"sync"
	"time"
)

// DefaultPause keeps outgoing traffic under Telegram's ~30 messages/second.
const DefaultPause = 35 * time.Millisecond

// Limiter spaces calls at least pause apart.
type Limiter struct {
	mu       sync.Mutex
	pause    time.Duration
	lastCall time.Time
}

func NewLimiter() *Limiter {
	return NewLimiterWithPause(DefaultPause)
}

func NewLimiterWithPause(pause time.Duration) *Limiter {
	return &Limiter{pause: pause}
}

func (l *Limiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if elapsed := time.Since(l.lastCall); elapsed < l.pause {
		time.Sleep(l.pause - elapsed)
	}
	l.lastCall = time.Now()
}
