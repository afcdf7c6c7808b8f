// Package session keeps one in-memory conversation per Telegram user:
// bounded history, a per-user lock serializing turns, and idle cleanup.
package session

import (
	"sync"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

// Session is one user's conversation state. The mutex is held by the
// orchestrator for a whole turn, so concurrent messages from the same user
// queue up instead of interleaving.
type Session struct {
	UserID int64

	mu         sync.Mutex
	system     provider.Message
	history    []provider.Message
	maxHistory int
	lastActive time.Time
	createdAt  time.Time
}

// Lock acquires the session for a turn.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Messages returns the transcript to send to the provider: the system
// prompt followed by a copy of the bounded history. Callers must hold the
// session lock.
func (s *Session) Messages() []provider.Message {
	out := make([]provider.Message, 0, len(s.history)+1)
	out = append(out, s.system)
	out = append(out, s.history...)
	return out
}

// Len returns the number of history messages (system prompt excluded).
// Callers must hold the session lock.
func (s *Session) Len() int { return len(s.history) }

// Commit appends a completed turn to the history, then evicts oldest-first
// down to the limit. A turn is committed whole or not at all; the
// orchestrator stages messages and calls Commit only on success. Callers
// must hold the session lock.
func (s *Session) Commit(staged []provider.Message) {
	s.history = append(s.history, staged...)
	s.lastActive = time.Now()
	s.evict()
}

// evict drops the oldest messages past the limit, then keeps dropping
// while the history would open with an orphaned tool result.
func (s *Session) evict() {
	if s.maxHistory <= 0 || len(s.history) <= s.maxHistory {
		return
	}
	s.history = s.history[len(s.history)-s.maxHistory:]
	for len(s.history) > 0 && s.history[0].Role == provider.RoleTool {
		s.history = s.history[1:]
	}
}

// idleSince reports how long the session has been untouched.
func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(s.lastActive)
}
