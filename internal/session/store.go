package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

// PromptFn builds the system prompt for a new session. It runs at session
// creation, so the prompt always carries the current date.
type PromptFn func(now time.Time) string

// Store tracks active sessions by user id. Sessions are created lazily and
// removed by Clear or the inactivity sweep.
type Store struct {
	mu         sync.Mutex
	sessions   map[int64]*Session
	maxHistory int
	prompt     PromptFn
	now        func() time.Time
}

// NewStore creates an empty session store. maxHistory bounds each session's
// transcript; zero means unbounded.
func NewStore(maxHistory int, prompt PromptFn) *Store {
	return &Store{
		sessions:   make(map[int64]*Session),
		maxHistory: maxHistory,
		prompt:     prompt,
		now:        time.Now,
	}
}

// GetOrCreate returns the user's session, creating it on first contact.
func (st *Store) GetOrCreate(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[userID]; ok {
		return s
	}
	now := st.now()
	s := &Session{
		UserID:     userID,
		system:     provider.Message{Role: provider.RoleSystem, Content: st.prompt(now)},
		maxHistory: st.maxHistory,
		lastActive: now,
		createdAt:  now,
	}
	st.sessions[userID] = s
	slog.Debug("session created", slog.Int64("user_id", userID))
	return s
}

// Clear removes the user's session entirely. The next message starts a
// fresh conversation with a newly built system prompt.
func (st *Store) Clear(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[userID]; ok {
		delete(st.sessions, userID)
		slog.Info("session cleared", slog.Int64("user_id", userID))
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// SweepInactive removes sessions idle longer than maxIdle and returns how
// many were dropped. Sessions mid-turn are skipped, never blocked on.
func (st *Store) SweepInactive(maxIdle time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.idleSince(now)
		s.mu.Unlock()
		if idle > maxIdle {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("inactive sessions swept", slog.Int("removed", removed))
	}
	return removed
}
