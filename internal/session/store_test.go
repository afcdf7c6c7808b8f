package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

func datedPrompt(now time.Time) string {
	return "Hoy es " + now.Format("2006-01-02")
}

func TestGetOrCreate_LazyAndStable(t *testing.T) {
	st := NewStore(40, datedPrompt)
	if st.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 before first contact", st.Len())
	}

	a := st.GetOrCreate(1)
	b := st.GetOrCreate(1)
	if a != b {
		t.Error("GetOrCreate returned different sessions for the same user")
	}
	if st.GetOrCreate(2) == a {
		t.Error("different users share a session")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}

func TestSystemPromptCarriesCreationDate(t *testing.T) {
	st := NewStore(40, datedPrompt)
	st.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }

	s := st.GetOrCreate(1)
	s.Lock()
	msgs := s.Messages()
	s.Unlock()
	if msgs[0].Role != provider.RoleSystem {
		t.Fatalf("msgs[0].Role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "2026-08-30") {
		t.Errorf("system prompt %q missing creation date", msgs[0].Content)
	}

	// A cleared session rebuilds the prompt with the new date.
	st.Clear(1)
	st.now = func() time.Time { return time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC) }
	s = st.GetOrCreate(1)
	s.Lock()
	msgs = s.Messages()
	s.Unlock()
	if !strings.Contains(msgs[0].Content, "2026-09-02") {
		t.Errorf("recreated prompt %q missing fresh date", msgs[0].Content)
	}
}

func TestCommit_AtomicAndOrdered(t *testing.T) {
	st := NewStore(40, datedPrompt)
	s := st.GetOrCreate(1)

	s.Lock()
	s.Commit([]provider.Message{
		{Role: provider.RoleUser, Content: "hola"},
		{Role: provider.RoleAssistant, Content: "¡Hola!"},
	})
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	msgs := s.Messages()
	s.Unlock()

	if msgs[1].Content != "hola" || msgs[2].Content != "¡Hola!" {
		t.Errorf("transcript order wrong: %+v", msgs[1:])
	}
}

func TestEviction_DropsOldestAndOrphans(t *testing.T) {
	st := NewStore(4, datedPrompt)
	s := st.GetOrCreate(1)

	s.Lock()
	defer s.Unlock()
	// First turn: plain exchange.
	s.Commit([]provider.Message{
		{Role: provider.RoleUser, Content: "u1"},
		{Role: provider.RoleAssistant, Content: "a1"},
	})
	// Second turn: a tool turn of 4 messages fills the window exactly.
	s.Commit([]provider.Message{
		{Role: provider.RoleUser, Content: "u2"},
		{Role: provider.RoleAssistant, ToolCalls: []provider.ToolCall{{ID: "c1", Name: "add_expense"}}},
		{Role: provider.RoleTool, ToolCallID: "c1", ToolName: "add_expense", Content: "ok"},
		{Role: provider.RoleAssistant, Content: "a2"},
	})

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 after eviction", s.Len())
	}
	msgs := s.Messages()
	if msgs[1].Content != "u2" {
		t.Errorf("oldest surviving = %q, want u2 (oldest turn evicted whole)", msgs[1].Content)
	}

	// Two more short turns push the trim boundary onto the tool result,
	// which must be dropped along with everything before it.
	s.Commit([]provider.Message{{Role: provider.RoleUser, Content: "u3"}})
	s.Commit([]provider.Message{{Role: provider.RoleUser, Content: "u4"}})

	msgs = s.Messages()
	if msgs[1].Role == provider.RoleTool {
		t.Fatalf("history opens with an orphaned tool result: %+v", msgs[1])
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after orphan drop", s.Len())
	}
	if msgs[1].Content != "a2" {
		t.Errorf("oldest surviving = %q, want a2", msgs[1].Content)
	}
}

func TestSweepInactive(t *testing.T) {
	st := NewStore(40, datedPrompt)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }

	st.GetOrCreate(1)

	// User 2 shows up later and is still fresh at sweep time.
	st.now = func() time.Time { return base.Add(20 * time.Minute) }
	s2 := st.GetOrCreate(2)

	st.now = func() time.Time { return base.Add(31 * time.Minute) }
	removed := st.SweepInactive(30 * time.Minute)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}

	// A locked (mid-turn) session is skipped even when idle.
	s2.Lock()
	st.now = func() time.Time { return base.Add(24 * time.Hour) }
	if removed := st.SweepInactive(30 * time.Minute); removed != 0 {
		t.Errorf("removed = %d, want 0 while session is mid-turn", removed)
	}
	s2.Unlock()
}

func TestPerUserSerialization(t *testing.T) {
	st := NewStore(100, datedPrompt)
	s := st.GetOrCreate(1)

	const turns = 20
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Lock()
			defer s.Unlock()
			s.Commit([]provider.Message{
				{Role: provider.RoleUser, Content: fmt.Sprintf("u%d", i)},
				{Role: provider.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
			})
		}(i)
	}
	wg.Wait()

	s.Lock()
	defer s.Unlock()
	if s.Len() != turns*2 {
		t.Fatalf("Len() = %d, want %d", s.Len(), turns*2)
	}
	// Turns never interleave: each user message is followed by its reply.
	msgs := s.Messages()[1:]
	for i := 0; i < len(msgs); i += 2 {
		u, a := msgs[i], msgs[i+1]
		if u.Role != provider.RoleUser || a.Role != provider.RoleAssistant {
			t.Fatalf("interleaved turn at %d: %q/%q", i, u.Role, a.Role)
		}
		if u.Content[1:] != a.Content[1:] {
			t.Fatalf("mismatched pair %q vs %q", u.Content, a.Content)
		}
	}
}
