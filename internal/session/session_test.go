package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHistoryRendering(t *testing.T) {
	m := NewManager(2, nil)
	id := m.Create()

	if got := m.History(id); got != "" {
		t.Errorf("fresh session history = %q, want empty", got)
	}

	m.AddExchange(id, "What is MCP?", "A protocol.")
	want := "User: What is MCP?\nAssistant: A protocol."
	if got := m.History(id); got != want {
		t.Errorf("History() = %q, want %q", got, want)
	}

	m.AddExchange(id, "Who teaches it?", "An instructor.")
	want += "\nUser: Who teaches it?\nAssistant: An instructor."
	if got := m.History(id); got != want {
		t.Errorf("History() = %q, want %q", got, want)
	}
}

func TestHistoryRetentionWindow(t *testing.T) {
	m := NewManager(2, nil)
	id := m.Create()

	m.AddExchange(id, "first", "1")
	m.AddExchange(id, "second", "2")
	m.AddExchange(id, "third", "3")

	want := "User: second\nAssistant: 2\nUser: third\nAssistant: 3"
	if got := m.History(id); got != want {
		t.Errorf("History() after overflow = %q, want %q", got, want)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	m := NewManager(2, nil)
	if got := m.History("nope"); got != "" {
		t.Errorf("History(unknown) = %q, want empty", got)
	}
}

func TestAddExchangeCreatesSession(t *testing.T) {
	m := NewManager(2, nil)

	m.AddExchange("adopted-id", "hi", "hello")
	if got := m.History("adopted-id"); got != "User: hi\nAssistant: hello" {
		t.Errorf("History() = %q", got)
	}
}

func TestClear(t *testing.T) {
	m := NewManager(2, nil)
	id := m.Create()
	m.AddExchange(id, "q", "a")

	m.Clear(id)
	if got := m.History(id); got != "" {
		t.Errorf("History() after Clear = %q, want empty", got)
	}

	// The ID keeps working after a clear.
	m.AddExchange(id, "again", "sure")
	if got := m.History(id); got != "User: again\nAssistant: sure" {
		t.Errorf("History() after reuse = %q", got)
	}
}

func TestIdleExpiry(t *testing.T) {
	current := time.Unix(1000, 0)
	clock := func() time.Time { return current }

	m := NewManager(2, nil, WithTTL(time.Minute), withClock(clock))
	id := m.Create()
	m.AddExchange(id, "q", "a")

	current = current.Add(30 * time.Second)
	if m.History(id) == "" {
		t.Fatal("session expired before TTL")
	}

	current = current.Add(2 * time.Minute)
	if got := m.History(id); got != "" {
		t.Errorf("expired session history = %q, want empty", got)
	}

	if dropped := m.Prune(); dropped != 1 {
		t.Errorf("Prune() = %d, want 1", dropped)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager(2, nil)
	id := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.AddExchange(id, "q", "a")
		}()
		go func() {
			defer wg.Done()
			_ = m.History(id)
		}()
	}
	wg.Wait()
}

func TestRunStopsOnCancel(t *testing.T) {
	m := NewManager(2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
