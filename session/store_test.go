package session

import (
	"errors"
	"testing"
)

func TestCurrentBeforeAnyAnalysis(t *testing.T) {
	store := NewStore()

	if _, err := store.Current("alice"); !errors.Is(err, ErrNoActiveImage) {
		t.Errorf("Current with no bundle: got %v, want ErrNoActiveImage", err)
	}
	if err := store.AppendChatTurn("alice", "q", "a"); !errors.Is(err, ErrNoActiveImage) {
		t.Errorf("AppendChatTurn with no bundle: got %v, want ErrNoActiveImage", err)
	}
}

func TestSetCurrentAndChat(t *testing.T) {
	store := NewStore()
	store.SetCurrent("alice", Bundle{ImagePath: "/tmp/a.png", Area: "Coastal", ChartData: map[string]int{"Water": 2}})

	bundle, err := store.Current("alice")
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if bundle.Area != "Coastal" || bundle.ChartData["Water"] != 2 {
		t.Errorf("unexpected bundle: %+v", bundle)
	}

	if err := store.AppendChatTurn("alice", "what changed?", "nothing"); err != nil {
		t.Fatalf("AppendChatTurn returned error: %v", err)
	}
	turns := store.ChatHistory("alice")
	if len(turns) != 1 {
		t.Fatalf("ChatHistory has %d turns, want 1", len(turns))
	}
	if turns[0].Question != "what changed?" || turns[0].Answer != "nothing" {
		t.Errorf("unexpected turn: %+v", turns[0])
	}
}

func TestSetCurrentReplacesBundleAndResetsChat(t *testing.T) {
	store := NewStore()
	store.SetCurrent("alice", Bundle{ImagePath: "/tmp/a.png"})
	if err := store.AppendChatTurn("alice", "q1", "a1"); err != nil {
		t.Fatalf("AppendChatTurn returned error: %v", err)
	}

	store.SetCurrent("alice", Bundle{ImagePath: "/tmp/b.png"})

	bundle, err := store.Current("alice")
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if bundle.ImagePath != "/tmp/b.png" {
		t.Errorf("bundle not replaced: %+v", bundle)
	}
	if turns := store.ChatHistory("alice"); len(turns) != 0 {
		t.Errorf("chat history survived a new analysis: %v", turns)
	}
}

func TestClearDropsSessionState(t *testing.T) {
	store := NewStore()
	store.SetCurrent("alice", Bundle{ImagePath: "/tmp/a.png"})
	store.SetCurrent("bob", Bundle{ImagePath: "/tmp/b.png"})

	store.Clear("alice")

	if _, err := store.Current("alice"); !errors.Is(err, ErrNoActiveImage) {
		t.Errorf("Current after Clear: got %v, want ErrNoActiveImage", err)
	}
	if _, err := store.Current("bob"); err != nil {
		t.Errorf("Clear affected another user: %v", err)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	store := NewStore()
	store.SetCurrent("alice", Bundle{ImagePath: "/tmp/a.png"})

	if _, err := store.Current("bob"); !errors.Is(err, ErrNoActiveImage) {
		t.Errorf("bob sees alice's bundle: %v", err)
	}
}
