package session

import (
	"errors"
	"sync"

	"github.com/saniya177/satellisense-backend/models"
)

// ErrNoActiveImage is returned when a session-scoped operation (chat, chart
// data) runs before any successful analysis in the session.
var ErrNoActiveImage = errors.New("no analyzed image in session")

// Bundle is the session's "current" analysis: the image most recently
// analyzed and its derived artifacts. It references the underlying file but
// does not own it.
type Bundle struct {
	ImagePath string
	ImageURL  string
	Area      string
	Insights  string
	ChartData map[string]int
}

// Store binds one current-analysis bundle and a chat history to each
// authenticated user. One logical session per user; SetCurrent fully
// replaces the prior bundle and resets the chat history.
type Store struct {
	mu       sync.RWMutex
	current  map[string]Bundle
	chatLogs map[string][]models.ChatTurn
}

func NewStore() *Store {
	return &Store{
		current:  make(map[string]Bundle),
		chatLogs: make(map[string][]models.ChatTurn),
	}
}

// SetCurrent replaces the user's current bundle. No merge semantics: the
// chat history restarts with the new image.
func (s *Store) SetCurrent(username string, b Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[username] = b
	s.chatLogs[username] = nil
}

// Current returns the user's current bundle or ErrNoActiveImage.
func (s *Store) Current(username string) (Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.current[username]
	if !ok {
		return Bundle{}, ErrNoActiveImage
	}
	return b, nil
}

// AppendChatTurn records one question/answer pair. It requires an existing
// current image; absence is an error, not a silent no-op.
func (s *Store) AppendChatTurn(username, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.current[username]; !ok {
		return ErrNoActiveImage
	}
	s.chatLogs[username] = append(s.chatLogs[username], models.ChatTurn{Question: question, Answer: answer})
	return nil
}

// ChatHistory returns a copy of the session's ordered chat turns.
func (s *Store) ChatHistory(username string) []models.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.chatLogs[username]
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// Clear drops the user's session state (logout).
func (s *Store) Clear(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.current, username)
	delete(s.chatLogs, username)
}
