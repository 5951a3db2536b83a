package voice

import (
	"github.com/google/uuid"

	"github.com/Dibendu094/Chatbot/llm"
)

// Session status values.
const (
	StatusIdle      = "idle"
	StatusThinking  = "thinking"
	StatusSpeaking  = "speaking"
	StatusListening = "listening"
)

// maxRetainedTurns caps stored history so a very long-lived connection
// cannot grow memory without bound. Only the trailing prompt window is
// ever read, so trimming is invisible to the model.
const maxRetainedTurns = 50

// Session is the per-connection mutable state of one voice channel. It
// is exclusively owned by the connection's handler goroutine; turns are
// processed strictly sequentially, so no locking is needed.
type Session struct {
	ID       string
	Status   string
	Language string
	Emotion  string

	history []llm.ChatMessage
}

// NewSession creates a session with channel-open defaults.
func NewSession() *Session {
	return &Session{
		ID:       "voice_" + uuid.New().String()[:8],
		Status:   StatusIdle,
		Language: "EN",
		Emotion:  "Neutral",
	}
}

// Append records a conversation turn, trimming the oldest turns once
// the retention cap is exceeded.
func (s *Session) Append(role, content string) {
	s.history = append(s.history, llm.ChatMessage{Role: role, Content: content})
	if len(s.history) > maxRetainedTurns {
		s.history = s.history[len(s.history)-maxRetainedTurns:]
	}
}

// Window returns the most recent n turns in original order.
func (s *Session) Window(n int) []llm.ChatMessage {
	if len(s.history) <= n {
		return s.history
	}
	return s.history[len(s.history)-n:]
}

// Len reports the number of retained turns.
func (s *Session) Len() int {
	return len(s.history)
}
