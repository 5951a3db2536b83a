package voice

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Dibendu094/Chatbot/intent"
	"github.com/Dibendu094/Chatbot/llm"
	"github.com/Dibendu094/Chatbot/prompt"
	"github.com/Dibendu094/Chatbot/retrieval"
)

// voiceSearchLimit bounds grounding lookups on the voice path; spoken
// turns need tight latency, not exhaustive results.
const voiceSearchLimit = 3

const transcriptEmotion = "Happy"

// Generator is the blocking generation collaborator for voice turns.
// The voice channel never streams partial tokens: it waits for the full
// completion so the client can synthesize speech from one transcript.
type Generator interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// frameWriter writes one outbound JSON frame. *websocket.Conn satisfies
// it; tests substitute a recorder.
type frameWriter interface {
	WriteJSON(v interface{}) error
}

// Server handles voice WebSocket connections.
type Server struct {
	classifier    *intent.Classifier
	searcher      retrieval.Searcher
	gen           Generator
	searchTimeout time.Duration
	upgrader      websocket.Upgrader
}

// NewServer creates a new voice server.
func NewServer(classifier *intent.Classifier, searcher retrieval.Searcher, gen Generator, searchTimeout time.Duration) *Server {
	return &Server{
		classifier:    classifier,
		searcher:      searcher,
		gen:           gen,
		searchTimeout: searchTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleVoice upgrades the connection and runs the session loop. Each
// connection owns one Session and one goroutine; turns are processed
// strictly sequentially, so a new inbound frame is only read after the
// prior turn's full response cycle completes.
func (s *Server) HandleVoice(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}
	defer ws.Close()

	sess := NewSession()
	log.Printf("Voice session %s connected", sess.ID)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Voice session %s error: %v", sess.ID, err)
			}
			break
		}

		s.handleFrame(context.Background(), ws, sess, data)
	}

	log.Printf("Voice session %s disconnected", sess.ID)
	return nil
}

// handleFrame dispatches one inbound frame. Malformed JSON is dropped
// without an error frame and the connection stays open.
func (s *Server) handleFrame(ctx context.Context, w frameWriter, sess *Session, data []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Voice session %s: invalid JSON frame dropped", sess.ID)
		return
	}

	switch msg.Type {
	case TypeStart:
		w.WriteJSON(InfoMessage{Type: TypeInfo, Message: "Voice session active"})
	case TypeTextInput:
		if msg.Text == "" {
			return
		}
		s.processTurn(ctx, w, sess, msg.Text)
	}
}

// processTurn runs the full pipeline for one spoken turn: classify,
// ground with search when needed, assemble, generate, and emit either
// one transcript frame or one error frame.
func (s *Server) processTurn(ctx context.Context, w frameWriter, sess *Session, text string) {
	it := s.classifier.Classify(ctx, text)
	log.Printf("Voice session %s intent: %s", sess.ID, it)

	var block retrieval.Block
	if it == intent.IntentSearch {
		sess.Status = StatusThinking
		if err := w.WriteJSON(StatusMessage{Type: TypeStatus, Status: StatusThinking}); err != nil {
			return
		}

		searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
		results := s.searcher.Search(searchCtx, text, voiceSearchLimit)
		cancel()
		block = retrieval.SearchBlock(results)
	}

	// The prompt window excludes the turn being processed; the user
	// text arrives as the decorated final message.
	window := sess.Window(prompt.VoiceHistoryWindow)
	messages := prompt.Assemble(prompt.VoicePersona(sess.Emotion), window, text, block, prompt.VoiceHistoryWindow)
	sess.Append("user", text)

	sess.Status = StatusSpeaking
	if err := w.WriteJSON(StatusMessage{Type: TypeStatus, Status: StatusSpeaking}); err != nil {
		return
	}

	content, err := s.gen.Complete(ctx, messages)
	if err != nil {
		log.Printf("ERROR: voice session %s generation failed: %v", sess.ID, err)
		sess.Status = StatusIdle
		w.WriteJSON(ErrorMessage{Type: TypeError, Message: "Thinking failed."})
		return
	}

	sess.Append("assistant", content)
	sess.Status = StatusListening
	w.WriteJSON(TranscriptMessage{
		Type:     TypeTranscript,
		Text:     content,
		Language: sess.Language,
		Emotion:  transcriptEmotion,
		Status:   StatusListening,
	})
}
