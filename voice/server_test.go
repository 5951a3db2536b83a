package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Dibendu094/Chatbot/intent"
	"github.com/Dibendu094/Chatbot/llm"
)

type frameRecorder struct {
	frames []interface{}
	err    error
}

func (r *frameRecorder) WriteJSON(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, v)
	return nil
}

type fakeSearcher struct {
	calls    int
	gotLimit int
	result   string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) string {
	f.calls++
	f.gotLimit = limit
	return f.result
}

type fakeGenerator struct {
	content     string
	err         error
	gotMessages []llm.ChatMessage
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	f.gotMessages = messages
	return f.content, f.err
}

func newTestServer(t *testing.T, searcher *fakeSearcher, gen *fakeGenerator) *Server {
	t.Helper()
	classifier, err := intent.NewClassifier(context.Background(), intent.DefaultPolicy)
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}
	return NewServer(classifier, searcher, gen, time.Second)
}

func TestSessionDefaults(t *testing.T) {
	sess := NewSession()
	if sess.Status != StatusIdle {
		t.Errorf("status = %q, want idle", sess.Status)
	}
	if sess.Language != "EN" || sess.Emotion != "Neutral" {
		t.Errorf("unexpected defaults: %+v", sess)
	}
	if sess.Len() != 0 {
		t.Errorf("new session has %d turns", sess.Len())
	}
	if !strings.HasPrefix(sess.ID, "voice_") {
		t.Errorf("unexpected session id %q", sess.ID)
	}
}

func TestSessionRetentionCap(t *testing.T) {
	sess := NewSession()
	for i := 0; i < maxRetainedTurns+10; i++ {
		sess.Append("user", fmt.Sprintf("turn %d", i))
	}
	if sess.Len() != maxRetainedTurns {
		t.Fatalf("retained %d turns, want %d", sess.Len(), maxRetainedTurns)
	}

	window := sess.Window(6)
	if len(window) != 6 {
		t.Fatalf("window len = %d", len(window))
	}
	if window[5].Content != fmt.Sprintf("turn %d", maxRetainedTurns+9) {
		t.Errorf("window end = %q", window[5].Content)
	}
}

func TestProcessTurnSearchGrounding(t *testing.T) {
	searcher := &fakeSearcher{result: "1. **Headline**"}
	gen := &fakeGenerator{content: "Here is what happened."}
	s := newTestServer(t, searcher, gen)

	sess := NewSession()
	rec := &frameRecorder{}
	s.processTurn(context.Background(), rec, sess, "latest news")

	if searcher.calls != 1 {
		t.Fatalf("searcher called %d times", searcher.calls)
	}
	if searcher.gotLimit != voiceSearchLimit {
		t.Errorf("search limit = %d, want %d", searcher.gotLimit, voiceSearchLimit)
	}

	if len(rec.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d: %+v", len(rec.frames), rec.frames)
	}

	thinking, ok := rec.frames[0].(StatusMessage)
	if !ok || thinking.Status != StatusThinking {
		t.Errorf("first frame = %+v, want thinking status", rec.frames[0])
	}
	speaking, ok := rec.frames[1].(StatusMessage)
	if !ok || speaking.Status != StatusSpeaking {
		t.Errorf("second frame = %+v, want speaking status", rec.frames[1])
	}
	transcript, ok := rec.frames[2].(TranscriptMessage)
	if !ok {
		t.Fatalf("third frame = %+v, want transcript", rec.frames[2])
	}
	if transcript.Text != "Here is what happened." {
		t.Errorf("transcript text = %q", transcript.Text)
	}
	if transcript.Language != "EN" || transcript.Emotion != transcriptEmotion || transcript.Status != StatusListening {
		t.Errorf("unexpected transcript metadata: %+v", transcript)
	}

	// The search context must reach the model inside the final user turn.
	last := gen.gotMessages[len(gen.gotMessages)-1]
	if !strings.Contains(last.Content, "1. **Headline**") {
		t.Errorf("prompt missing search context: %q", last.Content)
	}

	if sess.Len() != 2 {
		t.Fatalf("history len = %d, want 2", sess.Len())
	}
	if sess.Status != StatusListening {
		t.Errorf("session status = %q, want listening", sess.Status)
	}
}

func TestProcessTurnConversationalSkipsThinking(t *testing.T) {
	searcher := &fakeSearcher{}
	gen := &fakeGenerator{content: "Hi!"}
	s := newTestServer(t, searcher, gen)

	sess := NewSession()
	rec := &frameRecorder{}
	s.processTurn(context.Background(), rec, sess, "hello")

	if searcher.calls != 0 {
		t.Errorf("searcher called for conversational turn")
	}
	if len(rec.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(rec.frames))
	}
	if status, ok := rec.frames[0].(StatusMessage); !ok || status.Status != StatusSpeaking {
		t.Errorf("first frame = %+v, want speaking status", rec.frames[0])
	}

	// No augmentation: the user turn goes through verbatim.
	last := gen.gotMessages[len(gen.gotMessages)-1]
	if last.Content != "hello" {
		t.Errorf("final turn = %q, want raw text", last.Content)
	}
}

func TestProcessTurnGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("backend down")}
	s := newTestServer(t, &fakeSearcher{}, gen)

	sess := NewSession()
	rec := &frameRecorder{}
	s.processTurn(context.Background(), rec, sess, "hello")

	last := rec.frames[len(rec.frames)-1]
	errFrame, ok := last.(ErrorMessage)
	if !ok {
		t.Fatalf("last frame = %+v, want error", last)
	}
	if errFrame.Message != "Thinking failed." {
		t.Errorf("error message = %q", errFrame.Message)
	}

	// The user turn is recorded but no assistant turn is.
	if sess.Len() != 1 {
		t.Fatalf("history len = %d, want 1", sess.Len())
	}
}

func TestProcessTurnHistoryWindow(t *testing.T) {
	gen := &fakeGenerator{content: "ok"}
	s := newTestServer(t, &fakeSearcher{}, gen)

	sess := NewSession()
	for i := 0; i < 15; i++ {
		sess.Append("user", fmt.Sprintf("old turn %d", i))
	}

	s.processTurn(context.Background(), &frameRecorder{}, sess, "hello")

	// system + last 6 retained turns + final user turn
	if len(gen.gotMessages) != 8 {
		t.Fatalf("prompt len = %d, want 8", len(gen.gotMessages))
	}
	if gen.gotMessages[0].Role != "system" {
		t.Errorf("first prompt role = %q", gen.gotMessages[0].Role)
	}
	if gen.gotMessages[1].Content != "old turn 9" {
		t.Errorf("window start = %q", gen.gotMessages[1].Content)
	}
}

func TestProcessTurnPersonaCarriesEmotion(t *testing.T) {
	gen := &fakeGenerator{content: "ok"}
	s := newTestServer(t, &fakeSearcher{}, gen)

	sess := NewSession()
	sess.Emotion = "Curious"
	s.processTurn(context.Background(), &frameRecorder{}, sess, "hello")

	if !strings.Contains(gen.gotMessages[0].Content, "Current user emotion: Curious") {
		t.Errorf("persona missing session emotion: %q", gen.gotMessages[0].Content)
	}
}

func TestHandleFrameStart(t *testing.T) {
	s := newTestServer(t, &fakeSearcher{}, &fakeGenerator{})
	sess := NewSession()
	rec := &frameRecorder{}

	s.handleFrame(context.Background(), rec, sess, []byte(`{"type":"start"}`))

	if len(rec.frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(rec.frames))
	}
	info, ok := rec.frames[0].(InfoMessage)
	if !ok || info.Message != "Voice session active" {
		t.Errorf("unexpected frame: %+v", rec.frames[0])
	}
	if sess.Len() != 0 {
		t.Error("start frame must not touch history")
	}
}

func TestHandleFrameMalformedJSONIgnored(t *testing.T) {
	s := newTestServer(t, &fakeSearcher{}, &fakeGenerator{})
	sess := NewSession()
	rec := &frameRecorder{}

	s.handleFrame(context.Background(), rec, sess, []byte(`{not json`))
	s.handleFrame(context.Background(), rec, sess, []byte(`{"type":"text_input"}`))

	if len(rec.frames) != 0 {
		t.Fatalf("expected no frames, got %+v", rec.frames)
	}
}

func TestSessionIsolation(t *testing.T) {
	gen := &fakeGenerator{content: "reply"}
	s := newTestServer(t, &fakeSearcher{}, gen)

	a := NewSession()
	b := NewSession()

	s.processTurn(context.Background(), &frameRecorder{}, a, "hello")
	s.processTurn(context.Background(), &frameRecorder{}, b, "hello")

	if a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("unexpected history lengths: %d, %d", a.Len(), b.Len())
	}

	// Mutating one session's history must not leak into the other's
	// next prompt.
	a.Append("user", "only in a")
	s.processTurn(context.Background(), &frameRecorder{}, b, "again")

	for _, m := range gen.gotMessages {
		if strings.Contains(m.Content, "only in a") {
			t.Fatal("session state leaked across connections")
		}
	}
}
