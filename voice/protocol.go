// Package voice provides the duplex WebSocket channel for voice
// interactions.
package voice

// Message types from client to gateway
const (
	TypeStart     = "start"
	TypeTextInput = "text_input"
)

// Message types from gateway to client
const (
	TypeInfo       = "info"
	TypeStatus     = "status"
	TypeTranscript = "transcript"
	TypeError      = "error"
)

// InboundMessage is the decoded form of a client frame.
type InboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// InfoMessage acknowledges session start.
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusMessage reports a processing state transition.
type StatusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// TranscriptMessage carries the full response for one turn plus the
// display metadata the client renders while speaking it.
type TranscriptMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Language string `json:"language"`
	Emotion  string `json:"emotion"`
	Status   string `json:"status"`
}

// ErrorMessage reports a failed turn. The connection stays open.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
