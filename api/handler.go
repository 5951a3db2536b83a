// Package api exposes the HTTP surface of the gateway.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Dibendu094/Chatbot/chat"
	"github.com/Dibendu094/Chatbot/llm"
	"github.com/Dibendu094/Chatbot/retrieval"
)

// Handler handles gateway HTTP requests.
type Handler struct {
	svc      *chat.Service
	searcher retrieval.Searcher
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc *chat.Service, searcher retrieval.Searcher) *Handler {
	return &Handler{
		svc:      svc,
		searcher: searcher,
	}
}

// RegisterRoutes registers the gateway routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/chat", h.Chat)
	e.GET("/welcome", h.Welcome)
	e.POST("/search", h.Search)
}

// ChatRequest is the /chat request body.
type ChatRequest struct {
	Message string            `json:"message"`
	History []llm.ChatMessage `json:"history"`
	Stream  bool              `json:"stream"`
}

// SearchRequest is the /search request body.
type SearchRequest struct {
	Query string `json:"query"`
}

// ErrorDetail is the error body for failed requests.
type ErrorDetail struct {
	Detail string `json:"detail"`
}

// Health handles the health check.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Chat handles a chat turn, blocking or streamed depending on the
// request's stream flag.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorDetail{Detail: "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, ErrorDetail{Detail: "message is required"})
	}

	requestID := "chat_" + uuid.New().String()[:8]
	log.Printf("Chat request %s: stream=%v history=%d", requestID, req.Stream, len(req.History))

	turn := h.svc.PrepareTurn(ctx, req.Message, req.History)

	if req.Stream {
		return h.streamChat(c, requestID, turn)
	}

	return c.JSON(http.StatusOK, h.svc.Complete(ctx, turn))
}

// streamChat emits the SSE event sequence for one turn: a metadata
// frame carrying the intent, content-delta frames in arrival order,
// then exactly one [DONE] sentinel.
func (h *Handler) streamChat(c echo.Context, requestID string, turn *chat.Turn) error {
	ctx := c.Request().Context()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorDetail{Detail: "streaming not supported"})
	}

	writeFrame := func(v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	// Metadata frame first, always before any content.
	if err := writeFrame(map[string]string{"intent": string(turn.Intent)}); err != nil {
		return nil
	}

	err := h.svc.StreamTurn(ctx, turn, func(delta string) error {
		return writeFrame(map[string]string{"content": delta})
	})
	if err != nil {
		log.Printf("ERROR: chat stream %s failed: %v", requestID, err)
	}

	// Terminal sentinel, emitted exactly once even on failure or an
	// empty stream.
	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	flusher.Flush()

	return nil
}

// Welcome generates a short greeting for a new conversation.
// GET /welcome
func (h *Handler) Welcome(c echo.Context) error {
	message := h.svc.Welcome(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

// Search runs a raw search and returns the collaborator output
// unaugmented.
// POST /search
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorDetail{Detail: "invalid request body"})
	}

	results := h.searcher.Search(c.Request().Context(), req.Query, 5)
	return c.JSON(http.StatusOK, map[string]string{"results": results})
}
