package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Generator binds a Client to a model and exposes the completion calls
// the pipeline uses. CompleteText never fails: client errors are mapped
// to user-facing strings so a backend fault can never abort a turn.
type Generator struct {
	client *Client
	model  string

	// Optional generation limits, applied when non-nil.
	MaxTokens   *int
	Temperature *float64
}

// NewGenerator creates a Generator for the given model.
func NewGenerator(client *Client, model string) *Generator {
	return &Generator{
		client: client,
		model:  model,
	}
}

// Complete sends a blocking completion request and returns the raw
// error on failure.
func (g *Generator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	req := &ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteText sends a blocking completion request and always returns a
// displayable string. Authorization failures, model availability
// failures and generic API failures each map to a distinct message.
func (g *Generator) CompleteText(ctx context.Context, messages []ChatMessage) string {
	content, err := g.Complete(ctx, messages)
	if err != nil {
		log.Printf("ERROR: LLM request failed: %v", err)
		return g.errorText(err)
	}
	return content
}

// Stream sends a streaming completion request, invoking onDelta for
// each non-empty content delta in arrival order.
func (g *Generator) Stream(ctx context.Context, messages []ChatMessage, onDelta func(delta string) error) error {
	req := &ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
	}

	return g.client.CreateChatCompletionStream(ctx, req, func(chunk *StreamChunk) error {
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			return nil
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			return nil
		}
		return onDelta(delta)
	})
}

// errorText maps a client error to the user-facing string shown in
// place of a completion.
func (g *Generator) errorText(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "[401]") {
		return "❌ **Error: Invalid API Key.**\n\nPlease check your `GROQ_API_KEY` in `.env`. It seems correct but Groq is rejecting it (401 Unauthorized)."
	}
	if (strings.Contains(msg, "[400]") || strings.Contains(msg, "[404]")) && strings.Contains(strings.ToLower(msg), "model") {
		return fmt.Sprintf("⚠️ **Model Error**: The selected AI model `%s` might be decommissioned or unavailable. Please configure a valid GROQ_MODEL.", g.model)
	}
	return fmt.Sprintf("⚠️ **API Error**: %s", msg)
}
