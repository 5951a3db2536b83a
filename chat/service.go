// Package chat runs the intent-routing and context-assembly pipeline
// for the HTTP channel.
package chat

import (
	"context"
	"log"

	"github.com/Dibendu094/Chatbot/intent"
	"github.com/Dibendu094/Chatbot/llm"
	"github.com/Dibendu094/Chatbot/prompt"
	"github.com/Dibendu094/Chatbot/retrieval"
)

const defaultWelcome = "How can I help you today?"

// Generator is the generation collaborator consumed by the pipeline.
type Generator interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
	CompleteText(ctx context.Context, messages []llm.ChatMessage) string
	Stream(ctx context.Context, messages []llm.ChatMessage, onDelta func(delta string) error) error
}

// Aggregator fetches grounding context for a query.
type Aggregator interface {
	Aggregate(ctx context.Context, query string) retrieval.Block
}

// Service orchestrates one chat turn: classify, aggregate, assemble,
// generate.
type Service struct {
	gen        Generator
	classifier *intent.Classifier
	aggregator Aggregator
}

// NewService creates the pipeline service.
func NewService(gen Generator, classifier *intent.Classifier, aggregator Aggregator) *Service {
	return &Service{
		gen:        gen,
		classifier: classifier,
		aggregator: aggregator,
	}
}

// Turn is a fully prepared generation call: the detected intent plus
// the final prompt messages. It is never mutated after construction.
type Turn struct {
	Intent   intent.Intent
	Messages []llm.ChatMessage
}

// Result is the blocking response for one turn.
type Result struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Intent  string `json:"intent"`
}

// PrepareTurn classifies the message, fetches grounding context for
// search/knowledge intents and assembles the prompt. history is the
// caller-supplied prior conversation, excluding the current message.
func (s *Service) PrepareTurn(ctx context.Context, message string, history []llm.ChatMessage) *Turn {
	it := s.classifier.Classify(ctx, message)
	log.Printf("Detected intent: %s", it)

	var block retrieval.Block
	if it == intent.IntentSearch || it == intent.IntentKnowledge {
		log.Printf("Deep knowledge retrieval started for: %s", message)
		block = s.aggregator.Aggregate(ctx, message)
	}

	messages := prompt.Assemble(prompt.ChatPersona, history, message, block, prompt.ChatHistoryWindow)
	return &Turn{Intent: it, Messages: messages}
}

// Complete runs the blocking generation call for a prepared turn.
func (s *Service) Complete(ctx context.Context, turn *Turn) *Result {
	content := s.gen.CompleteText(ctx, turn.Messages)
	return &Result{
		Role:    "assistant",
		Content: content,
		Intent:  string(turn.Intent),
	}
}

// StreamTurn runs the streaming generation call for a prepared turn,
// forwarding content deltas in arrival order.
func (s *Service) StreamTurn(ctx context.Context, turn *Turn, onDelta func(delta string) error) error {
	return s.gen.Stream(ctx, turn.Messages, onDelta)
}

// Welcome generates a short greeting, falling back to a fixed default
// on any generation failure.
func (s *Service) Welcome(ctx context.Context) string {
	messages := []llm.ChatMessage{
		{Role: "system", Content: "You are a helpful AI assistant. Generate a short, inspiring, unique, single-sentence welcome message for a user starting a new chat. Max 8-10 words. Do not use quotes."},
		{Role: "user", Content: "Give me a welcome message."},
	}

	content, err := s.gen.Complete(ctx, messages)
	if err != nil {
		log.Printf("WARN: welcome generation failed: %v", err)
		return defaultWelcome
	}
	return content
}
