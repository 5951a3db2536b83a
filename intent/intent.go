// Package intent classifies user messages into handling strategies.
//
// The classification policy is a Rego module evaluated through a
// prepared query, so the keyword rules are data, not control flow. Rule
// order encodes priority: coding vocabulary beats recency keywords,
// which beat generic question starters, which beat greetings.
package intent

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/rego"
)

// Intent is the handling strategy for a message.
type Intent string

const (
	IntentSearch Intent = "search"
	// IntentKnowledge is reserved for a static factual-lookup strategy.
	// The current policy never emits it: informational questions are
	// routed to IntentSearch so the web is always consulted first.
	IntentKnowledge      Intent = "knowledge"
	IntentCoding         Intent = "coding"
	IntentConversational Intent = "conversational"
)

// Classifier evaluates the intent policy.
type Classifier struct {
	query rego.PreparedEvalQuery
}

// NewClassifier creates a classifier with the given policy content.
func NewClassifier(ctx context.Context, policyContent string) (*Classifier, error) {
	r := rego.New(
		rego.Query("data.intent.label"),
		rego.Module("intent.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Classifier{query: query}, nil
}

// Classify returns the intent for the given message. It is total: any
// evaluation failure or unexpected result degrades to
// IntentConversational, never an error. Misclassification only changes
// whether grounding context is fetched, so a crude answer is always
// acceptable.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	results, err := c.query.Eval(ctx, rego.EvalInput(map[string]interface{}{"text": text}))
	if err != nil {
		log.Printf("WARN: intent policy evaluation failed: %v", err)
		return IntentConversational
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return IntentConversational
	}

	label, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return IntentConversational
	}

	switch Intent(label) {
	case IntentSearch, IntentKnowledge, IntentCoding, IntentConversational:
		return Intent(label)
	default:
		return IntentConversational
	}
}

// DefaultPolicy is the default intent policy. Matching is deliberately
// substring-based, not tokenized: false positives are cheap because
// they only trigger an extra context fetch.
const DefaultPolicy = `
package intent

import rego.v1

coding_keywords := {
	"code", "python", "function", "bug", "error", "debug",
	"java", "script", "html", "css", "api", "json", "sql",
	"react", "node", "param", "variable", "compile", "runtime"
}

search_keywords := {
	"latest", "news", "today", "current", "price",
	"what is happening", "update", "live", "weather",
	"who won", "score", "stock", "recent", "now",
	"this year", "this month", "yesterday", "last week",
	"2023", "2024", "2025", "2026", "new"
}

question_starters := {
	"who", "what", "where", "when", "why", "how",
	"tell me", "explain", "define", "show", "list"
}

greetings := {
	"hi", "hello", "hey", "greetings", "good morning", "good evening",
	"how are you", "who are you", "what's up", "help", "thanks", "thank you",
	"bye", "goodbye", "stop", "exit", "quit"
}

text := lower(input.text)

contains_any(kws) if {
	some kw in kws
	contains(text, kw)
}

greeting if {
	some kw in greetings
	trim_space(text) == kw
}

greeting if {
	some kw in greetings
	startswith(trim_space(text), sprintf("%s ", [kw]))
}

default label := "conversational"

label := "coding" if {
	contains_any(coding_keywords)
} else := "search" if {
	contains_any(search_keywords)
} else := "search" if {
	contains_any(question_starters)
} else := "conversational" if {
	greeting
}
`
