package retrieval

import (
	"context"
	"strings"
	"testing"
)

type fakeSearcher struct {
	result string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) string {
	return f.result
}

type fakeSummarizer struct {
	result string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, query string) string {
	return f.result
}

func TestAggregateComposesBothSections(t *testing.T) {
	agg := NewAggregator(
		&fakeSearcher{result: "1. **Result**\n   - snippet"},
		&fakeSummarizer{result: "Photosynthesis is a process..."},
	)

	block := agg.Aggregate(context.Background(), "photosynthesis")
	if block.Empty() {
		t.Fatal("expected non-empty block")
	}
	if len(block.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(block.Sections))
	}
	if block.Sections[0].Label != SectionSearch || block.Sections[1].Label != SectionKnowledge {
		t.Fatalf("unexpected section order: %+v", block.Sections)
	}

	text := block.Render()
	if !strings.Contains(text, "### LATEST SEARCH RESULTS:") {
		t.Error("rendered block missing search header")
	}
	if !strings.Contains(text, "### FACTUAL KNOWLEDGE (WIKIPEDIA):") {
		t.Error("rendered block missing knowledge header")
	}
	if !strings.Contains(text, "prioritize Search Results for current events") {
		t.Error("rendered block missing source guidance")
	}
}

func TestAggregateNeverFails(t *testing.T) {
	// Both collaborators coming back empty stands in for both failing:
	// the collaborators themselves never return errors.
	agg := NewAggregator(&fakeSearcher{result: ""}, &fakeSummarizer{result: "  "})

	block := agg.Aggregate(context.Background(), "anything")
	if block.Empty() {
		t.Fatal("expected sentinel-filled block, got empty")
	}

	text := block.Render()
	if !strings.Contains(text, "No search results available.") {
		t.Error("missing search sentinel")
	}
	if !strings.Contains(text, "No Wikipedia info found.") {
		t.Error("missing wikipedia sentinel")
	}
}

func TestAggregatePartialFailure(t *testing.T) {
	agg := NewAggregator(&fakeSearcher{result: ""}, &fakeSummarizer{result: "A real summary."})

	block := agg.Aggregate(context.Background(), "topic")
	text := block.Render()
	if !strings.Contains(text, "No search results available.") {
		t.Error("expected search sentinel when search is empty")
	}
	if !strings.Contains(text, "A real summary.") {
		t.Error("expected wiki result to survive search failure")
	}
}

func TestEmptyBlock(t *testing.T) {
	var block Block
	if !block.Empty() {
		t.Error("zero-value block should be empty")
	}
	if block.Render() != "" {
		t.Error("empty block should render to empty string")
	}
}

func TestSearchBlock(t *testing.T) {
	block := SearchBlock("some results")
	if block.Empty() || len(block.Sections) != 1 {
		t.Fatalf("unexpected block: %+v", block)
	}
	if block.Sections[0].Label != SectionSearch {
		t.Errorf("unexpected label %q", block.Sections[0].Label)
	}

	sentinel := SearchBlock("   ")
	if sentinel.Sections[0].Text != "No search results available." {
		t.Errorf("expected sentinel for blank search text, got %q", sentinel.Sections[0].Text)
	}
}
