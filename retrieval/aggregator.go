// Package retrieval assembles external grounding context for a query.
package retrieval

import (
	"context"
	"strings"
	"sync"
)

// Sentinel texts used when a collaborator fails or comes back empty.
const (
	searchUnavailable = "No search results available."
	wikiUnavailable   = "No Wikipedia info found."
)

// Section labels.
const (
	SectionSearch    = "search"
	SectionKnowledge = "knowledge"
)

var sectionHeaders = map[string]string{
	SectionSearch:    "LATEST SEARCH RESULTS",
	SectionKnowledge: "FACTUAL KNOWLEDGE (WIKIPEDIA)",
}

const sourceGuidance = "Use the provided context to answer accurately. If there is a contradiction, " +
	"prioritize Search Results for current events and Wikipedia for historical/static facts."

// Searcher is the live web-search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) string
}

// Summarizer is the encyclopedic-summary collaborator.
type Summarizer interface {
	Summarize(ctx context.Context, query string) string
}

// Section is one labeled piece of retrieved context.
type Section struct {
	Label string
	Text  string
}

// Block is a composition of zero or more context sections. The zero
// value is valid and signals no augmentation.
type Block struct {
	Sections []Section
}

// Empty reports whether the block carries no context.
func (b Block) Empty() bool {
	return len(b.Sections) == 0
}

// Render produces the context text handed to the model, with framing
// that tells it which source to prefer.
func (b Block) Render() string {
	if b.Empty() {
		return ""
	}

	var sb strings.Builder
	for _, s := range b.Sections {
		header, ok := sectionHeaders[s.Label]
		if !ok {
			header = strings.ToUpper(s.Label)
		}
		sb.WriteString("### ")
		sb.WriteString(header)
		sb.WriteString(":\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	sb.WriteString(sourceGuidance)
	return sb.String()
}

// SearchBlock builds a block holding a single search section. Used by
// the voice channel, which grounds with search only.
func SearchBlock(text string) Block {
	if strings.TrimSpace(text) == "" {
		text = searchUnavailable
	}
	return Block{Sections: []Section{{Label: SectionSearch, Text: text}}}
}

// Aggregator fetches and merges grounding context from the search and
// knowledge collaborators.
type Aggregator struct {
	searcher   Searcher
	summarizer Summarizer
	limit      int
}

// NewAggregator creates an aggregator over the two collaborators.
func NewAggregator(searcher Searcher, summarizer Summarizer) *Aggregator {
	return &Aggregator{
		searcher:   searcher,
		summarizer: summarizer,
		limit:      5,
	}
}

// Aggregate queries both collaborators and composes their results.
// Both fetches are always attempted; each one independently degrades to
// its sentinel text on failure or empty output, so the returned block
// is never empty and Aggregate never fails.
func (a *Aggregator) Aggregate(ctx context.Context, query string) Block {
	var (
		wg          sync.WaitGroup
		searchText  string
		summaryText string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		searchText = a.searcher.Search(ctx, query, a.limit)
	}()
	go func() {
		defer wg.Done()
		summaryText = a.summarizer.Summarize(ctx, query)
	}()
	wg.Wait()

	if strings.TrimSpace(searchText) == "" {
		searchText = searchUnavailable
	}
	if strings.TrimSpace(summaryText) == "" {
		summaryText = wikiUnavailable
	}

	return Block{Sections: []Section{
		{Label: SectionSearch, Text: searchText},
		{Label: SectionKnowledge, Text: summaryText},
	}}
}
