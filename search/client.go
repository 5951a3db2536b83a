// Package search provides the live web-search collaborator. A primary
// SerpAPI lookup falls back to the DuckDuckGo Instant Answer API; the
// public Search call always returns a displayable string and never an
// error.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSerpAPIURL = "https://serpapi.com/search.json"
	defaultDDGURL     = "https://api.duckduckgo.com/"
)

// Client performs web searches.
type Client struct {
	serpAPIKey string
	serpAPIURL string
	ddgURL     string
	httpClient *http.Client
}

// NewClient creates a search client. serpAPIKey may be empty, in which
// case only the DuckDuckGo fallback is used.
func NewClient(serpAPIKey string, timeout time.Duration) *Client {
	return &Client{
		serpAPIKey: serpAPIKey,
		serpAPIURL: defaultSerpAPIURL,
		ddgURL:     defaultDDGURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type searchResult struct {
	Title   string
	Link    string
	Snippet string
}

// Search runs the fallback chain and formats the results. Any provider
// failure degrades to the next provider; if every provider fails the
// returned string explains the outage.
func (c *Client) Search(ctx context.Context, query string, limit int) string {
	if c.serpAPIKey != "" {
		results, err := c.searchSerpAPI(ctx, query, limit)
		if err != nil {
			log.Printf("WARN: SerpAPI search failed, falling back: %v", err)
		} else if len(results) > 0 {
			return formatResults(results)
		}
	}

	results, err := c.searchDuckDuckGo(ctx, query, limit)
	if err != nil {
		log.Printf("WARN: DuckDuckGo search failed: %v", err)
		return fmt.Sprintf("Search failed: %v", err)
	}
	if len(results) == 0 {
		return "No relevant search results found via DuckDuckGo."
	}
	return formatResults(results)
}

// formatResults renders results as the numbered Markdown list the
// downstream model is prompted with.
func formatResults(results []searchResult) string {
	var b strings.Builder
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No Title"
		}
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No description available."
		}
		link := r.Link
		if link == "" {
			link = "#"
		}
		fmt.Fprintf(&b, "%d. **%s**\n   - %s\n   - [Link](%s)\n\n", i+1, title, snippet, link)
	}
	return b.String()
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

func (c *Client) searchSerpAPI(ctx context.Context, query string, limit int) ([]searchResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.serpAPIKey)
	params.Set("num", fmt.Sprintf("%d", limit))

	body, err := c.get(ctx, c.serpAPIURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp serpAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	results := make([]searchResult, 0, len(resp.OrganicResults))
	for _, r := range resp.OrganicResults {
		results = append(results, searchResult{Title: r.Title, Link: r.Link, Snippet: r.Snippet})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (c *Client) searchDuckDuckGo(ctx context.Context, query string, limit int) ([]searchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	body, err := c.get(ctx, c.ddgURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp ddgResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var results []searchResult
	if resp.AbstractText != "" {
		results = append(results, searchResult{Title: resp.Heading, Link: resp.AbstractURL, Snippet: resp.AbstractText})
	}
	for _, t := range resp.RelatedTopics {
		if len(results) >= limit {
			break
		}
		if t.Text == "" {
			continue
		}
		results = append(results, searchResult{Title: t.Text, Link: t.FirstURL, Snippet: t.Text})
	}
	return results, nil
}

// get performs a GET request and returns the body on a 200 response.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error [%d]: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
