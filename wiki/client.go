// Package wiki provides the encyclopedic-summary collaborator backed by
// the Wikipedia APIs. Summarize always returns a displayable string:
// missing pages, disambiguation pages and transport failures each map
// to a fixed explanatory message instead of an error.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSearchURL  = "https://en.wikipedia.org/w/api.php"
	defaultSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary"

	summaryMaxChars = 1000
)

// Client fetches Wikipedia summaries.
type Client struct {
	searchURL  string
	summaryURL string
	httpClient *http.Client
}

// NewClient creates a Wikipedia client.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		searchURL:  defaultSearchURL,
		summaryURL: defaultSummaryURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Summarize looks the query up and returns a truncated summary of the
// best-matching page.
func (c *Client) Summarize(ctx context.Context, query string) string {
	titles, err := c.searchTitles(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error accessing Wikipedia: %v", err)
	}
	if len(titles) == 0 {
		return "No Wikipedia page found for this topic."
	}

	summary, err := c.pageSummary(ctx, titles[0])
	if err != nil {
		return fmt.Sprintf("Error accessing Wikipedia: %v", err)
	}

	switch {
	case summary == nil:
		return "Page not found on Wikipedia."
	case summary.Type == "disambiguation":
		options := titles
		if len(options) > 5 {
			options = options[:5]
		}
		return fmt.Sprintf("Please be more specific. Your query '%s' could refer to: %s", query, strings.Join(options, ", "))
	case summary.Extract == "":
		return "Page not found on Wikipedia."
	}

	extract := summary.Extract
	if len(extract) > summaryMaxChars {
		extract = extract[:summaryMaxChars] + "..."
	}
	return extract
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// searchTitles returns candidate page titles for the query, best match
// first.
func (c *Client) searchTitles(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "5")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
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
		return nil, fmt.Errorf("wikipedia API error [%d]: %s", resp.StatusCode, string(body))
	}

	var result wikiSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	titles := make([]string, 0, len(result.Query.Search))
	for _, s := range result.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

type pageSummary struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// pageSummary fetches the REST summary for a title. A nil summary with
// nil error means the page does not exist.
func (c *Client) pageSummary(ctx context.Context, title string) (*pageSummary, error) {
	u := c.summaryURL + "/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
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

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia API error [%d]: %s", resp.StatusCode, string(body))
	}

	var summary pageSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &summary, nil
}
