package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, searchHandler, summaryHandler http.HandlerFunc) *Client {
	t.Helper()
	searchSrv := httptest.NewServer(searchHandler)
	t.Cleanup(searchSrv.Close)
	summarySrv := httptest.NewServer(summaryHandler)
	t.Cleanup(summarySrv.Close)

	c := NewClient(time.Second)
	c.searchURL = searchSrv.URL
	c.summaryURL = summarySrv.URL
	return c
}

func TestSummarize(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("srsearch"); got != "photosynthesis" {
				t.Errorf("srsearch = %q", got)
			}
			w.Write([]byte(`{"query":{"search":[{"title":"Photosynthesis"}]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "Photosynthesis") {
				t.Errorf("summary path = %q", r.URL.Path)
			}
			w.Write([]byte(`{"type":"standard","title":"Photosynthesis","extract":"Photosynthesis is a biological process."}`))
		},
	)

	got := c.Summarize(context.Background(), "photosynthesis")
	if got != "Photosynthesis is a biological process." {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarizeTruncatesLongExtract(t *testing.T) {
	long := strings.Repeat("a", 1500)
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"query":{"search":[{"title":"Topic"}]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"type":"standard","title":"Topic","extract":"%s"}`, long)
		},
	)

	got := c.Summarize(context.Background(), "topic")
	if len(got) != 1003 {
		t.Fatalf("len = %d, want 1003", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation suffix, got %q", got[len(got)-10:])
	}
}

func TestSummarizeNoResults(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"query":{"search":[]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("summary endpoint should not be called")
		},
	)

	got := c.Summarize(context.Background(), "qzxv nonsense")
	if got != "No Wikipedia page found for this topic." {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarizeDisambiguation(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"query":{"search":[
				{"title":"Mercury (planet)"},
				{"title":"Mercury (element)"},
				{"title":"Mercury (mythology)"}
			]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"type":"disambiguation","title":"Mercury","extract":"Mercury may refer to:"}`))
		},
	)

	got := c.Summarize(context.Background(), "mercury")
	if !strings.HasPrefix(got, "Please be more specific.") {
		t.Fatalf("Summarize = %q", got)
	}
	if !strings.Contains(got, "Mercury (planet), Mercury (element), Mercury (mythology)") {
		t.Fatalf("candidates missing: %q", got)
	}
}

func TestSummarizePageNotFound(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"query":{"search":[{"title":"Ghost Page"}]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	)

	got := c.Summarize(context.Background(), "ghost page")
	if got != "Page not found on Wikipedia." {
		t.Fatalf("Summarize = %q", got)
	}
}

func TestSummarizeTransportFailure(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	got := c.Summarize(context.Background(), "anything")
	if !strings.HasPrefix(got, "Error accessing Wikipedia:") {
		t.Fatalf("Summarize = %q", got)
	}
}
