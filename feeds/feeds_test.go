package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Sample</title>
  <link>http://example.com</link>
  <item>
    <title>Oldest story</title>
    <link>http://example.com/old</link>
    <pubDate>Mon, 19 Oct 2026 08:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Picture of the day</title>
    <link>http://example.com/pic.JPG</link>
    <pubDate>Mon, 19 Oct 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Story with enclosure</title>
    <link>http://example.com/enc</link>
    <enclosure url="http://cdn.example.com/a.webp" length="1" type="image/webp"/>
    <pubDate>Mon, 19 Oct 2026 09:00:00 GMT</pubDate>
  </item>
  <item>
    <title></title>
    <link>http://example.com/untitled</link>
  </item>
</channel>
</rss>`

func serveFeed(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_SortsAndPicksImages(t *testing.T) {
	srv := serveFeed(t, sampleRSS, http.StatusOK)

	items, err := Fetch(context.Background(), []Source{{Name: "Sample", URL: srv.URL}}, 10)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d headlines, want 3 (untitled skipped)", len(items))
	}

	wantOrder := []string{"Picture of the day", "Story with enclosure", "Oldest story"}
	for i, want := range wantOrder {
		if items[i].Title != want {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Title, want)
		}
	}
	if items[0].Image != "http://example.com/pic.JPG" {
		t.Errorf("direct image link not used: %q", items[0].Image)
	}
	if items[1].Image != "http://cdn.example.com/a.webp" {
		t.Errorf("enclosure image not used: %q", items[1].Image)
	}
	if items[2].Image != "" {
		t.Errorf("unexpected image %q", items[2].Image)
	}
	if items[0].Source != "Sample" {
		t.Errorf("Source = %q", items[0].Source)
	}
}

func TestFetch_Limit(t *testing.T) {
	srv := serveFeed(t, sampleRSS, http.StatusOK)

	items, err := Fetch(context.Background(), []Source{{Name: "Sample", URL: srv.URL}}, 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d headlines, want 2", len(items))
	}
}

func TestFetch_DeduplicatesAcrossSources(t *testing.T) {
	a := serveFeed(t, sampleRSS, http.StatusOK)
	b := serveFeed(t, sampleRSS, http.StatusOK)

	items, err := Fetch(context.Background(), []Source{{"A", a.URL}, {"B", b.URL}}, 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d headlines, want 3 after dedupe", len(items))
	}
}

func TestFetch_PartialAndTotalFailure(t *testing.T) {
	good := serveFeed(t, sampleRSS, http.StatusOK)
	bad := serveFeed(t, "nope", http.StatusInternalServerError)

	items, err := Fetch(context.Background(), []Source{{"good", good.URL}, {"bad", bad.URL}}, 5)
	if err != nil {
		t.Fatalf("one failing source should not fail the fetch: %v", err)
	}
	if len(items) == 0 {
		t.Error("expected headlines from the healthy source")
	}

	if _, err := Fetch(context.Background(), []Source{{"bad", bad.URL}}, 5); err == nil {
		t.Error("expected error when every source fails")
	}
	if _, err := Fetch(context.Background(), nil, 5); err == nil {
		t.Error("expected error with no sources")
	}
}

func TestPickImage(t *testing.T) {
	tests := []struct {
		name  string
		entry *gofeed.Item
		want  string
	}{
		{"link with query", &gofeed.Item{Link: "http://x/y.png?w=100"}, "http://x/y.png?w=100"},
		{"item image", &gofeed.Item{Link: "http://x/story", Image: &gofeed.Image{URL: "http://x/thumb"}}, "http://x/thumb"},
		{"relative item image ignored", &gofeed.Item{Link: "http://x/story", Image: &gofeed.Image{URL: "self"}}, ""},
		{"non-image enclosure", &gofeed.Item{Enclosures: []*gofeed.Enclosure{{URL: "http://x/a.mp3", Type: "audio/mpeg"}}}, ""},
		{"nothing", &gofeed.Item{Link: "http://x/story"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickImage(tt.entry); got != tt.want {
				t.Errorf("pickImage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_Headlines(t *testing.T) {
	srv := serveFeed(t, sampleRSS, http.StatusOK)

	r := &Reader{Sources: []Source{{Name: "Sample", URL: srv.URL}}}
	items, err := r.Headlines(context.Background(), 1)
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Picture of the day" {
		t.Errorf("Headlines = %+v", items)
	}
}

func TestReader_HeadlinesFrom(t *testing.T) {
	sample := serveFeed(t, sampleRSS, http.StatusOK)
	other := serveFeed(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>Other</title>
<item><title>Elsewhere</title><link>http://other.example.com/1</link></item></channel></rss>`, http.StatusOK)

	r := &Reader{Sources: []Source{
		{Name: "Sample", URL: sample.URL},
		{Name: "Other", URL: other.URL},
	}}

	items, err := r.HeadlinesFrom(context.Background(), "sample", 2)
	if err != nil {
		t.Fatalf("HeadlinesFrom: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d headlines, want 2", len(items))
	}
	for _, h := range items {
		if h.Source != "Sample" {
			t.Errorf("headline %q from %q, want Sample only", h.Title, h.Source)
		}
	}

	if _, err := r.HeadlinesFrom(context.Background(), "missing", 2); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("err = %v, want ErrUnknownSource", err)
	}
}

func TestFetch_ManySourcesConcurrently(t *testing.T) {
	var sources []Source
	for i := 0; i < 6; i++ {
		body := fmt.Sprintf(`<?xml version="1.0"?><rss version="2.0"><channel><title>S%d</title>
<item><title>Story number %d from source</title><link>http://example.com/%d</link>
<pubDate>Mon, 19 Oct 2026 0%d:00:00 GMT</pubDate></item></channel></rss>`, i, i, i, i)
		srv := serveFeed(t, body, http.StatusOK)
		sources = append(sources, Source{Name: fmt.Sprintf("S%d", i), URL: srv.URL})
	}

	// run with -race: every source is parsed on its own goroutine
	for round := 0; round < 10; round++ {
		items, err := Fetch(context.Background(), sources, 0)
		if err != nil {
			t.Fatalf("round %d: Fetch: %v", round, err)
		}
		if len(items) != len(sources) {
			t.Fatalf("round %d: got %d headlines, want %d", round, len(items), len(sources))
		}
		if items[0].Source != "S5" {
			t.Errorf("round %d: newest headline from %q, want S5", round, items[0].Source)
		}
	}
}
