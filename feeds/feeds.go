package feeds

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

// Headline is a single news article
type Headline struct {
	Title     string
	URL       string
	Image     string // empty when the entry has none
	Source    string
	Published time.Time
}

// Source is one RSS/Atom feed.
type Source struct {
	Name string
	URL  string
}

var imageExts = []string{".jpg", ".jpeg", ".png", ".gif"}

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "skycast/1.0 (Go RSS reader)"
)

// Fetch pulls every source concurrently and returns up to limit headlines,
// newest first. Individual feed failures are skipped; an error is returned
// only when no source could be read.
func Fetch(ctx context.Context, sources []Source, limit int) ([]Headline, error) {
	if len(sources) == 0 {
		return nil, errors.New("no news sources configured")
	}

	var (
		mu       sync.Mutex
		items    []Headline
		failures []error
		wg       sync.WaitGroup
	)

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			defer cancel()

			// gofeed.Parser keeps per-parse state, so each feed gets its own
			fp := gofeed.NewParser()
			fp.UserAgent = userAgent
			feed, err := fp.ParseURLWithContext(src.URL, fetchCtx)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failures = append(failures, fmt.Errorf("%s: %w", src.Name, err))
				return
			}
			for _, entry := range feed.Items {
				if h, ok := toHeadline(src.Name, entry); ok {
					items = append(items, h)
				}
			}
		}(src)
	}

	wg.Wait()

	if len(failures) == len(sources) {
		return nil, fmt.Errorf("all news sources failed: %w", errors.Join(failures...))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})

	// Deduplicate similar titles
	seen := make(map[string]bool)
	deduped := make([]Headline, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item.Title[:min(40, len(item.Title))])
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, item)
		if limit > 0 && len(deduped) == limit {
			break
		}
	}
	return deduped, nil
}

func toHeadline(source string, entry *gofeed.Item) (Headline, bool) {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		return Headline{}, false
	}
	pub := time.Now()
	if entry.PublishedParsed != nil {
		pub = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		pub = *entry.UpdatedParsed
	}
	return Headline{
		Title:     title,
		URL:       entry.Link,
		Image:     pickImage(entry),
		Source:    source,
		Published: pub,
	}, true
}

// pickImage prefers a link that is itself an image, then the feed's item
// image, then the first image enclosure.
func pickImage(entry *gofeed.Item) string {
	if isImageURL(entry.Link) {
		return entry.Link
	}
	if entry.Image != nil && strings.HasPrefix(entry.Image.URL, "http") {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc == nil {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") || isImageURL(enc.URL) {
			return enc.URL
		}
	}
	return ""
}

func isImageURL(u string) bool {
	lower := strings.ToLower(u)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ErrUnknownSource is returned when no configured source has the requested name.
var ErrUnknownSource = errors.New("unknown news source")

// Reader serves headlines from a fixed set of sources.
type Reader struct {
	Sources []Source
}

// Headlines fetches up to limit headlines from r.Sources.
func (r *Reader) Headlines(ctx context.Context, limit int) ([]Headline, error) {
	return Fetch(ctx, r.Sources, limit)
}

// HeadlinesFrom fetches up to limit headlines from the single source whose
// name matches, ignoring case.
func (r *Reader) HeadlinesFrom(ctx context.Context, name string, limit int) ([]Headline, error) {
	for _, src := range r.Sources {
		if strings.EqualFold(src.Name, name) {
			return Fetch(ctx, []Source{src}, limit)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}
