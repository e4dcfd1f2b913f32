package wiki

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/metrics"
	"github.com/Ken-Miles/farm-computer/pkg/retry"
)

// PageIndex holds the full set of wiki page titles for query normalization
// and autocomplete. Refreshes replace the set wholesale; readers always see
// a consistent point-in-time snapshot.
type PageIndex struct {
	client       *Client
	startPath    string
	refreshEvery time.Duration
	logger       *zap.Logger

	// serializes refreshes so a slow walk and the ticker can't race
	refreshMu sync.Mutex
	snapshot  atomic.Value // []string

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewPageIndex(client *Client, startPath string, refreshEvery time.Duration, logger *zap.Logger) *PageIndex {
	idx := &PageIndex{
		client:       client,
		startPath:    startPath,
		refreshEvery: refreshEvery,
		logger:       logger,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	idx.snapshot.Store([]string(nil))
	return idx
}

// Titles returns the current snapshot. Callers must not mutate it.
func (idx *PageIndex) Titles() []string {
	titles, _ := idx.snapshot.Load().([]string)
	return titles
}

// Start refreshes once immediately, then on a fixed schedule until Stop.
func (idx *PageIndex) Start(ctx context.Context) {
	go func() {
		defer close(idx.done)

		if _, err := idx.Refresh(ctx); err != nil {
			idx.logger.Warn("Initial page index refresh failed", zap.Error(err))
		}

		ticker := time.NewTicker(idx.refreshEvery)
		defer ticker.Stop()

		for {
			select {
			case <-idx.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := idx.Refresh(ctx); err != nil {
					idx.logger.Warn("Scheduled page index refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

func (idx *PageIndex) Stop() {
	idx.stopOnce.Do(func() { close(idx.stop) })
	<-idx.done
}

// Refresh walks the paginated all-pages listing, following next-page links
// until none remains or a link repeats. The walk is best-effort: a failed
// fetch truncates that refresh and the next scheduled run retries from the
// start. Returns the number of titles collected.
func (idx *PageIndex) Refresh(ctx context.Context) (int, error) {
	idx.refreshMu.Lock()
	defer idx.refreshMu.Unlock()

	start := time.Now()
	visited := make(map[string]bool)
	var hrefs []string
	truncated := 0

	next := idx.client.BaseURL() + idx.startPath
	for next != "" && !visited[next] {
		visited[next] = true

		pageURL := next
		doc, err := retry.DoWithResult(ctx, retry.Config{MaxAttempts: 2, Logger: idx.logger},
			func() (*goquery.Document, error) {
				doc, _, err := idx.client.Document(ctx, pageURL)
				return doc, err
			})
		if err != nil {
			truncated++
			idx.logger.Warn("Page listing fetch failed, keeping partial index",
				zap.String("url", pageURL), zap.Error(err))
			break
		}

		doc.Find("ul.mw-allpages-chunk li a").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && href != "" {
				hrefs = append(hrefs, href)
			}
		})

		next = ""
		doc.Find(`a[title="Special:AllPages"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if !strings.Contains(a.Text(), "Next page") {
				return true
			}
			if href, ok := a.Attr("href"); ok {
				next = idx.client.ResolveRef(href)
			}
			return false
		})
	}

	titles := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		titles = append(titles, decodeTitle(href))
	}
	idx.snapshot.Store(titles)

	metrics.IndexTitles.Set(float64(len(titles)))
	metrics.IndexRefreshDuration.Observe(time.Since(start).Seconds())

	idx.logger.Info("Page index refreshed",
		zap.Int("titles", len(titles)),
		zap.Int("truncated_branches", truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
	return len(titles), nil
}

// decodeTitle turns an all-pages href into a display title: the leading
// slash goes, percent-encoded apostrophes and spaces decode, underscores
// become spaces.
func decodeTitle(href string) string {
	title := strings.TrimPrefix(href, "/")
	title = strings.ReplaceAll(title, "%27", "'")
	title = strings.ReplaceAll(title, "%20", " ")
	title = strings.ReplaceAll(title, "_", " ")
	return title
}

// Normalize substitutes the canonical title for a query that matches one
// case-insensitively after trimming. Unmatched queries pass through as-is.
func (idx *PageIndex) Normalize(query string) string {
	titles := idx.Titles()
	for _, t := range titles {
		if t == query {
			return t
		}
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	for _, t := range titles {
		if strings.ToLower(strings.TrimSpace(t)) == needle {
			return t
		}
	}
	return query
}

// Suggest returns up to limit titles containing the typed fragment,
// case-insensitively, in index order.
func (idx *PageIndex) Suggest(current string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(current))
	var out []string
	for _, t := range idx.Titles() {
		if needle == "" || strings.Contains(strings.ToLower(t), needle) {
			out = append(out, t)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
