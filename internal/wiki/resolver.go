package wiki

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Resolver turns a free-text query into a canonical page URL through an
// ordered fallback chain: direct fetch, then full-text search, then a
// redirect hint inside the search response. Transient failures at any step
// fall through to the next; only NotFound reaches the caller, and it is a
// normal outcome rather than an error.
type Resolver struct {
	client *Client
	index  *PageIndex
	logger *zap.Logger
}

func NewResolver(client *Client, index *PageIndex, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, index: index, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, query string) Resolution {
	title := query
	if r.index != nil {
		title = r.index.Normalize(query)
	}

	if res, ok := r.tryDirect(ctx, title); ok {
		return res
	}
	return r.trySearch(ctx, query)
}

// tryDirect attempts {base}/{encoded title}. Anything between 200 and 350
// after transport-level redirects counts as a hit at the final URL.
func (r *Resolver) tryDirect(ctx context.Context, title string) (Resolution, bool) {
	encoded := strings.ReplaceAll(title, " ", "_")
	encoded = strings.ReplaceAll(encoded, "'", "%27")

	resp, err := r.client.Get(ctx, r.client.BaseURL()+"/"+encoded)
	if err != nil {
		r.logger.Debug("Direct fetch failed, falling back to search",
			zap.String("title", title), zap.Error(err))
		return Resolution{}, false
	}
	if resp.StatusCode < 200 || resp.StatusCode > 350 {
		return Resolution{}, false
	}

	return Resolution{Kind: ResolutionDirectHit, URL: resp.FinalURL}, true
}

func (r *Resolver) trySearch(ctx context.Context, query string) Resolution {
	searchURL := r.client.BaseURL() + "/mediawiki/index.php?search=" + url.QueryEscape(query)

	doc, resp, err := r.client.Document(ctx, searchURL)
	if err != nil {
		r.logger.Warn("Search fetch failed", zap.String("query", query), zap.Error(err))
		return Resolution{Kind: ResolutionNotFound}
	}

	// an exact title match makes the search endpoint redirect to the page
	if resp.Redirected && isRedirectStatus(resp.RedirectStatus) {
		if og, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && og != "" {
			return Resolution{Kind: ResolutionSearchRedirect, URL: og}
		}
	}

	if a := doc.Find("li.mw-search-result a").First(); a.Length() > 0 {
		if href, ok := a.Attr("href"); ok {
			resolved := r.client.ResolveRef(href)
			if resolved != "" && resolved != searchURL {
				return Resolution{Kind: ResolutionSearchResult, URL: resolved}
			}
		}
	}

	if doc.Find("p.mw-search-createlink").Length() > 0 {
		r.logger.Info("No wiki page found", zap.String("query", query))
	}
	return Resolution{Kind: ResolutionNotFound}
}

func isRedirectStatus(status int) bool {
	return status == 301 || status == 302 || status == 304
}
