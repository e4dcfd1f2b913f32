package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/cache"
	"github.com/Ken-Miles/farm-computer/internal/wiki"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

const parsnipPage = `<!DOCTYPE html>
<html>
<body>
<img src="/mediawiki/images/d/db/Parsnip.png" alt="Parsnip"/>
<h1 id="firstHeading">Parsnip</h1>
<div class="mw-parser-output">
<table id="infoboxtable">
<tr><td id="infoboxsection">Growth Time</td><td id="infoboxdetail">4 days</td></tr>
</table>
</div>
</body>
</html>`

const noResultsPage = `<html><body>
<h1 id="firstHeading">Search results</h1>
<p class="mw-search-createlink">Create this page</p>
</body></html>`

func testService(t *testing.T) (*Service, *int) {
	t.Helper()

	pageFetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/Parsnip":
			pageFetches++
			w.Write([]byte(parsnipPage))
		case r.URL.Path == "/mediawiki/index.php" && r.URL.Query().Get("search") != "":
			w.Write([]byte(noResultsPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := wiki.NewClient(server.URL, "test", 5*time.Second, zap.NewNop())
	resolver := wiki.NewResolver(client, nil, zap.NewNop())
	extractor := wiki.NewExtractor(client, zap.NewNop())
	c := cache.New(extractor, 5, zap.NewNop())

	return NewService(resolver, c, server.URL, nil), &pageFetches
}

func TestLookupDirectHitThenCached(t *testing.T) {
	svc, fetches := testService(t)

	first, err := svc.Lookup(context.Background(), "Parsnip", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "direct", first.Outcome)
	assert.False(t, first.CacheHit)
	assert.Equal(t, "Parsnip - Stardew Valley Wiki", first.Summary.Title)
	require.Len(t, first.Summary.Fields, 1)
	assert.Equal(t, "Growth Time", first.Summary.Fields[0].Name)
	assert.Equal(t, "4 days", first.Summary.Fields[0].Value)

	second, err := svc.Lookup(context.Background(), "Parsnip", "user-2")
	require.NoError(t, err)
	assert.Equal(t, "direct", second.Outcome)
	assert.True(t, second.CacheHit)

	// each lookup probes the page once to resolve; extraction ran only once
	assert.Equal(t, 3, *fetches)
}

func TestLookupNotFoundReturnsHelp(t *testing.T) {
	svc, _ := testService(t)

	result, err := svc.Lookup(context.Background(), "zzzznotapage", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "not_found", result.Outcome)
	assert.False(t, result.CacheHit)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "Stardew Valley Wiki", result.Summary.Title)
	assert.NotEmpty(t, result.Summary.Description)
}
