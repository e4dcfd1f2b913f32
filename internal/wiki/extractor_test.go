package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func serveFixtures(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fixture, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", fixture))
		if err != nil {
			t.Errorf("failed to read fixture %s: %v", fixture, err)
			http.Error(w, "fixture missing", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func testExtractor(t *testing.T, baseURL string) *Extractor {
	t.Helper()
	client := NewClient(baseURL, "test", 5*time.Second, zap.NewNop())
	return NewExtractor(client, zap.NewNop())
}

func TestParseInfoboxPage(t *testing.T) {
	server := serveFixtures(t, map[string]string{"/Parsnip": "parsnip.html"})
	e := testExtractor(t, server.URL)

	summary, err := e.Parse(context.Background(), server.URL+"/Parsnip")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if summary.Title != "Parsnip - Stardew Valley Wiki" {
		t.Errorf("unexpected title: %q", summary.Title)
	}
	if summary.SourceURL != server.URL+"/Parsnip" {
		t.Errorf("unexpected source url: %q", summary.SourceURL)
	}
	if summary.ThumbnailURL != server.URL+"/mediawiki/images/d/db/Parsnip.png" {
		t.Errorf("unexpected thumbnail: %q", summary.ThumbnailURL)
	}
	if summary.Description != "" {
		t.Errorf("infobox page must not carry a description, got %q", summary.Description)
	}
	if len(summary.Fields) == 0 {
		t.Fatal("infobox page produced no fields")
	}

	byName := map[string]string{}
	for _, f := range summary.Fields {
		byName[f.Name] = f.Value
		if f.Inline {
			t.Errorf("field %q marked inline", f.Name)
		}
	}

	sellPrice, ok := byName["Sell Price"]
	if !ok {
		t.Fatal("missing Sell Price field")
	}
	if strings.Contains(sellPrice, "\n") {
		t.Errorf("Sell Price must be plain text, got %q", sellPrice)
	}
	if !strings.Contains(sellPrice, "35g") {
		t.Errorf("Sell Price missing coin amount: %q", sellPrice)
	}

	if want := "[Spring](" + server.URL + "/Spring)"; byName["Season"] != want {
		t.Errorf("Season = %q, want %q", byName["Season"], want)
	}

	// rows after the full-width separator table are layout, not content
	if _, ok := byName["Hidden Section"]; ok {
		t.Error("iteration should stop at the full-width separator row")
	}
}

func TestParsePlainPage(t *testing.T) {
	server := serveFixtures(t, map[string]string{"/Cindersap_Forest": "forest.html"})
	e := testExtractor(t, server.URL)

	summary, err := e.Parse(context.Background(), server.URL+"/Cindersap_Forest")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(summary.Fields) != 0 {
		t.Errorf("plain page must not carry fields, got %d", len(summary.Fields))
	}
	if !strings.Contains(summary.Description, "large exterior region") {
		t.Errorf("first paragraph missing from description: %q", summary.Description)
	}
	if !strings.Contains(summary.Description, "\n\n") {
		t.Errorf("paragraphs should be joined with a blank line: %q", summary.Description)
	}
	if strings.Contains(summary.Description, "data-sort-value") {
		t.Errorf("sort-key artifact survived cleaning: %q", summary.Description)
	}
	if strings.Contains(summary.Description, "third paragraph") {
		t.Errorf("description must only include the first two paragraphs: %q", summary.Description)
	}
}

func TestParseLicenseIconFallback(t *testing.T) {
	server := serveFixtures(t, map[string]string{"/About": "license.html"})
	e := testExtractor(t, server.URL)

	summary, err := e.Parse(context.Background(), server.URL+"/About")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if summary.ThumbnailURL != "" {
		t.Errorf("license icon must never be the thumbnail, got %q", summary.ThumbnailURL)
	}
	if summary.ImageURL != server.URL+mainLogoPath {
		t.Errorf("expected logo fallback, got %q", summary.ImageURL)
	}
}

func TestParseHelpShortCircuit(t *testing.T) {
	e := testExtractor(t, "https://stardewvalleywiki.com")

	for _, url := range []string{
		"",
		"https://stardewvalleywiki.com/Special:Search?query=x",
		"https://stardewvalleywiki.com/mediawiki/index.php?search=x",
	} {
		summary, err := e.Parse(context.Background(), url)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", url, err)
		}
		if summary.Title != "Stardew Valley Wiki" {
			t.Errorf("Parse(%q) should return the help artifact, got title %q", url, summary.Title)
		}
		if summary.Description == "" {
			t.Errorf("help artifact needs a description")
		}
	}
}

func TestParseMissingHeadingFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>no heading here</p></body></html>"))
	}))
	defer server.Close()

	e := testExtractor(t, server.URL)
	if _, err := e.Parse(context.Background(), server.URL+"/Broken"); err == nil {
		t.Fatal("expected an error for a page without a heading")
	}
}
