package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRefreshWalksAllPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/Special:AllPages":
			writeFixture(t, w, "allpages_1.html")
		case r.URL.Path == "/mediawiki/index.php" && r.URL.Query().Get("from") == "Bat":
			writeFixture(t, w, "allpages_2.html")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "test", 5*time.Second, zap.NewNop())
	idx := NewPageIndex(client, "/Special:AllPages", time.Hour, zap.NewNop())

	n, err := idx.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Refresh returned %d titles, want 5", n)
	}

	want := []string{"Abigail", "Abigail's Room", "Ancient Fruit", "Bat", "Blue Jazz"}
	if got := idx.Titles(); !reflect.DeepEqual(got, want) {
		t.Errorf("Titles() = %v, want %v", got, want)
	}
}

func TestRefreshBreaksLinkCycle(t *testing.T) {
	const page = `<html><body>
<ul class="mw-allpages-chunk"><li><a href="/Parsnip">Parsnip</a></li></ul>
<a title="Special:AllPages" href="/Special:AllPages">Next page (Parsnip)</a>
</body></html>`

	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(page))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test", 5*time.Second, zap.NewNop())
	idx := NewPageIndex(client, "/Special:AllPages", time.Hour, zap.NewNop())

	if _, err := idx.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if fetches != 1 {
		t.Errorf("self-linking listing fetched %d times, want 1", fetches)
	}
	if got := idx.Titles(); len(got) != 1 || got[0] != "Parsnip" {
		t.Errorf("Titles() = %v, want [Parsnip]", got)
	}
}

func TestRefreshKeepsPartialIndexOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Special:AllPages" {
			writeFixture(t, w, "allpages_1.html")
			return
		}
		// next-page link resolves here; drop the connection mid-walk
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer does not support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		conn.Close()
	}))
	defer server.Close()

	client := NewClient(server.URL, "test", 5*time.Second, zap.NewNop())
	idx := NewPageIndex(client, "/Special:AllPages", time.Hour, zap.NewNop())

	n, err := idx.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if n != 3 {
		t.Errorf("partial refresh returned %d titles, want 3", n)
	}
}

func TestDecodeTitle(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/Abigail", "Abigail"},
		{"/Abigail%27s_Room", "Abigail's Room"},
		{"/Blue%20Jazz", "Blue Jazz"},
		{"/Ancient_Fruit", "Ancient Fruit"},
	}
	for _, tt := range tests {
		if got := decodeTitle(tt.href); got != tt.want {
			t.Errorf("decodeTitle(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	idx := NewPageIndex(nil, "", time.Hour, zap.NewNop())
	idx.snapshot.Store([]string{"Abigail's Room", "Ancient Fruit", "Blue Jazz"})

	tests := []struct {
		query string
		want  string
	}{
		{"Ancient Fruit", "Ancient Fruit"},
		{"ancient fruit", "Ancient Fruit"},
		{"  blue jazz  ", "Blue Jazz"},
		{"abigail's room", "Abigail's Room"},
		{"not in the index", "not in the index"},
	}
	for _, tt := range tests {
		if got := idx.Normalize(tt.query); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	idx := NewPageIndex(nil, "", time.Hour, zap.NewNop())
	idx.snapshot.Store([]string{"Blueberry", "Blueberry Tart", "Blue Jazz", "Parsnip"})

	if got := idx.Suggest("blueberry", 25); len(got) != 2 {
		t.Errorf("Suggest(blueberry) = %v, want 2 matches", got)
	}
	if got := idx.Suggest("blue", 2); len(got) != 2 {
		t.Errorf("Suggest with limit 2 = %v, want it capped", got)
	}
	if got := idx.Suggest("zzz", 25); len(got) != 0 {
		t.Errorf("Suggest(zzz) = %v, want none", got)
	}
}
