package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"bookshelf/internal/entity"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// DuneBook is a catalog book for testing
var DuneBook = entity.Book{
	ID:            "dune-1",
	Title:         "Dune",
	Authors:       []string{"Frank Herbert"},
	Description:   strings.Repeat("Arrakis is a desert planet. ", 10) + "The spice must flow.",
	Publisher:     "Chilton Books",
	PublishedDate: "1965-08-01",
	PageCount:     412,
	Language:      "en",
	Categories:    []string{"Fiction"},
	ImageLinks:    entity.ImageLinks{Thumbnail: "https://books.example/dune.jpg"},
}

// DuneMessiahBook is a second catalog book for testing, without a cover
var DuneMessiahBook = entity.Book{
	ID:            "dune-2",
	Title:         "Dune Messiah",
	Authors:       []string{"Frank Herbert"},
	Description:   "Twelve years after the events of Dune.",
	PublishedDate: "1969",
}

// Backend is a fake catalog backend that records every request it serves.
type Backend struct {
	*httptest.Server

	mu    sync.Mutex
	calls []string
}

// NewBackend starts a fake backend. Route keys are ServeMux patterns such as
// "GET /api/books/{id}". The server is closed when the test ends.
func NewBackend(t *testing.T, routes map[string]http.HandlerFunc) *Backend {
	t.Helper()
	b := &Backend{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

// Calls returns every "METHOD /path" served so far, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CallCount returns how many times "METHOD /path" was served.
func (b *Backend) CallCount(call string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// WriteJSON writes v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewFormRequest creates a form-encoded request for testing
func NewFormRequest(method, target string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// QueryAll parses doc as HTML and returns the nodes matching selector
func QueryAll(t *testing.T, doc string, selector string) []*html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	sel, err := cascadia.Parse(selector)
	if err != nil {
		t.Fatalf("parse selector %q: %v", selector, err)
	}
	return cascadia.QueryAll(root, sel)
}

// Text returns the concatenated, space-trimmed text content of n
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Attr returns the value of attribute name on n, or ""
func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
