package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookshelf/internal/apiclient"
	apphttp "bookshelf/internal/http"
	"bookshelf/internal/notify"
	"bookshelf/internal/profile"
	"bookshelf/internal/session"
	"bookshelf/internal/testutil"
	"bookshelf/internal/view"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type app struct {
	backend *testutil.Backend
	server  *httptest.Server
	client  *http.Client
}

func catalogRoutes() map[string]http.HandlerFunc {
	books := map[string]any{
		testutil.DuneBook.ID:        testutil.DuneBook,
		testutil.DuneMessiahBook.ID: testutil.DuneMessiahBook,
	}
	return map[string]http.HandlerFunc{
		"POST /api/books": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, []any{testutil.DuneBook, testutil.DuneMessiahBook})
		},
		"GET /api/books/{id}": func(w http.ResponseWriter, r *http.Request) {
			book, ok := books[r.PathValue("id")]
			if !ok {
				testutil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Book not found"})
				return
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"book": book, "avaliacoes": []any{}})
		},
		"GET /api/ratings/{id}/stats": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "No ratings"})
		},
		"POST /auth/login": func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "secret1" {
				testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
				return
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]string{"user_id": "user-1", "username": "paul", "token": "tok-1"})
		},
		"GET /auth/me": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				testutil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}
			testutil.WriteJSON(w, http.StatusOK, map[string]string{"username": "paul"})
		},
		"GET /api/users/{id}/favorites": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, map[string]any{"favorite_books": []string{"dune-1"}})
		},
		"GET /api/users/{id}/favorites/check/{book}": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, map[string]bool{"is_favorite": true})
		},
		"DELETE /api/users/{id}/favorites/{book}": func(w http.ResponseWriter, r *http.Request) {
			testutil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Book removed"})
		},
	}
}

func newApp(t *testing.T) *app {
	t.Helper()
	return newAppWith(t, catalogRoutes(), 0)
}

func newAppWith(t *testing.T, routes map[string]http.HandlerFunc, requestTimeout time.Duration) *app {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	backend := testutil.NewBackend(t, routes)

	api := apiclient.NewClient(backend.URL, "bookshelf-test", 0, 2*time.Second)
	sessions := session.NewStore(session.NewMemoryStorage())
	binder := view.NewBinder(api, sessions, notify.NewToasts(time.Minute), notify.NewConfirms(time.Minute), log, 2)

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Handler:      apphttp.NewHandler(binder, log),
		Profiles:     profile.NewIssuer("test-secret", time.Hour, false),
		Ready:        map[string]apphttp.Pinger{"storage": sessions, "backend": api},
		Log:          log,
		MaxBodyBytes: 1 << 20,

		RequestTimeout: requestTimeout,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &app{backend: backend, server: server, client: &http.Client{Jar: jar}}
}

func (a *app) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *app) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRouter_SearchThenDetail(t *testing.T) {
	a := newApp(t)

	resp, doc := a.post(t, "/search", url.Values{"q": {"dune"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cards := testutil.QueryAll(t, doc, "a.book-card")
	require.Len(t, cards, 2)
	assert.Equal(t, 1, a.backend.CallCount("POST /api/books"))
	titles := testutil.QueryAll(t, doc, "a.book-card .book-title")
	require.Len(t, titles, 2)
	assert.Equal(t, "Dune", testutil.Text(titles[0]))
	assert.Equal(t, "Dune Messiah", testutil.Text(titles[1]))
	for _, c := range cards {
		desc := testutil.QueryAll(t, doc, `a.book-card[data-book-id="`+testutil.Attr(c, "data-book-id")+`"] .book-description`)
		require.Len(t, desc, 1)
		assert.LessOrEqual(t, len([]rune(testutil.Text(desc[0]))), 123)
	}

	resp, doc = a.get(t, testutil.Attr(cards[0], "href"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.backend.CallCount("GET /api/books/dune-1"))
	desc := testutil.QueryAll(t, doc, ".book-detail-description")
	require.Len(t, desc, 1)
	assert.Equal(t, testutil.DuneBook.Description, testutil.Text(desc[0]))
	assert.Contains(t, doc, "No ratings yet")
	assert.Len(t, testutil.QueryAll(t, doc, ".nav-login"), 1)
}

func TestRouter_ProfileCookie(t *testing.T) {
	a := newApp(t)

	resp, _ := a.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, _ := url.Parse(a.server.URL)
	cookies := a.client.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, profile.CookieName, cookies[0].Name)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRouter_LoginFlow(t *testing.T) {
	a := newApp(t)

	_, doc := a.post(t, "/login", url.Values{"login": {"paul"}, "password": {"wrongpw"}})
	result := testutil.QueryAll(t, doc, "#login-result")
	require.Len(t, result, 1)
	assert.Equal(t, "Invalid credentials", testutil.Text(result[0]))

	resp, doc := a.post(t, "/login", url.Values{"login": {"paul"}, "password": {"secret1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, doc, "Hello, paul")
	assert.Contains(t, doc, "Logged in as paul.")

	_, doc = a.get(t, "/favorites")
	items := testutil.QueryAll(t, doc, ".favorite-item")
	require.Len(t, items, 1)
	assert.Equal(t, "dune-1", testutil.Attr(items[0], "data-book-id"))
}

func TestRouter_AnonymousFavoritesRedirectsToLogin(t *testing.T) {
	a := newApp(t)

	resp, doc := a.get(t, "/favorites")

	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Len(t, testutil.QueryAll(t, doc, "#login-form"), 1)
	assert.Contains(t, doc, "Log in to see your favorites.")
	assert.Zero(t, a.backend.CallCount("GET /api/users/user-1/favorites"))
}

func TestRouter_RemoveFavoriteConfirmFlow(t *testing.T) {
	a := newApp(t)
	a.post(t, "/login", url.Values{"login": {"paul"}, "password": {"secret1"}})

	resp, doc := a.post(t, "/favorites/dune-1/remove", nil)
	require.Equal(t, "/favorites", resp.Request.URL.Path)
	forms := testutil.QueryAll(t, doc, "#confirm-modal form.confirm-actions")
	require.Len(t, forms, 1)
	assert.Zero(t, a.backend.CallCount("DELETE /api/users/user-1/favorites/dune-1"))

	resp, doc = a.post(t, testutil.Attr(forms[0], "action"), url.Values{"choice": {"accept"}})
	assert.Equal(t, "/favorites", resp.Request.URL.Path)
	assert.Equal(t, 1, a.backend.CallCount("DELETE /api/users/user-1/favorites/dune-1"))
	assert.Contains(t, doc, "Book removed from favorites!")
	assert.Empty(t, testutil.QueryAll(t, doc, "#confirm-modal"))
}

func TestRouter_DismissToastAfterPostedScreen(t *testing.T) {
	a := newApp(t)

	resp, doc := a.post(t, "/search", url.Values{"q": {"  "}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	forms := testutil.QueryAll(t, doc, "form.toast-close")
	require.Len(t, forms, 1)
	ret := testutil.QueryAll(t, doc, `form.toast-close input[name="return"]`)
	require.Len(t, ret, 1)
	assert.Equal(t, "/", testutil.Attr(ret[0], "value"))

	resp, doc = a.post(t, testutil.Attr(forms[0], "action"), url.Values{"return": {testutil.Attr(ret[0], "value")}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Empty(t, testutil.QueryAll(t, doc, "form.toast-close"))
}

func TestRouter_DismissToastOnRatingWidgetReturnsToBook(t *testing.T) {
	a := newApp(t)

	resp, doc := a.post(t, "/books/dune-1/rating", url.Values{"action": {view.WidgetSubmit}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, doc, "Please select a rating from 1 to 5 stars.")
	forms := testutil.QueryAll(t, doc, "form.toast-close")
	require.Len(t, forms, 1)
	ret := testutil.QueryAll(t, doc, `form.toast-close input[name="return"]`)
	require.Len(t, ret, 1)
	assert.Equal(t, "/books/dune-1", testutil.Attr(ret[0], "value"))

	resp, _ = a.post(t, testutil.Attr(forms[0], "action"), url.Values{"return": {testutil.Attr(ret[0], "value")}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/books/dune-1", resp.Request.URL.Path)
}

func TestRouter_RequestDeadlineRendersErrorState(t *testing.T) {
	routes := catalogRoutes()
	routes["POST /api/books"] = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}
	a := newAppWith(t, routes, 200*time.Millisecond)

	start := time.Now()
	resp, doc := a.post(t, "/search", url.Values{"q": {"dune"}})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, doc, "Search failed")
	assert.Contains(t, doc, apiclient.ConnectionMessage)
}

func TestRouter_ChatWithoutMessage(t *testing.T) {
	a := newApp(t)

	resp, doc := a.post(t, "/chat", url.Values{"message": {"  "}})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, testutil.QueryAll(t, doc, "#chatbot-input"), 1)
	assert.Zero(t, a.backend.CallCount("POST /api/chat"))
}

func TestRouter_HealthEndpoints(t *testing.T) {
	a := newApp(t)

	resp, body := a.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, body = a.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"storage":"ok","backend":"ok"}`, body)

	a.backend.Close()
	resp, body = a.get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.True(t, strings.Contains(body, `"backend":"unavailable"`))
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	a := newApp(t)

	resp, _ := a.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = a.get(t, "/search")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPinger_StoreSatisfies(t *testing.T) {
	var _ apphttp.Pinger = session.NewStore(session.NewMemoryStorage())
	assert.NoError(t, session.NewStore(session.NewMemoryStorage()).Ping(context.Background()))
}
