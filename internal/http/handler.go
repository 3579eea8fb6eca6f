package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"bookshelf/internal/httpx"
	"bookshelf/internal/view"

	"github.com/sirupsen/logrus"
)

// Handler adapts browser requests to the binder. Every response is either a
// full page or a 303 redirect to one.
type Handler struct {
	binder *view.Binder
	log    logrus.FieldLogger
}

func NewHandler(binder *view.Binder, log logrus.FieldLogger) *Handler {
	return &Handler{binder: binder, log: log}
}

type action func(ctx context.Context, profileID string, r *http.Request) view.Result

// screen serves a page load. The stored session is validated before the
// screen is built so that a stale token is never used.
func (h *Handler) screen(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		profileID := httpx.ProfileIDFrom(r)
		nav := h.binder.Bootstrap(ctx, profileID)
		h.respond(w, r, r.URL.RequestURI(), profileID, nav, fn(ctx, profileID, r))
	}
}

// submit serves a form post. Most posts redirect; the session is only
// validated when the post renders a page of its own.
func (h *Handler) submit(fn action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			httpx.HTMLError(w, r, http.StatusBadRequest, "The form could not be read.")
			return
		}
		ctx := r.Context()
		profileID := httpx.ProfileIDFrom(r)
		res := fn(ctx, profileID, r)
		if res.Redirect != "" {
			httpx.SeeOther(w, r, res.Redirect)
			return
		}
		// the post route itself cannot be reloaded with GET
		back := view.ReturnPath(res.Screen, bookID(r))
		h.respond(w, r, back, profileID, h.binder.Bootstrap(ctx, profileID), res)
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, returnTo, profileID string, nav view.Nav, res view.Result) {
	if res.Redirect != "" {
		httpx.SeeOther(w, r, res.Redirect)
		return
	}
	page, err := h.binder.Page(r.Context(), profileID, returnTo, nav, res)
	if err != nil {
		h.log.WithField("request_id", httpx.RequestIDFrom(r)).WithError(err).Error("render page")
		httpx.HTMLError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	httpx.HTML(w, http.StatusOK, page)
}

func (h *Handler) Home(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Home()
}

func (h *Handler) AuthPage(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.AuthPage()
}

func (h *Handler) Register(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Register(ctx, profileID, view.RegisterForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	})
}

func (h *Handler) Login(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Login(ctx, profileID, view.LoginForm{
		Login:    r.PostFormValue("login"),
		Password: r.PostFormValue("password"),
	})
}

func (h *Handler) Logout(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Logout(ctx, profileID)
}

func (h *Handler) Search(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Search(ctx, profileID, r.PostFormValue("q"))
}

func (h *Handler) BookDetail(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.BookDetail(ctx, profileID, r.PathValue("id"), r.URL.Query().Get("from"))
}

func (h *Handler) AddFavorite(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.AddFavorite(ctx, profileID, r.PathValue("id"), r.PostFormValue("from"))
}

func (h *Handler) Favorites(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Favorites(ctx, profileID)
}

func (h *Handler) RemoveFavorite(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.RemoveFavorite(ctx, profileID, r.PathValue("id"))
}

func (h *Handler) Ratings(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Ratings(ctx, profileID)
}

func (h *Handler) RateBook(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.RateBook(ctx, profileID, r.PathValue("id"))
}

func (h *Handler) RatingWidget(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.RatingWidget(ctx, profileID, r.PathValue("id"), view.WidgetInput{
		Selected: formInt(r, "selected"),
		Clicked:  r.PostFormValue("clicked") != "",
		Editing:  r.PostFormValue("editing") != "",
		Star:     formInt(r, "star"),
		Action:   r.PostFormValue("action"),
		Comment:  r.PostFormValue("comment"),
	})
}

func (h *Handler) EditRating(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.EditRating(ctx, profileID, r.PathValue("id"), formInt(r, "stars"), r.PostFormValue("comment"))
}

func (h *Handler) DeleteRating(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.DeleteRating(ctx, profileID, r.PathValue("id"))
}

func (h *Handler) ResolveConfirm(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.ResolveConfirm(ctx, profileID, r.PathValue("id"), r.PostFormValue("choice"))
}

func (h *Handler) DismissToast(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.DismissToast(profileID, r.PathValue("id"), r.PostFormValue("return"))
}

func (h *Handler) ChatPage(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.ChatPage(nil)
}

func (h *Handler) Chat(ctx context.Context, profileID string, r *http.Request) view.Result {
	return h.binder.Chat(ctx, profileID, transcript(r), r.PostFormValue("message"))
}

// transcript pairs the repeated role and text fields of the chat form.
func transcript(r *http.Request) []view.ChatMessage {
	roles, texts := r.PostForm["role"], r.PostForm["text"]
	n := min(len(roles), len(texts))
	out := make([]view.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, view.ChatMessage{Role: roles[i], Text: texts[i]})
	}
	return out
}

// bookID is the {id} of routes that address a book.
func bookID(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/books/") || strings.HasPrefix(r.URL.Path, "/ratings/") {
		return r.PathValue("id")
	}
	return ""
}

func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.PostFormValue(key))
	if err != nil {
		return 0
	}
	return n
}
