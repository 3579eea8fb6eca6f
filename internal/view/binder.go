package view

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"bookshelf/internal/apiclient"
	"bookshelf/internal/entity"
	"bookshelf/internal/inflight"
	"bookshelf/internal/notify"
	"bookshelf/internal/session"
	"bookshelf/internal/stars"
	"bookshelf/internal/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	originFavorites = "favorites"
	originRatings   = "ratings"

	// MaxTranscript is how many chat messages a transcript keeps.
	MaxTranscript = 50

	defaultFanout = 4
)

// Nav is the logged-in state the page chrome shows.
type Nav struct {
	LoggedIn bool
	Username string
	UserID   string
}

// Result is what a named handler produces: either a screen to render or a
// location to redirect to.
type Result struct {
	Screen   Screen
	Title    string
	Body     template.HTML
	Redirect string
}

func redirect(to string) Result {
	return Result{Redirect: to}
}

type bookDetail struct {
	Book    entity.Book
	Ratings []entity.Rating
	Stats   *entity.RatingStats
}

// Binder turns browser actions into backend calls and rendered screens. One
// Binder serves every profile.
type Binder struct {
	api      API
	sessions *session.Store
	toasts   *notify.Toasts
	confirms *notify.Confirms
	guard    *inflight.Guard
	log      logrus.FieldLogger
	fanout   int
}

// NewBinder wires a binder. fanout bounds concurrent detail fetches when a
// list page loads its books.
func NewBinder(api API, sessions *session.Store, toasts *notify.Toasts, confirms *notify.Confirms, log logrus.FieldLogger, fanout int) *Binder {
	if fanout < 1 {
		fanout = defaultFanout
	}
	return &Binder{
		api:      api,
		sessions: sessions,
		toasts:   toasts,
		confirms: confirms,
		guard:    inflight.NewGuard(),
		log:      log,
		fanout:   fanout,
	}
}

// Bootstrap validates the stored session of a profile on page load. A
// session the backend no longer accepts is cleared without a notice.
func (b *Binder) Bootstrap(ctx context.Context, profileID string) Nav {
	sess, ok, err := b.sessions.Get(ctx, profileID)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Warn("load session")
		return Nav{}
	}
	if !ok {
		return Nav{}
	}

	username, err := b.api.Whoami(ctx, sess.Token)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Info("stored session rejected, clearing it")
		if err := b.sessions.Clear(ctx, profileID); err != nil {
			b.log.WithField("profile_id", profileID).WithError(err).Error("clear session")
		}
		return Nav{}
	}
	if username == "" {
		username = sess.Username
	}
	return Nav{LoggedIn: true, Username: username, UserID: sess.UserID}
}

// Page renders res inside the page chrome with the profile's pending toasts
// and confirmation. returnTo must be a GET route.
func (b *Binder) Page(ctx context.Context, profileID, returnTo string, nav Nav, res Result) ([]byte, error) {
	p := Page{
		Title:    res.Title,
		Screen:   res.Screen,
		ReturnTo: LocalPath(returnTo),
		Nav:    nav,
		Toasts: b.toasts.Pending(profileID),
		Body:   res.Body,
	}
	if c, ok := b.confirms.Pending(ctx, profileID); ok {
		p.Confirm = &c
	}
	return RenderPage(p)
}

func (b *Binder) session(ctx context.Context, profileID string) (entity.Session, bool) {
	sess, ok, err := b.sessions.Get(ctx, profileID)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Warn("load session")
		return entity.Session{}, false
	}
	return sess, ok
}

// startSession stores a login and returns the name to greet the user with.
func (b *Binder) startSession(ctx context.Context, profileID, login string, res apiclient.LoginResult) (string, error) {
	username := res.Username
	if username == "" {
		username = login
	}
	return username, b.sessions.Set(ctx, profileID, entity.Session{
		UserID:   res.UserID,
		Username: username,
		Token:    res.Token,
	})
}

// acquire takes the in-flight slot of one action. A duplicate gets a warning
// toast and ok == false.
func (b *Binder) acquire(profileID string, action ...string) (release func(), ok bool) {
	release, err := b.guard.Acquire(inflight.Key(append([]string{profileID}, action...)...))
	if err != nil {
		b.toasts.Notify(profileID, "That action is already in progress.", notify.Warning, "Please wait")
		return nil, false
	}
	return release, true
}

func (b *Binder) loginRequired(profileID, message string) Result {
	b.toasts.Notify(profileID, message, notify.Warning, "Login required")
	return redirect("/login")
}

func (b *Binder) fail(profileID string, err error) {
	b.toasts.Notify(profileID, apiclient.Message(err), notify.Error, "")
}

func (b *Binder) fragment(name string, data any) template.HTML {
	html, err := render(name, data)
	if err != nil {
		b.log.WithError(err).Error("render fragment")
		fallback, _ := render("error-block", ErrorBlock{Title: "Error", Message: "This screen could not be displayed."})
		return fallback
	}
	return html
}

// Home is the search screen before any search.
func (b *Binder) Home() Result {
	return Result{Screen: ScreenHome, Body: b.fragment("search", searchData{})}
}

// AuthPage shows the login and register forms.
func (b *Binder) AuthPage() Result {
	return b.authResult(AuthForm{})
}

func (b *Binder) authResult(form AuthForm) Result {
	return Result{Screen: ScreenAuth, Title: "Log in", Body: b.fragment("auth", form)}
}

type RegisterForm struct {
	Username string
	Email    string
	Password string
}

// Register creates an account and logs straight into it.
func (b *Binder) Register(ctx context.Context, profileID string, f RegisterForm) Result {
	username := strings.TrimSpace(f.Username)
	email := strings.TrimSpace(f.Email)
	form := AuthForm{Username: username, Email: email}

	if msg := validation.ValidateRegistration(username, email, f.Password); msg != "" {
		form.RegisterResult = inlineError(msg)
		return b.authResult(form)
	}

	release, ok := b.acquire(profileID, "register")
	if !ok {
		return b.authResult(form)
	}
	defer release()

	if _, err := b.api.Register(ctx, username, email, f.Password); err != nil {
		form.RegisterResult = inlineError(apiclient.Message(err))
		return b.authResult(form)
	}

	res, err := b.api.Login(ctx, username, f.Password)
	if err != nil {
		form.RegisterResult = inlineError("Account created, but automatic login failed: " + apiclient.Message(err))
		return b.authResult(form)
	}
	name, err := b.startSession(ctx, profileID, username, res)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Error("store session")
		form.RegisterResult = inlineError("Account created, but your session could not be saved. Please log in.")
		return b.authResult(form)
	}

	b.toasts.Notify(profileID, fmt.Sprintf("Account created. Welcome, %s!", name), notify.Success, "Welcome!")
	return redirect("/")
}

type LoginForm struct {
	Login    string
	Password string
}

// Login accepts a username or an email address. Only the password is
// checked before the backend sees it.
func (b *Binder) Login(ctx context.Context, profileID string, f LoginForm) Result {
	login := strings.TrimSpace(f.Login)
	form := AuthForm{Login: login}

	if msg := validation.ValidateLogin(f.Password); msg != "" {
		form.LoginResult = inlineError(msg)
		return b.authResult(form)
	}

	release, ok := b.acquire(profileID, "login")
	if !ok {
		return b.authResult(form)
	}
	defer release()

	res, err := b.api.Login(ctx, login, f.Password)
	if err != nil {
		form.LoginResult = inlineError(apiclient.Message(err))
		return b.authResult(form)
	}
	name, err := b.startSession(ctx, profileID, login, res)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Error("store session")
		form.LoginResult = inlineError("Your session could not be saved. Please try again.")
		return b.authResult(form)
	}

	b.toasts.Notify(profileID, fmt.Sprintf("Logged in as %s.", name), notify.Success, "")
	return redirect("/")
}

// Logout tells the backend, then forgets the session whatever it answered.
func (b *Binder) Logout(ctx context.Context, profileID string) Result {
	if sess, ok := b.session(ctx, profileID); ok {
		if err := b.api.Logout(ctx, sess.Token, sess.UserID); err != nil {
			b.log.WithField("profile_id", profileID).WithError(err).Debug("backend logout failed")
		}
	}
	if err := b.sessions.Clear(ctx, profileID); err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Error("clear session")
	}
	b.toasts.Notify(profileID, "You have been logged out.", notify.Info, "")
	return redirect("/")
}

// Search runs a book search. Anonymous searches are allowed.
func (b *Binder) Search(ctx context.Context, profileID, query string) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		b.toasts.Notify(profileID, "Type a book title to search.", notify.Warning, "")
		return b.Home()
	}

	data := searchData{Query: query}
	release, ok := b.acquire(profileID, "search")
	if !ok {
		return Result{Screen: ScreenHome, Title: "Search", Body: b.fragment("search", data)}
	}
	defer release()

	sess, _ := b.session(ctx, profileID)
	books, err := b.api.SearchBooks(ctx, sess.Token, query)
	data.Searched = true
	if err != nil {
		data.Error = &ErrorBlock{Title: "Search failed", Message: apiclient.Message(err)}
	}
	for _, book := range books {
		data.Cards = append(data.Cards, CardFor(book, ""))
	}
	return Result{Screen: ScreenHome, Title: "Search", Body: b.fragment("search", data)}
}

// BookDetail shows one book. origin names the list it was opened from so that
// closing it returns there.
func (b *Binder) BookDetail(ctx context.Context, profileID, bookID, origin string) Result {
	sess, loggedIn := b.session(ctx, profileID)

	detail, err := b.api.GetBookDetail(ctx, sess.Token, bookID)
	if err != nil {
		return Result{Screen: ScreenBook, Title: "Book", Body: b.fragment("error-block", ErrorBlock{Title: "Error", Message: apiclient.Message(err)})}
	}

	bd := bookDetail{Book: detail.Book, Ratings: detail.Ratings}
	var favorite, statsChecked bool
	var g errgroup.Group
	g.Go(func() error {
		stats, found, err := b.api.RatingStats(ctx, bookID)
		if err != nil {
			b.log.WithField("book_id", bookID).WithError(err).Debug("rating stats unavailable")
			return nil
		}
		statsChecked = true
		if found {
			bd.Stats = &stats
		}
		return nil
	})
	if loggedIn {
		g.Go(func() error {
			fav, err := b.api.IsFavorite(ctx, sess.Token, sess.UserID, bookID)
			if err != nil {
				b.log.WithField("book_id", bookID).WithError(err).Debug("favorite check failed")
				return nil
			}
			favorite = fav
			return nil
		})
	}
	_ = g.Wait()

	data := newDetailData(bd, origin)
	data.StatsChecked = statsChecked
	data.LoggedIn = loggedIn
	data.Favorite = favorite
	return Result{Screen: ScreenBook, Title: data.Title, Body: b.fragment("book", data)}
}

// AddFavorite adds a book to the user's favorites and returns to the book.
func (b *Binder) AddFavorite(ctx context.Context, profileID, bookID, origin string) Result {
	back := withOrigin(BookPath(bookID), origin)
	sess, ok := b.session(ctx, profileID)
	if !ok {
		return b.loginRequired(profileID, "Log in to add books to your favorites.")
	}

	release, ok := b.acquire(profileID, "favorite", bookID)
	if !ok {
		return redirect(back)
	}
	defer release()

	if _, err := b.api.AddFavorite(ctx, sess.Token, sess.UserID, bookID); err != nil {
		b.fail(profileID, err)
		return redirect(back)
	}
	b.toasts.Notify(profileID, "Book added to favorites!", notify.Success, "")
	return redirect(back)
}

// fetchBooks loads every book concurrently. It fails as a whole as soon as
// one book fails.
func (b *Binder) fetchBooks(ctx context.Context, token string, ids []string) ([]entity.Book, error) {
	books := make([]entity.Book, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanout)
	for i, id := range ids {
		g.Go(func() error {
			d, err := b.api.GetBookDetail(gctx, token, id)
			if err != nil {
				return fmt.Errorf("load book %s: %w", id, err)
			}
			books[i] = d.Book
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return books, nil
}

// Favorites lists the user's favorite books. Nothing is listed unless every
// book loads.
func (b *Binder) Favorites(ctx context.Context, profileID string) Result {
	sess, ok := b.session(ctx, profileID)
	if !ok {
		return b.loginRequired(profileID, "Log in to see your favorites.")
	}

	var data favoritesData
	ids, err := b.api.ListFavorites(ctx, sess.Token, sess.UserID)
	if err == nil && len(ids) > 0 {
		var books []entity.Book
		books, err = b.fetchBooks(ctx, sess.Token, ids)
		for _, book := range books {
			data.Items = append(data.Items, favoriteItem{
				Card:         CardFor(book, originFavorites),
				RemoveAction: "/favorites/" + url.PathEscape(book.ID) + "/remove",
			})
		}
	}
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Warn("load favorites")
		data = favoritesData{Error: &ErrorBlock{Title: "Could not load your favorites", Message: apiclient.Message(err)}}
	}
	return Result{Screen: ScreenFavorites, Title: "Favorites", Body: b.fragment("favorites", data)}
}

// RemoveFavorite asks for confirmation before removing a favorite.
func (b *Binder) RemoveFavorite(ctx context.Context, profileID, bookID string) Result {
	if _, ok := b.session(ctx, profileID); !ok {
		return b.loginRequired(profileID, "Log in to manage your favorites.")
	}
	b.confirms.Request(ctx, profileID, notify.Prompt{
		Title:        "Remove from favorites",
		Message:      "Are you sure you want to remove this book from your favorites?",
		ConfirmLabel: "Remove",
		ReturnTo:     "/favorites",
	}, func(ctx context.Context) {
		b.removeFavorite(ctx, profileID, bookID)
	}, nil)
	return redirect("/favorites")
}

func (b *Binder) removeFavorite(ctx context.Context, profileID, bookID string) {
	sess, ok := b.session(ctx, profileID)
	if !ok {
		b.toasts.Notify(profileID, "Log in to manage your favorites.", notify.Warning, "Login required")
		return
	}
	release, ok := b.acquire(profileID, "unfavorite", bookID)
	if !ok {
		return
	}
	defer release()

	if _, err := b.api.RemoveFavorite(ctx, sess.Token, sess.UserID, bookID); err != nil {
		b.fail(profileID, err)
		return
	}
	b.toasts.Notify(profileID, "Book removed from favorites!", notify.Success, "Removed!")
}

// Ratings lists the user's ratings with their books, all or nothing.
func (b *Binder) Ratings(ctx context.Context, profileID string) Result {
	sess, ok := b.session(ctx, profileID)
	if !ok {
		return b.loginRequired(profileID, "Log in to see your ratings.")
	}

	var data ratingsData
	ratings, err := b.api.ListRatings(ctx, sess.Token, sess.UserID)
	if err == nil && len(ratings) > 0 {
		ids := make([]string, len(ratings))
		for i, r := range ratings {
			ids[i] = r.BookID
		}
		var books []entity.Book
		books, err = b.fetchBooks(ctx, sess.Token, ids)
		for i, book := range books {
			r := ratings[i]
			filled := make([]bool, stars.MaxStars)
			for n := range filled {
				filled[n] = n < r.Stars
			}
			data.Items = append(data.Items, ratingItem{
				Card:         CardFor(book, originRatings),
				Stars:        r.Stars,
				Filled:       filled,
				Comment:      r.Comment,
				Date:         formatDate(r.RatedAt),
				EditAction:   "/ratings/" + url.PathEscape(r.BookID) + "/edit",
				DeleteAction: "/ratings/" + url.PathEscape(r.BookID) + "/delete",
			})
		}
	}
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Warn("load ratings")
		data = ratingsData{Error: &ErrorBlock{Title: "Could not load your ratings", Message: apiclient.Message(err)}}
	}
	return Result{Screen: ScreenRatings, Title: "My ratings", Body: b.fragment("ratings", data)}
}

func (b *Binder) widgetResult(w *stars.Widget) Result {
	title := "Rate"
	if w.Editing() {
		title = "Edit rating"
	}
	return Result{Screen: ScreenRate, Title: title, Body: b.fragment("widget", newWidgetData(w))}
}

// RateBook opens the rating widget unless the user already rated the book.
// When the check itself fails the widget opens anyway.
func (b *Binder) RateBook(ctx context.Context, profileID, bookID string) Result {
	sess, ok := b.session(ctx, profileID)
	if !ok {
		return b.loginRequired(profileID, "Log in to rate books.")
	}

	rated, err := b.api.CheckRated(ctx, sess.Token, bookID, sess.UserID)
	switch {
	case err != nil:
		b.log.WithField("book_id", bookID).WithError(err).Warn("rating check failed, opening widget")
	case rated:
		b.toasts.Notify(profileID, "You already rated this book. Open My ratings to edit your rating.", notify.Info, "Already rated")
		return redirect(BookPath(bookID))
	}
	return b.widgetResult(stars.New(bookID))
}

// WidgetInput is one post of the rating widget form.
type WidgetInput struct {
	Selected int
	Clicked  bool
	Editing  bool
	Star     int
	Action   string
	Comment  string
}

const (
	WidgetSubmit = "submit"
	WidgetCancel = "cancel"
)

// RatingWidget applies a star click, a submit or a cancel to the widget. A
// submitted widget closes even if saving fails.
func (b *Binder) RatingWidget(ctx context.Context, profileID, bookID string, in WidgetInput) Result {
	w, err := stars.Restore(bookID, in.Selected, in.Clicked, in.Editing, in.Comment)
	if err != nil {
		w = stars.New(bookID)
	}
	back := BookPath(bookID)
	if in.Editing {
		back = "/ratings"
	}

	switch in.Action {
	case WidgetCancel:
		w.Cancel()
		return redirect(back)
	case WidgetSubmit:
		return b.submitRating(ctx, profileID, w, in.Comment, back)
	}

	if in.Star != 0 {
		if err := w.Click(in.Star); err != nil {
			b.toasts.Notify(profileID, "Pick between 1 and 5 stars.", notify.Warning, "")
		}
	}
	return b.widgetResult(w)
}

func (b *Binder) submitRating(ctx context.Context, profileID string, w *stars.Widget, comment, back string) Result {
	sub, err := w.Submit(comment)
	switch {
	case errors.Is(err, stars.ErrNoStars):
		b.toasts.Notify(profileID, "Please select a rating from 1 to 5 stars.", notify.Warning, "Incomplete rating")
		return b.widgetResult(w)
	case errors.Is(err, stars.ErrCommentTooLong):
		b.toasts.Notify(profileID, fmt.Sprintf("Your comment is too long (maximum %d characters).", stars.MaxCommentLen), notify.Warning, "")
		return b.widgetResult(w)
	case err != nil:
		return redirect(back)
	}

	sess, ok := b.session(ctx, profileID)
	if !ok {
		return b.loginRequired(profileID, "Log in to rate books.")
	}
	release, ok := b.acquire(profileID, "rate", sub.BookID)
	if !ok {
		return redirect(back)
	}
	defer release()

	msg, err := b.api.SaveRating(ctx, sess.Token, sess.UserID, apiclient.RatingInput{
		BookID:  sub.BookID,
		Stars:   sub.Stars,
		Comment: sub.Comment,
	})
	if err != nil {
		b.fail(profileID, err)
		return redirect(back)
	}
	if msg == "" {
		msg = "Rating saved!"
	}
	b.toasts.Notify(profileID, msg, notify.Success, "")
	return redirect(back)
}

// EditRating opens the widget on an existing rating.
func (b *Binder) EditRating(ctx context.Context, profileID, bookID string, current int, comment string) Result {
	if _, ok := b.session(ctx, profileID); !ok {
		return b.loginRequired(profileID, "Log in to edit your ratings.")
	}
	w, err := stars.ForEdit(bookID, current, comment)
	if err != nil {
		w, _ = stars.Restore(bookID, 0, false, true, comment)
	}
	return b.widgetResult(w)
}

// DeleteRating asks for confirmation before deleting a rating.
func (b *Binder) DeleteRating(ctx context.Context, profileID, bookID string) Result {
	if _, ok := b.session(ctx, profileID); !ok {
		b.toasts.Notify(profileID, "You need to be logged in to remove ratings.", notify.Error, "Login required")
		return redirect("/login")
	}
	b.confirms.Request(ctx, profileID, notify.Prompt{
		Title:        "Remove rating",
		Message:      "Are you sure you want to remove this rating?",
		ConfirmLabel: "Remove",
		ReturnTo:     "/ratings",
	}, func(ctx context.Context) {
		b.deleteRating(ctx, profileID, bookID)
	}, nil)
	return redirect("/ratings")
}

func (b *Binder) deleteRating(ctx context.Context, profileID, bookID string) {
	sess, ok := b.session(ctx, profileID)
	if !ok {
		b.toasts.Notify(profileID, "You need to be logged in to remove ratings.", notify.Error, "Login required")
		return
	}
	release, ok := b.acquire(profileID, "unrate", bookID)
	if !ok {
		return
	}
	defer release()

	if _, err := b.api.DeleteRating(ctx, sess.Token, bookID, sess.UserID); err != nil {
		b.fail(profileID, err)
		return
	}
	b.toasts.Notify(profileID, "Rating removed!", notify.Success, "Removed!")
}

// ResolveConfirm answers the profile's open confirmation.
func (b *Binder) ResolveConfirm(ctx context.Context, profileID, id, choice string) Result {
	c, err := b.confirms.Resolve(ctx, profileID, id, notify.Choice(choice))
	if err != nil {
		b.toasts.Notify(profileID, "That confirmation is no longer open.", notify.Warning, "")
		return redirect("/")
	}
	if c.Prompt.ReturnTo == "" {
		return redirect("/")
	}
	return redirect(c.Prompt.ReturnTo)
}

// DismissToast hides one toast and returns to returnTo, which must be a
// local path.
func (b *Binder) DismissToast(profileID, id, returnTo string) Result {
	b.toasts.Dismiss(profileID, id)
	return redirect(LocalPath(returnTo))
}

// LocalPath returns p when it is a path on this site, otherwise "/".
func LocalPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

// ChatPage shows the assistant with an existing transcript.
func (b *Binder) ChatPage(transcript []ChatMessage) Result {
	return b.chatResult(sanitizeTranscript(transcript), "")
}

func (b *Binder) chatResult(transcript []ChatMessage, draft string) Result {
	return Result{Screen: ScreenChat, Title: "Assistant", Body: b.fragment("chat", chatData{Messages: transcript, Draft: draft})}
}

// Chat sends one message to the assistant. The transcript lives in the page;
// nothing is kept here between messages.
func (b *Binder) Chat(ctx context.Context, profileID string, transcript []ChatMessage, message string) Result {
	transcript = sanitizeTranscript(transcript)
	message = strings.TrimSpace(message)
	if message == "" {
		return b.chatResult(transcript, "")
	}

	release, ok := b.acquire(profileID, "chat")
	if !ok {
		return b.chatResult(transcript, message)
	}
	defer release()

	transcript = append(transcript, ChatMessage{Role: RoleUser, Text: message})
	answer, err := b.api.Chat(ctx, message)
	if err != nil {
		b.log.WithField("profile_id", profileID).WithError(err).Warn("chat failed")
		transcript = append(transcript, ChatMessage{Role: RoleError, Text: chatErrorText(err)})
	} else {
		transcript = append(transcript, ChatMessage{Role: RoleBot, Text: answer})
	}
	return b.chatResult(trimTranscript(transcript), "")
}

func chatErrorText(err error) string {
	if errors.Is(err, apiclient.ErrTransport) {
		return "Could not reach the assistant. Check your connection."
	}
	msg := apiclient.Message(err)
	if strings.Contains(msg, "API key") || strings.Contains(msg, "API_KEY") {
		return "⚠️ The chat assistant is not configured. Ask the administrator to set up its API key."
	}
	return "Sorry, something went wrong: " + msg
}

func sanitizeTranscript(in []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(in))
	for _, m := range in {
		switch m.Role {
		case RoleUser, RoleBot, RoleError:
			out = append(out, m)
		}
	}
	return trimTranscript(out)
}

func trimTranscript(t []ChatMessage) []ChatMessage {
	if len(t) > MaxTranscript {
		return t[len(t)-MaxTranscript:]
	}
	return t
}
