package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"bookshelf/internal/entity"
	"bookshelf/internal/notify"
	"bookshelf/internal/stars"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"starGlyphs": starGlyphs,
}).ParseFS(templateFS, "templates/*.html"))

const (
	descriptionPreviewLen = 120
	PlaceholderGlyph      = "📚"
	UnknownAuthor         = "Unknown author"
	NoDescription         = "No description available"
	dateLayout            = "02/01/2006"
)

type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenAuth      Screen = "auth"
	ScreenBook      Screen = "book"
	ScreenFavorites Screen = "favorites"
	ScreenRatings   Screen = "ratings"
	ScreenRate      Screen = "rate"
	ScreenChat      Screen = "chat"
)

// Truncate cuts s to n characters and marks the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// AuthorLine joins authors for display.
func AuthorLine(authors []string) string {
	var names []string
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}
	if len(names) == 0 {
		return UnknownAuthor
	}
	return strings.Join(names, ", ")
}

// DescriptionPreview is the short description shown on a book card.
func DescriptionPreview(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return NoDescription
	}
	return Truncate(desc, descriptionPreviewLen)
}

// ReturnPath is the GET route that shows screen s again after a form post.
// bookID is only used by the book screens.
func ReturnPath(s Screen, bookID string) string {
	switch s {
	case ScreenAuth:
		return "/login"
	case ScreenFavorites:
		return "/favorites"
	case ScreenRatings:
		return "/ratings"
	case ScreenChat:
		return "/chat"
	case ScreenBook, ScreenRate:
		if bookID != "" {
			return BookPath(bookID)
		}
	}
	return "/"
}

// BookPath builds an escaped path under /books/{id}.
func BookPath(id string, suffix ...string) string {
	p := "/books/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func withOrigin(path, origin string) string {
	if origin == "" {
		return path
	}
	return path + "?from=" + url.QueryEscape(origin)
}

func starGlyphs(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat("⭐", min(n, stars.MaxStars))
}

// BookCard is the summary of a book shown in grids and lists.
type BookCard struct {
	ID          string
	Href        string
	Title       string
	Authors     string
	Year        string
	Description string
	Thumbnail   string
	Placeholder string
}

func CardFor(b entity.Book, origin string) BookCard {
	title := b.Title
	if title == "" {
		title = "Unknown title"
	}
	return BookCard{
		ID:          b.ID,
		Href:        withOrigin(BookPath(b.ID), origin),
		Title:       title,
		Authors:     AuthorLine(b.Authors),
		Year:        b.PublishedYear(),
		Description: DescriptionPreview(b.Description),
		Thumbnail:   b.Thumbnail(),
		Placeholder: PlaceholderGlyph,
	}
}

// ErrorBlock is an inline error state.
type ErrorBlock struct {
	Title   string
	Message string
}

// Inline is a one-line form result, styled as success or error.
type Inline struct {
	Kind    string
	Message string
}

func inlineError(msg string) *Inline { return &Inline{Kind: "error", Message: msg} }

type searchData struct {
	Query    string
	Searched bool
	Cards    []BookCard
	Error    *ErrorBlock
}

type ratingView struct {
	Author  string
	Stars   int
	Comment string
	Date    string
}

type statsRow struct {
	Stars   int
	Count   int
	Percent int
}

type statsView struct {
	Average string
	Total   int
	Rows    []statsRow
}

type detailData struct {
	Book          entity.Book
	Title         string
	Thumbnail     string
	Placeholder   string
	Authors       string
	PublisherInfo string
	Language      string
	Categories    string
	Description   string
	Ratings       []ratingView
	Stats         *statsView
	StatsChecked  bool
	LoggedIn      bool
	Favorite      bool
	Origin        string
	CloseHref     string
	FavoriteURL   string
	RateURL       string
	RemoveURL     string
}

func newDetailData(d bookDetail, origin string) detailData {
	b := d.Book
	title := b.Title
	if title == "" {
		title = "Unknown title"
	}
	desc := b.Description
	if strings.TrimSpace(desc) == "" {
		desc = NoDescription + "."
	}
	var publisherInfo []string
	for _, s := range []string{b.Publisher, b.PublishedDate} {
		if s != "" {
			publisherInfo = append(publisherInfo, s)
		}
	}
	closeHref := "/"
	switch origin {
	case originFavorites:
		closeHref = "/favorites"
	case originRatings:
		closeHref = "/ratings"
	default:
		origin = ""
	}
	data := detailData{
		Book:          b,
		Title:         title,
		Thumbnail:     b.Thumbnail(),
		Placeholder:   PlaceholderGlyph,
		Authors:       AuthorLine(b.Authors),
		PublisherInfo: strings.Join(publisherInfo, " - "),
		Language:      strings.ToUpper(b.Language),
		Categories:    strings.Join(b.Categories, ", "),
		Description:   desc,
		Origin:        origin,
		CloseHref:     closeHref,
		FavoriteURL:   BookPath(b.ID, "favorite"),
		RateURL:       BookPath(b.ID, "rate"),
		RemoveURL:     "/favorites/" + url.PathEscape(b.ID) + "/remove",
	}
	for _, r := range d.Ratings {
		author := r.UserName
		if author == "" {
			author = "Anonymous"
		}
		data.Ratings = append(data.Ratings, ratingView{
			Author:  author,
			Stars:   r.Stars,
			Comment: r.Comment,
			Date:    formatDate(r.RatedAt),
		})
	}
	if d.Stats != nil {
		data.Stats = newStatsView(*d.Stats)
	}
	return data
}

func newStatsView(s entity.RatingStats) *statsView {
	v := &statsView{
		Average: strconv.FormatFloat(s.Average, 'f', 1, 64),
		Total:   s.Total,
	}
	for n := stars.MaxStars; n >= 1; n-- {
		row := statsRow{Stars: n, Count: s.Count(n)}
		if s.Total > 0 {
			row.Percent = row.Count * 100 / s.Total
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func formatDate(t entity.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

type favoriteItem struct {
	Card         BookCard
	RemoveAction string
}

type favoritesData struct {
	Items []favoriteItem
	Error *ErrorBlock
}

type ratingItem struct {
	Card         BookCard
	Stars        int
	Filled       []bool
	Comment      string
	Date         string
	EditAction   string
	DeleteAction string
}

type ratingsData struct {
	Items []ratingItem
	Error *ErrorBlock
}

type starButton struct {
	N      int
	Label  string
	Filled bool
	// Preview is the label shown while the pointer is over this star.
	Preview string
}

type widgetData struct {
	Action     string
	Stars      []starButton
	Selected   int
	Clicked    bool
	Editing    bool
	Label      string
	Comment    string
	CommentLen int
	CommentMax int
}

func newWidgetData(w *stars.Widget) widgetData {
	data := widgetData{
		Action:     BookPath(w.BookID(), "rating"),
		Selected:   w.Committed(),
		Clicked:    w.Clicked(),
		Editing:    w.Editing(),
		Label:      w.Label(),
		Comment:    w.Comment(),
		CommentLen: utf8.RuneCountInString(w.Comment()),
		CommentMax: stars.MaxCommentLen,
	}
	if data.Label == "" {
		data.Label = "Select a rating"
	}
	for n := 1; n <= stars.MaxStars; n++ {
		data.Stars = append(data.Stars, starButton{N: n, Label: stars.Label(n), Filled: n <= w.Display(), Preview: previewLabel(w, n)})
	}
	return data
}

// previewLabel runs the hover transition for star n and reverts it.
func previewLabel(w *stars.Widget, n int) string {
	if err := w.Hover(n); err != nil {
		return w.Label()
	}
	defer w.Leave()
	return w.Label()
}

// AuthForm is the state of the login and register forms.
type AuthForm struct {
	Username       string
	Email          string
	Login          string
	RegisterResult *Inline
	LoginResult    *Inline
}

// ChatMessage is one bubble of the chat transcript.
type ChatMessage struct {
	Role string
	Text string
}

const (
	RoleUser  = "user"
	RoleBot   = "bot"
	RoleError = "error"
)

type chatData struct {
	Messages []ChatMessage
	Draft    string
}

// Page is a full screen: chrome around one body fragment.
type Page struct {
	Title  string
	Screen Screen
	// ReturnTo is where dismissing a toast lands; it must answer GET.
	ReturnTo string
	Nav      Nav
	Toasts   []notify.Toast
	Confirm  *notify.Confirmation
	Body     template.HTML
}

// RenderPage renders a complete HTML document.
func RenderPage(p Page) ([]byte, error) {
	if p.Title == "" {
		p.Title = "Bookshelf"
	} else {
		p.Title += " · Bookshelf"
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout", p); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
