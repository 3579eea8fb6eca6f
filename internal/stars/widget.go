package stars

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxStars      = 5
	MaxCommentLen = 500
)

var (
	ErrOutOfRange     = errors.New("stars must be between 1 and 5")
	ErrNoStars        = errors.New("select at least one star")
	ErrCommentTooLong = errors.New("comment is too long (maximum 500 characters)")
	ErrClosed         = errors.New("rating widget is closed")
)

type State int

const (
	Unselected State = iota
	Selected
	Hovering
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Hovering:
		return "hovering"
	default:
		return "unselected"
	}
}

var labels = [MaxStars + 1]string{"", "Very bad", "Bad", "Okay", "Good", "Excellent!"}

// Label names a star count, or "" when n is out of range.
func Label(n int) string {
	if n < 1 || n > MaxStars {
		return ""
	}
	return labels[n]
}

// Submission is what a submitted widget saves.
type Submission struct {
	BookID  string
	Stars   int
	Comment string
}

// Widget is the state of one open star-rating widget. Hovering previews a
// value without committing it; clicking commits.
type Widget struct {
	bookID   string
	selected int
	hover    int
	clicked  bool
	editing  bool
	comment  string
	closed   bool
}

func New(bookID string) *Widget {
	return &Widget{bookID: bookID}
}

// ForEdit opens the widget on an existing rating.
func ForEdit(bookID string, stars int, comment string) (*Widget, error) {
	if stars < 1 || stars > MaxStars {
		return nil, ErrOutOfRange
	}
	return &Widget{bookID: bookID, selected: stars, editing: true, comment: comment}, nil
}

// Restore rebuilds a widget from the values a previous render carried in its
// form. selected == 0 means nothing is selected yet.
func Restore(bookID string, selected int, clicked, editing bool, comment string) (*Widget, error) {
	if selected < 0 || selected > MaxStars {
		return nil, ErrOutOfRange
	}
	return &Widget{
		bookID:   bookID,
		selected: selected,
		clicked:  clicked && selected > 0,
		editing:  editing,
		comment:  comment,
	}, nil
}

func (w *Widget) BookID() string { return w.bookID }

// Hover previews n stars. It has no effect once a star was clicked. Pages
// run it per star to label the pointer preview the browser draws.
func (w *Widget) Hover(n int) error {
	if w.closed {
		return ErrClosed
	}
	if n < 1 || n > MaxStars {
		return ErrOutOfRange
	}
	if !w.clicked {
		w.hover = n
	}
	return nil
}

// Leave ends a hover preview and restores the committed state.
func (w *Widget) Leave() {
	w.hover = 0
}

// Click commits n stars. Clicking the committed value again changes nothing.
func (w *Widget) Click(n int) error {
	if w.closed {
		return ErrClosed
	}
	if n < 1 || n > MaxStars {
		return ErrOutOfRange
	}
	w.selected = n
	w.hover = 0
	w.clicked = true
	return nil
}

// Clicked reports whether a star was clicked since the widget opened.
func (w *Widget) Clicked() bool { return w.clicked }

// Committed returns the selected star count, 0 when unselected.
func (w *Widget) Committed() int { return w.selected }

// Display returns the star count to draw: the hover preview if any,
// otherwise the committed value.
func (w *Widget) Display() int {
	if w.hover > 0 {
		return w.hover
	}
	return w.selected
}

func (w *Widget) State() State {
	switch {
	case w.hover > 0:
		return Hovering
	case w.selected > 0:
		return Selected
	default:
		return Unselected
	}
}

// Label names what Display shows.
func (w *Widget) Label() string { return Label(w.Display()) }

func (w *Widget) Editing() bool { return w.editing }

func (w *Widget) Comment() string { return w.comment }

func (w *Widget) Closed() bool { return w.closed }

// Submit closes the widget and returns what to save. A widget with no stars
// stays open.
func (w *Widget) Submit(comment string) (Submission, error) {
	if w.closed {
		return Submission{}, ErrClosed
	}
	comment = strings.TrimSpace(comment)
	w.comment = comment
	if w.selected == 0 {
		return Submission{}, ErrNoStars
	}
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return Submission{}, ErrCommentTooLong
	}
	w.closed = true
	return Submission{BookID: w.bookID, Stars: w.selected, Comment: comment}, nil
}

// Cancel closes the widget without saving.
func (w *Widget) Cancel() {
	w.closed = true
}
