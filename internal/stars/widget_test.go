package stars

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Very bad", Label(1))
	assert.Equal(t, "Okay", Label(3))
	assert.Equal(t, "Excellent!", Label(5))
	assert.Empty(t, Label(0))
	assert.Empty(t, Label(6))
}

func TestWidget_HoverPreviewsWithoutCommitting(t *testing.T) {
	w := New("dune-1")
	assert.Equal(t, Unselected, w.State())

	require.NoError(t, w.Hover(4))
	assert.Equal(t, Hovering, w.State())
	assert.Equal(t, 4, w.Display())
	assert.Equal(t, "Good", w.Label())
	assert.Zero(t, w.Committed())

	w.Leave()
	assert.Equal(t, Unselected, w.State())
	assert.Zero(t, w.Display())
}

func TestWidget_ClickCommits(t *testing.T) {
	w := New("dune-1")
	require.NoError(t, w.Hover(2))

	require.NoError(t, w.Click(4))

	assert.Equal(t, Selected, w.State())
	assert.Equal(t, 4, w.Committed())
	assert.Equal(t, 4, w.Display())

	require.NoError(t, w.Hover(1))
	assert.Equal(t, 4, w.Display(), "hover is ignored after a click")
}

func TestWidget_ClickIsIdempotent(t *testing.T) {
	w := New("dune-1")
	require.NoError(t, w.Click(3))
	before := *w

	require.NoError(t, w.Click(3))

	assert.Equal(t, before, *w)
	assert.False(t, w.Closed(), "clicking never submits")
}

func TestWidget_OutOfRange(t *testing.T) {
	w := New("dune-1")
	assert.ErrorIs(t, w.Click(0), ErrOutOfRange)
	assert.ErrorIs(t, w.Click(6), ErrOutOfRange)
	assert.ErrorIs(t, w.Hover(-1), ErrOutOfRange)
	assert.Equal(t, Unselected, w.State())

	_, err := ForEdit("dune-1", 9, "")
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Restore("dune-1", 6, true, false, "")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestWidget_Submit(t *testing.T) {
	t.Run("requires stars", func(t *testing.T) {
		w := New("dune-1")
		_, err := w.Submit("great")
		assert.ErrorIs(t, err, ErrNoStars)
		assert.False(t, w.Closed())
		assert.Equal(t, "great", w.Comment())
	})

	t.Run("trims the comment and closes", func(t *testing.T) {
		w := New("dune-1")
		require.NoError(t, w.Click(5))

		sub, err := w.Submit("  loved it \n")

		require.NoError(t, err)
		assert.Equal(t, Submission{BookID: "dune-1", Stars: 5, Comment: "loved it"}, sub)
		assert.True(t, w.Closed())
		assert.ErrorIs(t, w.Click(1), ErrClosed)
		_, err = w.Submit("again")
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("rejects long comments", func(t *testing.T) {
		w := New("dune-1")
		require.NoError(t, w.Click(2))

		_, err := w.Submit(strings.Repeat("é", MaxCommentLen+1))

		assert.ErrorIs(t, err, ErrCommentTooLong)
		assert.False(t, w.Closed())
	})

	t.Run("accepts a comment at the limit", func(t *testing.T) {
		w := New("dune-1")
		require.NoError(t, w.Click(2))

		_, err := w.Submit(strings.Repeat("é", MaxCommentLen))

		assert.NoError(t, err)
	})
}

func TestWidget_ForEdit(t *testing.T) {
	w, err := ForEdit("dune-1", 3, "fine")
	require.NoError(t, err)

	assert.True(t, w.Editing())
	assert.Equal(t, Selected, w.State())
	assert.Equal(t, "fine", w.Comment())
	assert.False(t, w.Clicked())

	require.NoError(t, w.Hover(5))
	assert.Equal(t, 5, w.Display(), "an edit preview still follows the pointer until a click")
}

func TestWidget_Restore(t *testing.T) {
	w, err := Restore("dune-1", 4, true, true, "ok")
	require.NoError(t, err)
	assert.Equal(t, 4, w.Committed())
	assert.True(t, w.Clicked())
	assert.True(t, w.Editing())

	w, err = Restore("dune-1", 0, true, false, "")
	require.NoError(t, err)
	assert.False(t, w.Clicked(), "nothing to have clicked")
}

func TestWidget_Cancel(t *testing.T) {
	w := New("dune-1")
	require.NoError(t, w.Click(2))

	w.Cancel()

	assert.True(t, w.Closed())
}
