package profile

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookshelf/internal/httpx"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_SignParse(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, false)

	token, err := issuer.Sign("profile-1")
	require.NoError(t, err)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", id)
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, false)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewIssuer("other", time.Hour, false).Sign("profile-1")
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewIssuer("secret", time.Minute, false)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.Sign("profile-1")
		require.NoError(t, err)

		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidProfile)
	})
}

func TestIssuer_Middleware(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour, true)
	log, _ := test.NewNullLogger()
	var seen string
	handler := issuer.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.ProfileIDFrom(r)
	}))

	t.Run("mints a profile without a cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

		id, err := issuer.Parse(cookies[0].Value)
		require.NoError(t, err)
		assert.Equal(t, seen, id)
	})

	t.Run("keeps the profile of a valid cookie", func(t *testing.T) {
		token, err := issuer.Sign("profile-42")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "profile-42", seen)
	})

	t.Run("replaces a tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "tampered"})

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEmpty(t, seen)
		assert.NotEqual(t, "tampered", seen)
	})
}
