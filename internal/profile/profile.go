package profile

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookshelf/internal/httpx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CookieName names the cookie that identifies a browser profile.
const CookieName = "bookshelf_profile"

var ErrInvalidProfile = errors.New("invalid profile cookie")

type Claims struct {
	Sub string `json:"sub"` // profile id
	jwt.RegisteredClaims
}

// Issuer signs and verifies profile cookies.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, secure bool) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Sign returns a signed token naming profileID.
func (i *Issuer) Sign(profileID string) (string, error) {
	now := i.now()
	c := Claims{
		Sub: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(i.secret)
}

// Parse verifies tokenStr and returns the profile id it names.
func (i *Issuer) Parse(tokenStr string) (string, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.Sub == "" {
		return "", ErrInvalidProfile
	}
	return claims.Sub, nil
}

func (i *Issuer) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware puts the caller's profile id on the request context. A browser
// without a valid cookie gets a fresh profile. The cookie is re-issued on each
// request so an active profile does not expire.
func (i *Issuer) Middleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var profileID string
			if c, err := r.Cookie(CookieName); err == nil {
				if id, err := i.Parse(c.Value); err == nil {
					profileID = id
				} else {
					log.WithField("request_id", httpx.RequestIDFrom(r)).WithError(err).Debug("discarding profile cookie")
				}
			}
			if profileID == "" {
				profileID = uuid.NewString()
			}

			token, err := i.Sign(profileID)
			if err != nil {
				log.WithError(err).Error("sign profile cookie")
				httpx.HTMLError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
				return
			}
			http.SetCookie(w, i.cookie(token))

			next.ServeHTTP(w, r.WithContext(httpx.ContextWithProfile(r.Context(), profileID)))
		})
	}
}
