package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commoncrypto "github.com/alebedev/helpboard/internal/common/crypto"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	commonhttp "github.com/alebedev/helpboard/internal/common/http"
	"github.com/alebedev/helpboard/internal/common/logger"
)

const CookieName = "session_token"

type Claims struct {
	Username string
}

type contextKey string

const claimsKey contextKey = "session_claims"

// Issuer signs short-lived session tokens carrying the caller's username.
type Issuer struct {
	secret      []byte
	ttl         time.Duration
	idGenerator commoncrypto.IDGenerator
	now         func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, idGenerator commoncrypto.IDGenerator) *Issuer {
	return &Issuer{
		secret:      []byte(secret),
		ttl:         ttl,
		idGenerator: idGenerator,
		now:         time.Now,
	}
}

func (i *Issuer) Issue(username string) (string, time.Time, error) {
	jti, err := i.idGenerator.NewID()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := i.now().Add(i.ttl)
	claims := jwt.MapClaims{
		"usr": username,
		"jti": jti,
		"exp": expiresAt.Unix(),
		"iat": i.now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Middleware resolves the caller's identity from the session cookie or a
// Bearer header and stores it in the request context.
func Middleware(secret string, log *logger.Logger) func(next http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				log.Warnf("session auth failed path=%s: missing token", r.URL.Path)
				commonhttp.WriteError(w, http.StatusUnauthorized, "not logged in")
				return
			}

			claims, err := ParseToken(tokenString, secretBytes)
			if err != nil {
				log.Warnf("session auth failed path=%s: %v", r.URL.Path, err)
				commonhttp.WriteError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromRequest authenticates a single request outside the middleware chain.
func FromRequest(r *http.Request, secret []byte) (Claims, error) {
	tokenString, ok := extractToken(r)
	if !ok {
		return Claims{}, commonerrors.ErrInvalidToken
	}
	return ParseToken(tokenString, secret)
}

func FromContext(ctx context.Context) (Claims, bool) {
	val := ctx.Value(claimsKey)
	claims, ok := val.(Claims)
	return claims, ok
}

func extractToken(r *http.Request) (string, bool) {
	if raw := r.Header.Get("Authorization"); strings.HasPrefix(raw, "Bearer ") {
		return strings.TrimPrefix(raw, "Bearer "), true
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func ParseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = commonerrors.ErrInvalidToken
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	username, _ := mapClaims["usr"].(string)
	if username == "" {
		return Claims{}, errors.New("missing usr claim")
	}

	return Claims{Username: username}, nil
}

func SetCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	if token == "" {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}

func ClearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}
