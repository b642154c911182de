package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const spectatorContextKey contextKey = "spectator"

const spectatorScope = "spectator"

var ErrInvalidToken = errors.New("invalid or expired spectator token")

// SpectatorTokens issues and checks signed read-only links to a chat's live tournament.
type SpectatorTokens struct {
	secret  []byte
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

func NewSpectatorTokens(secret string, ttl time.Duration, baseURL string) *SpectatorTokens {
	return &SpectatorTokens{
		secret:  []byte(secret),
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (t *SpectatorTokens) Issue(chatID int64) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		jwtClaimChatID: chatID,
		jwtClaimScope:  spectatorScope,
		"iat":          now.Unix(),
		"exp":          now.Add(t.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign spectator token: %w", err)
	}
	return signed, nil
}

// SpectatorLink is the public URL of the live snapshot for chatID.
func (t *SpectatorTokens) SpectatorLink(chatID int64) (string, error) {
	token, err := t.Issue(chatID)
	if err != nil {
		return "", err
	}
	return t.baseURL + "/api/live/" + token, nil
}

func (t *SpectatorTokens) Parse(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyExpiresAt(t.now().Unix(), true) {
		return nil, ErrInvalidToken
	}
	if scope, _ := claims[jwtClaimScope].(string); scope != spectatorScope {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RequireSpectator validates the {token} URL parameter and stores its claims in the
// request context.
func (t *SpectatorTokens) RequireSpectator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := t.Parse(chi.URLParam(r, "token"))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), spectatorContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePathSecret rejects requests whose {secret} URL parameter does not match.
// An empty secret disables the check.
func RequirePathSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" && subtle.ConstantTimeCompare([]byte(chi.URLParam(r, "secret")), []byte(secret)) != 1 {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
