package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const identityContextKey contextKey = "identity"

const (
	jwtClaimUserID   = "user_id"
	jwtClaimUsername = "username"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID   string
	Username string
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.identityFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches an identity when a valid token is present and lets
// the request through either way. Anonymous play is allowed.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.identityFromRequest(r)
		if err == nil {
			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) identityFromRequest(r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		// Websocket clients cannot set headers from the browser, so
		// accept the token as a query parameter as well.
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return nil, errors.New("no token provided")
	}
	return a.ParseToken(tokenString)
}

// ParseToken validates a signed token and extracts the identity claims.
func (a *Authenticator) ParseToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims[jwtClaimUserID].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}
	identity := &Identity{UserID: userID}
	if username, ok := claims[jwtClaimUsername].(string); ok {
		identity.Username = username
	}
	return identity, nil
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	return identity, ok
}
