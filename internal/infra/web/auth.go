// File: internal/infra/web/auth.go
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/infra/logging"
)

// AuthManager verifies bearer tokens minted by the surrounding auth service
// and resolves them to a Principal. HS256 with a shared HMAC secret.
type AuthManager struct {
	secret []byte
}

func NewAuthManager(secret string) *AuthManager {
	return &AuthManager{secret: []byte(secret)}
}

type userClaims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Mint issues a token for a principal. Only used by tests and tooling; in
// production the auth service signs tokens with the same secret.
func (a *AuthManager) Mint(p model.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := userClaims{
		UserID: p.UserID,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthManager) parseFromRequest(r *http.Request) (model.Principal, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		return model.Principal{}, errors.New("missing bearer token")
	}
	claims := &userClaims{}
	tkn, err := jwt.ParseWithClaims(strings.TrimSpace(hdr[7:]), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !tkn.Valid {
		return model.Principal{}, errors.New("invalid token")
	}
	if claims.UserID == 0 {
		return model.Principal{}, errors.New("token carries no user")
	}
	return model.Principal{UserID: claims.UserID, Role: model.Role(claims.Role)}, nil
}

type principalKey struct{}

// RequirePrincipal rejects unauthenticated requests and stores the resolved
// principal in the request context for handlers to pick up.
func (a *AuthManager) RequirePrincipal() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.parseFromRequest(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), principalKey{}, p)
			ctx = logging.WithUserID(ctx, p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFrom(ctx context.Context) model.Principal {
	if p, ok := ctx.Value(principalKey{}).(model.Principal); ok {
		return p
	}
	return model.Principal{}
}
