package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"helphands-go/internal/auth"
	"helphands-go/internal/domain/access"
	userdomain "helphands-go/internal/domain/user"
	"helphands-go/pkg/logger"
)

type TokenParser interface {
	Parse(raw string) (*auth.Claims, error)
}

// CallerResolver loads the current state of a token subject.
type CallerResolver interface {
	Resolve(ctx context.Context, id string) (*userdomain.User, error)
}

type Auth struct {
	tokens TokenParser
	users  CallerResolver
	log    logger.Logger
}

type contextKey int

const (
	callerKey contextKey = iota
)

func NewAuth(tokens TokenParser, users CallerResolver, log logger.Logger) *Auth {
	return &Auth{tokens: tokens, users: users, log: log}
}

// Require rejects requests without a valid bearer token.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "no token, authorization denied")
			return
		}

		caller, ok := a.authenticate(w, r, header)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// Optional lets anonymous requests through and identifies the caller when
// a token is present. A present but invalid token is still rejected.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" {
			next.ServeHTTP(w, r)
			return
		}

		caller, ok := a.authenticate(w, r, header)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request, header string) (*access.Caller, bool) {
	token, ok := bearerToken(header)
	if !ok {
		unauthorized(w)
		return nil, false
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		a.log.Debug("auth: token rejected", "err", err)
		unauthorized(w)
		return nil, false
	}

	user, err := a.users.Resolve(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			a.log.BusinessError("auth: token subject not found", err, "user_id", claims.Subject)
			unauthorized(w)
			return nil, false
		}
		a.log.InternalError("auth: resolve caller failed", err, "user_id", claims.Subject)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return nil, false
	}
	if user.Status == userdomain.StatusInactive {
		writeError(w, http.StatusUnauthorized, "account_inactive", "account is inactive")
		return nil, false
	}

	return &access.Caller{UserID: user.ID, Role: user.Role}, true
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "token is not valid")
}

func WithCaller(ctx context.Context, caller *access.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns nil for anonymous requests.
func CallerFromContext(ctx context.Context) *access.Caller {
	caller, ok := ctx.Value(callerKey).(*access.Caller)
	if !ok || !caller.Authenticated() {
		return nil
	}
	return caller
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
