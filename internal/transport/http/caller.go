package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"vitalis/pkg/domain"
)

// CallerHeader carries a pre-authenticated account id from a trusted proxy.
// Honored only when the deployment explicitly opts in.
const CallerHeader = "X-Vitalis-Account"

type contextKeyCaller struct{}

// CallerFromContext returns the authenticated caller account, or the nil
// account when the request was not authenticated.
func CallerFromContext(ctx context.Context) domain.AccountID {
	caller, ok := ctx.Value(contextKeyCaller{}).(domain.AccountID)
	if !ok {
		return domain.NilAccount
	}
	return caller
}

func withCaller(ctx context.Context, caller domain.AccountID) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

// RequireCaller extracts the caller identity the external authentication
// layer established. The ledger trusts this input by contract: a bearer
// token is verified against the shared signing key and its subject becomes
// the caller; with trustHeader enabled the plain header is accepted instead.
func RequireCaller(signingKey []byte, trustHeader bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := callerFromRequest(r, signingKey, trustHeader)
			if err != nil {
				logger.Warn("request authentication failed", "path", r.URL.Path, "err", err)
				writeAuthError(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

func callerFromRequest(r *http.Request, signingKey []byte, trustHeader bool) (domain.AccountID, error) {
	const bearerPrefix = "Bearer "
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return callerFromToken(strings.TrimPrefix(authHeader, bearerPrefix), signingKey)
	}
	if trustHeader {
		if raw := r.Header.Get(CallerHeader); raw != "" {
			return domain.ParseAccountID(raw)
		}
	}
	return domain.NilAccount, fmt.Errorf("missing credentials")
}

func callerFromToken(tokenString string, signingKey []byte) (domain.AccountID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return domain.NilAccount, fmt.Errorf("parse token: %w", err)
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return domain.NilAccount, fmt.Errorf("token subject: %w", err)
	}
	return domain.ParseAccountID(subject)
}

func writeAuthError(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthenticated",
		"message": detail,
	})
}
