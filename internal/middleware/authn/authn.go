// Package authn resolves the caller of an API request from its session token.
package authn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"utang/internal/auth"
	applog "utang/internal/log"
)

// ErrMissingToken is passed to the failure callback when no token was sent.
var ErrMissingToken = errors.New("missing session token")

// Authenticator turns a token into an identity; *auth.Service satisfies it.
type Authenticator interface {
	Authenticate(token string) (auth.Identity, error)
}

type contextKey struct{}

// TokenFromRequest reads the Authorization bearer token, falling back to the
// token query parameter for downloads that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// Middleware rejects requests without a valid token through onFail and
// stores the identity of the others in the request context.
func Middleware(a Authenticator, onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if onFail == nil {
		onFail = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				onFail(w, r, ErrMissingToken)
				return
			}
			id, err := a.Authenticate(token)
			if err != nil {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
					DebugContext(r.Context(), "Token rejected", applog.FieldError, err)
				onFail(w, r, err)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = applog.WithLogger(ctx, applog.FromContext(ctx).With(applog.FieldUserID, id.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(auth.Identity)
	return id, ok && id.UserID != ""
}
