package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"utang/internal/middleware/authn"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// currentUser is the authenticated caller. Only routes behind the auth
// middleware call it.
func currentUser(r *http.Request) string {
	id, _ := authn.IdentityFrom(r.Context())
	return id.UserID
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
