package http

import (
	"net/http"

	"utang/internal/auth"
	applog "utang/internal/log"
	"utang/internal/middleware/authn"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.auth.Register(r.Context(), auth.RegisterInput{
		Username: p.Get("username"),
		Password: p.Raw("password"),
		FullName: p.Get("fullName"),
		Email:    p.Get("email"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, err := parseBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.auth.Login(r.Context(), p.Get("username"), p.Raw("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(authn.TokenFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "User logged out",
		applog.FieldUserID, currentUser(r))
	NewJSONResponse().Message("Logged out successfully").Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
