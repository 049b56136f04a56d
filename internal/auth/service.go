// Package auth registers users and manages their session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = fmt.Errorf("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Session is what a client gets back from register and login.
type Session struct {
	Token     string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      core.User `json:"user"`
}

// Identity is the caller resolved from a token.
type Identity struct {
	UserID   string
	Username string
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type Service struct {
	users  ledger.UserStore
	tokens *TokenStore
	cost   int
	logger *applog.Logger
}

// NewService uses bcrypt.DefaultCost when cost is 0.
func NewService(users ledger.UserStore, tokens *TokenStore, cost int, logger *applog.Logger) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		cost:   cost,
		logger: logger.WithComponent(applog.ComponentAuth),
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	u, err := s.createUser(ctx, in)
	if err != nil {
		return Session{}, err
	}
	s.logger.InfoContext(ctx, "User registered", applog.FieldUserID, u.ID)
	return s.open(u)
}

func (s *Service) createUser(ctx context.Context, in RegisterInput) (core.User, error) {
	username := strings.TrimSpace(in.Username)
	if n := len(username); n < minUsernameLength || n > maxUsernameLength {
		return core.User{}, ErrInvalidUsername
	}
	if len(in.Password) < minPasswordLength {
		return core.User{}, ErrWeakPassword
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return core.User{}, ErrInvalidEmail
		}
		email = addr.Address
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}
	return s.users.CreateUser(ctx, core.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
	})
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ledger.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login rejected",
			applog.FieldUserID, u.ID,
			applog.FieldErrorType, applog.ErrorTypeAuth)
		return Session{}, ErrInvalidCredentials
	}
	return s.open(u)
}

func (s *Service) open(u core.User) (Session, error) {
	token, expires, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *Service) Logout(token string) error {
	return s.tokens.Revoke(token)
}

func (s *Service) Authenticate(token string) (Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.Subject, Username: claims.Username}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (core.User, error) {
	return s.users.GetUser(ctx, userID)
}

// EnsureUser returns the user called username, registering it first if it
// does not exist yet.
func (s *Service) EnsureUser(ctx context.Context, in RegisterInput) (core.User, error) {
	u, err := s.users.GetUserByUsername(ctx, in.Username)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return core.User{}, err
	}
	return s.createUser(ctx, in)
}
