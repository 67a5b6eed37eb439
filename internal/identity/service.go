package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// ErrInvalidCredentials is deliberately generic: an unknown email and a wrong
// password are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 10

// UserStore is the slice of storage the identity service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
}

// Session is what a successful login hands back to the transport layer.
type Session struct {
	Token string
	User  core.User
}

type Service struct {
	store    UserStore
	secret   string
	tokenTTL time.Duration
}

func NewService(store UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL}
}

// Register creates a user with a bcrypt-hashed credential. The plaintext
// password never reaches storage.
func (s *Service) Register(ctx context.Context, name, email, password string) (core.User, error) {
	if len(password) < 6 {
		return core.User{}, fmt.Errorf("%w: password must be at least 6 characters", core.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, core.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "id", user.ID, "email", user.Email)
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credential and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := NewToken(user, s.secret, s.tokenTTL)
	if err != nil {
		return Session{}, err
	}

	slog.InfoContext(ctx, "User logged in", "id", user.ID)
	user.PasswordHash = ""
	return Session{Token: token, User: user}, nil
}

// VerifyToken resolves a bearer token back to an owner id.
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	ownerID, err := ParseOwnerID(tokenString, s.secret)
	if err != nil {
		return 0, ErrInvalidCredentials
	}
	return ownerID, nil
}
