package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"foodifusion/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("missing required fields")
)

type Service struct {
	repo     UserRepository
	sessions *session.Manager
	tokens   *TokenManager
}

func NewService(repo UserRepository, sessions *session.Manager, tokens *TokenManager) *Service {
	return &Service{repo: repo, sessions: sessions, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, name, email, password, role string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if role == "" {
		role = RoleCustomer
	}
	if name == "" || email == "" || password == "" || !ValidRole(role) {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password, opens a fresh session and returns a token
// bound to it.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Start(ctx, user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role, sess.ID)
	if err != nil {
		_ = s.sessions.End(ctx, sess.ID)
		return "", nil, err
	}
	return token, user, nil
}

// Logout ends the session. Ending an already ended session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.End(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	return err
}
