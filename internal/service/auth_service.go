package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kanban/internal/domain"
	"kanban/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const DefaultHashCost = 10

// Session is the result of a successful login.
type Session struct {
	Token string
	User  *domain.User
}

type AuthService struct {
	users    UserStore
	tokens   *TokenIssuer
	google   IdentityVerifier
	hashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users UserStore, tokens *TokenIssuer, google IdentityVerifier) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		google:   google,
		hashCost: DefaultHashCost,
	}
}

// SetHashCost overrides the bcrypt cost (tests use bcrypt.MinCost).
func (s *AuthService) SetHashCost(cost int) {
	s.hashCost = cost
}

func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("user signed up", "user_id", u.ID)
	return u, nil
}

// Login never tells an unknown username apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if u == nil || u.PasswordHash == "" {
		// spend the same bcrypt time as a real comparison
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *AuthService) GoogleLogin(ctx context.Context, credential string) (*Session, error) {
	if credential == "" {
		return nil, domain.ErrMissingCredential
	}

	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		logger.WithContext(ctx).Warn("google token rejected", "error", err)
		return nil, domain.ErrInvalidGoogleToken
	}

	u, err := s.users.GetByGoogleID(ctx, identity.Subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		u, err = s.createGoogleUser(ctx, identity)
	}
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

// createGoogleUser tries the display name first, then the email, then a
// name derived from the subject, so a clash with a password user does not
// block the login.
func (s *AuthService) createGoogleUser(ctx context.Context, id *GoogleIdentity) (*domain.User, error) {
	candidates := []string{id.Name, id.Email, "google-" + id.Subject}

	for _, name := range candidates {
		if name == "" {
			continue
		}
		u := &domain.User{Username: name, Email: id.Email, GoogleID: id.Subject}
		err := s.users.Create(ctx, u)
		if err == nil {
			logger.WithContext(ctx).Info("google user created", "user_id", u.ID)
			return u, nil
		}
		if !errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		// a concurrent first login for the same subject trips the same
		// unique error; reuse the account it created
		if existing, err := s.users.GetByGoogleID(ctx, id.Subject); err == nil {
			return existing, nil
		}
	}
	return nil, domain.ErrUsernameTaken
}

func (s *AuthService) issue(u *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kanban-dummy-password"), s.hashCost)
	})
	return s.dummyHash
}
