package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"awareness-game/internal/model"
	"awareness-game/internal/store"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("invalid or expired session")
	ErrInvalidInput       = errors.New("invalid input")
)

// Store is the slice of the persistence gateway identity needs.
type Store interface {
	Insert(ctx context.Context, collection string, doc store.Record) (string, error)
	FindOne(ctx context.Context, collection string, filter store.Filter, dest any) error
	UpdateOne(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (bool, error)
	UpdateMany(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (int64, error)
}

type Service struct {
	store      Store
	sessionTTL time.Duration
	hashCost   int
	now        func() time.Time
	newToken   func() (string, error)
}

// NewService builds the identity service. A zero sessionTTL issues tokens
// that never expire; they stay valid until the next login or logout.
func NewService(st Store, sessionTTL time.Duration) *Service {
	return &Service{
		store:      st,
		sessionTTL: sessionTTL,
		hashCost:   defaultHashCost,
		now:        func() time.Time { return time.Now().UTC() },
		newToken:   generateToken,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateEmail(email); err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	var existing model.User
	err := s.store.FindOne(ctx, model.CollectionUser, store.Filter{"email": email}, &existing)
	switch {
	case err == nil:
		return "", ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return "", err
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	userID, err := s.store.Insert(ctx, model.CollectionUser, user)
	if err != nil {
		// The unique index catches a concurrent registration that passed the
		// lookup above.
		if errors.Is(err, store.ErrDuplicate) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	return userID, nil
}

// Login verifies credentials and replaces the user's session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, model.PublicUser, error) {
	if err := validateEmail(email); err != nil {
		return "", model.PublicUser{}, err
	}

	var user model.User
	if err := s.store.FindOne(ctx, model.CollectionUser, store.Filter{"email": email}, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", model.PublicUser{}, ErrInvalidCredentials
		}
		return "", model.PublicUser{}, err
	}
	if !checkPassword(user.PasswordHash, password) {
		return "", model.PublicUser{}, ErrInvalidCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return "", model.PublicUser{}, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	var expiresAt *time.Time
	if s.sessionTTL > 0 {
		expiry := now.Add(s.sessionTTL)
		expiresAt = &expiry
	}

	applied, err := s.store.UpdateOne(ctx, model.CollectionUser, store.Filter{"id": user.ID}, store.Patch{
		"token":            token,
		"token_expires_at": expiresAt,
		"updated_at":       now,
	})
	if err != nil {
		return "", model.PublicUser{}, err
	}
	if !applied {
		return "", model.PublicUser{}, ErrInvalidCredentials
	}

	return token, user.Public(), nil
}

// ResolveToken returns the user holding token, if it is current.
func (s *Service) ResolveToken(ctx context.Context, token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.User{}, ErrUnauthorized
	}

	var user model.User
	if err := s.store.FindOne(ctx, model.CollectionUser, store.Filter{"token": token}, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, err
	}
	if user.TokenExpiresAt != nil && !s.now().Before(*user.TokenExpiresAt) {
		return model.User{}, ErrUnauthorized
	}
	return user, nil
}

// Logout invalidates token.
func (s *Service) Logout(ctx context.Context, token string) error {
	user, err := s.ResolveToken(ctx, token)
	if err != nil {
		return err
	}

	applied, err := s.store.UpdateOne(ctx, model.CollectionUser, store.Filter{"id": user.ID, "token": strings.TrimSpace(token)}, store.Patch{
		"token":            nil,
		"token_expires_at": nil,
		"updated_at":       s.now(),
	})
	if err != nil {
		return err
	}
	if !applied {
		return ErrUnauthorized
	}
	return nil
}

// PurgeExpiredSessions clears tokens whose expiry has passed.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.UpdateMany(ctx, model.CollectionUser, store.Filter{"token_expires_at": store.Lt(s.now())}, store.Patch{
		"token":            nil,
		"token_expires_at": nil,
		"updated_at":       s.now(),
	})
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	return nil
}
