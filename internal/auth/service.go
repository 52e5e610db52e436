package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the credential store the service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type Service struct {
	store      UserStore
	tokens     *TokenIssuer
	bcryptCost int
}

func NewService(store UserStore, tokens *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a user with a hashed password. The email check before
// the insert only buys a friendlier error; the unique index on users.email
// is what actually holds under concurrent registration.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*User, error) {
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and mints a bearer token. Unknown email,
// wrong password and inactive user all collapse into ErrInvalidCredentials
// so a caller cannot probe which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, time.Time, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !user.IsActive {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// CurrentUser resolves a bearer token to the user behind it. A valid
// signature is not enough: the user must still exist and be active.
func (s *Service) CurrentUser(ctx context.Context, tokenStr string) (*User, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

type usersFile struct {
	Users []struct {
		Email     string `yaml:"email"`
		Password  string `yaml:"password"`
		FirstName string `yaml:"firstName"`
		LastName  string `yaml:"lastName"`
	} `yaml:"users"`
}

// SeedFromFile registers bootstrap users from a YAML file so a fresh
// deployment has a working login. A missing file is not an error.
func (s *Service) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return err
	}
	for _, u := range uf.Users {
		if u.Email == "" || u.Password == "" {
			continue
		}
		if _, err := s.Register(ctx, u.Email, u.Password, u.FirstName, u.LastName); err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				continue
			}
			return err
		}
	}
	return nil
}
