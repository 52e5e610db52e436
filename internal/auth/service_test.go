package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users  map[int64]*User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*User{}, nextID: 1}
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) Create(_ context.Context, u *User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	u.ID = f.nextID
	f.nextID++
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func newTestService(store UserStore) *Service {
	return NewService(store, newTestIssuer(24*time.Hour), 4)
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "admin@hrsystem.com", "Admin123!", "System", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "System Admin", user.FullName())
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Admin123!", user.PasswordHash)

	before := time.Now().UTC()
	logged, token, expiresAt, err := svc.Login(ctx, "admin@hrsystem.com", "Admin123!")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), expiresAt, 5*time.Second)
	require.NotNil(t, logged.LastLoginAt)
	assert.False(t, logged.LastLoginAt.Before(before))

	claims, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, user.Email, claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "Admin123!", "A", "One")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "Other123!", "A", "Two")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, store.users, 1)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "Admin123!", "A", "One")
	require.NoError(t, err)

	inactive, err := svc.Register(ctx, "gone@x.com", "Admin123!", "B", "Two")
	require.NoError(t, err)
	store.users[inactive.ID].IsActive = false

	_, _, _, wrongPassword := svc.Login(ctx, "a@x.com", "Nope123!")
	_, _, _, unknownEmail := svc.Login(ctx, "nobody@x.com", "Admin123!")
	_, _, _, inactiveUser := svc.Login(ctx, "gone@x.com", "Admin123!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.ErrorIs(t, inactiveUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, wrongPassword.Error(), inactiveUser.Error())
}

func TestCurrentUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "Admin123!", "A", "One")
	require.NoError(t, err)
	_, token, _, err := svc.Login(ctx, "a@x.com", "Admin123!")
	require.NoError(t, err)

	got, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.CurrentUser(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	store.users[user.ID].IsActive = false
	_, err = svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	delete(store.users, user.ID)
	_, err = svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSeedFromFile(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)
	ctx := context.Background()

	dir := t.TempDir()
	path := dir + "/users.yaml"
	data := []byte("users:\n  - email: admin@hrsystem.com\n    password: Admin123!\n    firstName: System\n    lastName: Admin\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	require.NoError(t, svc.SeedFromFile(ctx, path))
	assert.Len(t, store.users, 1)

	// Seeding again is a no-op, not an error.
	require.NoError(t, svc.SeedFromFile(ctx, path))
	assert.Len(t, store.users, 1)

	// Missing file is fine.
	require.NoError(t, svc.SeedFromFile(ctx, dir+"/absent.yaml"))
}
