package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	"github.com/alebedev/helpboard/internal/common/logger"
	"github.com/alebedev/helpboard/internal/user/domain"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubStore struct {
	saveErr  error
	saved    map[string]domain.User
	saveCall int
}

func (s *stubStore) Save(users map[string]domain.User) error {
	s.saveCall++
	if s.saveErr != nil {
		return s.saveErr
	}
	snapshot := make(map[string]domain.User, len(users))
	for k, v := range users {
		snapshot[k] = v
	}
	s.saved = snapshot
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("", "test", "ERROR")
	require.NoError(t, err)
	return log
}

func TestCreateNewUser(t *testing.T) {
	store := &stubStore{}
	dir := New(nil, store, fakeHasher{}, testLogger(t))

	require.NoError(t, dir.Create(context.Background(), "alice", "secret123"))

	assert.True(t, dir.Exists("alice"))
	require.Contains(t, store.saved, "alice")
	assert.Equal(t, "hashed:secret123", store.saved["alice"].PasswordHash)
}

func TestCreateDuplicateUsername(t *testing.T) {
	store := &stubStore{}
	dir := New(nil, store, fakeHasher{}, testLogger(t))
	require.NoError(t, dir.Create(context.Background(), "alice", "secret123"))

	err := dir.Create(context.Background(), "alice", "other")

	assert.True(t, errors.Is(err, commonerrors.ErrUsernameAlreadyExists))
	assert.Equal(t, 1, store.saveCall)
}

func TestCreateRollsBackOnSaveFailure(t *testing.T) {
	store := &stubStore{saveErr: errors.New("disk full")}
	dir := New(nil, store, fakeHasher{}, testLogger(t))

	err := dir.Create(context.Background(), "alice", "secret123")

	assert.True(t, errors.Is(err, commonerrors.ErrPersistenceFailure))
	assert.False(t, dir.Exists("alice"))
}

func TestAuthenticate(t *testing.T) {
	dir := New(map[string]domain.User{
		"alice": {PasswordHash: "hashed:secret123"},
	}, &stubStore{}, fakeHasher{}, testLogger(t))

	assert.NoError(t, dir.Authenticate(context.Background(), "alice", "secret123"))
}

func TestAuthenticateWrongPassword(t *testing.T) {
	dir := New(map[string]domain.User{
		"alice": {PasswordHash: "hashed:secret123"},
	}, &stubStore{}, fakeHasher{}, testLogger(t))

	err := dir.Authenticate(context.Background(), "alice", "wrong")

	assert.True(t, errors.Is(err, commonerrors.ErrInvalidCredentials))
}

func TestAuthenticateUnknownUser(t *testing.T) {
	dir := New(nil, &stubStore{}, fakeHasher{}, testLogger(t))

	err := dir.Authenticate(context.Background(), "ghost", "whatever")

	assert.True(t, errors.Is(err, commonerrors.ErrInvalidCredentials))
}

func TestProfile(t *testing.T) {
	dir := New(map[string]domain.User{
		"alice": {Profile: domain.Profile{Bio: "gopher", Email: "a@example.com"}},
	}, &stubStore{}, fakeHasher{}, testLogger(t))

	profile, err := dir.Profile("alice")

	require.NoError(t, err)
	assert.Equal(t, "gopher", profile.Bio)
	assert.Equal(t, "a@example.com", profile.Email)
}

func TestProfileUnknownUser(t *testing.T) {
	dir := New(nil, &stubStore{}, fakeHasher{}, testLogger(t))

	_, err := dir.Profile("ghost")

	assert.True(t, errors.Is(err, commonerrors.ErrUserNotFound))
}

func TestUpdateProfile(t *testing.T) {
	store := &stubStore{}
	dir := New(map[string]domain.User{
		"alice": {PasswordHash: "hashed:secret123"},
	}, store, fakeHasher{}, testLogger(t))

	updated := domain.Profile{Bio: "new bio", Email: "new@example.com"}
	require.NoError(t, dir.UpdateProfile(context.Background(), "alice", updated))

	profile, err := dir.Profile("alice")
	require.NoError(t, err)
	assert.Equal(t, updated, profile)
	assert.Equal(t, "hashed:secret123", store.saved["alice"].PasswordHash)
}

func TestUpdateProfileRollsBackOnSaveFailure(t *testing.T) {
	store := &stubStore{saveErr: errors.New("disk full")}
	original := domain.Profile{Bio: "original"}
	dir := New(map[string]domain.User{
		"alice": {Profile: original},
	}, store, fakeHasher{}, testLogger(t))

	err := dir.UpdateProfile(context.Background(), "alice", domain.Profile{Bio: "changed"})

	assert.True(t, errors.Is(err, commonerrors.ErrPersistenceFailure))
	profile, profileErr := dir.Profile("alice")
	require.NoError(t, profileErr)
	assert.Equal(t, original, profile)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	dir := New(nil, &stubStore{}, fakeHasher{}, testLogger(t))

	err := dir.UpdateProfile(context.Background(), "ghost", domain.Profile{Bio: "x"})

	assert.True(t, errors.Is(err, commonerrors.ErrUserNotFound))
}
