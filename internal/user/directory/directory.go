package directory

import (
	"context"
	"sync"

	commoncrypto "github.com/alebedev/helpboard/internal/common/crypto"
	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
	"github.com/alebedev/helpboard/internal/common/logger"
	prommetrics "github.com/alebedev/helpboard/internal/common/prometheus"
	"github.com/alebedev/helpboard/internal/user/domain"
)

// Store persists the full user snapshot.
type Store interface {
	Save(users map[string]domain.User) error
}

// Directory owns the in-memory user collection. All mutations hold the mutex
// across the read-modify-persist sequence; a failed save rolls the change back
// so memory and disk never diverge.
type Directory struct {
	mu     sync.Mutex
	users  map[string]domain.User
	store  Store
	hasher commoncrypto.PasswordHasher
	log    *logger.Logger
}

func New(users map[string]domain.User, store Store, hasher commoncrypto.PasswordHasher, log *logger.Logger) *Directory {
	if users == nil {
		users = make(map[string]domain.User)
	}
	return &Directory{
		users:  users,
		store:  store,
		hasher: hasher,
		log:    log,
	}
}

func (d *Directory) Create(ctx context.Context, username, password string) error {
	hash, err := d.hasher.Hash(password)
	if err != nil {
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_hash_failed",
		}).Errorf("signup failed: password hash error: %v", err)
		return commonerrors.ErrInternalError.WithCause(err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[username]; exists {
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_username_exists",
		}).Warn("signup failed: already exists")
		return commonerrors.ErrUsernameAlreadyExists
	}

	d.users[username] = domain.User{
		PasswordHash: hash,
		Profile:      domain.Profile{},
	}

	if err := d.store.Save(d.users); err != nil {
		delete(d.users, username)
		prommetrics.PersistenceFailuresTotal.WithLabelValues("users").Inc()
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "signup_save_failed",
		}).Errorf("signup failed: save error: %v", err)
		return commonerrors.ErrPersistenceFailure.WithCause(err)
	}

	prommetrics.BoardMutationsTotal.WithLabelValues("create_user").Inc()
	d.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "signup_success",
	}).Info("signup success")

	return nil
}

func (d *Directory) Authenticate(ctx context.Context, username, password string) error {
	d.mu.Lock()
	user, exists := d.users[username]
	d.mu.Unlock()

	if !exists {
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_user_not_found",
		}).Warn("login failed: not found")
		return commonerrors.ErrInvalidCredentials
	}

	if err := d.hasher.Compare(user.PasswordHash, password); err != nil {
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		return commonerrors.ErrInvalidCredentials
	}

	d.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "login_success",
	}).Info("login success")

	return nil
}

func (d *Directory) Profile(username string) (domain.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, exists := d.users[username]
	if !exists {
		return domain.Profile{}, commonerrors.ErrUserNotFound
	}
	return user.Profile, nil
}

func (d *Directory) UpdateProfile(ctx context.Context, username string, profile domain.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, exists := d.users[username]
	if !exists {
		return commonerrors.ErrUserNotFound
	}

	previous := user.Profile
	user.Profile = profile
	d.users[username] = user

	if err := d.store.Save(d.users); err != nil {
		user.Profile = previous
		d.users[username] = user
		prommetrics.PersistenceFailuresTotal.WithLabelValues("users").Inc()
		d.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "profile_update_save_failed",
		}).Errorf("profile update failed: save error: %v", err)
		return commonerrors.ErrPersistenceFailure.WithCause(err)
	}

	prommetrics.BoardMutationsTotal.WithLabelValues("update_profile").Inc()
	d.log.WithFields(ctx, logger.Fields{
		"username": username,
		"action":   "profile_update_success",
	}).Info("profile updated")

	return nil
}

func (d *Directory) Exists(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.users[username]
	return exists
}
