// Package session persists the two client-side session fields: the opaque
// bearer token and the serialized user record.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/simcheck/internal/api"
)

// Keys of the persisted entries.
const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"
)

// ErrNotFound is returned by Store.Get when a key has no value.
var ErrNotFound = errors.New("session: key not found")

// Store is a string key-value store holding the persisted session fields.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is the authenticated state read from a Store.
type Session struct {
	Token string
	User  *api.User
}

// Valid reports whether both the token and the user record are present.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// Load reads the session fields from store. Missing entries and a user
// record that fails to decode leave the corresponding field empty; only
// store failures are returned as errors.
func Load(ctx context.Context, store Store) (*Session, error) {
	sess := &Session{}

	token, err := store.Get(ctx, KeyToken)
	switch {
	case err == nil:
		sess.Token = token
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("reading %s: %w", KeyToken, err)
	}

	raw, err := store.Get(ctx, KeyUser)
	switch {
	case err == nil:
		var user api.User
		if json.Unmarshal([]byte(raw), &user) == nil {
			sess.User = &user
		}
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("reading %s: %w", KeyUser, err)
	}

	return sess, nil
}

// Save writes both session fields to store.
func Save(ctx context.Context, store Store, sess *Session) error {
	if !sess.Valid() {
		return errors.New("session: token and user are required")
	}

	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshalling user: %w", err)
	}
	if err := store.Set(ctx, KeyToken, sess.Token); err != nil {
		return fmt.Errorf("writing %s: %w", KeyToken, err)
	}
	if err := store.Set(ctx, KeyUser, string(user)); err != nil {
		return fmt.Errorf("writing %s: %w", KeyUser, err)
	}
	return nil
}

// Clear removes both session fields. Both deletes are attempted even if
// the first one fails.
func Clear(ctx context.Context, store Store) error {
	return errors.Join(
		store.Delete(ctx, KeyToken),
		store.Delete(ctx, KeyUser),
	)
}
