package store

import (
	"context"
	"fmt"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/repository"
)

// SessionStore maps a session token to the signed-in user.
type SessionStore struct {
	blob Blob
}

func NewSessionStore(blob Blob) *SessionStore {
	return &SessionStore{blob: blob}
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.User, error) {
	const op = "store.sessions.Get"

	raw, err := s.blob.Load(ctx, SessionKey(token))
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u, ok, err := decodeItem[domain.User](raw)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return domain.User{}, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return u, nil
}

func (s *SessionStore) Put(ctx context.Context, token string, u domain.User) error {
	data, err := encodeItem(u)
	if err != nil {
		return fmt.Errorf("store.sessions.Put: %w", err)
	}
	return s.blob.Save(ctx, SessionKey(token), data)
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.blob.Delete(ctx, SessionKey(token))
}

// PrefsStore keeps theme and language per session token.
type PrefsStore struct {
	blob Blob
}

func NewPrefsStore(blob Blob) *PrefsStore {
	return &PrefsStore{blob: blob}
}

// Get returns the stored preferences, or the defaults when none were saved.
func (s *PrefsStore) Get(ctx context.Context, token string) (domain.Preferences, error) {
	const op = "store.prefs.Get"

	raw, err := s.blob.Load(ctx, PrefsKey(token))
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, err)
	}

	p, ok, err := decodeItem[domain.Preferences](raw)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return domain.DefaultPreferences(), nil
	}

	return p, nil
}

func (s *PrefsStore) Put(ctx context.Context, token string, p domain.Preferences) error {
	data, err := encodeItem(p)
	if err != nil {
		return fmt.Errorf("store.prefs.Put: %w", err)
	}
	return s.blob.Save(ctx, PrefsKey(token), data)
}
