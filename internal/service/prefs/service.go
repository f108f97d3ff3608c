package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/store"
	"github.com/kirinyoku/railgo/internal/validate"
)

var ErrNoClient = errors.New("client token required")

// Patch holds the fields to change; empty fields keep their stored value.
type Patch struct {
	Theme    domain.Theme    `json:"theme"`
	Language domain.Language `json:"language"`
}

type Service struct {
	store *store.PrefsStore
}

func New(s *store.PrefsStore) *Service {
	return &Service{store: s}
}

// Get returns the preferences stored for token. An empty token gets the defaults.
func (s *Service) Get(ctx context.Context, token string) (domain.Preferences, error) {
	if token == "" {
		return domain.DefaultPreferences(), nil
	}

	p, err := s.store.Get(ctx, token)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("service.prefs.Get: %w", err)
	}

	return p, nil
}

func (s *Service) Update(ctx context.Context, token string, patch Patch) (domain.Preferences, error) {
	const op = "service.prefs.Update"

	if token == "" {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, ErrNoClient)
	}

	errs := validate.Errors{}
	switch patch.Theme {
	case "", domain.ThemeLight, domain.ThemeDark:
	default:
		errs["theme"] = "Theme must be light or dark"
	}
	switch patch.Language {
	case "", domain.LanguageEnglish, domain.LanguageArabic:
	default:
		errs["language"] = "Language must be en or ar"
	}
	if err := errs.Err(); err != nil {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.store.Get(ctx, token)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Theme != "" {
		p.Theme = patch.Theme
	}
	if patch.Language != "" {
		p.Language = patch.Language
	}

	if err := s.store.Put(ctx, token, p); err != nil {
		return domain.Preferences{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}
