package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new digests.
var PasswordCost = bcrypt.DefaultCost

// UserRecord is a user as stored. Version 1 records kept the password in
// clear text; they are hashed when loaded.
type UserRecord struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
	Password     string `json:"password,omitempty"`
}

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (r UserRecord) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password)) == nil
}

type UserStore struct {
	blob Blob
}

func NewUserStore(blob Blob) *UserStore {
	return &UserStore{blob: blob}
}

func decodeUsers(raw []byte) ([]UserRecord, error) {
	list, version, err := decodeList[UserRecord](raw)
	if err != nil {
		return nil, err
	}

	if version == 1 {
		for i := range list {
			if list[i].Password == "" {
				continue
			}
			if list[i].PasswordHash, err = HashPassword(list[i].Password); err != nil {
				return nil, err
			}
			list[i].Password = ""
		}
	}

	for _, u := range list {
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("%w: user without id or email", repository.ErrCorruptRecord)
		}
	}

	return list, nil
}

func (s *UserStore) List(ctx context.Context) ([]UserRecord, error) {
	const op = "store.users.List"

	raw, err := s.blob.Load(ctx, KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := decodeUsers(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (UserRecord, error) {
	list, err := s.List(ctx)
	if err != nil {
		return UserRecord{}, err
	}

	for _, u := range list {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return UserRecord{}, fmt.Errorf("store.users.FindByEmail: %w", repository.ErrNotFound)
}

// Create appends rec unless a user with the same email exists (ErrConflict).
func (s *UserStore) Create(ctx context.Context, rec UserRecord) error {
	const op = "store.users.Create"

	err := s.blob.Update(ctx, KeyUsers, func(raw []byte) ([]byte, error) {
		list, err := decodeUsers(raw)
		if err != nil {
			return nil, err
		}

		for _, u := range list {
			if strings.EqualFold(u.Email, rec.Email) {
				return nil, repository.ErrConflict
			}
		}

		return encodeList(append(list, rec))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Seed stores the given users when the users key is still empty.
func (s *UserStore) Seed(ctx context.Context, seed []UserRecord) error {
	const op = "store.users.Seed"

	err := s.blob.Update(ctx, KeyUsers, func(raw []byte) ([]byte, error) {
		list, err := decodeUsers(raw)
		if err != nil {
			return nil, err
		}
		if len(list) > 0 {
			return encodeList(list)
		}
		return encodeList(seed)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
