// Package service implements the marketplace use cases on top of the
// repository, storage, social and mailer layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/repository"
	"artmarket/internal/storage"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("not allowed to perform this action")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflicting state")
	ErrOutOfStock         = repository.ErrOutOfStock
	ErrMaintenance        = errors.New("marketplace is in maintenance mode")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrReaderNil          = errors.New("reader is nil")
)

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

// Actor is the authenticated caller of a use case. The zero value is anonymous.
type Actor struct {
	UserID string
	Role   model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

func (a Actor) Authenticated() bool { return a.UserID != "" }

// ImageUpload is an image streamed from a multipart form.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

func (u ImageUpload) validate() error {
	if u.Reader == nil {
		return ErrReaderNil
	}
	if u.Size > storage.MaxImageSize {
		return fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, storage.MaxImageSize)
	}
	return nil
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

func page(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// notFound translates repository.ErrNotFound into the service sentinel.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// invalid wraps ozzo validation failures so handlers can report them as 400s.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, verrs.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
}

// presigner turns stored object keys into time-limited URLs.
type presigner struct {
	store  storage.Storage
	expiry time.Duration
	log    *zap.Logger
}

func (p presigner) url(ctx context.Context, key string) string {
	if key == "" || p.store == nil {
		return ""
	}
	u, err := p.store.PresignGet(ctx, key, p.expiry)
	if err != nil {
		p.log.Warn("presign_failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return u
}

func (p presigner) urls(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if u := p.url(ctx, k); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// putImage uploads an image under a fresh key below prefix and returns the key.
func putImage(ctx context.Context, store storage.Storage, img ImageUpload, prefix ...string) (string, error) {
	if err := img.validate(); err != nil {
		return "", err
	}
	key, err := storage.ImageKey(img.ContentType, prefix...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	obj, err := store.Put(ctx, key, img.Reader, storage.PutObjectOptions{
		Size:        img.Size,
		ContentType: img.ContentType,
		Metadata: map[string]string{
			"original-filename": img.Filename,
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return obj.Key, nil
}

// rollbackImage removes an uploaded object after the database write failed.
func rollbackImage(ctx context.Context, store storage.Storage, key string, cause error) error {
	if delErr := store.Delete(ctx, key); delErr != nil {
		return fmt.Errorf("db save failed: %v; rollback delete failed: %v", cause, delErr)
	}
	return fmt.Errorf("db save failed: %w", cause)
}

// settingsOrDefault loads the site settings, falling back to the seeded defaults
// when the row is missing.
func settingsOrDefault(ctx context.Context, repo repository.SettingsRepository) (model.Settings, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return *s, nil
}
