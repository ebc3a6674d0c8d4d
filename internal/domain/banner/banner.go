// Package banner manages the promotional banners shown on the home screen.
package banner

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/media"
	"github.com/xenking/grocer-kart/internal/domain/validation"
)

// ErrNotFound is returned when a banner id does not exist.
var ErrNotFound = errors.New("banner not found")

// Banner is a titled promotional image.
type Banner struct {
	ID        int64
	Title     string
	Image     media.Image
	Active    bool
	CreatedAt time.Time
}

// Repository persists banners.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Banner, error)
	Create(ctx context.Context, b *Banner) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

// Service implements banner management.
type Service struct {
	repo Repository
}

// NewService creates a Service backed by repo.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns banners newest first. Shoppers see active banners only.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]Banner, error) {
	out, err := s.repo.List(ctx, !includeInactive)
	if err != nil {
		return nil, errors.Wrap(err, "list banners")
	}
	return out, nil
}

// Create stores a new banner.
func (s *Service) Create(ctx context.Context, b *Banner) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return validation.Missing("title")
	}
	if len(b.Image.Data) == 0 {
		return validation.Missing("image")
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return errors.Wrap(err, "create banner")
	}
	return nil
}

// SetActive shows or hides a banner.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return errors.Wrapf(err, "set banner %d active", id)
	}
	return nil
}

// Delete removes a banner.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete banner %d", id)
	}
	return nil
}
