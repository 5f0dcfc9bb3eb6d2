package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/filmgate/filmgate/internal/logctx"
	"github.com/filmgate/filmgate/internal/storage"
)

// MovieStore is the storage contract the service drives. The sqlite
// implementation satisfies it; tests swap in fakes.
type MovieStore interface {
	List(ctx context.Context) ([]Movie, error)
	Search(ctx context.Context, query string) ([]Movie, error)
	GetBySlug(ctx context.Context, slug string) (*Movie, error)
	GetByID(ctx context.Context, id string) (*Movie, error)
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, in MovieInput) (*Movie, error)
	Update(ctx context.Context, id string, u MovieUpdate) (*Movie, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Service is the catalog contract consumed by the HTTP layer. Reads swallow
// storage errors and come back empty so a broken store surfaces as an empty
// catalog rather than a crash; the error is logged server-side. Writes
// return typed errors the handlers can map to status codes.
type Service struct {
	store   MovieStore
	timeout time.Duration
}

// NewService builds a Service. A timeout of zero disables the per-call
// storage deadline.
func NewService(store MovieStore, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// List returns all movies, newest first. Never fails: storage errors yield
// an empty slice.
func (s *Service) List(ctx context.Context) []Movie {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movies, err := s.store.List(ctx)
	if err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to list movies", "err", err)

		return []Movie{}
	}

	if movies == nil {
		movies = []Movie{}
	}

	return movies
}

// Search matches query as a case-insensitive substring of the title, newest
// first. Same fail-soft semantics as List.
func (s *Service) Search(ctx context.Context, query string) []Movie {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movies, err := s.store.Search(ctx, query)
	if err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to search movies", "query", query, "err", err)

		return []Movie{}
	}

	if movies == nil {
		movies = []Movie{}
	}

	return movies
}

// GetBySlug resolves the public lookup key. Nil means absent; a storage
// failure is logged and also surfaces as nil.
func (s *Service) GetBySlug(ctx context.Context, slug string) *Movie {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movie, err := s.store.GetBySlug(ctx, slug)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}

	if err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to get movie by slug", "slug", slug, "err", err)

		return nil
	}

	return movie
}

// GetByID has the same semantics as GetBySlug, keyed by identifier.
func (s *Service) GetByID(ctx context.Context, id string) *Movie {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	movie, err := s.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}

	if err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to get movie by id", "movie_id", id, "err", err)

		return nil
	}

	return movie
}

// Create validates the input, settles the slug and persists the aggregate.
// A caller-supplied slug is sanitized and pre-checked for uniqueness; when
// none survives sanitization one is generated from the title. The store's
// UNIQUE constraint remains the final authority either way.
func (s *Service) Create(ctx context.Context, in MovieInput) (*Movie, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger := logctx.LoggerFromContext(ctx)

	in.Slug = SanitizeSlug(in.Slug)
	if in.Slug == "" {
		in.Slug = GenerateSlug(in.Title)
	} else {
		taken, err := s.store.SlugTaken(ctx, in.Slug, "")
		if err != nil {
			logger.Error("slug uniqueness check failed", "slug", in.Slug, "err", err)

			return nil, fmt.Errorf("checking slug: %w", err)
		}

		if taken {
			return nil, &SlugConflictError{Slug: in.Slug}
		}
	}

	movie, err := s.store.Create(ctx, in)
	if err != nil {
		logger.Error("failed to create movie", "title", in.Title, "err", err)

		return nil, fmt.Errorf("creating movie: %w", err)
	}

	logger.Info("movie created", "movie_id", movie.ID, "slug", movie.Slug)

	return movie, nil
}

// Update applies a partial update and returns the freshly reloaded movie.
// Nil, nil means the id does not exist.
func (s *Service) Update(ctx context.Context, id string, u MovieUpdate) (*Movie, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger := logctx.LoggerFromContext(ctx)

	if u.Slug != nil {
		slug := SanitizeSlug(*u.Slug)
		if slug == "" {
			return nil, &ValidationError{Field: "slug", Reason: "must contain at least one letter or digit"}
		}

		taken, err := s.store.SlugTaken(ctx, slug, id)
		if err != nil {
			logger.Error("slug uniqueness check failed", "slug", slug, "err", err)

			return nil, fmt.Errorf("checking slug: %w", err)
		}

		if taken {
			return nil, &SlugConflictError{Slug: slug}
		}

		u.Slug = &slug
	}

	movie, err := s.store.Update(ctx, id, u)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		logger.Error("failed to update movie", "movie_id", id, "err", err)

		return nil, fmt.Errorf("updating movie: %w", err)
	}

	logger.Info("movie updated", "movie_id", id)

	return movie, nil
}

// Delete removes a movie and, through the store's cascade, its links.
// False covers both "no such movie" and a logged storage failure.
func (s *Service) Delete(ctx context.Context, id string) bool {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to delete movie", "movie_id", id, "err", err)

		return false
	}

	if ok {
		logctx.LoggerFromContext(ctx).Info("movie deleted", "movie_id", id)
	}

	return ok
}

// IsSlugUnique is the advisory pre-check for hand-edited slugs. When the
// store cannot be asked, the slug is reported as not unique rather than
// risking a collision.
func (s *Service) IsSlugUnique(ctx context.Context, slug, excludeID string) bool {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	taken, err := s.store.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		logctx.LoggerFromContext(ctx).Error("slug uniqueness check failed", "slug", slug, "err", err)

		return false
	}

	return !taken
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, s.timeout)
}
