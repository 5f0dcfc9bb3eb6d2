package sqlite

import (
	"context"
	"database/sql"

	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/telemetry"
)

// InstrumentedMovieRepository wraps MovieRepository with telemetry.
type InstrumentedMovieRepository struct {
	repo      *MovieRepository
	telemetry *telemetry.Telemetry
}

// NewInstrumentedMovieRepository creates a new instrumented movie repository.
func NewInstrumentedMovieRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedMovieRepository {
	return &InstrumentedMovieRepository{
		repo:      NewMovieRepository(dbConn),
		telemetry: tel,
	}
}

func (r *InstrumentedMovieRepository) List(ctx context.Context) ([]catalog.Movie, error) {
	var result []catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "list_movies", func(ctx context.Context) error {
		var err error
		result, err = r.repo.List(ctx)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) Search(ctx context.Context, query string) ([]catalog.Movie, error) {
	var result []catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "search_movies", func(ctx context.Context) error {
		var err error
		result, err = r.repo.Search(ctx, query)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Movie, error) {
	var result *catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "get_movie_by_slug", func(ctx context.Context) error {
		var err error
		result, err = r.repo.GetBySlug(ctx, slug)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) GetByID(ctx context.Context, id string) (*catalog.Movie, error) {
	var result *catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "get_movie_by_id", func(ctx context.Context) error {
		var err error
		result, err = r.repo.GetByID(ctx, id)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	var result bool

	err := r.telemetry.InstrumentDBOperation(ctx, "slug_taken", func(ctx context.Context) error {
		var err error
		result, err = r.repo.SlugTaken(ctx, slug, excludeID)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) Create(ctx context.Context, in catalog.MovieInput) (*catalog.Movie, error) {
	var result *catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "create_movie", func(ctx context.Context) error {
		var err error
		result, err = r.repo.Create(ctx, in)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) Update(ctx context.Context, id string, u catalog.MovieUpdate) (*catalog.Movie, error) {
	var result *catalog.Movie

	err := r.telemetry.InstrumentDBOperation(ctx, "update_movie", func(ctx context.Context) error {
		var err error
		result, err = r.repo.Update(ctx, id, u)

		return err
	})

	return result, err
}

func (r *InstrumentedMovieRepository) Delete(ctx context.Context, id string) (bool, error) {
	var result bool

	err := r.telemetry.InstrumentDBOperation(ctx, "delete_movie", func(ctx context.Context) error {
		var err error
		result, err = r.repo.Delete(ctx, id)

		return err
	})

	return result, err
}
