package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/storage"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// timeLayout is RFC 3339 with a fixed-width fractional second so stored
// timestamps sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(dbConn *sql.DB) *MovieRepository {
	return &MovieRepository{db: dbConn}
}

// List returns all movies, newest first, with their links attached.
func (r *MovieRepository) List(ctx context.Context) ([]catalog.Movie, error) {
	return r.queryMovies(ctx, `SELECT id, title, slug, watch_url, created_at FROM movies ORDER BY created_at DESC, rowid DESC`)
}

// Search matches the query as a case-insensitive substring of the title.
// LIKE metacharacters in the query are escaped so they match literally.
func (r *MovieRepository) Search(ctx context.Context, query string) ([]catalog.Movie, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)

	return r.queryMovies(ctx,
		`SELECT id, title, slug, watch_url, created_at FROM movies
		WHERE lower(title) LIKE '%' || lower(?) || '%' ESCAPE '\'
		ORDER BY created_at DESC, rowid DESC`, escaped)
}

func (r *MovieRepository) GetBySlug(ctx context.Context, slug string) (*catalog.Movie, error) {
	return r.getOne(ctx, `SELECT id, title, slug, watch_url, created_at FROM movies WHERE slug = ?`, slug)
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*catalog.Movie, error) {
	return r.getOne(ctx, `SELECT id, title, slug, watch_url, created_at FROM movies WHERE id = ?`, id)
}

// SlugTaken reports whether any movie other than excludeID already uses the
// slug. The UNIQUE constraint on movies.slug remains the authority; this is
// the advisory pre-check.
func (r *MovieRepository) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(1) FROM movies WHERE slug = ?`
	args := []any{slug}

	if excludeID != "" {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

// Create persists the movie and its links in one transaction. The input's
// slug must already be final; link order is the zero-based input position.
func (r *MovieRepository) Create(ctx context.Context, in catalog.MovieInput) (*catalog.Movie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	id := uuid.NewString()
	createdAt := time.Now().UTC().Format(timeLayout)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO movies (id, title, slug, watch_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, in.Title, in.Slug, nullable(in.WatchURL), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting movie: %w", err)
	}

	if err := insertLinks(ctx, tx, id, in.DownloadLinks); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update applies the supplied fields and, when a link slice is present,
// replaces the whole link set inside the same transaction. It returns the
// freshly reloaded movie, not an echo of the input.
func (r *MovieRepository) Update(ctx context.Context, id string, u catalog.MovieUpdate) (*catalog.Movie, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM movies WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, err
	}

	if exists == 0 {
		return nil, storage.ErrNotFound
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}

	if u.Slug != nil {
		sets = append(sets, "slug = ?")
		args = append(args, *u.Slug)
	}

	if u.WatchURL != nil {
		sets = append(sets, "watch_url = ?")
		args = append(args, nullable(*u.WatchURL))
	}

	if len(sets) > 0 {
		args = append(args, id)

		if _, err := tx.ExecContext(ctx,
			`UPDATE movies SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
		); err != nil {
			return nil, fmt.Errorf("updating movie: %w", err)
		}
	}

	if u.DownloadLinks != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM download_links WHERE movie_id = ?`, id); err != nil {
			return nil, fmt.Errorf("clearing links: %w", err)
		}

		if err := insertLinks(ctx, tx, id, *u.DownloadLinks); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the movie; the schema's ON DELETE CASCADE takes the links
// with it.
func (r *MovieRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, movieID string, links []catalog.LinkInput) error {
	for i, link := range links {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO download_links (id, movie_id, url, quality, size, link_order) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), movieID, link.URL, string(link.Quality), link.FileSize, i,
		)
		if err != nil {
			return fmt.Errorf("inserting link %d: %w", i, err)
		}
	}

	return nil
}

func (r *MovieRepository) getOne(ctx context.Context, query string, arg any) (*catalog.Movie, error) {
	movies, err := r.queryMovies(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	if len(movies) == 0 {
		return nil, storage.ErrNotFound
	}

	return &movies[0], nil
}

// queryMovies is the single row-to-aggregate mapping path shared by every
// read. It scans movie rows, then attaches links ordered by link_order.
func (r *MovieRepository) queryMovies(ctx context.Context, query string, args ...any) ([]catalog.Movie, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movies []catalog.Movie

	index := make(map[string]int)

	for rows.Next() {
		var (
			m         catalog.Movie
			watchURL  sql.NullString
			createdAt string
		)

		if err := rows.Scan(&m.ID, &m.Title, &m.Slug, &watchURL, &createdAt); err != nil {
			return nil, err
		}

		if watchURL.Valid {
			m.WatchURL = watchURL.String
		}

		m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for movie %s: %w", m.ID, err)
		}

		m.DownloadLinks = []catalog.DownloadLink{}

		index[m.ID] = len(movies)
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(movies) == 0 {
		return movies, nil
	}

	if err := r.attachLinks(ctx, movies, index); err != nil {
		return nil, err
	}

	return movies, nil
}

func (r *MovieRepository) attachLinks(ctx context.Context, movies []catalog.Movie, index map[string]int) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(index)), ",")
	args := make([]any, 0, len(index))

	for id := range index {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, movie_id, url, quality, size, link_order FROM download_links
		WHERE movie_id IN (`+placeholders+`)
		ORDER BY link_order ASC, rowid ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			link      catalog.DownloadLink
			movieID   string
			size      sql.NullString
			linkOrder sql.NullInt64
		)

		if err := rows.Scan(&link.ID, &movieID, &link.URL, (*string)(&link.Quality), &size, &linkOrder); err != nil {
			return err
		}

		link.FileSize = size.String
		link.Order = int(linkOrder.Int64)

		if i, ok := index[movieID]; ok {
			movies[i].DownloadLinks = append(movies[i].DownloadLinks, link)
		}
	}

	return rows.Err()
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// IsUniqueViolation reports whether err is the store's UNIQUE constraint
// rejecting a duplicate slug.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
