package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func testInput(title, slug string) catalog.MovieInput {
	return catalog.MovieInput{
		Title: title,
		Slug:  slug,
		DownloadLinks: []catalog.LinkInput{
			{Quality: catalog.Quality720p, FileSize: "1.2 GB", URL: "https://x/a"},
		},
	}
}

func TestMovieRepository_CreateRoundTrip(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	in := catalog.MovieInput{
		Title:    "Test Film",
		Slug:     "test-film-abc123",
		WatchURL: "https://watch/x",
		DownloadLinks: []catalog.LinkInput{
			{Quality: catalog.Quality720p, FileSize: "1.2 GB", URL: "https://x/a"},
			{Quality: catalog.Quality1080p, FileSize: "2.4 GB", URL: "https://x/b"},
		},
	}

	created, err := repo.Create(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Test Film", got.Title)
	assert.Equal(t, "test-film-abc123", got.Slug)
	assert.Equal(t, "https://watch/x", got.WatchURL)
	require.Len(t, got.DownloadLinks, 2)

	for i, link := range got.DownloadLinks {
		assert.Equal(t, i, link.Order)
		assert.NotEmpty(t, link.ID)
	}

	assert.Equal(t, "https://x/a", got.DownloadLinks[0].URL)
	assert.Equal(t, catalog.Quality1080p, got.DownloadLinks[1].Quality)
}

func TestMovieRepository_GetBySlug(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testInput("Test Film", "test-film-abc123"))
	require.NoError(t, err)

	got, err := repo.GetBySlug(ctx, "test-film-abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetBySlug(ctx, "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMovieRepository_ListNewestFirst(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	for _, slug := range []string{"first-aaaaaa", "second-aaaaaa", "third-aaaaaa"} {
		_, err := repo.Create(ctx, testInput("Movie "+slug, slug))
		require.NoError(t, err)
	}

	movies, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 3)

	assert.Equal(t, "third-aaaaaa", movies[0].Slug)
	assert.Equal(t, "second-aaaaaa", movies[1].Slug)
	assert.Equal(t, "first-aaaaaa", movies[2].Slug)
}

func TestMovieRepository_SearchCaseInsensitive(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, testInput("My Movie Title", "my-movie-aaaaaa"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testInput("Something Else", "something-aaaaaa"))
	require.NoError(t, err)

	movies, err := repo.Search(ctx, "MOVIE")
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "My Movie Title", movies[0].Title)

	// LIKE metacharacters match literally, not as wildcards.
	movies, err = repo.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestMovieRepository_SlugTaken(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testInput("Test Film", "test-film-abc123"))
	require.NoError(t, err)

	taken, err := repo.SlugTaken(ctx, "test-film-abc123", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugTaken(ctx, "test-film-abc123", created.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.SlugTaken(ctx, "free-slug", "")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestMovieRepository_CreateDuplicateSlugFails(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, testInput("First", "same-slug"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, testInput("Second", "same-slug"))
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestMovieRepository_UpdateFields(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testInput("Old Title", "old-slug-aaaaaa"))
	require.NoError(t, err)

	title := "New Title"
	watchURL := "https://watch/x"

	updated, err := repo.Update(ctx, created.ID, catalog.MovieUpdate{
		Title:    &title,
		WatchURL: &watchURL,
	})
	require.NoError(t, err)

	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "old-slug-aaaaaa", updated.Slug)
	assert.Equal(t, "https://watch/x", updated.WatchURL)

	// Links were not supplied, so they are untouched.
	require.Len(t, updated.DownloadLinks, 1)
	assert.Equal(t, "https://x/a", updated.DownloadLinks[0].URL)

	// Clearing the watch url maps back to NULL.
	empty := ""

	updated, err = repo.Update(ctx, created.ID, catalog.MovieUpdate{WatchURL: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.WatchURL)
}

func TestMovieRepository_UpdateReplacesLinks(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, testInput("Test Film", "test-film-aaaaaa"))
	require.NoError(t, err)

	newLinks := []catalog.LinkInput{
		{Quality: catalog.Quality480p, FileSize: "700 MB", URL: "https://x/new1"},
		{Quality: catalog.Quality4K, FileSize: "8 GB", URL: "https://x/new2"},
	}

	updated, err := repo.Update(ctx, created.ID, catalog.MovieUpdate{DownloadLinks: &newLinks})
	require.NoError(t, err)

	require.Len(t, updated.DownloadLinks, 2)
	assert.Equal(t, "https://x/new1", updated.DownloadLinks[0].URL)
	assert.Equal(t, 0, updated.DownloadLinks[0].Order)
	assert.Equal(t, 1, updated.DownloadLinks[1].Order)

	// An explicitly empty slice clears the set.
	none := []catalog.LinkInput{}

	updated, err = repo.Update(ctx, created.ID, catalog.MovieUpdate{DownloadLinks: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.DownloadLinks)
}

func TestMovieRepository_UpdateMissingMovie(t *testing.T) {
	repo := NewMovieRepository(newTestDB(t))

	title := "whatever"

	_, err := repo.Update(context.Background(), "no-such-id", catalog.MovieUpdate{Title: &title})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestMovieRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewMovieRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, testInput("Test Film", "test-film-aaaaaa"))
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	var linkCount int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(1) FROM download_links WHERE movie_id = ?`, created.ID,
	).Scan(&linkCount))
	assert.Zero(t, linkCount)

	ok, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
