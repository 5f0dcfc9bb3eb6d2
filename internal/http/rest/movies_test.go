package rest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmgate/filmgate/internal/catalog"
)

func seedMovie(t *testing.T, client *http.Client, baseURL, title, slug string) movieResponse {
	t.Helper()

	resp := doJSON(t, client, http.MethodPost, baseURL+"/admin/movies", catalog.MovieInput{
		Title: title,
		Slug:  slug,
		DownloadLinks: []catalog.LinkInput{
			{Quality: catalog.Quality720p, FileSize: "1.2 GB", URL: "https://x/a"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decodeMovie(t, resp)
}

func decodeMovieList(t *testing.T, resp *http.Response) []movieResponse {
	t.Helper()

	var body struct {
		Movies []movieResponse `json:"movies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return body.Movies
}

func TestPublic_ListAndSearch(t *testing.T) {
	srv, client := newTestServer(t)
	login(t, client, srv.URL)

	seedMovie(t, client, srv.URL, "My Movie Title", "my-movie")
	seedMovie(t, client, srv.URL, "Something Else", "something-else")

	// The public listing needs no session.
	anon := &http.Client{}

	resp := doJSON(t, anon, http.MethodGet, srv.URL+"/movies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	movies := decodeMovieList(t, resp)
	require.Len(t, movies, 2)
	assert.Equal(t, "Something Else", movies[0].Title, "newest first")
	assert.NotEmpty(t, movies[0].Uploaded)

	// Case-insensitive substring search on the title.
	resp = doJSON(t, anon, http.MethodGet, srv.URL+"/movies?q=MOVIE", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	movies = decodeMovieList(t, resp)
	require.Len(t, movies, 1)
	assert.Equal(t, "My Movie Title", movies[0].Title)

	// An empty query behaves like the plain listing.
	resp = doJSON(t, anon, http.MethodGet, srv.URL+"/movies?q=", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeMovieList(t, resp), 2)
}

func TestPublic_SlugLookup(t *testing.T) {
	srv, client := newTestServer(t)
	login(t, client, srv.URL)

	seeded := seedMovie(t, client, srv.URL, "Test Film", "test-film")

	anon := &http.Client{}

	resp := doJSON(t, anon, http.MethodGet, srv.URL+"/movies/test-film", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	movie := decodeMovie(t, resp)
	assert.Equal(t, seeded.ID, movie.ID)
	require.Len(t, movie.DownloadLinks, 1)
	assert.Equal(t, catalog.Quality720p, movie.DownloadLinks[0].Quality)

	resp = doJSON(t, anon, http.MethodGet, srv.URL+"/movies/no-such-slug", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublic_AdminEndpointsAreGated(t *testing.T) {
	srv, _ := newTestServer(t)

	anon := &http.Client{}

	resp := doJSON(t, anon, http.MethodPost, srv.URL+"/admin/movies", catalog.MovieInput{Title: "X"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, anon, http.MethodDelete, srv.URL+"/admin/movies/any", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
