package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/logctx"
)

type movieResponse struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Slug          string                 `json:"slug"`
	WatchURL      string                 `json:"watchUrl,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	Uploaded      string                 `json:"uploaded"`
	DownloadLinks []catalog.DownloadLink `json:"downloadLinks"`
}

func toMovieResponse(m catalog.Movie) movieResponse {
	return movieResponse{
		ID:            m.ID,
		Title:         m.Title,
		Slug:          m.Slug,
		WatchURL:      m.WatchURL,
		CreatedAt:     m.CreatedAt,
		Uploaded:      humanize.Time(m.CreatedAt),
		DownloadLinks: m.DownloadLinks,
	}
}

func toMovieResponses(movies []catalog.Movie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = toMovieResponse(m)
	}

	return out
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logctx.LoggerFromContext(r.Context()).Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]string{"error": message})
}
