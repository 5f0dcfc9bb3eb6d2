package rest

import (
	"net/http"

	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/telemetry"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the public, unauthenticated side of the catalog:
// the listing and the slug lookup that shareable URLs resolve through.
type CatalogHandler struct {
	svc       *catalog.Service
	telemetry *telemetry.Telemetry
}

// NewCatalogHandler creates a new public catalog handler.
func NewCatalogHandler(svc *catalog.Service, t *telemetry.Telemetry) *CatalogHandler {
	return &CatalogHandler{svc: svc, telemetry: t}
}

func (h *CatalogHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.handleList)
	r.Get("/{slug}", h.handleGetBySlug)

	return r
}

// handleList returns every movie, newest first. A non-empty ?q= switches to
// a case-insensitive title search; an empty query is the same as listing.
func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var movies []catalog.Movie
	if query == "" {
		movies = h.svc.List(r.Context())
	} else {
		movies = h.svc.Search(r.Context(), query)
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"movies": toMovieResponses(movies),
	})
}

func (h *CatalogHandler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	movie := h.svc.GetBySlug(r.Context(), slug)
	h.telemetry.RecordSlugLookup(movie != nil)

	if movie == nil {
		respondError(w, r, http.StatusNotFound, "movie not found")

		return
	}

	respondJSON(w, r, http.StatusOK, toMovieResponse(*movie))
}
