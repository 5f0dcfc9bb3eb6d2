package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/filmgate/filmgate/internal/auth"
	"github.com/filmgate/filmgate/internal/catalog"
	"github.com/filmgate/filmgate/internal/logctx"
	"github.com/filmgate/filmgate/internal/telemetry"
	"github.com/go-chi/chi/v5"
)

const sessionCookieName = "filmgate_session"

// AdminHandler serves the password-gated side: movie CRUD, slug checks and
// session management. Everything except login sits behind the session
// middleware.
type AdminHandler struct {
	svc        *catalog.Service
	gate       *auth.Gate
	telemetry  *telemetry.Telemetry
	sessionTTL time.Duration
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc *catalog.Service, gate *auth.Gate, t *telemetry.Telemetry, sessionTTL time.Duration) *AdminHandler {
	return &AdminHandler{
		svc:        svc,
		gate:       gate,
		telemetry:  t,
		sessionTTL: sessionTTL,
	}
}

func (h *AdminHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Post("/logout", h.handleLogout)
		r.Get("/session", h.handleSession)
		r.Put("/password", h.handleChangePassword)

		r.Get("/movies", h.handleList)
		r.Post("/movies", h.handleCreate)
		r.Get("/movies/slug-check", h.handleSlugCheck)
		r.Get("/movies/{id}", h.handleGet)
		r.Put("/movies/{id}", h.handleUpdate)
		r.Delete("/movies/{id}", h.handleDelete)
	})

	return r
}

func (h *AdminHandler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || !h.gate.IsAuthenticated(cookie.Value) {
			respondError(w, r, http.StatusUnauthorized, "not authenticated")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")

		return
	}

	token, ok := h.gate.Authenticate(r.Context(), req.Password)
	h.telemetry.RecordLoginAttempt(ok)

	if !ok {
		logctx.LoggerFromContext(r.Context()).Warn("admin login rejected")
		respondError(w, r, http.StatusUnauthorized, "invalid password")

		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, r, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *AdminHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.gate.Logout(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	// The middleware already vouched for the session.
	respondJSON(w, r, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *AdminHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")

		return
	}

	if !h.gate.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword) {
		respondError(w, r, http.StatusBadRequest, "password change rejected")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleList(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	movie := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if movie == nil {
		respondError(w, r, http.StatusNotFound, "movie not found")

		return
	}

	respondJSON(w, r, http.StatusOK, toMovieResponse(*movie))
}

func (h *AdminHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")

		return
	}

	movie, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.telemetry.RecordMovieWrite("create", "error")
		respondWriteError(w, r, err)

		return
	}

	h.telemetry.RecordMovieWrite("create", "success")
	respondJSON(w, r, http.StatusCreated, toMovieResponse(*movie))
}

func (h *AdminHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var u catalog.MovieUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")

		return
	}

	movie, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		h.telemetry.RecordMovieWrite("update", "error")
		respondWriteError(w, r, err)

		return
	}

	if movie == nil {
		respondError(w, r, http.StatusNotFound, "movie not found")

		return
	}

	h.telemetry.RecordMovieWrite("update", "success")
	respondJSON(w, r, http.StatusOK, toMovieResponse(*movie))
}

func (h *AdminHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.svc.Delete(r.Context(), chi.URLParam(r, "id")) {
		respondError(w, r, http.StatusNotFound, "movie not found")

		return
	}

	h.telemetry.RecordMovieWrite("delete", "success")
	w.WriteHeader(http.StatusNoContent)
}

// handleSlugCheck sanitizes a candidate slug and reports whether it is free.
// exclude carries the id of the movie being edited, so its own slug does not
// count against it.
func (h *AdminHandler) handleSlugCheck(w http.ResponseWriter, r *http.Request) {
	candidate := r.URL.Query().Get("slug")
	excludeID := r.URL.Query().Get("exclude")

	slug := catalog.SanitizeSlug(candidate)
	if slug == "" {
		respondError(w, r, http.StatusBadRequest, "slug must contain at least one letter or digit")

		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"slug":   slug,
		"unique": h.svc.IsSlugUnique(r.Context(), slug, excludeID),
	})
}

// respondWriteError maps service write errors onto status codes: rejected
// input to 400, slug collisions to 409, anything else to 500.
func respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *catalog.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, r, http.StatusBadRequest, validationErr.Error())

		return
	}

	var conflictErr *catalog.SlugConflictError
	if errors.As(err, &conflictErr) {
		respondError(w, r, http.StatusConflict, conflictErr.Error())

		return
	}

	respondError(w, r, http.StatusInternalServerError, "storage unavailable")
}
