package catalog

import (
	"regexp"
	"time"
)

// Quality is the resolution tier of a download link.
type Quality string

const (
	Quality480p  Quality = "480p"
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality4K    Quality = "4K"
)

// Valid reports whether q is one of the known quality tiers.
func (q Quality) Valid() bool {
	switch q {
	case Quality480p, Quality720p, Quality1080p, Quality4K:
		return true
	}

	return false
}

// DownloadLink is owned by exactly one Movie and has no identity outside it.
type DownloadLink struct {
	ID       string  `json:"id"`
	Quality  Quality `json:"quality"`
	FileSize string  `json:"fileSize"`
	URL      string  `json:"url"`
	Order    int     `json:"order"`
}

// Movie is the aggregate root. Slug is the public lookup key; WatchURL is
// empty when the movie has no watch-online affordance.
type Movie struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	WatchURL      string         `json:"watchUrl,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	DownloadLinks []DownloadLink `json:"downloadLinks"`
}

// LinkInput carries the caller-supplied fields of a download link. Position
// in the input slice becomes the persisted order.
type LinkInput struct {
	Quality  Quality `json:"quality"`
	FileSize string  `json:"fileSize"`
	URL      string  `json:"url"`
}

// MovieInput carries the caller-supplied fields for a create. Slug is
// optional; when empty one is generated from the title.
type MovieInput struct {
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	WatchURL      string      `json:"watchUrl"`
	DownloadLinks []LinkInput `json:"downloadLinks"`
}

// MovieUpdate carries a partial update. Nil fields are left unchanged.
// A nil DownloadLinks leaves the existing links untouched; a non-nil slice,
// even empty, fully replaces them.
type MovieUpdate struct {
	Title         *string      `json:"title"`
	Slug          *string      `json:"slug"`
	WatchURL      *string      `json:"watchUrl"`
	DownloadLinks *[]LinkInput `json:"downloadLinks"`
}

var watchURLRe = regexp.MustCompile(`^https?://.+`)

// Validate checks a create input before any storage call.
func (in *MovieInput) Validate() error {
	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if in.WatchURL != "" && !watchURLRe.MatchString(in.WatchURL) {
		return &ValidationError{Field: "watchUrl", Reason: "must be an absolute http(s) URL"}
	}

	return validateLinks(in.DownloadLinks)
}

// Validate checks a partial update before any storage call.
func (u *MovieUpdate) Validate() error {
	if u.Title != nil && *u.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if u.WatchURL != nil && *u.WatchURL != "" && !watchURLRe.MatchString(*u.WatchURL) {
		return &ValidationError{Field: "watchUrl", Reason: "must be an absolute http(s) URL"}
	}

	if u.DownloadLinks != nil {
		return validateLinks(*u.DownloadLinks)
	}

	return nil
}

func validateLinks(links []LinkInput) error {
	for _, link := range links {
		if link.URL == "" {
			return &ValidationError{Field: "downloadLinks.url", Reason: "must not be empty"}
		}

		if !link.Quality.Valid() {
			return &ValidationError{Field: "downloadLinks.quality", Reason: "unknown quality " + string(link.Quality)}
		}
	}

	return nil
}
