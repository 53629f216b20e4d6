// Package model contains the core domain types for the site directory.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation errors for site creation input. Distinct from persistence
// failures: the client must correct the input and resubmit.
var (
	// ErrInvalidInput indicates a required field is missing or empty.
	ErrInvalidInput = errors.New("missing required field")

	// ErrInvalidSlug indicates the derived subdomain slug is not a valid
	// DNS label.
	ErrInvalidSlug = errors.New("invalid subdomain slug")
)

// Site is one registered prototype site in the directory. The JSON field
// names match the persisted data/sites.json document, so changing a tag is a
// registry format change.
type Site struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Subdomain       string     `json:"subdomain"`
	URL             string     `json:"url"`
	GitHubRepo      string     `json:"githubRepo,omitempty"`
	VercelProjectID string     `json:"vercelProjectId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	Status          SiteStatus `json:"status,omitempty"`
}

// Domain returns the fully qualified domain for the site under rootDomain.
func (s Site) Domain(rootDomain string) string {
	return s.Subdomain + "." + rootDomain
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9-]{1,63}$`)
)

// Slugify normalizes raw user input into a candidate site id / DNS label:
// lowercase, trimmed, whitespace runs collapsed to a single hyphen, every
// character outside [a-z0-9-] stripped, repeated hyphens collapsed.
// Slugify is idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = disallowed.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return s
}

// ValidateSlug checks that slug is a usable DNS label: 1-63 characters from
// [a-z0-9-], not starting or ending with a hyphen.
func ValidateSlug(slug string) error {
	if !slugPattern.MatchString(slug) ||
		strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("%q: %w", slug, ErrInvalidSlug)
	}
	return nil
}
