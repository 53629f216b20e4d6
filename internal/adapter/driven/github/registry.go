// Package github implements the RegistryStore port on the GitHub contents
// API using the go-github library. The registry is a single pretty-printed
// JSON document in a version-controlled repository; the blob's content SHA
// is the concurrency token for conditional writes.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// RegistryStore reads and conditionally writes the site registry document.
type RegistryStore struct {
	gh     *gh.Client
	owner  string
	repo   string
	path   string
	branch string
}

// NewRegistryStore creates a registry store with a rate-limit-aware GitHub
// client authenticated by a personal access token. Unlike a general-purpose
// read client, the transport carries no response cache: the SHA returned by
// Load doubles as the conditional-write token and must always be live.
func NewRegistryStore(token, owner, repo, path, branch string) *RegistryStore {
	rateLimitClient := github_ratelimit.NewClient(nil)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &RegistryStore{
		gh:     client,
		owner:  owner,
		repo:   repo,
		path:   path,
		branch: branch,
	}
}

// NewRegistryStoreWithHTTPClient creates a RegistryStore with a custom
// http.Client and base URL. This constructor is intended for testing,
// allowing injection of an httptest server.
func NewRegistryStoreWithHTTPClient(httpClient *http.Client, baseURL, owner, repo, path, branch string) (*RegistryStore, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &RegistryStore{
		gh:     client,
		owner:  owner,
		repo:   repo,
		path:   path,
		branch: branch,
	}, nil
}

// Load fetches the current registry document and its content SHA. A missing
// document (first run) yields an empty list and an empty SHA.
func (s *RegistryStore) Load(ctx context.Context) ([]model.Site, string, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: s.branch}

	fc, _, resp, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return []model.Site{}, "", nil
		}
		return nil, "", persistenceError("load", err)
	}
	if fc == nil {
		return nil, "", &driven.PersistenceError{
			Op:     "load",
			Detail: fmt.Sprintf("%s is a directory, expected a file", s.path),
		}
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, "", &driven.PersistenceError{
			Op:     "load",
			Detail: fmt.Sprintf("decoding %s: %v", s.path, err),
			Err:    err,
		}
	}

	var sites []model.Site
	if err := json.Unmarshal([]byte(content), &sites); err != nil {
		return nil, "", &driven.PersistenceError{
			Op:     "load",
			Detail: fmt.Sprintf("parsing %s: %v", s.path, err),
			Err:    err,
		}
	}
	if sites == nil {
		sites = []model.Site{}
	}

	logRateLimit(resp, s.path)

	return sites, fc.GetSHA(), nil
}

// Commit serializes the full site list as pretty-printed JSON and writes it
// conditioned on the document's current SHA. The SHA is re-read immediately
// before the write rather than reused from an earlier Load; this narrows the
// race window between concurrent writers but does not eliminate it. The
// backing store's conditional check at write time is the real guard.
func (s *RegistryStore) Commit(ctx context.Context, sites []model.Site, message string) error {
	_, sha, err := s.Load(ctx)
	if err != nil {
		return err
	}

	if sites == nil {
		sites = []model.Site{}
	}
	data, err := json.MarshalIndent(sites, "", "  ")
	if err != nil {
		return &driven.PersistenceError{
			Op:     "commit",
			Detail: fmt.Sprintf("serializing registry: %v", err),
			Err:    err,
		}
	}
	data = append(data, '\n')

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: data,
		Branch:  gh.Ptr(s.branch),
	}

	if sha == "" {
		// First run: the document does not exist yet.
		_, _, err = s.gh.Repositories.CreateFile(ctx, s.owner, s.repo, s.path, opts)
	} else {
		opts.SHA = gh.Ptr(sha)
		_, _, err = s.gh.Repositories.UpdateFile(ctx, s.owner, s.repo, s.path, opts)
	}
	if err != nil {
		return persistenceError("commit", err)
	}

	slog.Debug("registry committed", "path", s.path, "sites", len(sites), "message", message)

	return nil
}

// persistenceError wraps a go-github error into a PersistenceError carrying
// the upstream status and message.
func persistenceError(op string, err error) *driven.PersistenceError {
	pe := &driven.PersistenceError{Op: op, Detail: err.Error(), Err: err}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Response != nil {
			pe.Status = ghErr.Response.StatusCode
		}
		if ghErr.Message != "" {
			pe.Detail = ghErr.Message
		}
	}

	return pe
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, path string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"path", path,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low", "remaining", resp.Rate.Remaining)
	}
}
