// Package vercel implements the DomainAPI port against the Vercel REST API.
//
// There is no official Go SDK for these endpoints, so the client speaks the
// REST API directly. Responses are never cached: alias state must always
// reflect the provider's live state.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/web0101/protodir/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DomainAPI = (*Client)(nil)

const defaultBaseURL = "https://api.vercel.com"

// Client calls the Vercel domain and deployment API, optionally scoped to a
// team. An empty token produces a client whose every call fails with
// driven.ErrProviderNotConfigured, so callers need no nil checks.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	teamID     string
}

// NewClient creates a Vercel API client with a transport-level timeout.
// There is no per-operation deadline; the HTTP client's timeout is the only
// bound, and its expiry is treated like any other provider error.
func NewClient(token, teamID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		teamID:     teamID,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token, teamID string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		teamID:     teamID,
	}
}

// AddProjectDomain associates domain with the given project. A 409 "already
// associated" response counts as success: attachment is idempotent.
func (c *Client) AddProjectDomain(ctx context.Context, projectID, domain string) (bool, error) {
	body, err := json.Marshal(map[string]string{"name": domain})
	if err != nil {
		return false, fmt.Errorf("encoding domain request: %w", err)
	}

	resp, respBody, err := c.do(ctx, http.MethodPost, "/v2/projects/"+url.PathEscape(projectID)+"/domains", nil, body)
	if err != nil {
		return false, err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return true, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, &driven.AliasError{Op: "add domain", Status: resp.StatusCode, Body: respBody}
	}
}

// RemoveProjectDomain removes the domain association from the given project.
// A 404 response means there was nothing to do and is success with
// removed=false.
func (c *Client) RemoveProjectDomain(ctx context.Context, projectID, domain string) (bool, error) {
	path := "/v2/projects/" + url.PathEscape(projectID) + "/domains/" + url.PathEscape(domain)

	resp, respBody, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return false, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, &driven.AliasError{Op: "remove domain", Status: resp.StatusCode, Body: respBody}
	}
}

// ListProjectDomains returns all domains currently attached to the project.
func (c *Client) ListProjectDomains(ctx context.Context, projectID string) ([]driven.ProjectDomain, error) {
	resp, respBody, err := c.do(ctx, http.MethodGet, "/v9/projects/"+url.PathEscape(projectID)+"/domains", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &driven.AliasError{Op: "list domains", Status: resp.StatusCode, Body: respBody}
	}

	var parsed struct {
		Domains []struct {
			Name     string `json:"name"`
			Redirect string `json:"redirect"`
			Verified bool   `json:"verified"`
		} `json:"domains"`
	}
	if err := json.Unmarshal([]byte(respBody), &parsed); err != nil {
		return nil, fmt.Errorf("parsing domains response: %w", err)
	}

	domains := make([]driven.ProjectDomain, 0, len(parsed.Domains))
	for _, d := range parsed.Domains {
		domains = append(domains, driven.ProjectDomain{
			Name:     d.Name,
			Redirect: d.Redirect,
			Verified: d.Verified,
		})
	}

	return domains, nil
}

// LatestProductionDeployment returns the most recent successfully deployed
// production artifact for the project, or nil, nil when none exists.
func (c *Client) LatestProductionDeployment(ctx context.Context, projectID string) (*driven.Deployment, error) {
	query := url.Values{
		"projectId": {projectID},
		"target":    {"production"},
		"state":     {"READY"},
		"limit":     {"1"},
	}

	resp, respBody, err := c.do(ctx, http.MethodGet, "/v6/deployments", query, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &driven.AliasError{Op: "list deployments", Status: resp.StatusCode, Body: respBody}
	}

	var parsed struct {
		Deployments []struct {
			UID   string `json:"uid"`
			URL   string `json:"url"`
			State string `json:"state"`
		} `json:"deployments"`
	}
	if err := json.Unmarshal([]byte(respBody), &parsed); err != nil {
		return nil, fmt.Errorf("parsing deployments response: %w", err)
	}

	if len(parsed.Deployments) == 0 {
		return nil, nil
	}

	d := parsed.Deployments[0]
	return &driven.Deployment{UID: d.UID, URL: d.URL, State: d.State}, nil
}

// CheckAccess verifies that the configured token is usable by fetching the
// authenticated account. Used by the diagnostics surface only.
func (c *Client) CheckAccess(ctx context.Context) (*driven.ProviderIdentity, error) {
	resp, respBody, err := c.do(ctx, http.MethodGet, "/v2/user", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &driven.AliasError{Op: "check access", Status: resp.StatusCode, Body: respBody}
	}

	var parsed struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(respBody), &parsed); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return &driven.ProviderIdentity{ID: parsed.User.ID, Username: parsed.User.Username}, nil
}

// do performs one authenticated API call and returns the response together
// with its fully read body. The provider body is kept as text so failures can
// surface it opaquely in AliasError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Response, string, error) {
	if c.token == "" {
		return nil, "", driven.ErrProviderNotConfigured
	}

	if query == nil {
		query = url.Values{}
	}
	if c.teamID != "" {
		query.Set("teamId", c.teamID)
	}

	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, "", fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	return resp, string(respBody), nil
}
