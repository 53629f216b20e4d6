// Package mirror implements the MirrorReader port against the public raw
// copy of the registry document. The mirror is eventually consistent with
// the backing store, so reads here may lag a recent commit; callers that
// need the authoritative snapshot use the RegistryStore instead.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MirrorReader = (*Reader)(nil)

// Reader fetches the public raw registry document over an in-memory caching
// transport. Serving a cached response is acceptable here: the mirror itself
// lags the source of truth, and the caller falls back through the local
// cache to an empty list anyway.
type Reader struct {
	httpClient *http.Client
	url        string
}

// NewReader creates a Reader for the raw public copy of the registry
// document hosted at raw.githubusercontent.com.
func NewReader(owner, repo, branch, path string) *Reader {
	client := httpcache.NewMemoryCacheTransport().Client()
	client.Timeout = 10 * time.Second

	return &Reader{
		httpClient: client,
		url: fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s",
			owner, repo, branch, path),
	}
}

// NewReaderWithURL creates a Reader against an arbitrary URL with the given
// http.Client. This constructor is intended for testing.
func NewReaderWithURL(httpClient *http.Client, url string) *Reader {
	return &Reader{httpClient: httpClient, url: url}
}

// Fetch retrieves and parses the mirrored site list.
func (r *Reader) Fetch(ctx context.Context) ([]model.Site, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building mirror request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching mirror: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching mirror: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading mirror response: %w", err)
	}

	var sites []model.Site
	if err := json.Unmarshal(body, &sites); err != nil {
		return nil, fmt.Errorf("parsing mirror document: %w", err)
	}
	if sites == nil {
		sites = []model.Site{}
	}

	return sites, nil
}
