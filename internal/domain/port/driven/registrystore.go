// Package driven defines the driven ports (outbound dependencies) of the
// site directory and the error contracts their implementations honor.
package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/web0101/protodir/internal/domain/model"
)

// Sentinel errors surfaced by registry operations.
var (
	// ErrSiteExists indicates a site with the same id already exists in the
	// registry snapshot.
	ErrSiteExists = errors.New("site already exists")

	// ErrSiteNotFound indicates the requested site id is absent from the
	// registry snapshot.
	ErrSiteNotFound = errors.New("site not found")
)

// RegistryStore is the driven port for the version-control-hosted site
// registry: a single JSON document read together with an opaque concurrency
// token and written back conditioned on that token.
//
// Load returns the full ordered site list and the document's current content
// token; a missing document (first run) yields an empty list and an empty
// token, not an error.
//
// Commit re-reads the concurrency token immediately before writing and
// performs a conditional full-document write. A rejected write (token
// mismatch, auth failure, anything upstream) surfaces as *PersistenceError.
type RegistryStore interface {
	Load(ctx context.Context) (sites []model.Site, token string, err error)
	Commit(ctx context.Context, sites []model.Site, message string) error
}

// PersistenceError reports a registry backing-store failure, carrying the
// upstream status and text opaquely. The registry is the system of record:
// when a commit fails with this error, nothing happened.
type PersistenceError struct {
	Op     string // "load" or "commit"
	Status int    // upstream HTTP status, 0 when the call never completed
	Detail string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("registry %s failed: status %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("registry %s failed: %s", e.Op, e.Detail)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
