package driven

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors surfaced by hosting-provider operations.
var (
	// ErrProviderNotConfigured indicates no provider API token is configured;
	// alias operations are unavailable.
	ErrProviderNotConfigured = errors.New("hosting provider token not configured")

	// ErrNoDeployment indicates a realign was requested for a project with no
	// successful production deployment.
	ErrNoDeployment = errors.New("no production deployment found")
)

// ProjectDomain is one domain association on a hosting project.
type ProjectDomain struct {
	Name     string
	Redirect string
	Verified bool
}

// Deployment is a deployed artifact of a hosting project.
type Deployment struct {
	UID   string
	URL   string
	State string
}

// ProviderIdentity identifies the account behind the configured API token.
// Used only by the diagnostics probe.
type ProviderIdentity struct {
	ID       string
	Username string
}

// DomainAPI is the driven port for the hosting provider's domain and
// deployment API. All calls reflect the provider's live state; responses are
// never served from a cache.
//
// AddProjectDomain is idempotent: an "already associated" response counts as
// success with added=true. RemoveProjectDomain tolerates "not found" as
// success with removed=false. Every other non-success response surfaces as
// *AliasError.
//
// LatestProductionDeployment returns nil, nil when the project has no
// successfully deployed production artifact.
type DomainAPI interface {
	AddProjectDomain(ctx context.Context, projectID, domain string) (added bool, err error)
	RemoveProjectDomain(ctx context.Context, projectID, domain string) (removed bool, err error)
	ListProjectDomains(ctx context.Context, projectID string) ([]ProjectDomain, error)
	LatestProductionDeployment(ctx context.Context, projectID string) (*Deployment, error)
	CheckAccess(ctx context.Context) (*ProviderIdentity, error)
}

// AliasError reports a hosting-provider call failure with the provider's
// status and body. Always non-fatal to the registry mutation that triggered
// it: callers downgrade it to an advisory message.
type AliasError struct {
	Op     string
	Status int
	Body   string
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("provider %s failed: status %d: %s", e.Op, e.Status, e.Body)
}
