package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/web0101/protodir/internal/domain/port/driven"
)

// projectIDPattern is the provider-documented project id shape: a "prj_"
// prefix followed by an alphanumeric suffix.
var projectIDPattern = regexp.MustCompile(`^prj_[A-Za-z0-9]{24,}$`)

// AliasService owns the side-effect half of site registration: attaching and
// detaching DNS aliases on the hosting provider, and the compound realign
// operation. Every failure it returns is non-fatal by contract; callers
// downgrade errors to advisory messages rather than aborting the registry
// mutation that triggered the call.
type AliasService struct {
	api              driven.DomainAPI
	logger           *slog.Logger
	propagationDelay time.Duration

	// quirkFallback enables the TD<->Tb project-id substitution retry on 404.
	// This is a guessed workaround for a provider inconsistency observed in
	// the wild, not a documented contract; it is off by default and every use
	// is logged.
	quirkFallback bool
}

// NewAliasService creates an AliasService. propagationDelay is the pause
// between detach and reattach during a realign.
func NewAliasService(api driven.DomainAPI, propagationDelay time.Duration, quirkFallback bool, logger *slog.Logger) *AliasService {
	return &AliasService{
		api:              api,
		logger:           logger,
		propagationDelay: propagationDelay,
		quirkFallback:    quirkFallback,
	}
}

// Attach associates domain with the hosting project. Attachment is
// idempotent: an "already associated" provider response is success.
func (s *AliasService) Attach(ctx context.Context, projectID, domain string) (bool, error) {
	added, err := s.api.AddProjectDomain(ctx, projectID, domain)
	if err == nil {
		return added, nil
	}

	if variant, ok := s.quirkVariant(projectID, err); ok {
		s.logger.Warn("project id not found, retrying with known provider quirk variant",
			"project_id", projectID,
			"variant", variant,
		)
		return s.api.AddProjectDomain(ctx, variant, domain)
	}

	return false, err
}

// Detach removes the domain association. A provider "not found" is success
// with removed=false: there was nothing to do.
func (s *AliasService) Detach(ctx context.Context, projectID, domain string) (bool, error) {
	return s.api.RemoveProjectDomain(ctx, projectID, domain)
}

// Realign forces the provider to repoint the domain at the project's latest
// production deployment by detaching and reattaching it. It is best-effort
// and not atomic: an interruption between the two calls leaves the domain
// unattached until the operation is retried. That is an accepted operational
// risk, surfaced rather than papered over.
//
// Returns the deployment URL the domain now points at, or ErrNoDeployment
// when the project has no successful production deployment.
func (s *AliasService) Realign(ctx context.Context, projectID, domain string) (string, error) {
	dep, err := s.api.LatestProductionDeployment(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("looking up production deployment: %w", err)
	}
	if dep == nil {
		return "", driven.ErrNoDeployment
	}

	if _, err := s.api.RemoveProjectDomain(ctx, projectID, domain); err != nil {
		// Tolerated: the reattach below either succeeds anyway or reports the
		// real problem.
		s.logger.Warn("realign detach failed, continuing", "domain", domain, "error", err)
	}

	// Give the provider's DNS state a moment to settle before reattaching.
	if s.propagationDelay > 0 {
		select {
		case <-time.After(s.propagationDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if _, err := s.api.AddProjectDomain(ctx, projectID, domain); err != nil {
		return "", fmt.Errorf("reattaching domain: %w", err)
	}

	s.logger.Info("alias realigned", "domain", domain, "deployment", dep.URL)

	return dep.URL, nil
}

// quirkVariant returns the TD<->Tb substituted project id when the fallback
// is enabled, the original call failed with a provider 404, and the id
// matches the documented format. Exactly one substitution is attempted.
func (s *AliasService) quirkVariant(projectID string, err error) (string, bool) {
	if !s.quirkFallback {
		return "", false
	}

	var aliasErr *driven.AliasError
	if !errors.As(err, &aliasErr) || aliasErr.Status != http.StatusNotFound {
		return "", false
	}
	if !projectIDPattern.MatchString(projectID) {
		return "", false
	}

	switch {
	case strings.Contains(projectID, "TD"):
		return strings.Replace(projectID, "TD", "Tb", 1), true
	case strings.Contains(projectID, "Tb"):
		return strings.Replace(projectID, "Tb", "TD", 1), true
	default:
		return "", false
	}
}
