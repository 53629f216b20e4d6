package application

import (
	"context"
	"fmt"
	"time"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// SiteHealth is the per-site result of an alias health check.
type SiteHealth struct {
	ID               string            `json:"id"`
	Subdomain        string            `json:"subdomain"`
	Name             string            `json:"name"`
	Status           model.HealthState `json:"status"`
	Message          string            `json:"message"`
	CurrentAlias     string            `json:"currentAlias,omitempty"`
	LatestDeployment string            `json:"latestDeployment,omitempty"`
	VercelProjectID  string            `json:"vercelProjectId,omitempty"`
}

// ProviderProbe is the result of testing the hosting-provider credentials.
type ProviderProbe struct {
	OK       bool   `json:"ok"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Diagnostics is the structured diagnostic snapshot exposed to operators.
// Every field is explicit; there is no open-ended payload.
type Diagnostics struct {
	Timestamp        time.Time      `json:"timestamp"`
	RootDomain       string         `json:"rootDomain"`
	VercelConfigured bool           `json:"vercelConfigured"`
	VercelTeamScoped bool           `json:"vercelTeamScoped"`
	Provider         *ProviderProbe `json:"provider,omitempty"`
}

// HealthService answers "is each site's alias actually attached" by querying
// the provider's live state per site. Classification is deliberately coarse:
// attached means healthy; there is no drift detection beyond attachment.
type HealthService struct {
	registry         driven.RegistryStore
	api              driven.DomainAPI
	rootDomain       string
	vercelConfigured bool
	vercelTeamScoped bool
	now              func() time.Time
}

// NewHealthService creates a HealthService with the required dependencies.
func NewHealthService(registry driven.RegistryStore, api driven.DomainAPI, rootDomain string, vercelConfigured, vercelTeamScoped bool) *HealthService {
	return &HealthService{
		registry:         registry,
		api:              api,
		rootDomain:       rootDomain,
		vercelConfigured: vercelConfigured,
		vercelTeamScoped: vercelTeamScoped,
		now:              time.Now,
	}
}

// CheckAll classifies every registered site as healthy, error, or
// no-project. Provider failures for one site degrade only that site's entry;
// the check continues through the rest of the list.
func (s *HealthService) CheckAll(ctx context.Context) ([]SiteHealth, error) {
	sites, _, err := s.registry.Load(ctx)
	if err != nil {
		return nil, err
	}

	checks := make([]SiteHealth, 0, len(sites))
	for _, site := range sites {
		checks = append(checks, s.checkSite(ctx, site))
	}

	return checks, nil
}

// checkSite classifies a single site against the provider's live state.
func (s *HealthService) checkSite(ctx context.Context, site model.Site) SiteHealth {
	health := SiteHealth{
		ID:              site.ID,
		Subdomain:       site.Subdomain,
		Name:            site.Name,
		VercelProjectID: site.VercelProjectID,
	}

	if site.VercelProjectID == "" {
		health.Status = model.HealthStateNoProject
		health.Message = "No Vercel Project ID configured"
		health.VercelProjectID = ""
		return health
	}

	domains, err := s.api.ListProjectDomains(ctx, site.VercelProjectID)
	if err != nil {
		health.Status = model.HealthStateError
		health.Message = fmt.Sprintf("Health check failed: %v", err)
		return health
	}

	var attached *driven.ProjectDomain
	want := site.Domain(s.rootDomain)
	for i, d := range domains {
		if d.Name == want {
			attached = &domains[i]
			break
		}
	}

	if attached == nil {
		health.Status = model.HealthStateError
		health.Message = "Domain not attached to project"
		return health
	}

	// Best-effort enrichment; a missing deployment does not flip the status.
	if dep, err := s.api.LatestProductionDeployment(ctx, site.VercelProjectID); err == nil && dep != nil {
		health.LatestDeployment = dep.URL
	}

	health.Status = model.HealthStateHealthy
	health.Message = "Domain attached and active"
	health.CurrentAlias = attached.Redirect
	if health.CurrentAlias == "" {
		health.CurrentAlias = "Production"
	}

	return health
}

// Diagnose reports configuration state and probes the provider credentials.
func (s *HealthService) Diagnose(ctx context.Context) Diagnostics {
	diag := Diagnostics{
		Timestamp:        s.now().UTC(),
		RootDomain:       s.rootDomain,
		VercelConfigured: s.vercelConfigured,
		VercelTeamScoped: s.vercelTeamScoped,
	}

	if !s.vercelConfigured {
		return diag
	}

	probe := &ProviderProbe{}
	identity, err := s.api.CheckAccess(ctx)
	if err != nil {
		probe.Error = err.Error()
	} else {
		probe.OK = true
		probe.Username = identity.Username
	}
	diag.Provider = probe

	return diag
}
