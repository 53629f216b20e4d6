package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

func TestHealthService_CheckAll(t *testing.T) {
	registry := &mockRegistry{sites: []model.Site{
		{ID: "plain", Name: "Plain", Subdomain: "plain"},
		{ID: "good", Name: "Good", Subdomain: "good", VercelProjectID: "prj_good"},
		{ID: "detached", Name: "Detached", Subdomain: "detached", VercelProjectID: "prj_detached"},
		{ID: "broken", Name: "Broken", Subdomain: "broken", VercelProjectID: "prj_broken"},
	}}
	api := &mockDomainAPI{
		listFn: func(ctx context.Context, projectID string) ([]driven.ProjectDomain, error) {
			switch projectID {
			case "prj_good":
				return []driven.ProjectDomain{{Name: "good.web0101.com", Verified: true}}, nil
			case "prj_detached":
				return []driven.ProjectDomain{{Name: "other.web0101.com"}}, nil
			default:
				return nil, errBoom
			}
		},
		latestFn: func(ctx context.Context, projectID string) (*driven.Deployment, error) {
			return &driven.Deployment{URL: "good-abc123.vercel.app"}, nil
		},
	}
	svc := NewHealthService(registry, api, "web0101.com", true, false)

	checks, err := svc.CheckAll(context.Background())

	require.NoError(t, err)
	require.Len(t, checks, 4)

	assert.Equal(t, model.HealthStateNoProject, checks[0].Status)
	assert.Equal(t, "No Vercel Project ID configured", checks[0].Message)

	assert.Equal(t, model.HealthStateHealthy, checks[1].Status)
	assert.Equal(t, "Domain attached and active", checks[1].Message)
	assert.Equal(t, "Production", checks[1].CurrentAlias)
	assert.Equal(t, "good-abc123.vercel.app", checks[1].LatestDeployment)

	assert.Equal(t, model.HealthStateError, checks[2].Status)
	assert.Equal(t, "Domain not attached to project", checks[2].Message)

	assert.Equal(t, model.HealthStateError, checks[3].Status)
	assert.Equal(t, "Health check failed: boom", checks[3].Message)
}

func TestHealthService_CheckAll_RedirectAlias(t *testing.T) {
	registry := &mockRegistry{sites: []model.Site{
		{ID: "redir", Name: "Redir", Subdomain: "redir", VercelProjectID: "prj_redir"},
	}}
	api := &mockDomainAPI{
		listFn: func(ctx context.Context, projectID string) ([]driven.ProjectDomain, error) {
			return []driven.ProjectDomain{{Name: "redir.web0101.com", Redirect: "canonical.web0101.com"}}, nil
		},
	}
	svc := NewHealthService(registry, api, "web0101.com", true, false)

	checks, err := svc.CheckAll(context.Background())

	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, "canonical.web0101.com", checks[0].CurrentAlias)
}

func TestHealthService_CheckAll_RegistryFailure(t *testing.T) {
	registry := &mockRegistry{loadErr: errBoom}
	svc := NewHealthService(registry, &mockDomainAPI{}, "web0101.com", true, false)

	checks, err := svc.CheckAll(context.Background())

	assert.Nil(t, checks)
	require.Error(t, err)
}

func TestHealthService_Diagnose(t *testing.T) {
	svc := NewHealthService(&mockRegistry{}, &mockDomainAPI{}, "web0101.com", true, true)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	diag := svc.Diagnose(context.Background())

	assert.Equal(t, "web0101.com", diag.RootDomain)
	assert.True(t, diag.VercelConfigured)
	assert.True(t, diag.VercelTeamScoped)
	require.NotNil(t, diag.Provider)
	assert.True(t, diag.Provider.OK)
	assert.Equal(t, "web0101", diag.Provider.Username)
}

func TestHealthService_Diagnose_Unconfigured(t *testing.T) {
	svc := NewHealthService(&mockRegistry{}, &mockDomainAPI{}, "web0101.com", false, false)

	diag := svc.Diagnose(context.Background())

	assert.False(t, diag.VercelConfigured)
	assert.Nil(t, diag.Provider, "no credential probe without credentials")
}

func TestHealthService_Diagnose_ProbeFailure(t *testing.T) {
	api := &mockDomainAPI{
		accessFn: func(ctx context.Context) (*driven.ProviderIdentity, error) {
			return nil, errBoom
		},
	}
	svc := NewHealthService(&mockRegistry{}, api, "web0101.com", true, false)

	diag := svc.Diagnose(context.Background())

	require.NotNil(t, diag.Provider)
	assert.False(t, diag.Provider.OK)
	assert.Equal(t, "boom", diag.Provider.Error)
}
