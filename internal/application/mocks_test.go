package application

import (
	"context"
	"errors"
	"time"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// mockRegistry is an in-memory RegistryStore. Commit replaces the stored
// list on success so tests can assert the post-state.
type mockRegistry struct {
	sites     []model.Site
	sha       string
	loadErr   error
	commitErr error

	commits  int
	messages []string
}

var _ driven.RegistryStore = (*mockRegistry)(nil)

func (m *mockRegistry) Load(ctx context.Context) ([]model.Site, string, error) {
	if m.loadErr != nil {
		return nil, "", m.loadErr
	}
	return append([]model.Site(nil), m.sites...), m.sha, nil
}

func (m *mockRegistry) Commit(ctx context.Context, sites []model.Site, message string) error {
	m.commits++
	m.messages = append(m.messages, message)
	if m.commitErr != nil {
		return m.commitErr
	}
	m.sites = append([]model.Site(nil), sites...)
	return nil
}

// mockDomainAPI implements driven.DomainAPI with overridable behavior per
// method. Unset methods succeed with zero values.
type mockDomainAPI struct {
	addFn    func(ctx context.Context, projectID, domain string) (bool, error)
	removeFn func(ctx context.Context, projectID, domain string) (bool, error)
	listFn   func(ctx context.Context, projectID string) ([]driven.ProjectDomain, error)
	latestFn func(ctx context.Context, projectID string) (*driven.Deployment, error)
	accessFn func(ctx context.Context) (*driven.ProviderIdentity, error)

	addCalls    []string
	removeCalls []string
}

var _ driven.DomainAPI = (*mockDomainAPI)(nil)

func (m *mockDomainAPI) AddProjectDomain(ctx context.Context, projectID, domain string) (bool, error) {
	m.addCalls = append(m.addCalls, projectID)
	if m.addFn != nil {
		return m.addFn(ctx, projectID, domain)
	}
	return true, nil
}

func (m *mockDomainAPI) RemoveProjectDomain(ctx context.Context, projectID, domain string) (bool, error) {
	m.removeCalls = append(m.removeCalls, projectID)
	if m.removeFn != nil {
		return m.removeFn(ctx, projectID, domain)
	}
	return true, nil
}

func (m *mockDomainAPI) ListProjectDomains(ctx context.Context, projectID string) ([]driven.ProjectDomain, error) {
	if m.listFn != nil {
		return m.listFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockDomainAPI) LatestProductionDeployment(ctx context.Context, projectID string) (*driven.Deployment, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockDomainAPI) CheckAccess(ctx context.Context) (*driven.ProviderIdentity, error) {
	if m.accessFn != nil {
		return m.accessFn(ctx)
	}
	return &driven.ProviderIdentity{ID: "user_1", Username: "web0101"}, nil
}

// mockMirror implements driven.MirrorReader.
type mockMirror struct {
	sites []model.Site
	err   error
}

var _ driven.MirrorReader = (*mockMirror)(nil)

func (m *mockMirror) Fetch(ctx context.Context) ([]model.Site, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sites, nil
}

// mockCache implements driven.MirrorCache.
type mockCache struct {
	sites     []model.Site
	fetchedAt time.Time
	getErr    error
	putErr    error

	puts int
}

var _ driven.MirrorCache = (*mockCache)(nil)

func (m *mockCache) Put(ctx context.Context, sites []model.Site, fetchedAt time.Time) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.sites = append([]model.Site(nil), sites...)
	m.fetchedAt = fetchedAt
	return nil
}

func (m *mockCache) Get(ctx context.Context) ([]model.Site, time.Time, error) {
	if m.getErr != nil {
		return nil, time.Time{}, m.getErr
	}
	return m.sites, m.fetchedAt, nil
}

// errBoom is a generic failure injected by tests.
var errBoom = errors.New("boom")
