package vercel_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web0101/protodir/internal/adapter/driven/vercel"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *vercel.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return vercel.NewClientWithHTTPClient(server.Client(), server.URL, "test-token", "")
}

func TestAddProjectDomain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/projects/prj_abc/domains", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "demo.web0101.com", body["name"])

		fmt.Fprint(w, `{"name": "demo.web0101.com"}`)
	})
	client := newTestClient(t, mux)

	added, err := client.AddProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.NoError(t, err)
	assert.True(t, added)
}

func TestAddProjectDomain_AlreadyAttached(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/projects/prj_abc/domains", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error": {"code": "domain_already_in_use"}}`)
	})
	client := newTestClient(t, mux)

	added, err := client.AddProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.NoError(t, err, "conflict means the desired state already holds")
	assert.True(t, added)
}

func TestAddProjectDomain_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/projects/prj_abc/domains", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": "forbidden"}}`)
	})
	client := newTestClient(t, mux)

	_, err := client.AddProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.Error(t, err)
	var aliasErr *driven.AliasError
	require.ErrorAs(t, err, &aliasErr)
	assert.Equal(t, http.StatusForbidden, aliasErr.Status)
	assert.Contains(t, aliasErr.Body, "forbidden")
}

func TestRemoveProjectDomain(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v2/projects/prj_abc/domains/demo.web0101.com", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	client := newTestClient(t, mux)

	removed, err := client.RemoveProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.NoError(t, err)
	assert.True(t, removed)
}

func TestRemoveProjectDomain_NotAttached(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /v2/projects/prj_abc/domains/demo.web0101.com", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": "not_found"}}`)
	})
	client := newTestClient(t, mux)

	removed, err := client.RemoveProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.NoError(t, err, "absent domain means nothing to detach")
	assert.False(t, removed)
}

func TestListProjectDomains(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v9/projects/prj_abc/domains", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"domains": [
			{"name": "demo.web0101.com", "verified": true},
			{"name": "www.demo.web0101.com", "redirect": "demo.web0101.com", "verified": true}
		]}`)
	})
	client := newTestClient(t, mux)

	domains, err := client.ListProjectDomains(context.Background(), "prj_abc")

	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "demo.web0101.com", domains[0].Name)
	assert.True(t, domains[0].Verified)
	assert.Equal(t, "demo.web0101.com", domains[1].Redirect)
}

func TestLatestProductionDeployment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v6/deployments", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "prj_abc", q.Get("projectId"))
		assert.Equal(t, "production", q.Get("target"))
		assert.Equal(t, "READY", q.Get("state"))
		assert.Equal(t, "1", q.Get("limit"))

		fmt.Fprint(w, `{"deployments": [
			{"uid": "dpl_1", "url": "demo-abc123.vercel.app", "state": "READY"}
		]}`)
	})
	client := newTestClient(t, mux)

	dep, err := client.LatestProductionDeployment(context.Background(), "prj_abc")

	require.NoError(t, err)
	require.NotNil(t, dep)
	assert.Equal(t, "dpl_1", dep.UID)
	assert.Equal(t, "demo-abc123.vercel.app", dep.URL)
}

func TestLatestProductionDeployment_NoneExists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v6/deployments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"deployments": []}`)
	})
	client := newTestClient(t, mux)

	dep, err := client.LatestProductionDeployment(context.Background(), "prj_abc")

	require.NoError(t, err)
	assert.Nil(t, dep)
}

func TestCheckAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/user", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user": {"id": "user_1", "username": "web0101"}}`)
	})
	client := newTestClient(t, mux)

	identity, err := client.CheckAccess(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "user_1", identity.ID)
	assert.Equal(t, "web0101", identity.Username)
}

func TestTeamScopedRequests(t *testing.T) {
	var gotTeam string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/user", func(w http.ResponseWriter, r *http.Request) {
		gotTeam = r.URL.Query().Get("teamId")
		fmt.Fprint(w, `{"user": {"id": "user_1", "username": "web0101"}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := vercel.NewClientWithHTTPClient(server.Client(), server.URL, "test-token", "team_xyz")

	_, err := client.CheckAccess(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "team_xyz", gotTeam)
}

func TestUnconfiguredClient(t *testing.T) {
	client := vercel.NewClientWithHTTPClient(http.DefaultClient, "http://unused.invalid", "", "")

	_, err := client.AddProjectDomain(context.Background(), "prj_abc", "demo.web0101.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrProviderNotConfigured)
}
