// Package httphandler is the HTTP driving adapter serving the directory's
// REST surface and the admin session cookie gate.
package httphandler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/web0101/protodir/internal/application"
	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// Handler serves the REST API.
type Handler struct {
	sites         *application.SiteService
	health        *application.HealthService
	alias         *application.AliasService
	sessions      *application.SessionCodec
	adminPassword string
	rootDomain    string
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	sites *application.SiteService,
	health *application.HealthService,
	alias *application.AliasService,
	sessions *application.SessionCodec,
	adminPassword string,
	rootDomain string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sites:         sites,
		health:        health,
		alias:         alias,
		sessions:      sessions,
		adminPassword: adminPassword,
		rootDomain:    rootDomain,
		logger:        logger,
	}
}

// RegisterRoutes registers all API routes on the given mux. Admin routes are
// wrapped with the session cookie gate.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("GET /api/v1/sites", h.ListSites)
	mux.HandleFunc("GET /api/v1/sites/public", h.PublicSites)
	mux.HandleFunc("POST /api/v1/sites", h.requireAdmin(h.CreateSite))
	mux.HandleFunc("DELETE /api/v1/sites/{id}", h.requireAdmin(h.DeleteSite))
	mux.HandleFunc("GET /api/v1/sites/health", h.requireAdmin(h.SiteHealth))
	mux.HandleFunc("POST /api/v1/sites/refresh-alias", h.requireAdmin(h.RefreshAlias))
	mux.HandleFunc("GET /api/v1/diagnostics", h.requireAdmin(h.Diagnostics))
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// Login exchanges the shared admin password for a session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var password string
	if hasJSONBody(r) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		password = req.Password
	} else {
		password = r.FormValue("password")
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(h.adminPassword)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.setSessionCookie(w)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ListSites returns the authoritative site list. Unauthenticated; the
// response is never cacheable so a registry commit is visible immediately.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sites", "error", err)
		h.writeDomainError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, sites)
}

// PublicSites returns the site list from the eventually consistent public
// mirror. It always succeeds; the floor is an empty list.
func (h *Handler) PublicSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sites.PublicList(r.Context()))
}

// CreateSite registers a new site. Accepts a JSON or form body.
func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var input application.CreateSiteInput
	if hasJSONBody(r) {
		var req createSiteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		input = req.toInput()
	} else {
		input = application.CreateSiteInput{
			Name:            r.FormValue("name"),
			Subdomain:       r.FormValue("subdomain"),
			GitHubRepo:      r.FormValue("githubRepo"),
			VercelProjectID: r.FormValue("vercelProjectId"),
		}
	}

	site, outcome, err := h.sites.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create site", "subdomain", input.Subdomain, "error", err)
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSiteResponse{
		Site:  *site,
		Alias: toAliasOutcomeResponse(outcome),
	})
}

// DeleteSite removes a site by id, best-effort detaching its alias.
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing site id")
		return
	}

	if err := h.sites.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete site", "id", id, "error", err)
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// SiteHealth classifies every site's alias attachment against the provider.
func (h *Handler) SiteHealth(w http.ResponseWriter, r *http.Request) {
	checks, err := h.health.CheckAll(r.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, healthChecksResponse{
		OK:        true,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RefreshAlias detaches and reattaches a site's domain so the provider
// repoints it at the latest production deployment.
func (h *Handler) RefreshAlias(w http.ResponseWriter, r *http.Request) {
	var req refreshAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Subdomain == "" || req.VercelProjectID == "" {
		writeError(w, http.StatusBadRequest, "missing subdomain or vercelProjectId")
		return
	}

	domain := req.Subdomain + "." + h.rootDomain

	deploymentURL, err := h.alias.Realign(r.Context(), req.VercelProjectID, domain)
	if err != nil {
		h.logger.Error("alias refresh failed", "domain", domain, "error", err)
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshAliasResponse{
		OK:               true,
		Message:          "Successfully refreshed alias for " + domain,
		LatestDeployment: deploymentURL,
	})
}

// Diagnostics returns the structured configuration and provider probe.
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Diagnose(r.Context()))
}

// Health returns a simple liveness response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeDomainError maps domain errors to HTTP statuses per the directory's
// error taxonomy. Backing-store failures surface as 502: the upstream broke,
// not this process.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var persistErr *driven.PersistenceError
	var aliasErr *driven.AliasError

	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidSlug):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrSiteExists):
		writeError(w, http.StatusConflict, "subdomain already exists")
	case errors.Is(err, driven.ErrSiteNotFound):
		writeError(w, http.StatusNotFound, "site not found")
	case errors.Is(err, driven.ErrNoDeployment):
		writeError(w, http.StatusNotFound, "no production deployment found for this project")
	case errors.Is(err, driven.ErrProviderNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "hosting provider not configured")
	case errors.As(err, &persistErr):
		writeError(w, http.StatusBadGateway, persistErr.Error())
	case errors.As(err, &aliasErr):
		writeError(w, http.StatusBadGateway, aliasErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// hasJSONBody reports whether the request declares a JSON content type.
func hasJSONBody(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
