package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/web0101/protodir/internal/application"
	"github.com/web0101/protodir/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// okResponse acknowledges a mutation with no other payload.
type okResponse struct {
	OK bool `json:"ok"`
}

// loginRequest is the JSON body for the login endpoint.
type loginRequest struct {
	Password string `json:"password"`
}

// createSiteRequest is the JSON body for the create site endpoint.
type createSiteRequest struct {
	Name            string `json:"name"`
	Subdomain       string `json:"subdomain"`
	GitHubRepo      string `json:"githubRepo"`
	VercelProjectID string `json:"vercelProjectId"`
}

func (r createSiteRequest) toInput() application.CreateSiteInput {
	return application.CreateSiteInput{
		Name:            r.Name,
		Subdomain:       r.Subdomain,
		GitHubRepo:      r.GitHubRepo,
		VercelProjectID: r.VercelProjectID,
	}
}

// aliasOutcomeResponse reports the advisory alias result of a create.
type aliasOutcomeResponse struct {
	Attempted bool   `json:"attempted"`
	Added     bool   `json:"added"`
	Message   string `json:"message"`
}

func toAliasOutcomeResponse(o application.AliasOutcome) aliasOutcomeResponse {
	return aliasOutcomeResponse{
		Attempted: o.Attempted,
		Added:     o.Added,
		Message:   o.Message,
	}
}

// createSiteResponse is the payload for a successful create. The embedded
// Site marshals with the registry document's field names.
type createSiteResponse struct {
	Site  model.Site           `json:"site"`
	Alias aliasOutcomeResponse `json:"alias"`
}

// refreshAliasRequest is the JSON body for the refresh-alias endpoint.
type refreshAliasRequest struct {
	Subdomain       string `json:"subdomain"`
	VercelProjectID string `json:"vercelProjectId"`
}

// refreshAliasResponse is the payload for a successful alias refresh.
type refreshAliasResponse struct {
	OK               bool   `json:"ok"`
	Message          string `json:"message"`
	LatestDeployment string `json:"latestDeployment,omitempty"`
}

// healthChecksResponse is the payload of the per-site health endpoint.
type healthChecksResponse struct {
	OK        bool                     `json:"ok"`
	Checks    []application.SiteHealth `json:"healthChecks"`
	Timestamp string                   `json:"timestamp"`
}

// livenessResponse is the payload of the liveness endpoint.
type livenessResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
