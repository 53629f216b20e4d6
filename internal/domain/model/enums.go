package model

// SiteStatus represents the lifecycle state of a registered site. It is set
// at creation and never changed programmatically; operators edit it by hand
// in the registry document.
type SiteStatus string

const (
	SiteStatusActive    SiteStatus = "active"
	SiteStatusArchived  SiteStatus = "archived"
	SiteStatusGraduated SiteStatus = "graduated"
)

// HealthState classifies the result of a per-site alias health check.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateError     HealthState = "error"
	HealthStateNoProject HealthState = "no-project"
)
