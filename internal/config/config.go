// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded once at process start
// and passed by reference into each component's constructor. Business logic
// never reads the environment directly.
type Config struct {
	// Admin access.
	AdminPassword string
	SessionTTL    time.Duration

	// Registry backing store (GitHub repository used as a database).
	GitHubToken    string
	GitHubOwner    string
	GitHubRepo     string
	RegistryPath   string
	RegistryBranch string

	// Hosting provider (Vercel). Token optional; alias operations are
	// disabled without it.
	VercelToken  string
	VercelTeamID string

	// Opt-in workaround for a suspected provider project-id inconsistency.
	// See application.AliasService.
	ProjectIDFallback bool

	// Pause between detach and reattach during a realign, to let the
	// provider's DNS state settle.
	AliasPropagationDelay time.Duration

	RootDomain  string
	ListenAddr  string
	CacheDBPath string
}

// HasVercelCredentials returns true when a provider API token is configured.
func (c *Config) HasVercelCredentials() bool {
	return c.VercelToken != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. Required: PROTODIR_ADMIN_PASSWORD, PROTODIR_GITHUB_TOKEN,
// PROTODIR_GITHUB_OWNER, PROTODIR_GITHUB_REPO. Optional variables with
// defaults: PROTODIR_REGISTRY_PATH (data/sites.json),
// PROTODIR_REGISTRY_BRANCH (main), PROTODIR_ROOT_DOMAIN (web0101.com),
// PROTODIR_SESSION_TTL (1h), PROTODIR_ALIAS_PROPAGATION_DELAY (1s),
// PROTODIR_LISTEN_ADDR (127.0.0.1:8080), PROTODIR_CACHE_DB_PATH
// (protodir.db). PROTODIR_VERCEL_TOKEN / PROTODIR_VERCEL_TEAM_ID and
// PROTODIR_PROJECT_ID_FALLBACK are optional.
func Load() (*Config, error) {
	adminPassword := os.Getenv("PROTODIR_ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, fmt.Errorf("PROTODIR_ADMIN_PASSWORD is required")
	}

	token := os.Getenv("PROTODIR_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("PROTODIR_GITHUB_TOKEN is required")
	}
	owner := os.Getenv("PROTODIR_GITHUB_OWNER")
	if owner == "" {
		return nil, fmt.Errorf("PROTODIR_GITHUB_OWNER is required")
	}
	repo := os.Getenv("PROTODIR_GITHUB_REPO")
	if repo == "" {
		return nil, fmt.Errorf("PROTODIR_GITHUB_REPO is required")
	}

	sessionTTL := time.Hour
	if v, ok := os.LookupEnv("PROTODIR_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PROTODIR_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		sessionTTL = parsed
	}

	propagationDelay := time.Second
	if v, ok := os.LookupEnv("PROTODIR_ALIAS_PROPAGATION_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PROTODIR_ALIAS_PROPAGATION_DELAY has invalid duration %q: %w", v, err)
		}
		propagationDelay = parsed
	}

	projectIDFallback := false
	if v, ok := os.LookupEnv("PROTODIR_PROJECT_ID_FALLBACK"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PROTODIR_PROJECT_ID_FALLBACK has invalid bool %q: %w", v, err)
		}
		projectIDFallback = parsed
	}

	return &Config{
		AdminPassword:         adminPassword,
		SessionTTL:            sessionTTL,
		GitHubToken:           token,
		GitHubOwner:           owner,
		GitHubRepo:            repo,
		RegistryPath:          envOrDefault("PROTODIR_REGISTRY_PATH", "data/sites.json"),
		RegistryBranch:        envOrDefault("PROTODIR_REGISTRY_BRANCH", "main"),
		VercelToken:           os.Getenv("PROTODIR_VERCEL_TOKEN"),
		VercelTeamID:          os.Getenv("PROTODIR_VERCEL_TEAM_ID"),
		ProjectIDFallback:     projectIDFallback,
		AliasPropagationDelay: propagationDelay,
		RootDomain:            envOrDefault("PROTODIR_ROOT_DOMAIN", "web0101.com"),
		ListenAddr:            envOrDefault("PROTODIR_LISTEN_ADDR", "127.0.0.1:8080"),
		CacheDBPath:           envOrDefault("PROTODIR_CACHE_DB_PATH", "protodir.db"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
