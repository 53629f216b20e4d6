package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/web0101/protodir/internal/domain/model"
	"github.com/web0101/protodir/internal/domain/port/driven"
)

// CreateSiteInput is the operator-provided input for registering a site.
type CreateSiteInput struct {
	Name            string
	Subdomain       string
	GitHubRepo      string
	VercelProjectID string
}

// AliasOutcome reports what happened to the alias side effect of a create.
// It is advisory only: an alias failure never aborts the registry mutation.
type AliasOutcome struct {
	Attempted bool
	Added     bool
	Message   string
}

// SiteService composes the registry store and the alias manager into the
// user-facing directory operations. The registry commit is the operation of
// record for every mutation; alias calls are fire-and-forget relative to it.
type SiteService struct {
	registry   driven.RegistryStore
	alias      *AliasService
	mirror     driven.MirrorReader
	cache      driven.MirrorCache
	rootDomain string
	logger     *slog.Logger
	now        func() time.Time
}

// NewSiteService creates a SiteService with all required dependencies.
func NewSiteService(
	registry driven.RegistryStore,
	alias *AliasService,
	mirror driven.MirrorReader,
	cache driven.MirrorCache,
	rootDomain string,
	logger *slog.Logger,
) *SiteService {
	return &SiteService{
		registry:   registry,
		alias:      alias,
		mirror:     mirror,
		cache:      cache,
		rootDomain: rootDomain,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns the authoritative site list from the registry backing store.
// No session or alias interaction.
func (s *SiteService) List(ctx context.Context) ([]model.Site, error) {
	sites, _, err := s.registry.Load(ctx)
	return sites, err
}

// PublicList returns the site list from the eventually consistent public
// mirror, refreshing the local cache on success. Fallback order is fixed:
// mirror, then cached snapshot, then the empty list. It never fails; the
// empty list is the hard floor.
func (s *SiteService) PublicList(ctx context.Context) []model.Site {
	sites, err := s.mirror.Fetch(ctx)
	if err == nil {
		if cacheErr := s.cache.Put(ctx, sites, s.now().UTC()); cacheErr != nil {
			s.logger.Warn("mirror cache refresh failed", "error", cacheErr)
		}
		return sites
	}
	s.logger.Warn("public mirror unreachable, falling back to cache", "error", err)

	cached, fetchedAt, err := s.cache.Get(ctx)
	if err == nil {
		s.logger.Info("serving cached mirror snapshot", "fetched_at", fetchedAt)
		return cached
	}

	return []model.Site{}
}

// Create registers a new site: validates input, derives the slug, checks it
// against a fresh registry snapshot, attempts the alias attachment when a
// hosting project is given, and commits the appended list. The alias outcome
// is captured, never fatal; a commit failure aborts with no partial effect.
func (s *SiteService) Create(ctx context.Context, input CreateSiteInput) (*model.Site, AliasOutcome, error) {
	if input.Name == "" {
		return nil, AliasOutcome{}, fmt.Errorf("name: %w", model.ErrInvalidInput)
	}
	if input.Subdomain == "" {
		return nil, AliasOutcome{}, fmt.Errorf("subdomain: %w", model.ErrInvalidInput)
	}

	slug := model.Slugify(input.Subdomain)
	if err := model.ValidateSlug(slug); err != nil {
		return nil, AliasOutcome{}, err
	}

	sites, _, err := s.registry.Load(ctx)
	if err != nil {
		return nil, AliasOutcome{}, err
	}
	for _, existing := range sites {
		if existing.ID == slug {
			return nil, AliasOutcome{}, fmt.Errorf("%q: %w", slug, driven.ErrSiteExists)
		}
	}

	site := model.Site{
		ID:              slug,
		Name:            input.Name,
		Subdomain:       slug,
		URL:             "https://" + slug + "." + s.rootDomain,
		GitHubRepo:      input.GitHubRepo,
		VercelProjectID: input.VercelProjectID,
		CreatedAt:       s.now().UTC(),
		Status:          model.SiteStatusActive,
	}

	outcome := AliasOutcome{Message: "No Project ID provided, skipping alias setup"}
	if input.VercelProjectID != "" {
		outcome = s.attachAlias(ctx, input.VercelProjectID, site.Domain(s.rootDomain))
	}

	message := fmt.Sprintf("Add site: %s (%s)", site.Name, site.ID)
	if err := s.registry.Commit(ctx, append(sites, site), message); err != nil {
		return nil, AliasOutcome{}, err
	}

	s.logger.Info("site created", "id", site.ID, "url", site.URL, "alias", outcome.Message)

	return &site, outcome, nil
}

// Delete removes a site by id, best-effort detaching its alias first. The
// detach failure path is logged and ignored; the registry removal proceeds
// regardless.
func (s *SiteService) Delete(ctx context.Context, id string) error {
	sites, _, err := s.registry.Load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, site := range sites {
		if site.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%q: %w", id, driven.ErrSiteNotFound)
	}

	site := sites[idx]
	if site.VercelProjectID != "" {
		removed, err := s.alias.Detach(ctx, site.VercelProjectID, site.Domain(s.rootDomain))
		if err != nil {
			s.logger.Warn("alias detach failed, removing site anyway",
				"id", site.ID, "error", err)
		} else if !removed {
			s.logger.Info("alias was not attached, nothing to detach", "id", site.ID)
		}
	}

	remainder := make([]model.Site, 0, len(sites)-1)
	remainder = append(remainder, sites[:idx]...)
	remainder = append(remainder, sites[idx+1:]...)

	message := fmt.Sprintf("Remove site: %s (%s)", site.Name, site.ID)
	if err := s.registry.Commit(ctx, remainder, message); err != nil {
		return err
	}

	s.logger.Info("site deleted", "id", site.ID)

	return nil
}

// attachAlias attempts the domain attachment and folds the result, success
// or failure, into an advisory outcome.
func (s *SiteService) attachAlias(ctx context.Context, projectID, domain string) AliasOutcome {
	added, err := s.alias.Attach(ctx, projectID, domain)
	if err != nil {
		s.logger.Warn("alias attach failed, site will be registered without it",
			"domain", domain, "error", err)
		return AliasOutcome{
			Attempted: true,
			Message:   fmt.Sprintf("Alias setup failed: %v", err),
		}
	}

	return AliasOutcome{
		Attempted: true,
		Added:     added,
		Message:   fmt.Sprintf("Domain alias %s attached", domain),
	}
}
