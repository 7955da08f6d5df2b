package cms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"
)

// reservedSubdomains cannot be claimed by a site
var reservedSubdomains = map[string]bool{
	"www":    true,
	"api":    true,
	"admin":  true,
	"static": true,
}

type siteService struct {
	siteRepo   cmsRepo.SiteRepository
	cache      cmsSvc.SiteCache
	authorizer services.ResourceAuthorizer
	lookups    singleflight.Group
	logger     *slog.Logger
}

// NewSiteService creates a new site service
func NewSiteService(
	siteRepo cmsRepo.SiteRepository,
	cache cmsSvc.SiteCache,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.SiteService {
	return &siteService{
		siteRepo:   siteRepo,
		cache:      cache,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *siteService) CreateSite(ctx context.Context, req *cmsSvc.CreateSiteRequest) (*models.Site, error) {
	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
	req.SiteName = strings.TrimSpace(req.SiteName)
	req.OwnerName = strings.TrimSpace(req.OwnerName)

	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Subdomain, validation.Required, validation.By(validateSubdomain)),
		validation.Field(&req.SiteName, validation.Required, validation.Length(1, config.MaxSiteNameLength)),
		validation.Field(&req.OwnerName, validation.Required, validation.Length(1, config.MaxSiteNameLength)),
		validation.Field(&req.Profession, validation.Length(0, config.MaxSiteNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	site := &models.Site{
		CreatorID:  req.UserID,
		Subdomain:  req.Subdomain,
		SiteName:   req.SiteName,
		OwnerName:  req.OwnerName,
		Profession: strings.TrimSpace(req.Profession),
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}

	s.logger.Info("site created", "id", site.ID, "subdomain", site.Subdomain, "creator_id", site.CreatorID)
	return site, nil
}

// CheckSubdomain returns true when the subdomain is valid and unclaimed
func (s *siteService) CheckSubdomain(ctx context.Context, subdomain string) (bool, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if err := validateSubdomain(subdomain); err != nil {
		return false, &domain.ValidationError{Message: "subdomain: " + err.Error()}
	}

	_, err := s.siteRepo.GetBySubdomain(ctx, subdomain)
	if errors.Is(err, domain.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (s *siteService) GetSite(ctx context.Context, id string) (*models.Site, error) {
	return s.siteRepo.GetByID(ctx, id)
}

// ResolveSubdomain looks a site up through the cache. Concurrent misses for
// the same subdomain share one database query.
func (s *siteService) ResolveSubdomain(ctx context.Context, subdomain string) (*models.Site, error) {
	if site, ok, err := s.cache.Get(ctx, subdomain); err != nil {
		s.logger.Warn("site cache read failed", "subdomain", subdomain, "error", err)
	} else if ok {
		return site, nil
	}

	// the lookup is shared, so one caller cancelling must not fail the others
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.lookups.Do(subdomain, func() (interface{}, error) {
		site, err := s.siteRepo.GetBySubdomain(shared, subdomain)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(shared, site); err != nil {
			s.logger.Warn("site cache write failed", "subdomain", subdomain, "error", err)
		}
		return site, nil
	})
	if err != nil {
		return nil, err
	}
	site := *v.(*models.Site)
	return &site, nil
}

// UpdateSite edits display fields. Only the creator may do this.
func (s *siteService) UpdateSite(ctx context.Context, req *cmsSvc.UpdateSiteRequest) (*models.Site, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.SiteName, validation.NilOrNotEmpty, validation.Length(1, config.MaxSiteNameLength)),
		validation.Field(&req.OwnerName, validation.NilOrNotEmpty, validation.Length(1, config.MaxSiteNameLength)),
		validation.Field(&req.Profession, validation.Length(0, config.MaxSiteNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	id := req.ID
	if err := s.authorizer.CanManageSite(ctx, req.UserID, &id); err != nil {
		return nil, err
	}
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SiteName != nil {
		site.SiteName = strings.TrimSpace(*req.SiteName)
	}
	if req.OwnerName != nil {
		site.OwnerName = strings.TrimSpace(*req.OwnerName)
	}
	if req.Profession != nil {
		site.Profession = strings.TrimSpace(*req.Profession)
	}
	if req.IsOff != nil {
		site.IsOff = *req.IsOff
	}

	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, site.Subdomain); err != nil {
		s.logger.Warn("site cache invalidation failed", "subdomain", site.Subdomain, "error", err)
	}

	s.logger.Info("site updated", "id", site.ID, "subdomain", site.Subdomain)
	return site, nil
}

func (s *siteService) ListSites(ctx context.Context, userID string) ([]models.Site, error) {
	if userID == "" {
		return nil, &domain.UnauthorizedError{Message: "authentication required"}
	}
	return s.siteRepo.ListByCreator(ctx, userID)
}

func validateSubdomain(value interface{}) error {
	sub, _ := value.(string)
	if len(sub) > config.MaxSubdomainLength || !subdomainPattern.MatchString(sub) {
		return errors.New("must be 2-63 lowercase letters, digits or hyphens, not starting with a hyphen")
	}
	if strings.HasSuffix(sub, "-") {
		return errors.New("cannot end with a hyphen")
	}
	if reservedSubdomains[sub] {
		return errors.New("is reserved")
	}
	return nil
}
