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
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type tagService struct {
	tagRepo    cmsRepo.TagRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewTagService creates a new tag service
func NewTagService(
	tagRepo cmsRepo.TagRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.TagService {
	return &tagService{
		tagRepo:    tagRepo,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *tagService) ListTags(ctx context.Context, siteID *string, viewerID string) ([]models.Tag, error) {
	if siteID == nil && viewerID == "" {
		return []models.Tag{}, nil
	}
	return s.tagRepo.ListBySite(ctx, siteID, viewerID)
}

func (s *tagService) CreateTag(ctx context.Context, req *cmsSvc.CreateTagRequest) (*models.Tag, error) {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxTagNameLength)),
		validation.Field(&req.Color, validation.Match(colorPattern)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.authorizer.CanManageSite(ctx, req.UserID, req.SiteID); err != nil {
		return nil, err
	}

	tag := &models.Tag{
		SiteID:    req.SiteID,
		CreatorID: req.UserID,
		Name:      req.Name,
		Color:     req.Color,
	}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "id", tag.ID, "name", tag.Name, "site_id", tag.SiteID)
	return tag, nil
}

// DeleteTag removes a tag and detaches it from every article
func (s *tagService) DeleteTag(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Message: "id is required"}
	}

	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanModifyTag(ctx, userID, tag); err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.tagRepo.RemoveFromContent(ctx, id); err != nil {
			return err
		}
		return s.tagRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag deleted", "id", id)
	return nil
}

// ResolveTags looks each tag up by (name, creator, site) and creates the missing ones.
// Duplicate names in refs resolve to one ID.
func (s *tagService) ResolveTags(ctx context.Context, userID string, siteID *string, refs []models.TagRef) ([]string, error) {
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		name := strings.TrimSpace(ref.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if len([]rune(name)) > config.MaxTagNameLength {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("tag %q is too long", name)}
		}

		tag, err := s.tagRepo.FindByName(ctx, name, userID, siteID)
		if err == nil {
			ids = append(ids, tag.ID)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		tag = &models.Tag{SiteID: siteID, CreatorID: userID, Name: name, Color: ref.Color}
		if ref.Color != "" && !colorPattern.MatchString(ref.Color) {
			tag.Color = ""
		}
		if err := s.tagRepo.Create(ctx, tag); err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) && conflict.ResourceID != "" {
				ids = append(ids, conflict.ResourceID)
				continue
			}
			return nil, err
		}
		s.logger.Debug("tag created for article", "id", tag.ID, "name", tag.Name)
		ids = append(ids, tag.ID)
	}

	return ids, nil
}
