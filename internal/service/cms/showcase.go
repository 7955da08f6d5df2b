package cms

import (
	"context"
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
)

type showcaseService struct {
	carouselRepo cmsRepo.CarouselRepository
	projectRepo  cmsRepo.ProjectRepository
	authorizer   services.ResourceAuthorizer
	logger       *slog.Logger
}

// NewShowcaseService creates a new carousel and project service
func NewShowcaseService(
	carouselRepo cmsRepo.CarouselRepository,
	projectRepo cmsRepo.ProjectRepository,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.ShowcaseService {
	return &showcaseService{
		carouselRepo: carouselRepo,
		projectRepo:  projectRepo,
		authorizer:   authorizer,
		logger:       logger,
	}
}

var textRules = []validation.Rule{validation.Length(1, config.MaxShowcaseTextLength)}

var buttonsRule = validation.By(func(value interface{}) error {
	var buttons []models.CarouselButton
	switch v := value.(type) {
	case []models.CarouselButton:
		buttons = v
	case *[]models.CarouselButton:
		if v == nil {
			return nil
		}
		buttons = *v
	}
	if len(buttons) > config.MaxCarouselButtons {
		return fmt.Errorf("at most %d buttons", config.MaxCarouselButtons)
	}
	for i, b := range buttons {
		if strings.TrimSpace(b.Text) == "" || strings.TrimSpace(b.URL) == "" {
			return fmt.Errorf("button %d needs text and url", i)
		}
		if b.Color != "" && !colorPattern.MatchString(b.Color) {
			return fmt.Errorf("button %d color must be a hex color", i)
		}
	}
	return nil
})

func (s *showcaseService) ListCarousels(ctx context.Context, siteID *string, viewerID string) ([]models.Carousel, error) {
	if siteID == nil && viewerID == "" {
		return []models.Carousel{}, nil
	}
	return s.carouselRepo.List(ctx, siteID, viewerID)
}

func (s *showcaseService) CreateCarousel(ctx context.Context, req *cmsSvc.CreateCarouselRequest) (*models.Carousel, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Subtitle = strings.TrimSpace(req.Subtitle)
	req.Desc = strings.TrimSpace(req.Desc)
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, append([]validation.Rule{validation.Required}, textRules...)...),
		validation.Field(&req.Subtitle, append([]validation.Rule{validation.Required}, textRules...)...),
		validation.Field(&req.Desc, append([]validation.Rule{validation.Required}, textRules...)...),
		validation.Field(&req.Buttons, buttonsRule),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanManageSite(ctx, req.UserID, req.SiteID); err != nil {
		return nil, err
	}

	carousel := &models.Carousel{
		SiteID:    req.SiteID,
		CreatorID: req.UserID,
		Title:     req.Title,
		Subtitle:  req.Subtitle,
		Desc:      req.Desc,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Buttons:   req.Buttons,
	}
	if carousel.Buttons == nil {
		carousel.Buttons = []models.CarouselButton{}
	}
	if err := s.carouselRepo.Create(ctx, carousel); err != nil {
		return nil, err
	}

	s.logger.Info("carousel created", "id", carousel.ID, "site_id", carousel.SiteID)
	return carousel, nil
}

// UpdateCarousel changes the fields present in the request. An empty buttons
// list keeps the current buttons.
func (s *showcaseService) UpdateCarousel(ctx context.Context, req *cmsSvc.UpdateCarouselRequest) (*models.Carousel, error) {
	trimAll(req.Title, req.Subtitle, req.Desc, req.ImageURL)
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Title, append([]validation.Rule{validation.NilOrNotEmpty}, textRules...)...),
		validation.Field(&req.Subtitle, append([]validation.Rule{validation.NilOrNotEmpty}, textRules...)...),
		validation.Field(&req.Desc, append([]validation.Rule{validation.NilOrNotEmpty}, textRules...)...),
		validation.Field(&req.Buttons, buttonsRule),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	carousel, err := s.carouselRepo.GetByID(ctx, req.ID, req.SiteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanModifyShowcase(ctx, req.UserID, carousel.CreatorID, "carousel", carousel.ID); err != nil {
		return nil, err
	}

	patch := models.CarouselPatch{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Desc:     req.Desc,
		ImageURL: req.ImageURL,
	}
	if req.Buttons != nil && len(*req.Buttons) > 0 {
		patch.Buttons = req.Buttons
	}
	if patch.Empty() {
		return carousel, nil
	}

	carousel, err = s.carouselRepo.Update(ctx, carousel.ID, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("carousel updated", "id", carousel.ID)
	return carousel, nil
}

func (s *showcaseService) DeleteCarousel(ctx context.Context, userID string, siteID *string, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Message: "id is required"}
	}
	carousel, err := s.carouselRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanModifyShowcase(ctx, userID, carousel.CreatorID, "carousel", carousel.ID); err != nil {
		return err
	}
	if err := s.carouselRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("carousel deleted", "id", id)
	return nil
}

func (s *showcaseService) ListProjects(ctx context.Context, siteID *string, viewerID, category string) ([]models.Project, error) {
	if siteID == nil && viewerID == "" {
		return []models.Project{}, nil
	}
	return s.projectRepo.List(ctx, siteID, viewerID, strings.TrimSpace(category))
}

func (s *showcaseService) CreateProject(ctx context.Context, req *cmsSvc.CreateProjectRequest) (*models.Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.ButtonURL = strings.TrimSpace(req.ButtonURL)
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, append([]validation.Rule{validation.Required}, textRules...)...),
		validation.Field(&req.Category, validation.Required, validation.Length(1, config.MaxTagNameLength)),
		validation.Field(&req.ButtonURL, append([]validation.Rule{validation.Required}, textRules...)...),
		validation.Field(&req.Content, validation.Required, validation.By(isBlockArray)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.authorizer.CanManageSite(ctx, req.UserID, req.SiteID); err != nil {
		return nil, err
	}

	project := &models.Project{
		SiteID:    req.SiteID,
		CreatorID: req.UserID,
		Title:     req.Title,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Category:  req.Category,
		ButtonURL: req.ButtonURL,
		Content:   req.Content,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "category", project.Category, "site_id", project.SiteID)
	return project, nil
}

func (s *showcaseService) UpdateProject(ctx context.Context, req *cmsSvc.UpdateProjectRequest) (*models.Project, error) {
	trimAll(req.Title, req.ImageURL, req.Category, req.ButtonURL)
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Title, append([]validation.Rule{validation.NilOrNotEmpty}, textRules...)...),
		validation.Field(&req.Category, validation.NilOrNotEmpty, validation.Length(1, config.MaxTagNameLength)),
		validation.Field(&req.ButtonURL, append([]validation.Rule{validation.NilOrNotEmpty}, textRules...)...),
		validation.Field(&req.Content, validation.When(req.Content != nil, validation.By(isBlockArray))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ID, req.SiteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanModifyShowcase(ctx, req.UserID, project.CreatorID, "project", project.ID); err != nil {
		return nil, err
	}

	patch := models.ProjectPatch{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		Category:  req.Category,
		ButtonURL: req.ButtonURL,
		Content:   req.Content,
	}
	if patch.Empty() {
		return project, nil
	}

	project, err = s.projectRepo.Update(ctx, project.ID, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project updated", "id", project.ID)
	return project, nil
}

func (s *showcaseService) DeleteProject(ctx context.Context, userID string, siteID *string, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Message: "id is required"}
	}
	project, err := s.projectRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return err
	}
	if err := s.authorizer.CanModifyShowcase(ctx, userID, project.CreatorID, "project", project.ID); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "id", id)
	return nil
}

func (s *showcaseService) LikeProject(ctx context.Context, siteID *string, id string) (int, error) {
	if strings.TrimSpace(id) == "" {
		return 0, &domain.ValidationError{Message: "id is required"}
	}
	return s.projectRepo.Like(ctx, id, siteID)
}

// trimAll trims each present string in place
func trimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
