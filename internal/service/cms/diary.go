package cms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkstand/internal/config"
	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	"inkstand/internal/domain/repositories"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	"inkstand/internal/domain/services"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type diaryService struct {
	diaryRepo  cmsRepo.DiaryRepository
	tagRepo    cmsRepo.TagRepository
	tagService cmsSvc.TagService
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	now        func() time.Time
	logger     *slog.Logger
}

// NewDiaryService creates a new diary service
func NewDiaryService(
	diaryRepo cmsRepo.DiaryRepository,
	tagRepo cmsRepo.TagRepository,
	tagService cmsSvc.TagService,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) cmsSvc.DiaryService {
	return &diaryService{
		diaryRepo:  diaryRepo,
		tagRepo:    tagRepo,
		tagService: tagService,
		txManager:  txManager,
		authorizer: authorizer,
		now:        time.Now,
		logger:     logger,
	}
}

// CreateDiary stores a new diary with its summary and cover image derived
// from the content. Tags are resolved in the same transaction.
func (s *diaryService) CreateDiary(ctx context.Context, req *cmsSvc.CreateDiaryRequest) (*models.DiaryDetail, error) {
	req.Title = strings.TrimSpace(req.Title)
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxNodeNameLength)),
		validation.Field(&req.Content, validation.Required, validation.By(isBlockArray)),
		validation.Field(&req.RemedyAt, validation.Date(models.DateLayout)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	remedyAt, err := s.remedyDay(req.RemedyAt)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.CanManageSite(ctx, req.UserID, req.SiteID); err != nil {
		return nil, err
	}

	summary, err := models.Summarize(req.Content, config.SummaryBlockCount)
	if err != nil {
		return nil, fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
	}
	diary := &models.Diary{
		SiteID:     req.SiteID,
		CreatorID:  req.UserID,
		Title:      req.Title,
		Content:    req.Content,
		Summary:    summary,
		CoverImage: models.CoverImage(req.Content),
		RemedyAt:   remedyAt,
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		ids, err := s.tagService.ResolveTags(ctx, req.UserID, req.SiteID, req.Tags)
		if err != nil {
			return err
		}
		diary.TagIDs = ids
		return s.diaryRepo.Create(ctx, diary)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diary created", "id", diary.ID, "site_id", diary.SiteID, "remedy", diary.IsRemedy)
	return s.withTags(ctx, diary)
}

// remedyDay parses an optional backdate. It may not lie in the future.
func (s *diaryService) remedyDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation(models.DateLayout, raw, time.UTC)
	if err != nil {
		return nil, &domain.ValidationError{Message: "remedy_at must be YYYY-MM-DD"}
	}
	if day.After(s.now().UTC()) {
		return nil, &domain.ValidationError{Message: "remedy_at cannot be in the future"}
	}
	return &day, nil
}

// UpdateDiary changes the fields present in the request. New content
// recomputes the summary and, when the content holds an image, the cover.
func (s *diaryService) UpdateDiary(ctx context.Context, req *cmsSvc.UpdateDiaryRequest) (*models.DiaryDetail, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, config.MaxNodeNameLength)),
		validation.Field(&req.Content, validation.When(req.Content != nil, validation.By(isBlockArray))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	diary, err := s.diaryRepo.GetByID(ctx, req.ID, req.SiteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizer.CanModifyDiary(ctx, req.UserID, diary); err != nil {
		return nil, err
	}

	patch := models.DiaryPatch{Title: req.Title}
	if req.Content != nil {
		summary, err := models.Summarize(req.Content, config.SummaryBlockCount)
		if err != nil {
			return nil, fmt.Errorf("%w: content: %v", domain.ErrValidation, err)
		}
		patch.Content = req.Content
		patch.Summary = summary
		if cover := models.CoverImage(req.Content); cover != "" {
			patch.CoverImage = &cover
		}
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.Tags != nil {
			ids, err := s.tagService.ResolveTags(ctx, req.UserID, diary.SiteID, *req.Tags)
			if err != nil {
				return err
			}
			patch.TagIDs = &ids
		}
		if patch.Empty() {
			return nil
		}
		diary, err = s.diaryRepo.Update(ctx, diary.ID, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("diary updated", "id", diary.ID)
	return s.withTags(ctx, diary)
}

// GetDiary returns one diary with its content and tags
func (s *diaryService) GetDiary(ctx context.Context, id string, siteID *string, viewerID string) (*models.DiaryDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Message: "id is required"}
	}
	diary, err := s.diaryRepo.GetByID(ctx, id, siteID)
	if err != nil {
		return nil, err
	}
	if siteID == nil && diary.CreatorID != viewerID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("diary %s not found", id)}
	}
	return s.withTags(ctx, diary)
}

// ListDiaries returns one page of diaries, newest day first
func (s *diaryService) ListDiaries(ctx context.Context, req *cmsSvc.ListDiariesRequest) (*models.DiaryPage, error) {
	page, size := clampPage(req.Page, req.PageSize)
	result := &models.DiaryPage{
		Diaries:    []models.DiaryListItem{},
		Pagination: models.Pagination{CurrentPage: page, PageSize: size},
	}
	if req.SiteID == nil && req.ViewerID == "" {
		return result, nil
	}

	diaries, total, err := s.diaryRepo.List(ctx, req.SiteID, req.ViewerID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	items, err := s.listItems(ctx, diaries)
	if err != nil {
		return nil, err
	}
	result.Diaries = items
	result.Pagination.Total = total
	result.Pagination.TotalPages = (total + size - 1) / size
	return result, nil
}

func (s *diaryService) ListDates(ctx context.Context, siteID *string, viewerID string) ([]string, error) {
	if siteID == nil && viewerID == "" {
		return []string{}, nil
	}
	days, err := s.diaryRepo.ListDays(ctx, siteID, viewerID)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates, nil
}

func (s *diaryService) ListByDate(ctx context.Context, siteID *string, viewerID, date string) ([]models.DiaryListItem, error) {
	day, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return nil, &domain.ValidationError{Message: "date must be YYYY-MM-DD"}
	}
	if siteID == nil && viewerID == "" {
		return []models.DiaryListItem{}, nil
	}
	diaries, err := s.diaryRepo.ListByDay(ctx, siteID, viewerID, day)
	if err != nil {
		return nil, err
	}
	return s.listItems(ctx, diaries)
}

func (s *diaryService) Timeline(ctx context.Context, siteID *string, viewerID string) ([]models.TimelineMonth, error) {
	if siteID == nil && viewerID == "" {
		return []models.TimelineMonth{}, nil
	}
	diaries, err := s.diaryRepo.ListAll(ctx, siteID, viewerID)
	if err != nil {
		return nil, err
	}
	items, err := s.listItems(ctx, diaries)
	if err != nil {
		return nil, err
	}
	return groupByMonth(items), nil
}

// groupByMonth groups list items (already newest day first) into months,
// keeping their order
func groupByMonth(items []models.DiaryListItem) []models.TimelineMonth {
	months := []models.TimelineMonth{}
	for _, item := range items {
		month := item.Date[:len(models.MonthLayout)]
		if n := len(months); n == 0 || months[n-1].Month != month {
			months = append(months, models.TimelineMonth{Month: month, Diaries: []models.DiaryListItem{}})
		}
		last := &months[len(months)-1]
		last.Diaries = append(last.Diaries, item)
		last.Count++
	}
	return months
}

func (s *diaryService) listItems(ctx context.Context, diaries []models.Diary) ([]models.DiaryListItem, error) {
	tagsByID, err := tagsFor(ctx, s.tagRepo, diaryTagIDs(diaries))
	if err != nil {
		return nil, err
	}

	items := make([]models.DiaryListItem, 0, len(diaries))
	for i := range diaries {
		d := &diaries[i]
		item := models.DiaryListItem{
			ID:         d.ID,
			Title:      d.Title,
			CoverImage: d.CoverImage,
			Summary:    d.Summary,
			Tags:       []models.Tag{},
			Date:       d.Day().Format(models.DateLayout),
			IsRemedy:   d.IsRemedy,
			CreatedAt:  d.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  d.UpdatedAt.Format(time.RFC3339),
		}
		for _, id := range d.TagIDs {
			if tag, ok := tagsByID[id]; ok {
				item.Tags = append(item.Tags, tag)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *diaryService) withTags(ctx context.Context, diary *models.Diary) (*models.DiaryDetail, error) {
	tags, err := s.tagRepo.GetByIDs(ctx, diary.TagIDs)
	if err != nil {
		return nil, err
	}
	return &models.DiaryDetail{Diary: *diary, Tags: tags}, nil
}

func diaryTagIDs(diaries []models.Diary) []string {
	var ids []string
	for _, d := range diaries {
		ids = append(ids, d.TagIDs...)
	}
	return ids
}
