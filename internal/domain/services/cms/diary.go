package cms

import (
	"context"
	"encoding/json"

	models "inkstand/internal/domain/models/cms"
)

// DiaryService manages journal entries. Reads on a tenant site are public;
// on the primary host a viewer sees only their own diaries.
type DiaryService interface {
	CreateDiary(ctx context.Context, req *CreateDiaryRequest) (*models.DiaryDetail, error)
	UpdateDiary(ctx context.Context, req *UpdateDiaryRequest) (*models.DiaryDetail, error)
	GetDiary(ctx context.Context, id string, siteID *string, viewerID string) (*models.DiaryDetail, error)
	ListDiaries(ctx context.Context, req *ListDiariesRequest) (*models.DiaryPage, error)
	// ListDates returns each YYYY-MM-DD holding a diary, newest first
	ListDates(ctx context.Context, siteID *string, viewerID string) ([]string, error)
	ListByDate(ctx context.Context, siteID *string, viewerID, date string) ([]models.DiaryListItem, error)
	// Timeline groups every diary by month, newest month first
	Timeline(ctx context.Context, siteID *string, viewerID string) ([]models.TimelineMonth, error)
}

// CreateDiaryRequest creates a diary. RemedyAt (YYYY-MM-DD) backdates it.
type CreateDiaryRequest struct {
	UserID   string          `json:"-"`
	SiteID   *string         `json:"-"`
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content"`
	Tags     []models.TagRef `json:"tags"`
	RemedyAt string          `json:"remedy_at,omitempty"`
}

// UpdateDiaryRequest changes the fields that are present
type UpdateDiaryRequest struct {
	UserID  string           `json:"-"`
	SiteID  *string          `json:"-"`
	ID      string           `json:"id"`
	Title   *string          `json:"title"`
	Content json.RawMessage  `json:"content"`
	Tags    *[]models.TagRef `json:"tags"`
}

// ListDiariesRequest selects one page of a tenant's diaries
type ListDiariesRequest struct {
	SiteID   *string
	ViewerID string
	Page     int // 1-based
	PageSize int
}
