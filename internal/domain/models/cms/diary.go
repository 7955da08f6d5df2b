package cms

import (
	"encoding/json"
	"time"
)

// DateLayout renders the calendar day a diary belongs to.
const DateLayout = "2006-01-02"

// MonthLayout labels one month of the diary timeline.
const MonthLayout = "2006-01"

// Diary is a dated journal entry. A remedy entry is written after the day it
// describes; RemedyAt then holds that day.
type Diary struct {
	ID         string          `json:"id" db:"id"`
	SiteID     *string         `json:"site_id" db:"site_id"`
	CreatorID  string          `json:"creator_id" db:"creator_id"`
	Title      string          `json:"title" db:"title"`
	Content    json.RawMessage `json:"content,omitempty" db:"content"`
	Summary    json.RawMessage `json:"summary" db:"summary"`
	CoverImage string          `json:"cover_image,omitempty" db:"cover_image"`
	TagIDs     []string        `json:"-" db:"tag_ids"`
	IsRemedy   bool            `json:"is_remedy" db:"-"`
	RemedyAt   *time.Time      `json:"remedy_at,omitempty" db:"remedy_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Day is the UTC calendar day of the entry: RemedyAt for a remedy entry,
// CreatedAt otherwise.
func (d *Diary) Day() time.Time {
	t := d.CreatedAt
	if d.RemedyAt != nil {
		t = *d.RemedyAt
	}
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// DiaryPatch names the fields UpdateDiary changes; nil fields are kept.
type DiaryPatch struct {
	Title      *string
	Content    json.RawMessage
	Summary    json.RawMessage
	CoverImage *string
	TagIDs     *[]string
}

// Empty reports whether the patch changes nothing.
func (p DiaryPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Summary == nil && p.CoverImage == nil && p.TagIDs == nil
}

// Apply copies the patched fields onto d.
func (p DiaryPatch) Apply(d *Diary) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Content != nil {
		d.Content = p.Content
	}
	if p.Summary != nil {
		d.Summary = p.Summary
	}
	if p.CoverImage != nil {
		d.CoverImage = *p.CoverImage
	}
	if p.TagIDs != nil {
		d.TagIDs = append([]string(nil), (*p.TagIDs)...)
	}
}

// DiaryDetail is a diary with its tags resolved.
type DiaryDetail struct {
	Diary
	Tags []Tag `json:"tags"`
}

// DiaryListItem is a diary without its content.
type DiaryListItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	CoverImage string          `json:"cover_image,omitempty"`
	Summary    json.RawMessage `json:"summary"`
	Tags       []Tag           `json:"tags"`
	Date       string          `json:"date"`
	IsRemedy   bool            `json:"is_remedy"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// DiaryPage is one page of diaries, newest day first.
type DiaryPage struct {
	Diaries    []DiaryListItem `json:"diaries"`
	Pagination Pagination      `json:"pagination"`
}

// TimelineMonth groups the diaries of one month, newest first.
type TimelineMonth struct {
	Month   string          `json:"month"`
	Count   int             `json:"count"`
	Diaries []DiaryListItem `json:"diaries"`
}

// CoverImage returns the URL of the first image block in editor content,
// or "" when there is none.
func CoverImage(content json.RawMessage) string {
	var blocks []struct {
		Type  string `json:"type"`
		Props struct {
			URL string `json:"url"`
		} `json:"props"`
	}
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	for _, b := range blocks {
		if b.Type == "image" && b.Props.URL != "" {
			return b.Props.URL
		}
	}
	return ""
}
