package cms

import (
	"encoding/json"
	"time"
)

// Carousel is one slide of a site's home page banner.
type Carousel struct {
	ID        string           `json:"id" db:"id"`
	SiteID    *string          `json:"site_id" db:"site_id"`
	CreatorID string           `json:"creator_id" db:"creator_id"`
	Title     string           `json:"title" db:"title"`
	Subtitle  string           `json:"subtitle" db:"subtitle"`
	Desc      string           `json:"desc" db:"description"`
	ImageURL  string           `json:"img_url,omitempty" db:"img_url"`
	Buttons   []CarouselButton `json:"buttons" db:"buttons"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// CarouselButton is a call-to-action link on a slide.
type CarouselButton struct {
	Color string `json:"color"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// CarouselPatch names the slide fields an update changes; nil fields are kept.
type CarouselPatch struct {
	Title    *string
	Subtitle *string
	Desc     *string
	ImageURL *string
	Buttons  *[]CarouselButton
}

func (p CarouselPatch) Empty() bool {
	return p.Title == nil && p.Subtitle == nil && p.Desc == nil && p.ImageURL == nil && p.Buttons == nil
}

func (p CarouselPatch) Apply(c *Carousel) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Subtitle != nil {
		c.Subtitle = *p.Subtitle
	}
	if p.Desc != nil {
		c.Desc = *p.Desc
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Buttons != nil {
		c.Buttons = append([]CarouselButton(nil), (*p.Buttons)...)
	}
}

// Project is a portfolio entry shown on a site's project page.
type Project struct {
	ID        string          `json:"id" db:"id"`
	SiteID    *string         `json:"site_id" db:"site_id"`
	CreatorID string          `json:"creator_id" db:"creator_id"`
	Title     string          `json:"title" db:"title"`
	ImageURL  string          `json:"img_url,omitempty" db:"img_url"`
	Category  string          `json:"category" db:"category"`
	Likes     int             `json:"likes" db:"likes"`
	ButtonURL string          `json:"button_url" db:"button_url"`
	Content   json.RawMessage `json:"content" db:"content"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// ProjectPatch names the project fields an update changes; nil fields are kept.
// Likes only change through LikeProject.
type ProjectPatch struct {
	Title     *string
	ImageURL  *string
	Category  *string
	ButtonURL *string
	Content   json.RawMessage
}

func (p ProjectPatch) Empty() bool {
	return p.Title == nil && p.ImageURL == nil && p.Category == nil && p.ButtonURL == nil && p.Content == nil
}

func (p ProjectPatch) Apply(pr *Project) {
	if p.Title != nil {
		pr.Title = *p.Title
	}
	if p.ImageURL != nil {
		pr.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		pr.Category = *p.Category
	}
	if p.ButtonURL != nil {
		pr.ButtonURL = *p.ButtonURL
	}
	if p.Content != nil {
		pr.Content = p.Content
	}
}
