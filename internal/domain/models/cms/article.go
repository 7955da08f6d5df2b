package cms

import (
	"encoding/json"
)

// Article is the detail view of an article node with its tags resolved.
type Article struct {
	Node
	Tags []Tag `json:"tags"`
}

// ArticleListItem is the paginated listing row (no full content).
type ArticleListItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Summary   json.RawMessage `json:"summary"`
	Tags      []Tag           `json:"tags"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ArticlePage is one page of a site's articles, newest first.
type ArticlePage struct {
	Articles []ArticleListItem `json:"articles"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
}

// PlaceholderContent seeds a new article body: one italic, underlined paragraph.
var PlaceholderContent = json.RawMessage(`[{"type":"paragraph","props":{"textColor":"default","backgroundColor":"default","textAlignment":"left"},"content":[{"type":"text","text":"Start sharing what you know~","styles":{"italic":true,"underline":true}}],"children":[]}]`)

// Summarize returns the first n blocks of an editor block array.
func Summarize(content json.RawMessage, n int) (json.RawMessage, error) {
	var blocks []json.RawMessage
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil, err
	}
	if len(blocks) > n {
		blocks = blocks[:n]
	}
	if blocks == nil {
		blocks = []json.RawMessage{}
	}
	return json.Marshal(blocks)
}
