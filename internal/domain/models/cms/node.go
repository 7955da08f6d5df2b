package cms

import (
	"encoding/json"
	"time"
)

// NodeKind distinguishes folders from articles. Immutable after creation.
type NodeKind string

const (
	KindFolder  NodeKind = "folder"
	KindArticle NodeKind = "article"
)

// Valid reports whether k is a known kind.
func (k NodeKind) Valid() bool {
	return k == KindFolder || k == KindArticle
}

// Node is a folder or an article in a site's tree.
//
// Folders and articles that share a parent form one sibling group; Order is the
// rank inside that group (0 first).
type Node struct {
	ID          string          `json:"id" db:"id"`
	Kind        NodeKind        `json:"type" db:"kind"`
	SiteID      *string         `json:"site_id" db:"site_id"` // NULL = primary host
	CreatorID   string          `json:"creator_id" db:"creator_id"`
	ParentID    *string         `json:"parent_id" db:"parent_id"` // NULL = root level
	Name        string          `json:"name" db:"name"`           // folder name or article title
	Description string          `json:"desc,omitempty" db:"description"`
	Order       int             `json:"order" db:"sort_order"`
	TagIDs      []string        `json:"tag_ids,omitempty" db:"tag_ids"`
	Content     json.RawMessage `json:"content,omitempty" db:"content"` // articles only, editor blocks
	Summary     json.RawMessage `json:"summary,omitempty" db:"summary"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsFolder reports whether the node can have children.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// NodePatch lists the content fields an update overwrites; nil fields keep
// their stored value. Parent and order are not patchable: they change only
// through moves and renumbering, under the sibling-group locks.
type NodePatch struct {
	Name        *string
	Description *string
	TagIDs      *[]string
	Content     json.RawMessage
	Summary     json.RawMessage
}

// Empty reports whether the patch changes nothing.
func (p NodePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.TagIDs == nil && p.Content == nil && p.Summary == nil
}

// Apply copies the patched fields onto n.
func (p NodePatch) Apply(n *Node) {
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.TagIDs != nil {
		n.TagIDs = append([]string(nil), (*p.TagIDs)...)
	}
	if p.Content != nil {
		n.Content = p.Content
	}
	if p.Summary != nil {
		n.Summary = p.Summary
	}
}

// SiblingScope identifies one sibling group: the children of ParentID owned by
// CreatorID inside SiteID.
type SiblingScope struct {
	SiteID    *string
	CreatorID string
	ParentID  *string
}

// ScopeOf returns the sibling group n belongs to.
func ScopeOf(n *Node) SiblingScope {
	return SiblingScope{SiteID: n.SiteID, CreatorID: n.CreatorID, ParentID: n.ParentID}
}

// Key renders the scope as a stable string, used for locking.
func (s SiblingScope) Key() string {
	return deref(s.SiteID) + "/" + s.CreatorID + "/" + deref(s.ParentID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
