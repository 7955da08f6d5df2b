package cms

import "encoding/json"

// TreeNode is one entry of a site's folder/article forest.
type TreeNode struct {
	ID       string      `json:"id"`
	Kind     NodeKind    `json:"type"`
	Name     string      `json:"name"`
	ParentID *string     `json:"parent_id"`
	Order    int         `json:"order"`
	Children []*TreeNode `json:"children,omitempty"`
}

// MarshalJSON always emits "children" for folders (possibly empty) and never
// for articles.
func (n TreeNode) MarshalJSON() ([]byte, error) {
	type plain TreeNode
	if n.Kind != KindFolder {
		p := plain(n)
		p.Children = nil
		return json.Marshal(p)
	}

	children := n.Children
	if children == nil {
		children = []*TreeNode{}
	}
	return json.Marshal(struct {
		plain
		Children []*TreeNode `json:"children"`
	}{plain(n), children})
}
