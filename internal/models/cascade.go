package models

// CascadeResult counts the rows a cascading delete removed, per entity.
type CascadeResult struct {
	Categories    int64 `json:"categories,omitempty"`
	Subcategories int64 `json:"subcategories,omitempty"`
	Topics        int64 `json:"topics,omitempty"`
	Posts         int64 `json:"posts,omitempty"`
	Comments      int64 `json:"comments,omitempty"`
	Likes         int64 `json:"likes,omitempty"`
}
