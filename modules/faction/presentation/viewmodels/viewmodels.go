package viewmodels

// Faction is the JSON shape of one faction row.
type Faction struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	ParentID       string `json:"parent_id,omitempty"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Abbreviation   string `json:"abbreviation,omitempty"`
	Description    string `json:"description,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// TreeNode is one faction with its children nested, for tree renders.
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Children []*TreeNode `json:"children"`
}

// Member is the JSON shape of one membership row, carrying the person
// snapshot repositories hydrate.
type Member struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	PersonID    string `json:"person_id"`
	FactionID   string `json:"faction_id,omitempty"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
	CreatedAt   string `json:"created_at"`
}

// PaginatedResponse wraps list endpoints.
type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
