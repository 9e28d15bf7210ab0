package category

// Category is a catalog category. Every category belongs to one user and may
// reference a parent category owned by the same user, forming a tree.
// JSON tags follow the camelCase convention used elsewhere in the project.
type Category struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Status     bool    `json:"status"`
	ParentID   *int    `json:"parentId,omitempty"`
	ParentName *string `json:"parentName,omitempty"`
	UserID     int     `json:"-"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}
