package category

import "github.com/gosimple/slug"

// Form carries the category modal state. An id marks an edit; without one a
// save inserts a new category.
type Form struct {
	CategoryID *int   `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	ParentID   *int   `json:"parentId"`
	Status     bool   `json:"status"`
}

func NewForm() Form {
	return Form{Status: true}
}

// SetName updates the name and regenerates the slug from it. A name change
// always overwrites the slug; there is no manual-slug protection.
func (f *Form) SetName(name string) {
	f.Name = name
	f.Slug = slug.Make(name)
}

// SetCategory fills the form from an existing category for editing.
func (f *Form) SetCategory(c Category) {
	id := c.ID
	f.CategoryID = &id
	f.Name = c.Name
	f.Slug = c.Slug
	f.ParentID = c.ParentID
	f.Status = c.Status
}

// Reset restores every field to its default state.
func (f *Form) Reset() {
	*f = NewForm()
}
