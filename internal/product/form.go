package product

import "github.com/gosimple/slug"

// Form carries the product modal state. An id marks an edit; without one a
// save inserts a new product. Images travel separately as Upload values.
type Form struct {
	ProductID   *int    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Price       string  `json:"price"`
	Stock       int     `json:"stock"`
	Description *string `json:"description"`
	CategoryID  *int    `json:"categoryId"`
	Status      bool    `json:"status"`
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

// SetProduct fills the form from an existing product for editing.
func (f *Form) SetProduct(p Product) {
	id := p.ID
	f.ProductID = &id
	f.Name = p.Name
	f.Slug = p.Slug
	f.Price = p.Price
	f.Stock = p.Stock
	f.Description = p.Description
	f.Status = p.Status
	catID := p.CategoryID
	f.CategoryID = &catID
}

// Reset restores every field to its default state.
func (f *Form) Reset() {
	*f = NewForm()
}
