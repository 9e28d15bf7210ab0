package product

import "github.com/andrevlopes/catalog-admin-backend/internal/archive"

// Product is a catalog product. The price is kept as the canonical
// dot-separated string with two fraction digits (backed by a NUMERIC column),
// never as a float.
type Product struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Price        string            `json:"price"`
	Stock        int               `json:"stock"`
	Description  *string           `json:"description,omitempty"`
	Status       bool              `json:"status"`
	CategoryID   int               `json:"categoryId"`
	CategoryName *string           `json:"categoryName,omitempty"`
	UserID       int               `json:"-"`
	Images       []archive.Archive `json:"images,omitempty"`
	CreatedAt    string            `json:"createdAt,omitempty"`
	UpdatedAt    string            `json:"updatedAt,omitempty"`
}

// Upload is one pending image file from the product form, buffered in full
// before any validation runs.
type Upload struct {
	Filename string
	Data     []byte
}
