package product

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/andrevlopes/catalog-admin-backend/internal/archive"
	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
	"github.com/andrevlopes/catalog-admin-backend/internal/money"
	"github.com/andrevlopes/catalog-admin-backend/internal/storage"
)

const (
	maxImages    = 5
	maxImageSize = 2 << 20 // 2MB per image
)

// CategoryChecker is the slice of the category module the product form needs:
// an owner-scoped existence check for the selected category.
type CategoryChecker interface {
	ExistsForOwner(id, ownerID int) (bool, error)
}

type Service struct {
	repo       Repository
	archives   archive.Repository
	storage    storage.Storage
	categories CategoryChecker
}

func NewService(repo Repository, archives archive.Repository, store storage.Storage, categories CategoryChecker) *Service {
	return &Service{repo: repo, archives: archives, storage: store, categories: categories}
}

func (s *Service) List(ownerID int, params listing.Params) ([]Product, int, error) {
	return s.repo.ListPage(ownerID, params)
}

// GetByID loads a product with its attached images and category name, as the
// edit flow needs both.
func (s *Service) GetByID(ownerID, id int) (Product, error) {
	p, err := s.repo.GetByID(ownerID, id)
	if err != nil {
		return Product{}, err
	}
	images, err := s.repo.ListArchives(p.ID)
	if err != nil {
		return Product{}, err
	}
	p.Images = images
	return p, nil
}

// Save validates the form and uploads, normalizes the price, performs an
// update-or-create scoped to the owner and then persists the new images.
// Validation failures come back as a field-keyed message map and nothing is
// written. Image persistence is deliberately not atomic: each image is
// stored, recorded and attached on its own, so a failure partway through
// leaves earlier images attached and skips the rest.
func (s *Service) Save(ownerID int, f Form, uploads []Upload) (Product, map[string]string, error) {
	verrs, price, err := s.validate(ownerID, f, uploads)
	if err != nil {
		return Product{}, nil, err
	}
	if len(verrs) > 0 {
		return Product{}, verrs, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p := Product{
		Name:        strings.TrimSpace(f.Name),
		Slug:        f.Slug,
		Price:       price,
		Stock:       f.Stock,
		Description: f.Description,
		Status:      f.Status,
		CategoryID:  *f.CategoryID,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if f.ProductID != nil {
		// an edit must target a product the owner holds; keep its created_at
		existing, err := s.repo.GetByID(ownerID, *f.ProductID)
		if err != nil {
			return Product{}, nil, err
		}
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}

	saved, err := s.repo.Save(p)
	if err == ErrSlugTaken {
		// lost the race against a concurrent writer; surface as validation
		return Product{}, map[string]string{"slug": "slug is already in use"}, nil
	}
	if err != nil {
		return Product{}, nil, err
	}

	if err := s.persistImages(saved.ID, uploads); err != nil {
		return saved, nil, err
	}

	images, err := s.repo.ListArchives(saved.ID)
	if err != nil {
		return Product{}, nil, err
	}
	saved.Images = images
	return saved, nil, nil
}

func (s *Service) Delete(ownerID, id int) error {
	return s.repo.Delete(ownerID, id)
}

// persistImages stores each upload under a fresh uuid name, creates its
// archive record and links it to the product. Existing attachments are never
// detached.
func (s *Service) persistImages(productID int, uploads []Upload) error {
	for _, u := range uploads {
		ext := strings.TrimPrefix(filepath.Ext(u.Filename), ".")
		fileName := uuid.NewString()
		if ext != "" {
			fileName += "." + ext
		}

		url, err := s.storage.Store(u.Data, "products/"+fileName)
		if err != nil {
			return err
		}

		a, err := s.archives.Create(archive.Archive{
			Filename:  strings.TrimSuffix(filepath.Base(u.Filename), filepath.Ext(u.Filename)),
			Extension: ext,
			Archive:   fileName,
			Path:      url,
		})
		if err != nil {
			return err
		}

		if err := s.repo.AttachArchive(productID, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validate(ownerID int, f Form, uploads []Upload) (map[string]string, string, error) {
	verrs := map[string]string{}

	name := strings.TrimSpace(f.Name)
	switch n := utf8.RuneCountInString(name); {
	case name == "":
		verrs["name"] = "name is required"
	case n < 3:
		verrs["name"] = "name must be at least 3 characters"
	case n > 150:
		verrs["name"] = "name must not exceed 150 characters"
	}

	if f.CategoryID == nil {
		verrs["category_id"] = "select a category"
	} else {
		ok, err := s.categories.ExistsForOwner(*f.CategoryID, ownerID)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			verrs["category_id"] = "category does not exist in your account"
		}
	}

	switch {
	case f.Slug == "":
		verrs["slug"] = "slug is required"
	case utf8.RuneCountInString(f.Slug) > 150:
		verrs["slug"] = "slug must not exceed 150 characters"
	default:
		taken, err := s.repo.SlugExists(f.Slug, f.ProductID)
		if err != nil {
			return nil, "", err
		}
		if taken {
			verrs["slug"] = "slug is already in use"
		}
	}

	var price string
	if strings.TrimSpace(f.Price) == "" {
		verrs["price"] = "price is required"
	} else {
		normalized, err := money.Normalize(f.Price)
		if err != nil {
			verrs["price"] = "enter a valid price"
		} else {
			price = normalized
		}
	}

	if f.Stock < 0 {
		verrs["stock"] = "stock must be a non-negative integer"
	}

	if f.Description != nil && utf8.RuneCountInString(*f.Description) > 999 {
		verrs["description"] = "description must not exceed 999 characters"
	}

	if len(uploads) > maxImages {
		verrs["images"] = fmt.Sprintf("you may upload at most %d images per product", maxImages)
	}
	for i, u := range uploads {
		if len(u.Data) > maxImageSize {
			verrs[fmt.Sprintf("images.%d", i)] = "each image must be at most 2 MB"
			continue
		}
		if !strings.HasPrefix(http.DetectContentType(u.Data), "image/") {
			verrs[fmt.Sprintf("images.%d", i)] = "each file must be an image"
		}
	}

	return verrs, price, nil
}
