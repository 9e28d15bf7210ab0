package category

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

var (
	ErrParentNotFound = errors.New("parent category does not exist in your account")
	ErrSelfParent     = errors.New("category cannot be its own parent")
)

const selectLimit = 10

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ownerID int, params listing.Params) ([]Category, int, error) {
	return s.repo.ListPage(ownerID, params)
}

func (s *Service) GetByID(ownerID, id int) (Category, error) {
	return s.repo.GetByID(ownerID, id)
}

// SearchForSelect answers the select-search widget: a case-insensitive
// substring match on the owner's category names, capped at ten options.
func (s *Service) SearchForSelect(ownerID int, term string) (map[int]string, error) {
	return s.repo.SearchByName(ownerID, term, selectLimit)
}

// ExistsForOwner reports whether the category id belongs to the owner. Other
// modules (the product form) use it through a narrow interface.
func (s *Service) ExistsForOwner(id, ownerID int) (bool, error) {
	return s.repo.ExistsForOwner(id, ownerID)
}

// ValidateParent checks a candidate parent reference. A nil parent is a root
// category. The parent must exist and belong to the same owner, and a
// category may not be its own parent. Deeper cycles are not checked.
func (s *Service) ValidateParent(ownerID int, parentID, categoryID *int) error {
	if parentID == nil {
		return nil
	}
	ok, err := s.repo.ExistsForOwner(*parentID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrParentNotFound
	}
	if categoryID != nil && *categoryID == *parentID {
		return ErrSelfParent
	}
	return nil
}

// Save validates the form and performs an update-or-create scoped to the
// owner. Validation failures come back as a field-keyed message map and
// nothing is written.
func (s *Service) Save(ownerID int, f Form) (Category, map[string]string, error) {
	verrs, err := s.validate(ownerID, f)
	if err != nil {
		return Category{}, nil, err
	}
	if len(verrs) > 0 {
		return Category{}, verrs, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c := Category{
		Name:      strings.TrimSpace(f.Name),
		Slug:      f.Slug,
		Status:    f.Status,
		ParentID:  f.ParentID,
		UserID:    ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if f.CategoryID != nil {
		// an edit must target a category the owner holds; keep its created_at
		existing, err := s.repo.GetByID(ownerID, *f.CategoryID)
		if err != nil {
			return Category{}, nil, err
		}
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}

	saved, err := s.repo.Save(c)
	if err == ErrSlugTaken {
		// lost the race against a concurrent writer; surface as validation
		return Category{}, map[string]string{"slug": "slug is already in use"}, nil
	}
	if err != nil {
		return Category{}, nil, err
	}
	return saved, nil, nil
}

func (s *Service) Delete(ownerID, id int) error {
	return s.repo.Delete(ownerID, id)
}

func (s *Service) validate(ownerID int, f Form) (map[string]string, error) {
	verrs := map[string]string{}

	name := strings.TrimSpace(f.Name)
	switch n := utf8.RuneCountInString(name); {
	case name == "":
		verrs["name"] = "name is required"
	case n < 3:
		verrs["name"] = "name must be at least 3 characters"
	case n > 255:
		verrs["name"] = "name must not exceed 255 characters"
	}

	switch {
	case f.Slug == "":
		verrs["slug"] = "slug is required"
	case utf8.RuneCountInString(f.Slug) > 255:
		verrs["slug"] = "slug must not exceed 255 characters"
	default:
		taken, err := s.repo.SlugExists(f.Slug, f.CategoryID)
		if err != nil {
			return nil, err
		}
		if taken {
			verrs["slug"] = "slug is already in use"
		}
	}

	if err := s.ValidateParent(ownerID, f.ParentID, f.CategoryID); err != nil {
		if err == ErrParentNotFound || err == ErrSelfParent {
			verrs["parent_id"] = err.Error()
		} else {
			return nil, err
		}
	}

	return verrs, nil
}
