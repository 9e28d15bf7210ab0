package category

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrSlugTaken = errors.New("category slug already in use")
)

type Repository interface {
	// ListPage returns one page of the owner's categories plus the total row
	// count for the active search filter.
	ListPage(ownerID int, params listing.Params) ([]Category, int, error)
	GetByID(ownerID, id int) (Category, error)
	ExistsForOwner(id, ownerID int) (bool, error)
	// SlugExists reports whether another category already uses the slug.
	// excludeID skips the category being edited.
	SlugExists(slug string, excludeID *int) (bool, error)
	// SearchByName performs a case-insensitive substring match on the owner's
	// category names and returns an id -> name map of at most limit entries.
	SearchByName(ownerID int, term string, limit int) (map[int]string, error)
	// Save updates the category when its ID is set, inserts it otherwise.
	Save(c Category) (Category, error)
	Delete(ownerID, id int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Category
	nextID  int
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Category, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, c := range seed {
		r.storage = append(r.storage, c)
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListPage(ownerID int, params listing.Params) ([]Category, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Category, 0)
	for _, c := range r.storage {
		if c.UserID != ownerID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(params.Search)) {
			continue
		}
		c.ParentName = r.parentName(c.ParentID)
		matched = append(matched, c)
	}

	desc := params.SortDir == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch params.SortBy {
		case "name":
			less = matched[i].Name < matched[j].Name
		case "slug":
			less = matched[i].Slug < matched[j].Slug
		default:
			less = matched[i].ID < matched[j].ID
		}
		if desc {
			return !less
		}
		return less
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + listing.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *InMemoryRepository) GetByID(ownerID, id int) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id && c.UserID == ownerID {
			c.ParentName = r.parentName(c.ParentID)
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) ExistsForOwner(id, ownerID int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.ID == id && c.UserID == ownerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) SlugExists(slug string, excludeID *int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) SearchByName(ownerID int, term string, limit int) (map[int]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[int]string{}
	for _, c := range r.storage {
		if len(out) >= limit {
			break
		}
		if c.UserID != ownerID {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
			out[c.ID] = c.Name
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Save(c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
		r.storage = append(r.storage, c)
		return c, nil
	}
	for i := range r.storage {
		// updates are owner scoped and keep created_at, like the SQL UPDATE
		if r.storage[i].ID == c.ID && r.storage[i].UserID == c.UserID {
			c.CreatedAt = r.storage[i].CreatedAt
			r.storage[i] = c
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ownerID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id && r.storage[i].UserID == ownerID {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) parentName(parentID *int) *string {
	if parentID == nil {
		return nil
	}
	for _, p := range r.storage {
		if p.ID == *parentID {
			name := p.Name
			return &name
		}
	}
	return nil
}
