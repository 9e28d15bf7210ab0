package product

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrevlopes/catalog-admin-backend/internal/archive"
	"github.com/andrevlopes/catalog-admin-backend/internal/listing"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrSlugTaken = errors.New("product slug already in use")
)

type Repository interface {
	// ListPage returns one page of the owner's products plus the total row
	// count for the active search filter.
	ListPage(ownerID int, params listing.Params) ([]Product, int, error)
	GetByID(ownerID, id int) (Product, error)
	// SlugExists reports whether another product already uses the slug.
	// excludeID skips the product being edited.
	SlugExists(slug string, excludeID *int) (bool, error)
	// Save updates the product when its ID is set, inserts it otherwise.
	Save(p Product) (Product, error)
	Delete(ownerID, id int) error
	// AttachArchive links one archive to the product without detaching any
	// previously linked archives.
	AttachArchive(productID, archiveID int) error
	ListArchives(productID int) ([]archive.Archive, error)
}

// InMemoryRepository is a simple in-memory implementation useful for tests.
// Archive records are resolved through the given archive repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	storage  []Product
	links    map[int][]int
	archives *archive.InMemoryRepository
	nextID   int
}

func NewInMemoryRepository(seed []Product, archives *archive.InMemoryRepository) *InMemoryRepository {
	r := &InMemoryRepository{
		storage:  make([]Product, 0, len(seed)),
		links:    map[int][]int{},
		archives: archives,
		nextID:   1,
	}

	maxID := 0
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID > maxID {
			maxID = p.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) ListPage(ownerID int, params listing.Params) ([]Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]Product, 0)
	for _, p := range r.storage {
		if p.UserID != ownerID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		matched = append(matched, p)
	}

	desc := params.SortDir == "desc"
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch params.SortBy {
		case "name":
			less = matched[i].Name < matched[j].Name
		case "slug":
			less = matched[i].Slug < matched[j].Slug
		case "price":
			a, _ := decimal.NewFromString(matched[i].Price)
			b, _ := decimal.NewFromString(matched[j].Price)
			less = a.LessThan(b)
		case "stock":
			less = matched[i].Stock < matched[j].Stock
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

func (r *InMemoryRepository) GetByID(ownerID, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id && p.UserID == ownerID {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) SlugExists(slug string, excludeID *int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if excludeID != nil && p.ID == *excludeID {
			continue
		}
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Save(p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
		r.storage = append(r.storage, p)
		return p, nil
	}
	for i := range r.storage {
		// updates are owner scoped and keep created_at, like the SQL UPDATE
		if r.storage[i].ID == p.ID && r.storage[i].UserID == p.UserID {
			p.CreatedAt = r.storage[i].CreatedAt
			r.storage[i] = p
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(ownerID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id && r.storage[i].UserID == ownerID {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			delete(r.links, id)
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) AttachArchive(productID, archiveID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links[productID] {
		if existing == archiveID {
			return nil
		}
	}
	r.links[productID] = append(r.links[productID], archiveID)
	return nil
}

func (r *InMemoryRepository) ListArchives(productID int) ([]archive.Archive, error) {
	r.mu.RLock()
	ids := append([]int(nil), r.links[productID]...)
	r.mu.RUnlock()

	out := make([]archive.Archive, 0, len(ids))
	for _, id := range ids {
		a, err := r.archives.GetByID(id)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
