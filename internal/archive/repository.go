package archive

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("archive not found")

type Repository interface {
	Create(a Archive) (Archive, error)
	GetByID(id int) (Archive, error)
}

// InMemoryRepository backs tests for the image attachment flow.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Archive
	nextID  int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(a Archive) (Archive, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	r.storage = append(r.storage, a)
	return a, nil
}

func (r *InMemoryRepository) GetByID(id int) (Archive, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.storage {
		if a.ID == id {
			return a, nil
		}
	}
	return Archive{}, ErrNotFound
}
