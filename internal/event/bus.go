package event

import "sync"

// Names of the messages exchanged between the select-search widget, its host
// form and the domain search providers.
const (
	Searching      = "searching"
	SearchResponse = "search-response"
	Selected       = "selected"
	SetProperty    = "set-property"
	ResetForm      = "reset-form"
)

// Selection is the payload carried by Selected and SetProperty messages.
// A nil ID means "nothing selected".
type Selection struct {
	ID   *int
	Name *string
}

type Handler func(payload any)

// Bus is a minimal synchronous in-process dispatcher. Handlers run in
// registration order on the caller's goroutine; each request builds its own
// bus, so there is no cross-request state.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// On registers a handler for the named message.
func (b *Bus) On(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], fn)
}

// Dispatch delivers the payload to every handler registered for name.
func (b *Bus) Dispatch(name string, payload any) {
	b.mu.RLock()
	fns := append([]Handler(nil), b.handlers[name]...)
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}
