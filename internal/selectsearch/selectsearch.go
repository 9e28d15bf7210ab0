package selectsearch

import (
	"strings"
	"unicode/utf8"

	"github.com/andrevlopes/catalog-admin-backend/internal/event"
)

// minimum number of characters (after trimming) before a search is requested
const minQueryLen = 2

// Widget is a reusable searchable-select control. It never queries the
// catalog itself: it dispatches a `searching` message and waits for a
// provider to answer with `search-response`. The selection is always
// whatever the last `selected` or `set-property` message established,
// never derived from result-set order.
type Widget struct {
	bus *event.Bus

	Label       string
	Placeholder string

	Search       string
	Data         map[int]string
	SelectedID   *int
	SelectedName *string
}

func New(bus *event.Bus, label, placeholder string) *Widget {
	w := &Widget{
		bus:         bus,
		Label:       label,
		Placeholder: placeholder,
		Data:        map[int]string{},
	}
	bus.On(event.SearchResponse, w.onSearchResponse)
	bus.On(event.SetProperty, w.onSetProperty)
	bus.On(event.ResetForm, func(any) { w.reset() })
	return w
}

// UpdateSearch mirrors typing into the search input. Trimmed queries longer
// than two characters request options from the provider; shorter ones only
// clear the local result set.
func (w *Widget) UpdateSearch(search string) {
	w.Search = search

	trimmed := strings.TrimSpace(search)
	if utf8.RuneCountInString(trimmed) > minQueryLen {
		w.bus.Dispatch(event.Searching, trimmed)
		return
	}
	w.Data = map[int]string{}
}

// Select records the new selection and announces it to the host form.
// Passing nil clears the selection; the announcement still happens.
func (w *Widget) Select(id *int, name *string) {
	w.SelectedID = id
	w.SelectedName = name
	w.bus.Dispatch(event.Selected, event.Selection{ID: id, Name: name})
}

func (w *Widget) onSearchResponse(payload any) {
	if data, ok := payload.(map[int]string); ok {
		w.Data = data
	}
}

func (w *Widget) onSetProperty(payload any) {
	sel, ok := payload.(event.Selection)
	if !ok {
		return
	}
	if sel.ID == nil || sel.Name == nil {
		w.SelectedID = nil
		w.SelectedName = nil
		w.Data = map[int]string{}
		return
	}
	w.SelectedID = sel.ID
	w.SelectedName = sel.Name
	w.Data = map[int]string{*sel.ID: *sel.Name}
}

// reset clears transient state while keeping the static configuration
// (label and placeholder).
func (w *Widget) reset() {
	w.Search = ""
	w.Data = map[int]string{}
	w.SelectedID = nil
	w.SelectedName = nil
}
