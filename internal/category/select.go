package category

import (
	"github.com/rs/zerolog/log"

	"github.com/andrevlopes/catalog-admin-backend/internal/event"
)

// SelectProvider answers `searching` messages from the select-search widget
// with owner-scoped category options. It keeps the widget generic: the widget
// only requests a search, the provider performs it.
type SelectProvider struct {
	service *Service
	bus     *event.Bus
	ownerID int
}

func NewSelectProvider(bus *event.Bus, service *Service, ownerID int) *SelectProvider {
	p := &SelectProvider{service: service, bus: bus, ownerID: ownerID}
	bus.On(event.Searching, p.onSearching)
	return p
}

func (p *SelectProvider) onSearching(payload any) {
	term, ok := payload.(string)
	if !ok {
		return
	}
	options, err := p.service.SearchForSelect(p.ownerID, term)
	if err != nil {
		log.Error().Err(err).Str("term", term).Msg("category select search failed")
		return
	}
	p.bus.Dispatch(event.SearchResponse, options)
}
