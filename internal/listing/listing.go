package listing

// PerPage is the fixed page size used by every table in the back office.
const PerPage = 15

// Params carries the state of a filterable, sortable, paginated table:
// free-text search term, sort column/direction and current page.
type Params struct {
	Search  string
	SortBy  string
	SortDir string
	Page    int
}

// Sort applies the header-click rule: clicking the active ascending column
// flips it to descending; any other click sorts ascending. Changing the sort
// always returns to the first page.
func (p *Params) Sort(column string) {
	if p.SortBy == column && p.SortDir == "asc" {
		p.SortDir = "desc"
	} else {
		p.SortDir = "asc"
	}
	p.SortBy = column
	p.Page = 1
}

// SetSearch replaces the search term and resets pagination.
func (p *Params) SetSearch(term string) {
	p.Search = term
	p.Page = 1
}

// Normalize clamps values coming straight from the query string.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.SortDir != "desc" {
		p.SortDir = "asc"
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * PerPage
}

// OrderClause builds an ORDER BY expression from a whitelist of sortable
// columns. Unknown (or empty) sort columns fall back to the stable default
// expression so client input never reaches the SQL text.
func (p Params) OrderClause(columns map[string]string, fallback string) string {
	col, ok := columns[p.SortBy]
	if !ok {
		return "ORDER BY " + fallback
	}
	dir := "ASC"
	if p.SortDir == "desc" {
		dir = "DESC"
	}
	return "ORDER BY " + col + " " + dir
}

// Meta describes one page of results.
type Meta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PerPage  int `json:"perPage"`
	LastPage int `json:"lastPage"`
}

func NewMeta(total, page int) Meta {
	last := (total + PerPage - 1) / PerPage
	if last < 1 {
		last = 1
	}
	return Meta{Total: total, Page: page, PerPage: PerPage, LastPage: last}
}
