package storefront

import "github.com/stylehub/stylehub/internal/domain"

// EmptyResultText is shown in place of the grid when nothing matches
const EmptyResultText = "No products found matching your criteria."

// State is one render's worth of catalog state. Transforms return a new
// State and never touch the receiver.
type State struct {
	snapshot []domain.Product
	filter   Filter
	filtered []domain.Product
	page     int
}

// View is what a render shows
type View struct {
	Products   []domain.Product
	Page       int
	TotalPages int
	Total      int
	Empty      bool
	Message    string
}

// NewState wraps a snapshot with no filter on page 1
func NewState(snapshot []domain.Product) State {
	return State{page: 1}.WithSnapshot(snapshot)
}

// WithSnapshot swaps the catalog and refilters it, keeping the page
func (s State) WithSnapshot(snapshot []domain.Product) State {
	own := make([]domain.Product, len(snapshot))
	copy(own, snapshot)
	s.snapshot = own
	s.filtered = Apply(own, s.filter)
	if s.page < 1 {
		s.page = 1
	}
	return s
}

// WithFilter refilters the snapshot and goes back to page 1
func (s State) WithFilter(f Filter) State {
	s.filter = f
	s.filtered = Apply(s.snapshot, f)
	s.page = 1
	return s
}

// WithPage moves to page; values below 1 become 1
func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.page = page
	return s
}

func (s State) Filter() Filter {
	return s.filter
}

func (s State) Page() int {
	return s.page
}

// Snapshot returns a copy of the unfiltered catalog
func (s State) Snapshot() []domain.Product {
	out := make([]domain.Product, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Render derives the view. Rendering the same state twice gives the same view.
func (s State) Render() View {
	visible := Paginate(s.filtered, s.page)
	products := make([]domain.Product, len(visible))
	copy(products, visible)
	v := View{
		Products:   products,
		Page:       s.page,
		TotalPages: TotalPages(len(s.filtered)),
		Total:      len(s.filtered),
	}
	if len(s.filtered) == 0 {
		v.Empty = true
		v.Message = EmptyResultText
	}
	return v
}
