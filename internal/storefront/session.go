package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stylehub/stylehub/internal/domain"
	"go.uber.org/zap"
)

// ErrStale is returned by QuickView when a newer quick view was requested
// while this one was in flight.
var ErrStale = errors.New("superseded by a newer request")

const (
	NoticeInfo  = "info"
	NoticeError = "error"
)

// Notice is a toast shown to the shopper
type Notice struct {
	Kind string
	Text string
}

// Session drives one shopper's catalog page: the product snapshot, the
// filter controls, paging, the quick view and the local cart.
type Session struct {
	client   *Client
	store    *LocalStore
	onChange func(View)
	debounce *Debouncer
	quickGen Generation

	mu      sync.Mutex
	state   State
	quick   *domain.Product
	notices []Notice
}

type SessionOption func(*Session)

// WithSearchDebounce overrides the search settle window
func WithSearchDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.debounce = NewDebouncer(d) }
}

// WithLocalStore enables cart and wishlist actions
func WithLocalStore(store *LocalStore) SessionOption {
	return func(s *Session) { s.store = store }
}

// OnChange registers a callback run after every debounced search render
func OnChange(fn func(View)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

func NewSession(client *Client, opts ...SessionOption) *Session {
	s := &Session{
		client:   client,
		debounce: NewDebouncer(SearchDebounce),
		state:    NewState(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the catalog snapshot. On failure the previous state stays.
func (s *Session) Load(ctx context.Context) error {
	products, err := s.client.Products(ctx)
	if err != nil {
		zap.L().Error("load products", zap.Error(err))
		s.notify(NoticeError, "Failed to load products. Please try again later.")
		return err
	}
	s.mu.Lock()
	s.state = s.state.WithSnapshot(products)
	s.mu.Unlock()
	return nil
}

// Featured fetches the home page strip; it does not touch the filter state
func (s *Session) Featured(ctx context.Context) ([]domain.Product, error) {
	products, err := s.client.Featured(ctx)
	if err != nil {
		zap.L().Error("load featured products", zap.Error(err))
		s.notify(NoticeError, "Failed to load featured products.")
		return nil, err
	}
	return products, nil
}

func (s *Session) SetCategory(category string) View {
	return s.updateFilter(func(f *Filter) { f.Category = category })
}

func (s *Session) SetPrice(b PriceBracket) View {
	return s.updateFilter(func(f *Filter) { f.Price = b })
}

// SetSearch applies the term once typing has settled for the debounce window
func (s *Session) SetSearch(term string) {
	s.debounce.Trigger(func() {
		v := s.updateFilter(func(f *Filter) { f.Search = term })
		if s.onChange != nil {
			s.onChange(v)
		}
	})
}

func (s *Session) GoToPage(page int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.WithPage(page)
	return s.state.Render()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Render()
}

func (s *Session) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filter()
}

func (s *Session) updateFilter(edit func(*Filter)) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.state.Filter()
	edit(&f)
	s.state = s.state.WithFilter(f)
	return s.state.Render()
}

// QuickView loads one product for the modal. Only the latest request may
// replace the modal content; older ones return ErrStale.
func (s *Session) QuickView(ctx context.Context, id int64) (domain.Product, error) {
	token := s.quickGen.Next()
	p, err := s.client.Product(ctx, id)

	// the generation check and the store happen under one lock
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quickGen.Current(token) {
		return domain.Product{}, ErrStale
	}
	if err != nil {
		zap.L().Error("load product", zap.Int64("id", id), zap.Error(err))
		s.notices = append(s.notices, Notice{Kind: NoticeError, Text: "Failed to load product details."})
		return domain.Product{}, err
	}
	s.quick = &p
	return p, nil
}

// QuickViewProduct is the product shown in the modal, if any
func (s *Session) QuickViewProduct() (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quick == nil {
		return domain.Product{}, false
	}
	return *s.quick, true
}

func (s *Session) AddToCart(productID int64) error {
	if s.store == nil {
		return errors.New("no local store")
	}
	if _, err := s.store.AddToCart(productID); err != nil {
		zap.L().Error("add to cart", zap.Int64("id", productID), zap.Error(err))
		s.notify(NoticeError, "Could not update your cart.")
		return err
	}
	s.notify(NoticeInfo, "Product added to cart!")
	return nil
}

func (s *Session) AddToWishlist(productID int64) error {
	if s.store == nil {
		return errors.New("no local store")
	}
	added, err := s.store.AddToWishlist(productID)
	if err != nil {
		zap.L().Error("add to wishlist", zap.Int64("id", productID), zap.Error(err))
		s.notify(NoticeError, "Could not update your wishlist.")
		return err
	}
	if added {
		s.notify(NoticeInfo, "Product added to wishlist!")
	} else {
		s.notify(NoticeInfo, "Product is already in your wishlist.")
	}
	return nil
}

// Notices drains the pending notices
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Close cancels a pending search
func (s *Session) Close() {
	s.debounce.Stop()
}

func (s *Session) notify(kind, text string) {
	s.mu.Lock()
	s.notices = append(s.notices, Notice{Kind: kind, Text: text})
	s.mu.Unlock()
}
