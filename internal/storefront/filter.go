// Package storefront is the shopper side of the catalog: it pulls the active
// product snapshot from the API and filters, searches and pages it locally.
package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub/internal/domain"
	"golang.org/x/text/cases"
)

// PriceBracket is one of the shop's price filter options
type PriceBracket string

const (
	PriceAny     PriceBracket = ""
	PriceUnder50 PriceBracket = "0-50"
	Price50To100 PriceBracket = "50-100"
	PriceOver100 PriceBracket = "100+"
)

// CategoryAny disables the category predicate
const CategoryAny = ""

var (
	fifty   = decimal.NewFromInt(50)
	hundred = decimal.NewFromInt(100)
)

// Contains reports whether price falls in the bracket. Both bounds are
// inclusive, so 50 matches 0-50 and 50-100, and 100 matches 50-100 and 100+.
// Unknown brackets match everything.
func (b PriceBracket) Contains(price decimal.Decimal) bool {
	switch b {
	case PriceUnder50:
		return !price.IsNegative() && price.LessThanOrEqual(fifty)
	case Price50To100:
		return price.GreaterThanOrEqual(fifty) && price.LessThanOrEqual(hundred)
	case PriceOver100:
		return price.GreaterThanOrEqual(hundred)
	default:
		return true
	}
}

// Filter is the shopper's current selection. The zero value matches everything.
// Search is used as typed: only the empty string disables it, so a term of
// spaces is still a substring to look for.
type Filter struct {
	Category string
	Price    PriceBracket
	Search   string
}

// Matches applies the category, price and search predicates in that order
func (f Filter) Matches(p domain.Product) bool {
	return f.matches(p, cases.Fold())
}

// matches takes the caser from the caller; a Caser is not safe for concurrent use
func (f Filter) matches(p domain.Product, folder cases.Caser) bool {
	if f.Category != CategoryAny && p.Category != f.Category {
		return false
	}
	if !f.Price.Contains(p.Price) {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := folder.String(f.Search)
	return strings.Contains(folder.String(p.Name), needle) ||
		strings.Contains(folder.String(p.Description), needle)
}

// Apply returns the products of snapshot matching f, in snapshot order.
// The result is a new slice; snapshot is never modified.
func Apply(snapshot []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(snapshot))
	folder := cases.Fold()
	for _, p := range snapshot {
		if f.matches(p, folder) {
			out = append(out, p)
		}
	}
	return out
}
