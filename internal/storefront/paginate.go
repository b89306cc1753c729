package storefront

import "github.com/stylehub/stylehub/internal/domain"

// PageSize is the number of products on one shop page
const PageSize = 12

// TotalPages is the page count for n items; zero items yields zero pages
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Paginate returns the items of page, counting from 1. Pages below 1 are
// treated as 1 and pages past the end are empty.
func Paginate(items []domain.Product, page int) []domain.Product {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []domain.Product{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}
