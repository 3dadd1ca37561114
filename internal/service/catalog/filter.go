package catalog

import (
	"sort"
	"strings"

	"omcis-store/internal/domain"

	"github.com/shopspring/decimal"
)

// Filter narrows the storefront listing. Zero values match everything.
type Filter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Match reports whether p passes the filter. Search is a case-insensitive substring
// of the name; the price range is inclusive.
func (f Filter) Match(p domain.Product) bool {
	if q := strings.TrimSpace(f.Search); q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// Visible keeps purchasable products that match f.
func Visible(products []domain.Product, f Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Purchasable() && f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// CategoriesOf lists the distinct non-empty categories of products, sorted.
func CategoriesOf(products []domain.Product) []string {
	seen := make(map[string]struct{})
	for _, p := range products {
		if p.Category != "" {
			seen[p.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
