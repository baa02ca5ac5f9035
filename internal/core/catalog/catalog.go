// Package catalog filters and orders product snapshots.
//
// [Engine.Query] is a pure function of its arguments: it never mutates the
// input slice and holds no state between calls, so one Engine may serve
// any number of goroutines.
package catalog

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Engine struct {
	locale   language.Tag
	saleRule domain.SaleRule
}

type Option func(*Engine)

// WithLocale sets the collation used by the name sorts.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

func WithSaleRule(r domain.SaleRule) Option {
	return func(e *Engine) {
		e.saleRule = r
	}
}

func New(opts ...Option) Engine {
	e := Engine{
		locale:   language.English,
		saleRule: domain.SaleEither,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

var defaultEngine = New()

// Query runs q over products with the default engine.
func Query(products []domain.Product, q domain.CatalogQuery) []domain.Product {
	return defaultEngine.Query(products, q)
}

// Query returns the products matching q in the order requested by q.Sort.
//
// The result is a new slice, never nil. An empty result is the normal
// "nothing matched" outcome, including for an empty price range. An unset
// PriceMin counts as 0 for that check.
func (e Engine) Query(
	products []domain.Product, q domain.CatalogQuery,
) []domain.Product {
	if q.PriceMax != nil && lowerBound(q) > *q.PriceMax {
		return []domain.Product{}
	}

	f := e.newFilter(q)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.keep(p) {
			out = append(out, p)
		}
	}

	e.sort(out, q.Sort)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit:q.Limit]
	}
	return out
}

func (e Engine) sort(ps []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(price(a), price(b))
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(price(b), price(a))
		})
	case domain.SortNameAsc:
		c := collate.New(e.locale)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	case domain.SortNameDesc:
		c := collate.New(e.locale)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return c.CompareString(b.Name, a.Name)
		})
	case domain.SortNewest:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(newRank(a), newRank(b))
		})
	}
}

// price normalizes a malformed price to zero for comparisons.
func price(p domain.Product) float64 {
	if math.IsNaN(p.Price) {
		return 0
	}
	return p.Price
}

func lowerBound(q domain.CatalogQuery) float64 {
	if q.PriceMin == nil {
		return 0
	}
	return *q.PriceMin
}

func newRank(p domain.Product) int {
	if p.IsNew {
		return 0
	}
	return 1
}

type filter struct {
	text       *textMatcher
	categories map[string]struct{}
	excluded   map[string]struct{}
	priceMin   *float64
	priceMax   *float64
	onlyNew    bool
	onlySale   bool
	onlyStock  bool
	saleRule   domain.SaleRule
}

func (e Engine) newFilter(q domain.CatalogQuery) filter {
	f := filter{
		text:       newTextMatcher(q.FreeText),
		categories: toSet(q.CategoryIn),
		excluded:   toSet(q.ExcludeIDs),
		priceMin:   q.PriceMin,
		priceMax:   q.PriceMax,
		onlyNew:    q.OnlyNew,
		onlySale:   q.OnlySale,
		onlyStock:  q.OnlyInStock,
		saleRule:   e.saleRule,
	}
	return f
}

func (f filter) keep(p domain.Product) bool {
	if f.text != nil && !f.text.matchProduct(p) {
		return false
	}
	if f.categories != nil {
		if _, ok := f.categories[p.Category]; !ok {
			return false
		}
	}
	if f.excluded != nil {
		if _, ok := f.excluded[p.ID]; ok {
			return false
		}
	}
	if f.priceMin != nil && price(p) < *f.priceMin {
		return false
	}
	if f.priceMax != nil && price(p) > *f.priceMax {
		return false
	}
	if f.onlyNew && !p.IsNew {
		return false
	}
	if f.onlySale && !f.saleRule.OnSale(p) {
		return false
	}
	if f.onlyStock && !p.Available() {
		return false
	}
	return true
}

func toSet(vs []string) map[string]struct{} {
	if len(vs) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return set
}

// A textMatcher runs two substring tests per field: an exact one and a
// case-folded one. Uncased scripts fold to themselves, so Arabic and
// Latin text share a single path.
type textMatcher struct {
	raw    string
	folded string
	fold   cases.Caser
}

func newTextMatcher(text string) *textMatcher {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	fold := cases.Fold()
	return &textMatcher{
		raw:    text,
		folded: fold.String(text),
		fold:   fold,
	}
}

func (m *textMatcher) matchProduct(p domain.Product) bool {
	fields := [...]string{
		p.Name,
		p.NameLocalized,
		p.Category,
		p.Description,
		p.DescriptionLocalized,
	}
	for _, field := range fields {
		if m.match(field) {
			return true
		}
	}
	return false
}

func (m *textMatcher) match(field string) bool {
	if field == "" {
		return false
	}
	if strings.Contains(field, m.raw) {
		return true
	}
	return strings.Contains(m.fold.String(field), m.folded)
}
