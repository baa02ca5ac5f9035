package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSortKey  = errors.New("unknown sort key")
	ErrUnknownSaleRule = errors.New("unknown sale rule")
)

type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortNewest    SortKey = "newest"
)

// ParseSortKey maps the empty string to [SortFeatured].
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceAsc, SortPriceDesc,
		SortNameAsc, SortNameDesc, SortNewest:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// A SaleRule decides which products count as on sale.
type SaleRule string

const (
	SaleEither   SaleRule = "either"
	SaleFlag     SaleRule = "flag"
	SaleDiscount SaleRule = "discount"
)

func ParseSaleRule(s string) (SaleRule, error) {
	switch r := SaleRule(s); r {
	case "":
		return SaleEither, nil
	case SaleEither, SaleFlag, SaleDiscount:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSaleRule, s)
}

func (r SaleRule) OnSale(p Product) bool {
	switch r {
	case SaleFlag:
		return p.OnSale
	case SaleDiscount:
		return p.Discounted()
	default:
		return p.OnSale || p.Discounted()
	}
}

// A CatalogQuery describes one catalog lookup.
//
// Zero values mean "no constraint". PriceMin and PriceMax are inclusive.
// Limit <= 0 means no cap.
type CatalogQuery struct {
	FreeText    string
	CategoryIn  []string
	ExcludeIDs  []string
	PriceMin    *float64
	PriceMax    *float64
	OnlyNew     bool
	OnlySale    bool
	OnlyInStock bool
	Sort        SortKey
	Limit       int
}
