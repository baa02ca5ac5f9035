package domain

import (
	"errors"
	"maps"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID                   string
	Name                 string
	NameLocalized        string
	Category             string
	Price                float64
	OriginalPrice        *float64
	IsNew                bool
	OnSale               bool
	InStock              *bool
	Description          string
	DescriptionLocalized string
	ColorImages          map[string]string
}

// Available reports whether the product is in stock.
// A product without stock information counts as available.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}

// Discounted reports whether the original price is set and above the price.
func (p Product) Discounted() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// Clone returns a copy of p that shares no pointers or maps with it.
func (p Product) Clone() Product {
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		p.OriginalPrice = &v
	}
	if p.InStock != nil {
		v := *p.InStock
		p.InStock = &v
	}
	p.ColorImages = maps.Clone(p.ColorImages)
	return p
}
