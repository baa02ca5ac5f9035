// Package static serves the catalog bundled into the binary.
//
// It is the fallback used when the primary products source is unavailable.
package static

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductsSource = (*ProductsSource)(nil)

//go:embed products.json
var bundledProducts []byte

type product struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	NameLocalized        string            `json:"name_localized"`
	Category             string            `json:"category"`
	Price                float64           `json:"price"`
	OriginalPrice        *float64          `json:"original_price"`
	IsNew                bool              `json:"is_new"`
	OnSale               bool              `json:"on_sale"`
	InStock              *bool             `json:"in_stock"`
	Description          string            `json:"description"`
	DescriptionLocalized string            `json:"description_localized"`
	ColorImages          map[string]string `json:"color_images"`
}

type ProductsSource struct {
	products []domain.Product
}

// NewProductsSource parses the bundled catalog.
func NewProductsSource() (ProductsSource, error) {
	return ParseProductsSource(bundledProducts)
}

func ParseProductsSource(data []byte) (ProductsSource, error) {
	const op = "static.ParseProductsSource"

	var ps []product
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ps); err != nil {
		return ProductsSource{}, fmt.Errorf("%s: %w", op, err)
	}

	vs := make([]domain.Product, len(ps))
	for i, p := range ps {
		vs[i] = p.toDomain()
	}
	return ProductsSource{vs}, nil
}

// ReadProducts returns a deep copy of the bundled catalog in file order, so
// callers may modify the result.
func (s ProductsSource) ReadProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductsSource.ReadProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vs := make([]domain.Product, len(s.products))
	for i, p := range s.products {
		vs[i] = p.Clone()
	}
	return vs, nil
}

func (p product) toDomain() domain.Product {
	return domain.Product{
		ID:                   p.ID,
		Name:                 p.Name,
		NameLocalized:        p.NameLocalized,
		Category:             p.Category,
		Price:                p.Price,
		OriginalPrice:        p.OriginalPrice,
		IsNew:                p.IsNew,
		OnSale:               p.OnSale,
		InStock:              p.InStock,
		Description:          p.Description,
		DescriptionLocalized: p.DescriptionLocalized,
		ColorImages:          p.ColorImages,
	}
}
