package httphandler

import "github.com/niksmo/storefront/internal/core/domain"

type (
	Product struct {
		ID                   string            `json:"id"`
		Name                 string            `json:"name"`
		NameLocalized        string            `json:"name_localized,omitempty"`
		Category             string            `json:"category"`
		Price                float64           `json:"price"`
		OriginalPrice        *float64          `json:"original_price,omitempty"`
		IsNew                bool              `json:"is_new"`
		OnSale               bool              `json:"on_sale"`
		InStock              *bool             `json:"in_stock,omitempty"`
		Description          string            `json:"description,omitempty"`
		DescriptionLocalized string            `json:"description_localized,omitempty"`
		ColorImages          map[string]string `json:"color_images,omitempty"`
	}

	RecentSearchRequest struct {
		Query string `json:"query"`
	}
)

func productFromDomain(v domain.Product) Product {
	return Product{
		ID:                   v.ID,
		Name:                 v.Name,
		NameLocalized:        v.NameLocalized,
		Category:             v.Category,
		Price:                v.Price,
		OriginalPrice:        v.OriginalPrice,
		IsNew:                v.IsNew,
		OnSale:               v.OnSale,
		InStock:              v.InStock,
		Description:          v.Description,
		DescriptionLocalized: v.DescriptionLocalized,
		ColorImages:          v.ColorImages,
	}
}

func (p Product) toDomain() domain.Product {
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

func productsFromDomain(vs []domain.Product) []Product {
	ps := make([]Product, len(vs))
	for i, v := range vs {
		ps[i] = productFromDomain(v)
	}
	return ps
}
