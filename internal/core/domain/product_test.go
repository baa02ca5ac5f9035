package domain_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestProductClone(t *testing.T) {
	price, inStock := 50.0, true
	p := domain.Product{
		ID:            "1",
		OriginalPrice: &price,
		InStock:       &inStock,
		ColorImages:   map[string]string{"black": "black.jpg"},
	}

	c := p.Clone()
	*c.OriginalPrice = 1
	*c.InStock = false
	c.ColorImages["black"] = "changed.jpg"

	assert.Equal(t, 50.0, price)
	assert.True(t, inStock)
	assert.Equal(t, "black.jpg", p.ColorImages["black"])

	t.Run("NilFields", func(t *testing.T) {
		c := domain.Product{ID: "2"}.Clone()
		assert.Nil(t, c.OriginalPrice)
		assert.Nil(t, c.InStock)
		assert.Nil(t, c.ColorImages)
	})
}
