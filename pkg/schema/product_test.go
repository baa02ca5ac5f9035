package schema

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductV1(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		originalPrice := 520.0
		inStock := false
		vMarshal := ProductV1{
			ID:                   "testID",
			Name:                 "testName",
			NameLocalized:        "فستان",
			Category:             "testCategory",
			Price:                420,
			OriginalPrice:        &originalPrice,
			IsNew:                true,
			OnSale:               true,
			InStock:              &inStock,
			Description:          "testDescription",
			DescriptionLocalized: "وصف",
			ColorImages: map[string]string{
				"black": "black.jpg",
				"red":   "red.jpg",
			},
		}

		var productSchema avro.Schema

		require.NotPanics(t, func() {
			productSchema = ProductV1Avro()
		})

		data, err := avro.Marshal(productSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal ProductV1
		err = avro.Unmarshal(productSchema, data, &vUnmarshal)
		require.NoError(t, err)

		assert.Equal(t, vMarshal, vUnmarshal)
	})

	t.Run("NilOptionalsAndMap", func(t *testing.T) {
		vMarshal := ProductV1{
			ID:       "testID",
			Name:     "testName",
			Category: "testCategory",
			Price:    10,
		}

		var pSchema avro.Schema

		require.NotPanics(t, func() {
			pSchema = ProductV1Avro()
		})

		data, err := avro.Marshal(pSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal ProductV1
		err = avro.Unmarshal(pSchema, data, &vUnmarshal)
		require.NoError(t, err)

		assert.Equal(t, vMarshal.ID, vUnmarshal.ID)
		assert.Equal(t, vMarshal.Price, vUnmarshal.Price)
		assert.Nil(t, vUnmarshal.OriginalPrice)
		assert.Nil(t, vUnmarshal.InStock)
		assert.Empty(t, vUnmarshal.ColorImages)
	})
}

func TestRecentSearchesV1(t *testing.T) {
	var s avro.Schema
	require.NotPanics(t, func() {
		s = RecentSearchesV1Avro()
	})

	encode := AvroEncodeFn(s)
	decode := AvroDecodeFn(s)

	data, err := encode(RecentSearchesV1{"velvet", "مخمل"})
	require.NoError(t, err)

	var v RecentSearchesV1
	require.NoError(t, decode(data, &v))
	assert.Equal(t, RecentSearchesV1{"velvet", "مخمل"}, v)
}
