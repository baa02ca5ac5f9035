package schema

import "github.com/hamba/avro/v2"

const ProductSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "product",
	"fields" : [
		{"name": "id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "name_localized", "type": "string", "default": ""},
		{"name": "category", "type": "string", "default": ""},
		{"name": "price", "type": "double", "default": 0},
		{"name": "original_price", "type": ["null", "double"], "default": null},
		{"name": "is_new", "type": "boolean", "default": false},
		{"name": "on_sale", "type": "boolean", "default": false},
		{"name": "in_stock", "type": ["null", "boolean"], "default": null},
		{"name": "description", "type": "string", "default": ""},
		{"name": "description_localized", "type": "string", "default": ""},
		{"name": "color_images", "type": {"type": "map", "values": "string"}, "default": {}}
	]
}`

type ProductV1 struct {
	ID                   string            `avro:"id"`
	Name                 string            `avro:"name"`
	NameLocalized        string            `avro:"name_localized"`
	Category             string            `avro:"category"`
	Price                float64           `avro:"price"`
	OriginalPrice        *float64          `avro:"original_price"`
	IsNew                bool              `avro:"is_new"`
	OnSale               bool              `avro:"on_sale"`
	InStock              *bool             `avro:"in_stock"`
	Description          string            `avro:"description"`
	DescriptionLocalized string            `avro:"description_localized"`
	ColorImages          map[string]string `avro:"color_images"`
}

func ProductV1Avro() avro.Schema {
	return avro.MustParse(ProductSchemaTextV1)
}
