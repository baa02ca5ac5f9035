package schema

import "github.com/hamba/avro/v2"

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "search_event",
	"fields" : [
		{"name": "key", "type": "string"},
		{"name": "query", "type": "string"}
	]
}`

// A SearchEventV1 is a free-text query a client submitted.
type SearchEventV1 struct {
	Key   string `avro:"key"`
	Query string `avro:"query"`
}

func SearchEventV1Avro() avro.Schema {
	return avro.MustParse(SearchEventSchemaTextV1)
}

// RecentSearchesSchemaTextV1 describes a recent searches table value,
// most recent first.
const RecentSearchesSchemaTextV1 = `{"type": "array", "items": "string"}`

type RecentSearchesV1 []string

func RecentSearchesV1Avro() avro.Schema {
	return avro.MustParse(RecentSearchesSchemaTextV1)
}
