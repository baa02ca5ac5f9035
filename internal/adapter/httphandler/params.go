package httphandler

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

var errInvalidParam = errors.New("invalid query parameter")

// parseCatalogQuery reads the listing query parameters.
//
// category may be repeated or hold a comma separated list.
func parseCatalogQuery(v url.Values) (q domain.CatalogQuery, err error) {
	q.FreeText = v.Get("q")

	for _, raw := range v["category"] {
		for c := range strings.SplitSeq(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.CategoryIn = append(q.CategoryIn, c)
			}
		}
	}

	if q.PriceMin, err = parsePrice(v, "min_price"); err != nil {
		return q, err
	}
	if q.PriceMax, err = parsePrice(v, "max_price"); err != nil {
		return q, err
	}

	if q.OnlyNew, err = parseFlag(v, "new"); err != nil {
		return q, err
	}
	if q.OnlySale, err = parseFlag(v, "sale"); err != nil {
		return q, err
	}
	if q.OnlyInStock, err = parseFlag(v, "in_stock"); err != nil {
		return q, err
	}

	if q.Sort, err = domain.ParseSortKey(v.Get("sort")); err != nil {
		return q, fmt.Errorf("%w: sort: %w", errInvalidParam, err)
	}

	if q.Limit, err = parseLimit(v); err != nil {
		return q, err
	}
	return q, nil
}

func parsePrice(v url.Values, name string) (*float64, error) {
	s := v.Get(name)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, fmt.Errorf("%w: %s=%q", errInvalidParam, name, s)
	}
	return &f, nil
}

func parseFlag(v url.Values, name string) (bool, error) {
	s := v.Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errInvalidParam, name, s)
	}
	return b, nil
}

func parseLimit(v url.Values) (int, error) {
	s := v.Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit=%q", errInvalidParam, s)
	}
	return n, nil
}
