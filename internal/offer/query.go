package offer

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrInvalidPriceMin = errors.New("invalid priceMin")
	ErrInvalidPriceMax = errors.New("invalid priceMax")
)

// SortOrder of a search
type SortOrder int

const (
	SortNatural SortOrder = iota
	SortPriceAsc
	SortPriceDesc
)

// SearchParams is the typed form of the GET /offers query string
type SearchParams struct {
	Title    string
	PriceMin *float64
	PriceMax *float64
	Sort     SortOrder
	Page     int
	Limit    int
}

// Skip is the number of matching offers before the requested page
func (p SearchParams) Skip() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ParseSearchParams validates the query string. page falls back to 1 and
// limit to defaultLimit when missing, malformed or below 1. limit is capped
// at maxLimit and page at the largest value whose offset fits in an int.
func ParseSearchParams(q url.Values, defaultLimit, maxLimit int) (SearchParams, error) {
	p := SearchParams{
		Title: strings.TrimSpace(q.Get("title")),
		Page:  1,
		Limit: defaultLimit,
	}

	var err error
	if p.PriceMin, err = parsePrice(q.Get("priceMin")); err != nil {
		return SearchParams{}, ErrInvalidPriceMin
	}
	if p.PriceMax, err = parsePrice(q.Get("priceMax")); err != nil {
		return SearchParams{}, ErrInvalidPriceMax
	}

	switch q.Get("sort") {
	case "price-asc":
		p.Sort = SortPriceAsc
	case "price-desc":
		p.Sort = SortPriceDesc
	}

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 1 {
		p.Limit = limit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	// page*limit must stay within int so Skip never overflows
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		p.Page = min(page, math.MaxInt/max(p.Limit, 1))
	}

	return p, nil
}

// matches reports whether o satisfies the title and price filters
func (p SearchParams) matches(o *Offer) bool {
	if p.Title != "" && !strings.Contains(strings.ToLower(o.Name), strings.ToLower(p.Title)) {
		return false
	}
	if p.PriceMin != nil && o.Price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && o.Price > *p.PriceMax {
		return false
	}
	return true
}

func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := ParsePrice(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParsePrice parses a decimal price. NaN and infinities are rejected.
func ParsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
