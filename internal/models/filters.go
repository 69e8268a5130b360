package models

import "github.com/shopspring/decimal"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ProductFilter selects products. Zero-valued fields do not constrain.
type ProductFilter struct {
	Category       string
	Brand          string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	Search         string
	InStock        *bool
	MinRating      *float64
	MinReviewCount *int
	DiscountedOnly bool
	NewestFirst    bool
	Skip           int
	Limit          int
}

// Normalize clamps paging to sane bounds.
func (f *ProductFilter) Normalize() {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
}

type PrincipalFilter struct {
	Kind        Kind
	PendingOnly bool
}

type QuoteFilter struct {
	CustomerID string
	Limit      int
}

type OffsetPage struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total_count"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
}
