package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             string
	Name           string
	Description    string
	Price          decimal.Decimal
	Category       string
	Stock          int
	Images         []string
	Features       []string
	Specifications map[string]string
	CreatedAt      time.Time
}

// FirstImage returns the primary image URL or "".
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductFilter narrows catalog listings. Empty fields match everything.
type ProductFilter struct {
	Category string
	// Query is matched as a case-insensitive substring of the name.
	Query string
}

// AllCategories is the category value that disables category filtering.
const AllCategories = "all"

// Normalize drops the "all" category marker.
func (f ProductFilter) Normalize() ProductFilter {
	if f.Category == AllCategories {
		f.Category = ""
	}
	return f
}
