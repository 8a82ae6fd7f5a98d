// Package catalog loads the remote product catalog and derives the dashboard's analytics
// and paginated table view from a snapshot of it.
package catalog

import "time"

// Product is one record of the remote catalog.
type Product struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

// Snapshot is an immutable, point-in-time copy of the catalog.
type Snapshot struct {
	Products  []Product `json:"products"`
	Total     int       `json:"total"`
	Skip      int       `json:"skip"`
	Limit     int       `json:"limit"`
	FetchedAt time.Time `json:"-"`
}
