// Package store persists imported listings and completed deal
// evaluations behind a backend-agnostic interface.
package store

import (
	"context"

	"github.com/haven-labs/haven-cli/internal/model"
)

// ListingFilter specifies criteria for searching imported listings.
type ListingFilter struct {
	Zipcode  string  `json:"zipcode,omitempty"`
	MinPrice float64 `json:"min_price,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	Offset   int     `json:"offset,omitempty"`
}

// DealFilter specifies criteria for listing saved evaluations.
type DealFilter struct {
	Label   model.Label `json:"label,omitempty"`
	Zipcode string      `json:"zipcode,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Offset  int         `json:"offset,omitempty"`
}

// Store defines persistence for the evaluation pipeline.
type Store interface {
	// Listings
	SaveListings(ctx context.Context, listings []model.Listing) (int, error)
	SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	// Deals
	SaveEvaluation(ctx context.Context, eval *model.DealEvaluation) (*model.Deal, error)
	GetDeal(ctx context.Context, dealID string) (*model.Deal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
