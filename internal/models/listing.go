package models

import (
	"time"

	"github.com/google/uuid"
)

// BidType distinguishes the three sale mechanisms on the platform.
type BidType string

const (
	BidTypeAuction    BidType = "AUCTION"
	BidTypeTender     BidType = "TENDER"
	BidTypeDirectSale BidType = "DIRECT_SALE"
)

type Listing struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Title              string     `json:"title" db:"title"`
	Description        string     `json:"description" db:"description"`
	BidType            BidType    `json:"bid_type" db:"bid_type"`
	ProductCategory    *uuid.UUID `json:"product_category" db:"product_category"`
	ProductSubCategory *uuid.UUID `json:"product_sub_category" db:"product_sub_category"`
	StartingPrice      *float64   `json:"starting_price" db:"starting_price"`
	CurrentPrice       *float64   `json:"current_price" db:"current_price"`
	EndingAt           time.Time  `json:"ending_at" db:"ending_at"`
	OwnerID            uuid.UUID  `json:"owner_id" db:"owner_id"`
	Thumbs             []string   `json:"thumbs" db:"-"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the value the sort pipeline orders on: the live bid price
// when one exists, the starting price otherwise, zero when neither is set.
func (l *Listing) EffectivePrice() float64 {
	if l.CurrentPrice != nil {
		return *l.CurrentPrice
	}
	if l.StartingPrice != nil {
		return *l.StartingPrice
	}
	return 0
}

// SortOption controls the ordering stage of the filter pipeline.
type SortOption string

const (
	SortDefault   SortOption = "default"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
)

// ListingFilter holds the filter criteria applied, in order, by the pipeline.
// Zero values mean "stage disabled".
type ListingFilter struct {
	BidType       BidType    `json:"bid_type,omitempty"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SubCategoryID *uuid.UUID `json:"sub_category_id,omitempty"`
	Query         string     `json:"query,omitempty"`
	Sort          SortOption `json:"sort,omitempty"`
}

// CountdownState is the per-listing remaining-time snapshot recomputed every
// tick. Fields are zero-padded display strings, never persisted.
type CountdownState struct {
	Days     string `json:"days"`
	Hours    string `json:"hours"`
	Minutes  string `json:"minutes"`
	Seconds  string `json:"seconds"`
	HasEnded bool   `json:"has_ended"`
}
