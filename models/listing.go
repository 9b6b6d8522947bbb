package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses as they arrive from feed providers
const (
	ListingStatusActive  = "Active"
	ListingStatusPending = "Pending"
	ListingStatusSold    = "Sold"
)

// Listing is one property record, keyed by the provider-assigned MLS id.
// Field pointers are nullable columns: an update from the feed is a full
// replace, so absent values overwrite stored ones with NULL.
type Listing struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	MLSID          string     `json:"mls_id" db:"mls_id"`
	MLSInternalID  *string    `json:"mls_internal_id" db:"mls_internal_id"`
	MLSBoard       *string    `json:"mls_board" db:"mls_board"`
	Status         *string    `json:"status" db:"status"`
	Price          *float64   `json:"price" db:"price"`
	ListingURL     *string    `json:"listing_url" db:"listing_url"`
	VirtualTourURL *string    `json:"virtual_tour_url" db:"virtual_tour_url"`
	Address        *string    `json:"address" db:"address"`
	UnitNumber     *string    `json:"unit_number" db:"unit_number"`
	City           *string    `json:"city" db:"city"`
	State          *string    `json:"state" db:"state"`
	Zip            *string    `json:"zip" db:"zip"`
	Lat            *float64   `json:"lat" db:"lat"`
	Lng            *float64   `json:"lng" db:"lng"`
	PropertyType   *string    `json:"property_type" db:"property_type"`
	Description    *string    `json:"description" db:"description"`
	Beds           *int       `json:"beds" db:"beds"`
	Baths          *float64   `json:"baths" db:"baths"`
	BathsFull      *int       `json:"baths_full" db:"baths_full"`
	BathsHalf      *int       `json:"baths_half" db:"baths_half"`
	LivingArea     *int       `json:"living_area" db:"living_area"`
	LotSize        *float64   `json:"lot_size" db:"lot_size"`
	YearBuilt      *int       `json:"year_built" db:"year_built"`
	IsRental       bool       `json:"is_rental" db:"is_rental"`
	PetsAllowed    *bool      `json:"pets_allowed" db:"pets_allowed"`
	AgentID        *uuid.UUID `json:"agent_id" db:"agent_id"`
	OfficeID       *uuid.UUID `json:"office_id" db:"office_id"`
	SyncedAt       *time.Time `json:"synced_at" db:"synced_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Photo is an ordered image owned by a listing. SortOrder follows feed
// position. S3Key and MirrorAttempts belong to the mirror worker.
type Photo struct {
	ID             int64     `json:"id" db:"id"`
	ListingID      uuid.UUID `json:"listing_id" db:"listing_id"`
	URL            string    `json:"url" db:"url"`
	Caption        *string   `json:"caption" db:"caption"`
	SortOrder      int       `json:"sort_order" db:"sort_order"`
	S3Key          *string   `json:"s3_key" db:"s3_key"`
	MirrorAttempts int       `json:"mirror_attempts" db:"mirror_attempts"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// OpenHouse is a scheduled showing owned by a listing. Feed entries
// missing any of date/start/end are dropped before this point.
type OpenHouse struct {
	ID        int64     `json:"id" db:"id"`
	ListingID uuid.UUID `json:"listing_id" db:"listing_id"`
	Date      string    `json:"date" db:"date"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
