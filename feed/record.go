package feed

import (
	"strconv"
	"strings"
)

// Record is a fully normalized listing from a feed document. All
// permissiveness around provider quirks (blank-vs-null sentinels,
// single-vs-list sections, garbage numerics) is resolved before a
// Record leaves this package; nil means the feed had no usable value.
type Record struct {
	MLSID          *string
	MLSInternalID  *string
	MLSBoard       *string
	Status         *string
	Price          *float64
	ListingURL     *string
	VirtualTourURL *string

	Address    *string
	UnitNumber *string
	City       *string
	State      *string
	Zip        *string
	Lat        *float64
	Lng        *float64

	PropertyType *string
	Description  *string
	Beds         *int
	Baths        *float64
	BathsFull    *int
	BathsHalf    *int
	LivingArea   *int
	LotSize      *float64
	YearBuilt    *int

	PetsAllowed *bool

	Agent      *AgentRecord
	Office     *OfficeRecord
	Photos     []PhotoRecord
	OpenHouses []OpenHouseRecord
}

type AgentRecord struct {
	FirstName   *string
	LastName    *string
	Email       *string
	License     *string
	OfficePhone *string
	PhotoURL    *string
}

type OfficeRecord struct {
	Name          *string
	BrokerageName *string
	BrokerPhone   *string
	BrokerEmail   *string
	Address       *string
	City          *string
	State         *string
	Zip           *string
}

type PhotoRecord struct {
	URL     *string
	Caption *string
}

type OpenHouseRecord struct {
	Date      *string
	StartTime *string
	EndTime   *string
}

// IsRental reports whether the record describes a rental listing,
// derived from the feed status.
func (r *Record) IsRental() bool {
	if r.Status == nil {
		return false
	}
	switch strings.ToLower(*r.Status) {
	case "for rent", "rental", "rented":
		return true
	}
	return false
}

// cleanString maps provider no-value sentinels to nil: the empty string
// and the case-insensitive literals "none" and "null".
func cleanString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "none", "null":
		return nil
	}
	return &s
}

// parseInt is permissive: garbage or absent input is no-value, never an
// error. A single bad numeric field must not fail the record.
func parseInt(s string) *int {
	cleaned := cleanString(s)
	if cleaned == nil {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(*cleaned, ",", ""))
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(s string) *float64 {
	cleaned := cleanString(s)
	if cleaned == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(*cleaned, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseNoPets derives the pets-allowed flag. True only when the feed
// explicitly encodes the no-pets flag as "no"; anything else, including
// absence, is no-value rather than false.
func parseNoPets(s string) *bool {
	cleaned := cleanString(s)
	if cleaned == nil {
		return nil
	}
	if strings.EqualFold(*cleaned, "no") {
		v := true
		return &v
	}
	return nil
}
