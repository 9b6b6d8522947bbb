package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a listing's representing agent. Resolution is by exact email
// match; agents without an email are always inserted fresh (provider
// behavior, not deduped by name). UserID links to a portal account and
// is owned by the portal, never written by the sync engine.
type Agent struct {
	ID            uuid.UUID `json:"id" db:"id"`
	FirstName     *string   `json:"first_name" db:"first_name"`
	LastName      *string   `json:"last_name" db:"last_name"`
	Email         *string   `json:"email" db:"email"`
	LicenseNumber *string   `json:"license_number" db:"license_number"`
	Phone         *string   `json:"phone" db:"phone"`
	PhotoURL      *string   `json:"photo_url" db:"photo_url"`
	UserID        *int64    `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Office is a brokerage office, resolved by exact name match.
type Office struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	BrokerageName *string   `json:"brokerage_name" db:"brokerage_name"`
	BrokerPhone   *string   `json:"broker_phone" db:"broker_phone"`
	BrokerEmail   *string   `json:"broker_email" db:"broker_email"`
	Address       *string   `json:"address" db:"address"`
	City          *string   `json:"city" db:"city"`
	State         *string   `json:"state" db:"state"`
	Zip           *string   `json:"zip" db:"zip"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
