package models

import (
	"time"

	"github.com/google/uuid"
)

type PropertyStatus string

const (
	StatusInRenovation PropertyStatus = "in-renovation"
	StatusOnMarket     PropertyStatus = "on-market"
	StatusSold         PropertyStatus = "sold"
)

type ListingStatus string

const (
	ListingOnMarket  ListingStatus = "on-market"
	ListingOffMarket ListingStatus = "off-market"
)

// Property is a tracked corporate-owned property, keyed by the provider's
// external property id.
type Property struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	ExternalID    string         `json:"external_id" db:"external_id"`
	CompanyID     *uuid.UUID     `json:"company_id" db:"company_id"`
	OwnerID       *uuid.UUID     `json:"owner_id" db:"owner_id"`
	Status        PropertyStatus `json:"status" db:"status"`
	ListingStatus ListingStatus  `json:"listing_status" db:"listing_status"`
	Address       string         `json:"address" db:"address"`
	City          string         `json:"city" db:"city"`
	State         string         `json:"state" db:"state"`
	Zip           string         `json:"zip" db:"zip"`
	County        string         `json:"county" db:"county"`
	MSA           string         `json:"msa" db:"msa"`
	Market        string         `json:"market" db:"market"`
	Lat           *float64       `json:"lat" db:"lat"`
	Lng           *float64       `json:"lng" db:"lng"`
	PurchasePrice *float64       `json:"purchase_price" db:"purchase_price"`
	PurchaseDate  *time.Time     `json:"purchase_date" db:"purchase_date"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// PropertyAddress holds the parsed address components for a property.
// Written once when the property is first tracked.
type PropertyAddress struct {
	PropertyID  uuid.UUID `json:"property_id" db:"property_id"`
	HouseNumber string    `json:"house_number" db:"house_number"`
	Street      string    `json:"street" db:"street"`
	Unit        string    `json:"unit" db:"unit"`
	Zip4        string    `json:"zip4" db:"zip4"`
	FIPS        string    `json:"fips" db:"fips"`
}

type PropertyStructure struct {
	PropertyID   uuid.UUID `json:"property_id" db:"property_id"`
	Beds         *int      `json:"beds" db:"beds"`
	Baths        *float64  `json:"baths" db:"baths"`
	SqFt         *int      `json:"sqft" db:"sqft"`
	LotSqFt      *int      `json:"lot_sqft" db:"lot_sqft"`
	YearBuilt    *int      `json:"year_built" db:"year_built"`
	Stories      *int      `json:"stories" db:"stories"`
	Pool         bool      `json:"pool" db:"pool"`
	GarageSpaces *int      `json:"garage_spaces" db:"garage_spaces"`
}

type PropertySale struct {
	PropertyID   uuid.UUID  `json:"property_id" db:"property_id"`
	SaleDate     *time.Time `json:"sale_date" db:"sale_date"`
	SalePrice    *float64   `json:"sale_price" db:"sale_price"`
	BuyerName    string     `json:"buyer_name" db:"buyer_name"`
	SellerName   string     `json:"seller_name" db:"seller_name"`
	DocumentType string     `json:"document_type" db:"document_type"`
}

type PropertyTax struct {
	PropertyID    uuid.UUID `json:"property_id" db:"property_id"`
	Year          *int      `json:"year" db:"year"`
	Amount        *float64  `json:"amount" db:"amount"`
	AssessedValue *float64  `json:"assessed_value" db:"assessed_value"`
}

type PropertyValuation struct {
	PropertyID uuid.UUID  `json:"property_id" db:"property_id"`
	Value      *float64   `json:"value" db:"value"`
	High       *float64   `json:"high" db:"high"`
	Low        *float64   `json:"low" db:"low"`
	AsOf       *time.Time `json:"as_of" db:"as_of"`
}

const (
	EventTypeSold            = "sold"
	EventTypeOwnershipChange = "ownership_change"
	EventTypeStatusChange    = "status_change"
)

// PropertyEvent is an append-only audit row recorded when the engine or the
// status-refresh worker mutates a tracked property.
type PropertyEvent struct {
	ID         int64     `json:"id" db:"id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	EventType  string    `json:"event_type" db:"event_type"`
	EventDate  time.Time `json:"event_date" db:"event_date"`
	Summary    string    `json:"summary" db:"summary"`
	Source     string    `json:"source" db:"source"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
