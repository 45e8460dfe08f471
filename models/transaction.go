package models

import "time"

// RawTransactionRecord is one row of the provider's transaction feed after
// normalization. Ephemeral: records live for a single market run and are
// never persisted directly.
type RawTransactionRecord struct {
	Address           string
	City              string
	State             string
	RecordingDate     time.Time
	SaleDate          time.Time
	BuyerName         string
	CorporateOwned    bool
	OwnershipCode     string
	ListingStatusHint string
}

// BoundaryDate is the date used for watermark accounting: the sale date when
// present, otherwise the recording date.
func (r *RawTransactionRecord) BoundaryDate() time.Time {
	if !r.SaleDate.IsZero() {
		return r.SaleDate
	}
	return r.RecordingDate
}

// DetailResult is one entry of a batch detail response. Exactly one of
// Property and Error is meaningful.
type DetailResult struct {
	Address  string
	Property *PropertyDetail
	Error    string
}

// PropertyDetail is the normalized enrichment payload for a single address.
// Satellite sub-objects are nil when the provider did not return them.
type PropertyDetail struct {
	ExternalID      string
	Address         string
	City            string
	State           string
	Zip             string
	County          string
	MSA             string
	Lat             *float64
	Lng             *float64
	ListingStatus   string
	LastSaleDate    *time.Time
	LastSalePrice   *float64
	NewConstruction bool

	AddressDetail *PropertyAddress
	Structure     *PropertyStructure
	SaleHistory   []PropertySale
	Tax           *PropertyTax
	Valuation     *PropertyValuation
}
