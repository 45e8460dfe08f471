package provider

import (
	"strings"
	"time"

	"parcelsync/models"
)

// The single point where the provider's dual field naming collapses into the
// fixed internal record shapes. Date strings arrive as YYYY-MM-DD or RFC
// 3339 depending on payload age.

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func pick(camel, snake string) string {
	if camel != "" {
		return camel
	}
	return snake
}

func pickBool(camel, snake *bool) bool {
	if camel != nil {
		return *camel
	}
	if snake != nil {
		return *snake
	}
	return false
}

func pickFloat(camel, snake *float64) *float64 {
	if camel != nil {
		return camel
	}
	return snake
}

func pickInt(camel, snake *int) *int {
	if camel != nil {
		return camel
	}
	return snake
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDatePtr(s string) *time.Time {
	t := parseDate(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func normalizeTransaction(w *wireTransaction) models.RawTransactionRecord {
	return models.RawTransactionRecord{
		Address:           strings.TrimSpace(w.Address),
		City:              strings.TrimSpace(w.City),
		State:             strings.TrimSpace(w.State),
		RecordingDate:     parseDate(pick(w.RecordingDate, w.RecordingDateSnake)),
		SaleDate:          parseDate(pick(w.SaleDate, w.SaleDateSnake)),
		BuyerName:         strings.TrimSpace(pick(w.BuyerName, w.BuyerNameSnake)),
		CorporateOwned:    pickBool(w.CorporateOwned, w.CorporateOwnedSnk),
		OwnershipCode:     strings.TrimSpace(pick(w.OwnershipCode, w.OwnershipCodeSnake)),
		ListingStatusHint: pick(w.ListingStatus, w.ListingStatusSnake),
	}
}

func normalizeDetail(w *wireDetail) *models.PropertyDetail {
	if w == nil {
		return nil
	}

	d := &models.PropertyDetail{
		ExternalID:      pick(w.PropertyID, w.PropertyIDSnake),
		Address:         strings.TrimSpace(w.Address),
		City:            strings.TrimSpace(w.City),
		State:           strings.TrimSpace(w.State),
		Zip:             strings.TrimSpace(w.Zip),
		County:          strings.TrimSpace(w.County),
		MSA:             strings.TrimSpace(w.MSA),
		Lat:             w.Lat,
		Lng:             w.Lng,
		ListingStatus:   pick(w.ListingStatus, w.ListingStatusSnake),
		LastSaleDate:    parseDatePtr(pick(w.LastSaleDate, w.LastSaleDateSnake)),
		LastSalePrice:   pickFloat(w.LastSalePrice, w.LastSalePriceSnake),
		NewConstruction: pickBool(w.NewConstruction, w.NewConstructionSnake),
	}

	if addr := firstAddressDetail(w.AddressDetail, w.AddressDetailSnake); addr != nil {
		d.AddressDetail = &models.PropertyAddress{
			HouseNumber: pick(addr.HouseNumber, addr.HouseNumberSnake),
			Street:      addr.Street,
			Unit:        addr.Unit,
			Zip4:        addr.Zip4,
			FIPS:        addr.FIPS,
		}
	}

	if s := w.Structure; s != nil {
		d.Structure = &models.PropertyStructure{
			Beds:         s.Beds,
			Baths:        s.Baths,
			SqFt:         pickInt(s.SqFt, s.SqFtSnake),
			LotSqFt:      pickInt(s.LotSqFt, s.LotSqFtSnake),
			YearBuilt:    pickInt(s.YearBuilt, s.YearBuiltSnake),
			Stories:      s.Stories,
			Pool:         s.Pool != nil && *s.Pool,
			GarageSpaces: pickInt(s.GarageSpaces, s.GarageSpacesSnake),
		}
	}

	sales := w.SaleHistory
	if len(sales) == 0 {
		sales = w.SaleHistorySnake
	}
	for _, sale := range sales {
		d.SaleHistory = append(d.SaleHistory, models.PropertySale{
			SaleDate:     parseDatePtr(pick(sale.SaleDate, sale.SaleDateSnake)),
			SalePrice:    pickFloat(sale.SalePrice, sale.SalePriceSnake),
			BuyerName:    pick(sale.BuyerName, sale.BuyerNameSnake),
			SellerName:   pick(sale.SellerName, sale.SellerNameSnake),
			DocumentType: pick(sale.DocumentType, sale.DocumentTypeSnake),
		})
	}

	if t := w.Tax; t != nil {
		d.Tax = &models.PropertyTax{
			Year:          t.Year,
			Amount:        t.Amount,
			AssessedValue: pickFloat(t.AssessedValue, t.AssessedValueSnake),
		}
	}

	if v := w.Valuation; v != nil {
		d.Valuation = &models.PropertyValuation{
			Value: pickFloat(v.Value, v.ValueSnake),
			High:  v.High,
			Low:   v.Low,
			AsOf:  parseDatePtr(pick(v.AsOf, v.AsOfSnake)),
		}
	}

	return d
}

func firstAddressDetail(camel, snake *wireAddressDetail) *wireAddressDetail {
	if camel != nil {
		return camel
	}
	return snake
}
