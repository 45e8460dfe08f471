package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"parcelsync/models"
	"parcelsync/storage"
)

type fakePropertyStore struct {
	byExternal map[string]*models.Property
	events     []models.PropertyEvent

	// raceOnCreate simulates another writer landing the row between the
	// lookup and the insert.
	raceOnCreate *models.Property

	addressRows   int
	structureRows int
	saleRows      int
	taxRows       int
	valuationRows int
	statusUpdates int
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{byExternal: make(map[string]*models.Property)}
}

func (f *fakePropertyStore) GetPropertyByExternalID(_ context.Context, externalID string) (*models.Property, error) {
	p, ok := f.byExternal[externalID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePropertyStore) CreateProperty(_ context.Context, p *models.Property) error {
	if f.raceOnCreate != nil {
		f.byExternal[f.raceOnCreate.ExternalID] = f.raceOnCreate
		f.raceOnCreate = nil
		return storage.ErrDuplicate
	}
	if _, ok := f.byExternal[p.ExternalID]; ok {
		return storage.ErrDuplicate
	}
	copied := *p
	f.byExternal[p.ExternalID] = &copied
	return nil
}

func (f *fakePropertyStore) UpdateProperty(_ context.Context, p *models.Property) error {
	copied := *p
	f.byExternal[p.ExternalID] = &copied
	return nil
}

func (f *fakePropertyStore) UpdatePropertyStatus(_ context.Context, id uuid.UUID, status models.PropertyStatus, listing models.ListingStatus) error {
	f.statusUpdates++
	for _, p := range f.byExternal {
		if p.ID == id && p.Status != models.StatusSold {
			p.Status = status
			p.ListingStatus = listing
		}
	}
	return nil
}

func (f *fakePropertyStore) CreatePropertyAddress(context.Context, *models.PropertyAddress) error {
	f.addressRows++
	return nil
}

func (f *fakePropertyStore) CreatePropertyStructure(context.Context, *models.PropertyStructure) error {
	f.structureRows++
	return nil
}

func (f *fakePropertyStore) CreatePropertySale(context.Context, *models.PropertySale) error {
	f.saleRows++
	return nil
}

func (f *fakePropertyStore) CreatePropertyTax(context.Context, *models.PropertyTax) error {
	f.taxRows++
	return nil
}

func (f *fakePropertyStore) CreatePropertyValuation(context.Context, *models.PropertyValuation) error {
	f.valuationRows++
	return nil
}

func (f *fakePropertyStore) CreatePropertyEvent(_ context.Context, e *models.PropertyEvent) error {
	f.events = append(f.events, *e)
	return nil
}

func fullDetail(externalID string) *models.PropertyDetail {
	price := 420000.0
	saleDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	beds := 3
	return &models.PropertyDetail{
		ExternalID:    externalID,
		Address:       "42 Zilker Way",
		City:          "Austin",
		State:         "TX",
		Zip:           "78704",
		County:        "Travis",
		LastSaleDate:  &saleDate,
		LastSalePrice: &price,
		AddressDetail: &models.PropertyAddress{HouseNumber: "42", Street: "Zilker Way"},
		Structure:     &models.PropertyStructure{Beds: &beds},
		SaleHistory:   []models.PropertySale{{SalePrice: &price}, {SalePrice: &price}},
		Tax:           &models.PropertyTax{Amount: &price},
		Valuation:     &models.PropertyValuation{Value: &price},
	}
}

func TestUpsertCreatesWithSatellites(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)
	companyID := uuid.New()

	result, err := svc.Upsert(context.Background(), UpsertInput{
		Detail:        fullDetail("T-1"),
		CompanyID:     companyID,
		CompanyName:   "Zilker Homes LLC",
		Status:        models.StatusInRenovation,
		ListingStatus: models.ListingOffMarket,
		Market:        "austin",
		County:        "Travis",
		MSA:           "Austin-Round Rock",
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !result.Inserted || result.Updated {
		t.Errorf("result = %+v, want inserted only", result)
	}

	p := store.byExternal["T-1"]
	if p == nil {
		t.Fatal("property not stored")
	}
	if p.CompanyID == nil || *p.CompanyID != companyID {
		t.Error("company id not set")
	}
	if p.PurchasePrice == nil || *p.PurchasePrice != 420000 {
		t.Errorf("purchase price = %v, want 420000", p.PurchasePrice)
	}
	if p.Market != "austin" {
		t.Errorf("market = %q, want austin", p.Market)
	}

	if store.addressRows != 1 || store.structureRows != 1 || store.taxRows != 1 || store.valuationRows != 1 {
		t.Errorf("satellite rows = %d/%d/%d/%d, want 1 each",
			store.addressRows, store.structureRows, store.taxRows, store.valuationRows)
	}
	if store.saleRows != 2 {
		t.Errorf("sale rows = %d, want 2", store.saleRows)
	}
}

func TestUpsertUpdateSkipsSatellites(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)
	companyID := uuid.New()

	in := UpsertInput{
		Detail:        fullDetail("T-2"),
		CompanyID:     companyID,
		CompanyName:   "Zilker Homes LLC",
		Status:        models.StatusInRenovation,
		ListingStatus: models.ListingOffMarket,
		Market:        "austin",
	}

	if _, err := svc.Upsert(context.Background(), in); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	result, err := svc.Upsert(context.Background(), in)
	if err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	if !result.Updated || result.Inserted {
		t.Errorf("result = %+v, want updated only", result)
	}
	if store.saleRows != 2 {
		t.Errorf("sale rows = %d after replay, want 2", store.saleRows)
	}
	if len(store.events) != 0 {
		t.Errorf("replay with the same owner produced %d events, want 0", len(store.events))
	}
}

func TestUpsertOwnershipChangeEvent(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)

	oldID := uuid.New()
	store.byExternal["T-3"] = &models.Property{
		ID:         uuid.New(),
		ExternalID: "T-3",
		CompanyID:  &oldID,
		County:     "Travis",
		Status:     models.StatusInRenovation,
	}

	newID := uuid.New()
	result, err := svc.Upsert(context.Background(), UpsertInput{
		Detail:      fullDetail("T-3"),
		CompanyID:   newID,
		CompanyName: "New Owner LLC",
		Status:      models.StatusOnMarket,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !result.Updated {
		t.Error("expected an update")
	}

	if len(store.events) != 1 {
		t.Fatalf("events = %d, want 1", len(store.events))
	}
	e := store.events[0]
	if e.EventType != models.EventTypeOwnershipChange {
		t.Errorf("event type = %q, want ownership_change", e.EventType)
	}
	p := store.byExternal["T-3"]
	if p.CompanyID == nil || *p.CompanyID != newID {
		t.Error("ownership not reassigned")
	}
	if p.Status != models.StatusOnMarket {
		t.Errorf("status = %v, want on-market", p.Status)
	}
}

func TestUpsertLostRaceFallsBackToUpdate(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)

	winnerCompany := uuid.New()
	store.raceOnCreate = &models.Property{
		ID:         uuid.New(),
		ExternalID: "T-4",
		CompanyID:  &winnerCompany,
		Status:     models.StatusInRenovation,
	}

	result, err := svc.Upsert(context.Background(), UpsertInput{
		Detail:      fullDetail("T-4"),
		CompanyID:   winnerCompany,
		CompanyName: "Same Owner LLC",
		Status:      models.StatusInRenovation,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if result.Inserted {
		t.Error("lost insert race still reported as inserted")
	}
	if !result.Updated {
		t.Error("lost insert race must fall back to update")
	}
}

func TestMarkSold(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)

	p := &models.Property{ID: uuid.New(), ExternalID: "T-5", Status: models.StatusOnMarket}
	store.byExternal["T-5"] = p
	saleDate := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)

	if err := svc.MarkSold(context.Background(), p, "Jane Doe", saleDate); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}
	if store.byExternal["T-5"].Status != models.StatusSold {
		t.Error("property not marked sold")
	}
	if store.byExternal["T-5"].ListingStatus != models.ListingOffMarket {
		t.Error("sold property still listed")
	}
	if len(store.events) != 1 || store.events[0].EventType != models.EventTypeSold {
		t.Fatalf("events = %+v, want one sold event", store.events)
	}
	if !store.events[0].EventDate.Equal(saleDate) {
		t.Errorf("event date = %v, want the sale date", store.events[0].EventDate)
	}
}

func TestMarkSoldAlreadySold(t *testing.T) {
	store := newFakePropertyStore()
	svc := NewPropertyService(store)

	p := &models.Property{ID: uuid.New(), ExternalID: "T-6", Status: models.StatusSold}
	if err := svc.MarkSold(context.Background(), p, "Jane Doe", time.Now()); err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}
	if store.statusUpdates != 0 {
		t.Errorf("status updates = %d for an already-sold property, want 0", store.statusUpdates)
	}
	if len(store.events) != 0 {
		t.Errorf("events = %d for an already-sold property, want 0", len(store.events))
	}
}
