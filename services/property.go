package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"parcelsync/models"
	"parcelsync/storage"
)

// PropertyStore is the property persistence the service needs.
type PropertyStore interface {
	GetPropertyByExternalID(ctx context.Context, externalID string) (*models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, p *models.Property) error
	UpdatePropertyStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus, listing models.ListingStatus) error
	CreatePropertyAddress(ctx context.Context, a *models.PropertyAddress) error
	CreatePropertyStructure(ctx context.Context, st *models.PropertyStructure) error
	CreatePropertySale(ctx context.Context, sale *models.PropertySale) error
	CreatePropertyTax(ctx context.Context, t *models.PropertyTax) error
	CreatePropertyValuation(ctx context.Context, v *models.PropertyValuation) error
	CreatePropertyEvent(ctx context.Context, e *models.PropertyEvent) error
}

// UpsertInput carries one enriched, classified record into persistence.
type UpsertInput struct {
	Detail        *models.PropertyDetail
	CompanyID     uuid.UUID
	CompanyName   string
	Status        models.PropertyStatus
	ListingStatus models.ListingStatus
	Market        string
	County        string
	MSA           string
}

type UpsertResult struct {
	PropertyID uuid.UUID
	Inserted   bool
	Updated    bool
}

type PropertyService struct {
	store PropertyStore
}

func NewPropertyService(store PropertyStore) *PropertyService {
	return &PropertyService{store: store}
}

func (s *PropertyService) GetByExternalID(ctx context.Context, externalID string) (*models.Property, error) {
	return s.store.GetPropertyByExternalID(ctx, externalID)
}

// Upsert creates or updates the property keyed by the provider's external id.
// New properties also get their satellite rows written; existing properties
// only have ownership, status and location merged. Replaying the same record
// is a no-op beyond a timestamp touch.
func (s *PropertyService) Upsert(ctx context.Context, in UpsertInput) (*UpsertResult, error) {
	detail := in.Detail
	if detail == nil || detail.ExternalID == "" {
		return nil, fmt.Errorf("upsert needs a detail with an external id")
	}

	existing, err := s.store.GetPropertyByExternalID(ctx, detail.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("lookup property %s: %w", detail.ExternalID, err)
	}

	if existing == nil {
		created, err := s.create(ctx, in)
		if err == nil {
			return &UpsertResult{PropertyID: created.ID, Inserted: true}, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, err
		}
		// Raced or replayed after a partial run; the stored row wins.
		existing, err = s.store.GetPropertyByExternalID(ctx, detail.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("requery property %s: %w", detail.ExternalID, err)
		}
		if existing == nil {
			return nil, fmt.Errorf("property %s vanished after conflict", detail.ExternalID)
		}
	}

	if err := s.update(ctx, existing, in); err != nil {
		return nil, err
	}
	return &UpsertResult{PropertyID: existing.ID, Updated: true}, nil
}

func (s *PropertyService) create(ctx context.Context, in UpsertInput) (*models.Property, error) {
	detail := in.Detail
	now := time.Now()
	companyID := in.CompanyID

	p := &models.Property{
		ID:            uuid.New(),
		ExternalID:    detail.ExternalID,
		CompanyID:     &companyID,
		Status:        in.Status,
		ListingStatus: in.ListingStatus,
		Address:       detail.Address,
		City:          detail.City,
		State:         detail.State,
		Zip:           detail.Zip,
		County:        in.County,
		MSA:           in.MSA,
		Market:        in.Market,
		Lat:           detail.Lat,
		Lng:           detail.Lng,
		PurchasePrice: detail.LastSalePrice,
		PurchaseDate:  detail.LastSaleDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateProperty(ctx, p); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("create property %s: %w", p.ExternalID, err)
	}

	// Satellite rows are written once at creation. Each write stands alone;
	// a failed satellite does not fail the property.
	if detail.AddressDetail != nil {
		addr := *detail.AddressDetail
		addr.PropertyID = p.ID
		if err := s.store.CreatePropertyAddress(ctx, &addr); err != nil {
			log.Printf("Warning: failed to save address detail for %s: %v", p.ExternalID, err)
		}
	}
	if detail.Structure != nil {
		st := *detail.Structure
		st.PropertyID = p.ID
		if err := s.store.CreatePropertyStructure(ctx, &st); err != nil {
			log.Printf("Warning: failed to save structure for %s: %v", p.ExternalID, err)
		}
	}
	for i := range detail.SaleHistory {
		sale := detail.SaleHistory[i]
		sale.PropertyID = p.ID
		if err := s.store.CreatePropertySale(ctx, &sale); err != nil {
			log.Printf("Warning: failed to save sale record for %s: %v", p.ExternalID, err)
		}
	}
	if detail.Tax != nil {
		tax := *detail.Tax
		tax.PropertyID = p.ID
		if err := s.store.CreatePropertyTax(ctx, &tax); err != nil {
			log.Printf("Warning: failed to save tax record for %s: %v", p.ExternalID, err)
		}
	}
	if detail.Valuation != nil {
		val := *detail.Valuation
		val.PropertyID = p.ID
		if err := s.store.CreatePropertyValuation(ctx, &val); err != nil {
			log.Printf("Warning: failed to save valuation for %s: %v", p.ExternalID, err)
		}
	}

	return p, nil
}

func (s *PropertyService) update(ctx context.Context, existing *models.Property, in UpsertInput) error {
	detail := in.Detail

	if existing.CompanyID == nil || *existing.CompanyID != in.CompanyID {
		event := &models.PropertyEvent{
			PropertyID: existing.ID,
			EventType:  models.EventTypeOwnershipChange,
			EventDate:  time.Now(),
			Summary:    fmt.Sprintf("ownership moved to %s", in.CompanyName),
			Source:     "sync",
			CreatedAt:  time.Now(),
		}
		if err := s.store.CreatePropertyEvent(ctx, event); err != nil {
			log.Printf("Warning: failed to record ownership change for %s: %v", existing.ExternalID, err)
		}
	}

	companyID := in.CompanyID
	existing.CompanyID = &companyID
	existing.Status = in.Status
	existing.ListingStatus = in.ListingStatus
	if in.County != "" {
		existing.County = in.County
	}
	if in.MSA != "" {
		existing.MSA = in.MSA
	}
	if in.Market != "" {
		existing.Market = in.Market
	}
	if detail.Lat != nil {
		existing.Lat = detail.Lat
	}
	if detail.Lng != nil {
		existing.Lng = detail.Lng
	}
	if detail.LastSalePrice != nil {
		existing.PurchasePrice = detail.LastSalePrice
	}
	if detail.LastSaleDate != nil {
		existing.PurchaseDate = detail.LastSaleDate
	}

	if err := s.store.UpdateProperty(ctx, existing); err != nil {
		return fmt.Errorf("update property %s: %w", existing.ExternalID, err)
	}
	return nil
}

// MarkSold flips a tracked property to sold when a later non-corporate
// purchase shows up. Only the status fields change; ownership history stays
// as the last corporate owner.
func (s *PropertyService) MarkSold(ctx context.Context, p *models.Property, buyerName string, saleDate time.Time) error {
	if p.Status == models.StatusSold {
		return nil
	}

	if err := s.store.UpdatePropertyStatus(ctx, p.ID, models.StatusSold, models.ListingOffMarket); err != nil {
		return fmt.Errorf("mark property %s sold: %w", p.ExternalID, err)
	}

	event := &models.PropertyEvent{
		PropertyID: p.ID,
		EventType:  models.EventTypeSold,
		EventDate:  saleDate,
		Summary:    fmt.Sprintf("sold to %s", buyerName),
		Source:     "sync",
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreatePropertyEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to record sale event for %s: %v", p.ExternalID, err)
	}
	return nil
}
