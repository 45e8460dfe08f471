package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"parcelsync/identity"
	"parcelsync/models"
	"parcelsync/storage"
)

// CompanyStore is the registry persistence the service needs.
type CompanyStore interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompanyByComparisonKey(ctx context.Context, key string) (*models.Company, error)
	CreateCompany(ctx context.Context, c *models.Company) error
	UpdateCompanyCounties(ctx context.Context, id uuid.UUID, counties []string) error
}

// CompanyCache maps comparison key to company for one sync run. The cache is
// built at run start and passed through the run explicitly; it is never
// shared across runs.
type CompanyCache map[string]*models.Company

type CompanyService struct {
	store CompanyStore
}

func NewCompanyService(store CompanyStore) *CompanyService {
	return &CompanyService{store: store}
}

// LoadCache reads the full registry into a per-run lookup map.
func (s *CompanyService) LoadCache(ctx context.Context) (CompanyCache, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	cache := make(CompanyCache, len(companies))
	for i := range companies {
		c := &companies[i]
		key := c.ComparisonKey
		if key == "" {
			key = identity.CompanyKey(c.Name)
		}
		cache[key] = c
	}
	return cache, nil
}

// Resolve returns the company for a corporate buyer name, creating it when
// unseen. The returned bool is true only when a new company row was created.
// Known companies get the county appended to their coverage if missing.
func (s *CompanyService) Resolve(ctx context.Context, cache CompanyCache, buyerName, county string) (*models.Company, bool, error) {
	key := identity.CompanyKey(buyerName)
	if key == "" {
		return nil, false, fmt.Errorf("empty buyer name")
	}

	if existing, ok := cache[key]; ok {
		if err := s.ensureCounty(ctx, existing, county); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	now := time.Now()
	company := &models.Company{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(buyerName),
		ComparisonKey: key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if county != "" {
		company.Counties = []string{county}
	}

	err := s.store.CreateCompany(ctx, company)
	if errors.Is(err, storage.ErrDuplicate) {
		// Another writer inserted the same key first; that row wins.
		existing, qerr := s.store.GetCompanyByComparisonKey(ctx, key)
		if qerr != nil {
			return nil, false, fmt.Errorf("requery company %q: %w", key, qerr)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("company %q vanished after conflict", key)
		}
		cache[key] = existing
		if cerr := s.ensureCounty(ctx, existing, county); cerr != nil {
			return nil, false, cerr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create company %q: %w", company.Name, err)
	}

	cache[key] = company
	return company, true, nil
}

func (s *CompanyService) ensureCounty(ctx context.Context, c *models.Company, county string) error {
	if county == "" || c.HasCounty(county) {
		return nil
	}
	c.Counties = append(c.Counties, county)
	if err := s.store.UpdateCompanyCounties(ctx, c.ID, c.Counties); err != nil {
		return fmt.Errorf("update counties for %q: %w", c.Name, err)
	}
	return nil
}
