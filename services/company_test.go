package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"parcelsync/models"
	"parcelsync/storage"
)

type fakeCompanyStore struct {
	byKey       map[string]*models.Company
	failCreate  bool
	createCalls int
	countyCalls int
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{byKey: make(map[string]*models.Company)}
}

func (f *fakeCompanyStore) ListCompanies(context.Context) ([]models.Company, error) {
	out := make([]models.Company, 0, len(f.byKey))
	for _, c := range f.byKey {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCompanyStore) GetCompanyByComparisonKey(_ context.Context, key string) (*models.Company, error) {
	c, ok := f.byKey[key]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCompanyStore) CreateCompany(_ context.Context, c *models.Company) error {
	f.createCalls++
	if f.failCreate {
		return storage.ErrDuplicate
	}
	if _, ok := f.byKey[c.ComparisonKey]; ok {
		return storage.ErrDuplicate
	}
	copied := *c
	f.byKey[c.ComparisonKey] = &copied
	return nil
}

func (f *fakeCompanyStore) UpdateCompanyCounties(_ context.Context, id uuid.UUID, counties []string) error {
	f.countyCalls++
	for _, c := range f.byKey {
		if c.ID == id {
			c.Counties = append([]string(nil), counties...)
			return nil
		}
	}
	return nil
}

func TestResolveCreatesNewCompany(t *testing.T) {
	store := newFakeCompanyStore()
	svc := NewCompanyService(store)
	cache := make(CompanyCache)

	company, added, err := svc.Resolve(context.Background(), cache, "  Hill Country Homes, LLC ", "Travis")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !added {
		t.Error("added = false, want true for a first-seen buyer")
	}
	if company.Name != "Hill Country Homes, LLC" {
		t.Errorf("name = %q, want trimmed original formatting", company.Name)
	}
	if company.ComparisonKey != "hill country homes llc" {
		t.Errorf("comparison key = %q, want hill country homes llc", company.ComparisonKey)
	}
	if len(company.Counties) != 1 || company.Counties[0] != "Travis" {
		t.Errorf("counties = %v, want [Travis]", company.Counties)
	}
	if cache["hill country homes llc"] != company {
		t.Error("new company not cached")
	}
}

func TestResolveCacheHitSkipsStore(t *testing.T) {
	store := newFakeCompanyStore()
	svc := NewCompanyService(store)

	existing := &models.Company{ID: uuid.New(), Name: "Cached Homes LLC", ComparisonKey: "cached homes llc", Counties: []string{"Travis"}}
	cache := CompanyCache{"cached homes llc": existing}

	company, added, err := svc.Resolve(context.Background(), cache, "CACHED HOMES LLC", "Travis")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if added {
		t.Error("added = true for a cached buyer")
	}
	if company != existing {
		t.Error("cache hit returned a different company")
	}
	if store.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", store.createCalls)
	}
	if store.countyCalls != 0 {
		t.Errorf("county update for an already-covered county, calls = %d", store.countyCalls)
	}
}

func TestResolveAppendsNewCounty(t *testing.T) {
	store := newFakeCompanyStore()
	svc := NewCompanyService(store)

	existing := &models.Company{ID: uuid.New(), Name: "Cached Homes LLC", ComparisonKey: "cached homes llc", Counties: []string{"Travis"}}
	cache := CompanyCache{"cached homes llc": existing}

	if _, _, err := svc.Resolve(context.Background(), cache, "Cached Homes LLC", "Williamson"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if store.countyCalls != 1 {
		t.Errorf("county update calls = %d, want 1", store.countyCalls)
	}
	if len(existing.Counties) != 2 || existing.Counties[1] != "Williamson" {
		t.Errorf("counties = %v, want [Travis Williamson]", existing.Counties)
	}

	// Same county again, different casing: no further update.
	if _, _, err := svc.Resolve(context.Background(), cache, "Cached Homes LLC", "WILLIAMSON"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if store.countyCalls != 1 {
		t.Errorf("county update calls = %d after case-variant repeat, want 1", store.countyCalls)
	}
}

func TestResolveDuplicateRequeriesStore(t *testing.T) {
	store := newFakeCompanyStore()
	winner := &models.Company{ID: uuid.New(), Name: "Race Winner LLC", ComparisonKey: "race winner llc"}
	store.byKey[winner.ComparisonKey] = winner
	store.failCreate = true

	svc := NewCompanyService(store)
	cache := make(CompanyCache)

	company, added, err := svc.Resolve(context.Background(), cache, "Race Winner LLC", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if added {
		t.Error("added = true after losing the insert race")
	}
	if company.ID != winner.ID {
		t.Error("conflict requery did not return the stored row")
	}
	if cache["race winner llc"] == nil {
		t.Error("requeried company not cached")
	}
}

func TestResolveEmptyBuyerName(t *testing.T) {
	svc := NewCompanyService(newFakeCompanyStore())
	if _, _, err := svc.Resolve(context.Background(), make(CompanyCache), "  ..  ", "Travis"); err == nil {
		t.Fatal("expected an error for a buyer name that normalizes to nothing")
	}
}
