package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"parcelsync/models"
)

// ErrDuplicate reports a unique constraint violation. The pre-existing row
// is authoritative; callers re-query instead of retrying the insert.
var ErrDuplicate = errors.New("duplicate row")

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// =============================================================================
// Properties
// =============================================================================

const propertyColumns = `id, external_id, company_id, owner_id, status, listing_status,
		address, city, state, zip, county, msa, market,
		lat, lng, purchase_price, purchase_date, created_at, updated_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID, &p.ExternalID, &p.CompanyID, &p.OwnerID, &p.Status, &p.ListingStatus,
		&p.Address, &p.City, &p.State, &p.Zip, &p.County, &p.MSA, &p.Market,
		&p.Lat, &p.Lng, &p.PurchasePrice, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) GetPropertyByExternalID(ctx context.Context, externalID string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE external_id = $1`
	return scanProperty(s.pool.QueryRow(ctx, query, externalID))
}

func (s *PostgresStore) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (
			id, external_id, company_id, owner_id, status, listing_status,
			address, city, state, zip, county, msa, market,
			lat, lng, purchase_price, purchase_date, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		p.ID, p.ExternalID, p.CompanyID, p.OwnerID, p.Status, p.ListingStatus,
		p.Address, p.City, p.State, p.Zip, p.County, p.MSA, p.Market,
		p.Lat, p.Lng, p.PurchasePrice, p.PurchaseDate, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return translateErr(err)
}

// UpdateProperty merges ownership, status and location fields into the
// existing row. Empty or nil incoming values leave the stored value alone.
func (s *PostgresStore) UpdateProperty(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties SET
			company_id = COALESCE($2, company_id),
			owner_id = COALESCE($3, owner_id),
			status = $4,
			listing_status = $5,
			county = COALESCE(NULLIF($6, ''), county),
			msa = COALESCE(NULLIF($7, ''), msa),
			market = COALESCE(NULLIF($8, ''), market),
			lat = COALESCE($9, lat),
			lng = COALESCE($10, lng),
			purchase_price = COALESCE($11, purchase_price),
			purchase_date = COALESCE($12, purchase_date),
			updated_at = NOW()
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.CompanyID, p.OwnerID, p.Status, p.ListingStatus,
		p.County, p.MSA, p.Market, p.Lat, p.Lng, p.PurchasePrice, p.PurchaseDate,
	)
	return err
}

// UpdatePropertyStatus changes status fields only. Rows already marked sold
// are left untouched so a refresh can never resurrect a sold property.
func (s *PostgresStore) UpdatePropertyStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus, listing models.ListingStatus) error {
	query := `
		UPDATE properties SET status = $2, listing_status = $3, updated_at = NOW()
		WHERE id = $1 AND status <> 'sold'`
	_, err := s.pool.Exec(ctx, query, id, status, listing)
	return err
}

func (s *PostgresStore) ListRefreshableProperties(ctx context.Context, limit, offset int) ([]models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE status <> 'sold'
		ORDER BY updated_at
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.ExternalID, &p.CompanyID, &p.OwnerID, &p.Status, &p.ListingStatus,
			&p.Address, &p.City, &p.State, &p.Zip, &p.County, &p.MSA, &p.Market,
			&p.Lat, &p.Lng, &p.PurchasePrice, &p.PurchaseDate, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// =============================================================================
// Property satellites
// =============================================================================

func (s *PostgresStore) CreatePropertyAddress(ctx context.Context, a *models.PropertyAddress) error {
	query := `
		INSERT INTO property_addresses (property_id, house_number, street, unit, zip4, fips)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, query, a.PropertyID, a.HouseNumber, a.Street, a.Unit, a.Zip4, a.FIPS)
	return translateErr(err)
}

func (s *PostgresStore) CreatePropertyStructure(ctx context.Context, st *models.PropertyStructure) error {
	query := `
		INSERT INTO property_structures (property_id, beds, baths, sqft, lot_sqft, year_built, stories, pool, garage_spaces)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, query,
		st.PropertyID, st.Beds, st.Baths, st.SqFt, st.LotSqFt, st.YearBuilt, st.Stories, st.Pool, st.GarageSpaces,
	)
	return translateErr(err)
}

func (s *PostgresStore) CreatePropertySale(ctx context.Context, sale *models.PropertySale) error {
	query := `
		INSERT INTO property_sales (property_id, sale_date, sale_price, buyer_name, seller_name, document_type)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, query,
		sale.PropertyID, sale.SaleDate, sale.SalePrice, sale.BuyerName, sale.SellerName, sale.DocumentType,
	)
	return err
}

func (s *PostgresStore) CreatePropertyTax(ctx context.Context, t *models.PropertyTax) error {
	query := `
		INSERT INTO property_taxes (property_id, year, amount, assessed_value)
		VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, query, t.PropertyID, t.Year, t.Amount, t.AssessedValue)
	return translateErr(err)
}

func (s *PostgresStore) CreatePropertyValuation(ctx context.Context, v *models.PropertyValuation) error {
	query := `
		INSERT INTO property_valuations (property_id, value, high, low, as_of)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, query, v.PropertyID, v.Value, v.High, v.Low, v.AsOf)
	return translateErr(err)
}

// =============================================================================
// Companies
// =============================================================================

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]models.Company, error) {
	query := `
		SELECT id, name, comparison_key, contact_name, contact_email, counties, created_at, updated_at
		FROM companies`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(
			&c.ID, &c.Name, &c.ComparisonKey, &c.ContactName, &c.ContactEmail, &c.Counties, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *PostgresStore) GetCompanyByComparisonKey(ctx context.Context, key string) (*models.Company, error) {
	query := `
		SELECT id, name, comparison_key, contact_name, contact_email, counties, created_at, updated_at
		FROM companies WHERE comparison_key = $1`

	var c models.Company
	err := s.pool.QueryRow(ctx, query, key).Scan(
		&c.ID, &c.Name, &c.ComparisonKey, &c.ContactName, &c.ContactEmail, &c.Counties, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, c *models.Company) error {
	query := `
		INSERT INTO companies (id, name, comparison_key, contact_name, contact_email, counties, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.ComparisonKey, c.ContactName, c.ContactEmail, c.Counties, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return translateErr(err)
}

func (s *PostgresStore) UpdateCompanyCounties(ctx context.Context, id uuid.UUID, counties []string) error {
	query := `UPDATE companies SET counties = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, counties)
	return err
}

// =============================================================================
// Sync checkpoints
// =============================================================================

func (s *PostgresStore) GetCheckpoint(ctx context.Context, marketID string) (*models.SyncCheckpoint, error) {
	query := `
		SELECT market_id, watermark_date, total_records_synced, last_synced_at
		FROM sync_checkpoints WHERE market_id = $1`

	var cp models.SyncCheckpoint
	err := s.pool.QueryRow(ctx, query, marketID).Scan(
		&cp.MarketID, &cp.WatermarkDate, &cp.TotalRecordsSynced, &cp.LastSyncedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *PostgresStore) SaveCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	query := `
		INSERT INTO sync_checkpoints (market_id, watermark_date, total_records_synced, last_synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market_id) DO UPDATE SET
			watermark_date = EXCLUDED.watermark_date,
			total_records_synced = EXCLUDED.total_records_synced,
			last_synced_at = EXCLUDED.last_synced_at`

	_, err := s.pool.Exec(ctx, query, cp.MarketID, cp.WatermarkDate, cp.TotalRecordsSynced, cp.LastSyncedAt)
	return err
}

// =============================================================================
// Property events
// =============================================================================

func (s *PostgresStore) CreatePropertyEvent(ctx context.Context, e *models.PropertyEvent) error {
	query := `
		INSERT INTO property_events (property_id, event_type, event_date, summary, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		e.PropertyID, e.EventType, e.EventDate, e.Summary, e.Source, e.CreatedAt,
	).Scan(&e.ID)
}
