package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore is the MLS-backed listing database.
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

// Migrate runs the postgres migrations over a database/sql view of the pool.
func (s *PostgresStore) Migrate() error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()
	return Migrate(db, DialectPostgres)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// =============================================================================
// Listings
// =============================================================================

func (s *PostgresStore) FindListings(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query, args := findListingsSQL(f, dollarPlaceholder)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return listings, nil
	}

	keys := make([]string, len(listings))
	for i, l := range listings {
		keys[i] = l.ListingKey
	}
	media, err := s.mediaFor(ctx, keys)
	if err != nil {
		return nil, err
	}
	attachMedia(listings, media)
	return listings, nil
}

// FindListing returns the most recently modified live listing with key,
// with media and price history loaded.
func (s *PostgresStore) FindListing(ctx context.Context, listingKey string) (*models.Listing, error) {
	l, err := scanListing(s.pool.QueryRow(ctx, findListingSQL(dollarPlaceholder), listingKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing %s: %w", listingKey, err)
	}

	media, err := s.mediaFor(ctx, []string{l.ListingKey})
	if err != nil {
		return nil, err
	}
	ls := []models.Listing{*l}
	attachMedia(ls, media)

	history, err := s.PriceHistory(ctx, l.MlsID, l.ListingKey)
	if err != nil {
		return nil, err
	}
	ls[0].PriceHistories = history
	return &ls[0], nil
}

func (s *PostgresStore) mediaFor(ctx context.Context, keys []string) ([]models.Media, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, mls_id, listing_key, url, storage_key, sort_order, caption
		FROM media WHERE listing_key = ANY($1)
		ORDER BY mls_id, listing_key, sort_order ASC`, keys)
	if err != nil {
		return nil, fmt.Errorf("load media: %w", err)
	}
	defer rows.Close()

	var media []models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.MlsID, &m.ListingKey, &m.URL, &m.StorageKey, &m.Order, &m.Caption); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (s *PostgresStore) UpsertListing(ctx context.Context, l *models.Listing) error {
	now := time.Now()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.ModificationAt.IsZero() {
		l.ModificationAt = now
	}
	l.UpdatedAt = now

	err := s.pool.QueryRow(ctx, upsertListingSQL(dollarPlaceholder), upsertListingArgs(l)...).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("upsert listing %s/%s: %w", l.MlsID, l.ListingKey, err)
	}
	return nil
}

// ReplaceMedia swaps a listing's photo set in one transaction.
func (s *PostgresStore) ReplaceMedia(ctx context.Context, mlsID, listingKey string, media []models.Media) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM media WHERE mls_id = $1 AND listing_key = $2`, mlsID, listingKey); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	for i := range media {
		m := &media[i]
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.MlsID, m.ListingKey = mlsID, listingKey
		if _, err := tx.Exec(ctx, `
			INSERT INTO media (id, mls_id, listing_key, url, storage_key, sort_order, caption)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			m.ID, m.MlsID, m.ListingKey, m.URL, m.StorageKey, m.Order, m.Caption); err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// =============================================================================
// History (append-only)
// =============================================================================

func (s *PostgresStore) AppendPriceHistory(ctx context.Context, ph *models.PriceHistory) error {
	if ph.ID == uuid.Nil {
		ph.ID = uuid.New()
	}
	if ph.ChangedAt.IsZero() {
		ph.ChangedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_history (id, mls_id, listing_key, price, previous_price, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ph.ID, ph.MlsID, ph.ListingKey, ph.Price, ph.PreviousPrice, ph.ChangedAt)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendStatusHistory(ctx context.Context, sh *models.StatusHistory) error {
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	if sh.ChangedAt.IsZero() {
		sh.ChangedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO status_history (id, mls_id, listing_key, status, previous_status, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sh.ID, sh.MlsID, sh.ListingKey, sh.Status, sh.PreviousStatus, sh.ChangedAt)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (s *PostgresStore) PriceHistory(ctx context.Context, mlsID, listingKey string) ([]models.PriceHistory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, mls_id, listing_key, price, previous_price, changed_at
		FROM price_history WHERE mls_id = $1 AND listing_key = $2
		ORDER BY changed_at DESC`, mlsID, listingKey)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	defer rows.Close()

	var out []models.PriceHistory
	for rows.Next() {
		var ph models.PriceHistory
		if err := rows.Scan(&ph.ID, &ph.MlsID, &ph.ListingKey, &ph.Price, &ph.PreviousPrice, &ph.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

func (s *PostgresStore) StatusHistory(ctx context.Context, mlsID, listingKey string) ([]models.StatusHistory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, mls_id, listing_key, status, previous_status, changed_at
		FROM status_history WHERE mls_id = $1 AND listing_key = $2
		ORDER BY changed_at DESC`, mlsID, listingKey)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	defer rows.Close()

	var out []models.StatusHistory
	for rows.Next() {
		var sh models.StatusHistory
		if err := rows.Scan(&sh.ID, &sh.MlsID, &sh.ListingKey, &sh.Status, &sh.PreviousStatus, &sh.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// =============================================================================
// Reference data
// =============================================================================

func (s *PostgresStore) UpsertMls(ctx context.Context, m *models.Mls) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mls (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, m.ID, m.Name)
	return err
}

func (s *PostgresStore) UpsertOffice(ctx context.Context, o *models.Office) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO offices (id, mls_id, office_key, name, phone) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mls_id, office_key) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone
		RETURNING id`, o.ID, o.MlsID, o.Key, o.Name, o.Phone).Scan(&o.ID)
}

func (s *PostgresStore) UpsertMember(ctx context.Context, m *models.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO members (id, mls_id, member_key, full_name, email, phone, office_id) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (mls_id, member_key) DO UPDATE SET
			full_name = EXCLUDED.full_name, email = EXCLUDED.email, phone = EXCLUDED.phone, office_id = EXCLUDED.office_id
		RETURNING id`, m.ID, m.MlsID, m.Key, m.FullName, m.Email, m.Phone, m.OfficeID).Scan(&m.ID)
}

// Attribution loads the listing office and agent. Either may be nil.
func (s *PostgresStore) Attribution(ctx context.Context, officeID, memberID *uuid.UUID) (*models.Office, *models.Member, error) {
	var office *models.Office
	if officeID != nil {
		var o models.Office
		err := s.pool.QueryRow(ctx, `SELECT id, mls_id, office_key, name, phone FROM offices WHERE id = $1`, *officeID).
			Scan(&o.ID, &o.MlsID, &o.Key, &o.Name, &o.Phone)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return nil, nil, fmt.Errorf("load office: %w", err)
		default:
			office = &o
		}
	}

	var member *models.Member
	if memberID != nil {
		var m models.Member
		err := s.pool.QueryRow(ctx, `SELECT id, mls_id, member_key, full_name, email, phone, office_id FROM members WHERE id = $1`, *memberID).
			Scan(&m.ID, &m.MlsID, &m.Key, &m.FullName, &m.Email, &m.Phone, &m.OfficeID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return nil, nil, fmt.Errorf("load member: %w", err)
		default:
			member = &m
		}
	}
	return office, member, nil
}

func (s *PostgresStore) UpsertLookupValue(ctx context.Context, v *models.LookupValue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO lookup_values (id, mls_id, lookup_name, code, display) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mls_id, lookup_name, code) DO UPDATE SET display = EXCLUDED.display
		RETURNING id`, v.ID, v.MlsID, v.LookupName, v.Code, v.Display).Scan(&v.ID)
}

// LookupValues returns the code table name for one MLS.
func (s *PostgresStore) LookupValues(ctx context.Context, mlsID, name string) ([]models.LookupValue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, mls_id, lookup_name, code, display
		FROM lookup_values WHERE mls_id = $1 AND lookup_name = $2
		ORDER BY code`, mlsID, name)
	if err != nil {
		return nil, fmt.Errorf("lookup values: %w", err)
	}
	defer rows.Close()

	var out []models.LookupValue
	for rows.Next() {
		var v models.LookupValue
		if err := rows.Scan(&v.ID, &v.MlsID, &v.LookupName, &v.Code, &v.Display); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
