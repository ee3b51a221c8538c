package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore serves the same listing schema from a local file. It backs
// development and tests.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) FindListings(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query, args := findListingsSQL(f, questionPlaceholder)
	rows, err := s.db.QueryContext(ctx, query, args...)
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

func (s *SQLiteStore) FindListing(ctx context.Context, listingKey string) (*models.Listing, error) {
	l, err := scanListing(s.db.QueryRowContext(ctx, findListingSQL(questionPlaceholder), listingKey))
	if errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) mediaFor(ctx context.Context, keys []string) ([]models.Media, error) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := fmt.Sprintf(`
		SELECT id, mls_id, listing_key, url, storage_key, sort_order, caption
		FROM media WHERE listing_key IN (%s)
		ORDER BY mls_id, listing_key, sort_order ASC`, strings.TrimSuffix(strings.Repeat("?,", len(keys)), ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
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

// Timestamps are stored in UTC so they order correctly as text.
func (s *SQLiteStore) UpsertListing(ctx context.Context, l *models.Listing) error {
	now := time.Now().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.ModificationAt.IsZero() {
		l.ModificationAt = now
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.ModificationAt = l.ModificationAt.UTC()
	l.UpdatedAt = now

	err := s.db.QueryRowContext(ctx, upsertListingSQL(questionPlaceholder), upsertListingArgs(l)...).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("upsert listing %s/%s: %w", l.MlsID, l.ListingKey, err)
	}
	return nil
}

func (s *SQLiteStore) ReplaceMedia(ctx context.Context, mlsID, listingKey string, media []models.Media) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM media WHERE mls_id = ? AND listing_key = ?`, mlsID, listingKey); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	for i := range media {
		m := &media[i]
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.MlsID, m.ListingKey = mlsID, listingKey
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO media (id, mls_id, listing_key, url, storage_key, sort_order, caption)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.MlsID, m.ListingKey, m.URL, m.StorageKey, m.Order, m.Caption); err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AppendPriceHistory(ctx context.Context, ph *models.PriceHistory) error {
	if ph.ID == uuid.Nil {
		ph.ID = uuid.New()
	}
	if ph.ChangedAt.IsZero() {
		ph.ChangedAt = time.Now()
	}
	ph.ChangedAt = ph.ChangedAt.UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO price_history (id, mls_id, listing_key, price, previous_price, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ph.ID, ph.MlsID, ph.ListingKey, ph.Price, ph.PreviousPrice, ph.ChangedAt)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendStatusHistory(ctx context.Context, sh *models.StatusHistory) error {
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	if sh.ChangedAt.IsZero() {
		sh.ChangedAt = time.Now()
	}
	sh.ChangedAt = sh.ChangedAt.UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_history (id, mls_id, listing_key, status, previous_status, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sh.ID, sh.MlsID, sh.ListingKey, sh.Status, sh.PreviousStatus, sh.ChangedAt)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PriceHistory(ctx context.Context, mlsID, listingKey string) ([]models.PriceHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mls_id, listing_key, price, previous_price, changed_at
		FROM price_history WHERE mls_id = ? AND listing_key = ?
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

func (s *SQLiteStore) StatusHistory(ctx context.Context, mlsID, listingKey string) ([]models.StatusHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mls_id, listing_key, status, previous_status, changed_at
		FROM status_history WHERE mls_id = ? AND listing_key = ?
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

func (s *SQLiteStore) UpsertMls(ctx context.Context, m *models.Mls) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mls (id, name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`, m.ID, m.Name)
	return err
}

func (s *SQLiteStore) UpsertOffice(ctx context.Context, o *models.Office) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO offices (id, mls_id, office_key, name, phone) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (mls_id, office_key) DO UPDATE SET name = excluded.name, phone = excluded.phone
		RETURNING id`, o.ID, o.MlsID, o.Key, o.Name, o.Phone).Scan(&o.ID)
}

func (s *SQLiteStore) UpsertMember(ctx context.Context, m *models.Member) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO members (id, mls_id, member_key, full_name, email, phone, office_id) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (mls_id, member_key) DO UPDATE SET
			full_name = excluded.full_name, email = excluded.email, phone = excluded.phone, office_id = excluded.office_id
		RETURNING id`, m.ID, m.MlsID, m.Key, m.FullName, m.Email, m.Phone, m.OfficeID).Scan(&m.ID)
}

func (s *SQLiteStore) Attribution(ctx context.Context, officeID, memberID *uuid.UUID) (*models.Office, *models.Member, error) {
	var office *models.Office
	if officeID != nil {
		var o models.Office
		err := s.db.QueryRowContext(ctx, `SELECT id, mls_id, office_key, name, phone FROM offices WHERE id = ?`, *officeID).
			Scan(&o.ID, &o.MlsID, &o.Key, &o.Name, &o.Phone)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, nil, fmt.Errorf("load office: %w", err)
		default:
			office = &o
		}
	}

	var member *models.Member
	if memberID != nil {
		var m models.Member
		err := s.db.QueryRowContext(ctx, `SELECT id, mls_id, member_key, full_name, email, phone, office_id FROM members WHERE id = ?`, *memberID).
			Scan(&m.ID, &m.MlsID, &m.Key, &m.FullName, &m.Email, &m.Phone, &m.OfficeID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, nil, fmt.Errorf("load member: %w", err)
		default:
			member = &m
		}
	}
	return office, member, nil
}

func (s *SQLiteStore) UpsertLookupValue(ctx context.Context, v *models.LookupValue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO lookup_values (id, mls_id, lookup_name, code, display) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (mls_id, lookup_name, code) DO UPDATE SET display = excluded.display
		RETURNING id`, v.ID, v.MlsID, v.LookupName, v.Code, v.Display).Scan(&v.ID)
}

func (s *SQLiteStore) LookupValues(ctx context.Context, mlsID, name string) ([]models.LookupValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mls_id, lookup_name, code, display
		FROM lookup_values WHERE mls_id = ? AND lookup_name = ?
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
