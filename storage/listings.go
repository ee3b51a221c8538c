package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ErrNotFound is returned by single-record lookups.
var ErrNotFound = errors.New("not found")

// ListingFilter narrows FindListings. Empty fields do not filter.
type ListingFilter struct {
	City         string
	PropertyType string
	Status       string
	Limit        int
	Offset       int
}

// MaxListingLimit caps one page of FindListings.
const MaxListingLimit = 100

func (f ListingFilter) limit() int {
	if f.Limit <= 0 || f.Limit > MaxListingLimit {
		return MaxListingLimit
	}
	return f.Limit
}

func (f ListingFilter) offset() int {
	return max(f.Offset, 0)
}

// placeholder renders the nth (1-based) bind parameter of a dialect.
type placeholder func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }
func questionPlaceholder(int) string { return "?" }

// buildListingWhere always excludes soft-deleted rows. City and property
// type compare case-insensitively, status exactly.
func buildListingWhere(f ListingFilter, ph placeholder) (string, []any) {
	conds := []string{"l.deleted_yn = FALSE"}
	var args []any

	add := func(expr string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(expr, "?", ph(len(args)), 1))
	}

	if v := strings.TrimSpace(f.City); v != "" {
		add("LOWER(l.city) = LOWER(?)", v)
	}
	if v := strings.TrimSpace(f.PropertyType); v != "" {
		add("LOWER(l.property_type) = LOWER(?)", v)
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		add("l.standard_status = ?", v)
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

const listingColumns = `
	l.id, l.mls_id, l.listing_key, l.listing_id, l.standard_status, l.property_type, l.property_sub_type,
	l.list_price, l.original_list_price, l.close_price, l.beds_total, l.baths_full, l.baths_half,
	l.living_area, l.lot_size_acres, l.year_built, l.unparsed_address, l.street_number, l.street_name,
	l.unit_number, l.city, l.state_or_province, l.postal_code, l.latitude, l.longitude, l.public_remarks,
	l.property_taxes, l.estimated_value, l.estimated_rent, l.price_per_square_foot, l.last_sale_price,
	l.list_office_id, l.list_member_id, l.deleted_yn, l.modification_at, l.created_at, l.updated_at,
	m.id, m.name`

func findListingsSQL(f ListingFilter, ph placeholder) (string, []any) {
	where, args := buildListingWhere(f, ph)
	args = append(args, f.limit(), f.offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM listings l
		LEFT JOIN mls m ON m.id = l.mls_id
		%s
		ORDER BY l.modification_at DESC, l.listing_key
		LIMIT %s OFFSET %s`, listingColumns, where, ph(len(args)-1), ph(len(args)))
	return query, args
}

func findListingSQL(ph placeholder) string {
	return fmt.Sprintf(`
		SELECT %s
		FROM listings l
		LEFT JOIN mls m ON m.id = l.mls_id
		WHERE l.listing_key = %s AND l.deleted_yn = FALSE
		ORDER BY l.modification_at DESC
		LIMIT 1`, listingColumns, ph(1))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var l models.Listing
	var mlsID, mlsName *string
	err := row.Scan(
		&l.ID, &l.MlsID, &l.ListingKey, &l.ListingID, &l.StandardStatus, &l.PropertyType, &l.PropertySubType,
		&l.ListPrice, &l.OriginalListPrice, &l.ClosePrice, &l.BedsTotal, &l.BathsFull, &l.BathsHalf,
		&l.LivingArea, &l.LotSizeAcres, &l.YearBuilt, &l.UnparsedAddress, &l.StreetNumber, &l.StreetName,
		&l.UnitNumber, &l.City, &l.StateOrProvince, &l.PostalCode, &l.Latitude, &l.Longitude, &l.PublicRemarks,
		&l.PropertyTaxes, &l.EstimatedValue, &l.EstimatedRent, &l.PricePerSquareFoot, &l.LastSalePrice,
		&l.ListOfficeID, &l.ListMemberID, &l.DeletedYN, &l.ModificationAt, &l.CreatedAt, &l.UpdatedAt,
		&mlsID, &mlsName,
	)
	if err != nil {
		return nil, err
	}
	if mlsID != nil {
		l.Mls = &models.Mls{ID: *mlsID}
		if mlsName != nil {
			l.Mls.Name = *mlsName
		}
	}
	return &l, nil
}

func upsertListingSQL(ph placeholder) string {
	cols := []string{
		"id", "mls_id", "listing_key", "listing_id", "standard_status", "property_type", "property_sub_type",
		"list_price", "original_list_price", "close_price", "beds_total", "baths_full", "baths_half",
		"living_area", "lot_size_acres", "year_built", "unparsed_address", "street_number", "street_name",
		"unit_number", "city", "state_or_province", "postal_code", "latitude", "longitude", "public_remarks",
		"property_taxes", "estimated_value", "estimated_rent", "price_per_square_foot", "last_sale_price",
		"list_office_id", "list_member_id", "deleted_yn", "modification_at", "created_at", "updated_at",
	}
	values := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		values[i] = ph(i + 1)
		switch c {
		case "id", "mls_id", "listing_key", "created_at":
		default:
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	return fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES (%s)
		ON CONFLICT (mls_id, listing_key) DO UPDATE SET
			%s
		RETURNING id`, strings.Join(cols, ", "), strings.Join(values, ", "), strings.Join(updates, ",\n\t\t\t"))
}

func upsertListingArgs(l *models.Listing) []any {
	return []any{
		l.ID, l.MlsID, l.ListingKey, l.ListingID, l.StandardStatus, l.PropertyType, l.PropertySubType,
		l.ListPrice, l.OriginalListPrice, l.ClosePrice, l.BedsTotal, l.BathsFull, l.BathsHalf,
		l.LivingArea, l.LotSizeAcres, l.YearBuilt, l.UnparsedAddress, l.StreetNumber, l.StreetName,
		l.UnitNumber, l.City, l.StateOrProvince, l.PostalCode, l.Latitude, l.Longitude, l.PublicRemarks,
		l.PropertyTaxes, l.EstimatedValue, l.EstimatedRent, l.PricePerSquareFoot, l.LastSalePrice,
		l.ListOfficeID, l.ListMemberID, l.DeletedYN, l.ModificationAt, l.CreatedAt, l.UpdatedAt,
	}
}

type listingRef struct {
	mlsID, key string
}

// attachMedia groups media rows onto their listings by natural key.
func attachMedia(listings []models.Listing, media []models.Media) {
	byRef := make(map[listingRef][]models.Media, len(listings))
	for _, m := range media {
		ref := listingRef{m.MlsID, m.ListingKey}
		byRef[ref] = append(byRef[ref], m)
	}
	for i := range listings {
		listings[i].Media = byRef[listingRef{listings[i].MlsID, listings[i].ListingKey}]
	}
}
