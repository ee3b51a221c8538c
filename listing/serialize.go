package listing

import (
	"errors"
	"fmt"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotNumeric is returned when a decimal holds NaN or an infinity, or
// does not parse at all.
var ErrNotNumeric = errors.New("decimal value is not numeric")

// FieldError names the column that failed conversion.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("serialize %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Serialize converts every decimal column of l (and of its price
// histories, one level deep) to a float. Null and zero become nil. A
// non-numeric value is an error; it is never coerced to zero.
func Serialize(l *models.Listing) (*models.SerializedListing, error) {
	if l == nil {
		return nil, errors.New("serialize: nil listing")
	}

	out := &models.SerializedListing{
		ID:              l.ID,
		MlsID:           l.MlsID,
		ListingKey:      l.ListingKey,
		ListingID:       l.ListingID,
		StandardStatus:  l.StandardStatus,
		PropertyType:    l.PropertyType,
		PropertySubType: l.PropertySubType,
		BedsTotal:       l.BedsTotal,
		BathsFull:       l.BathsFull,
		BathsHalf:       l.BathsHalf,
		YearBuilt:       l.YearBuilt,
		UnparsedAddress: l.UnparsedAddress,
		StreetNumber:    l.StreetNumber,
		StreetName:      l.StreetName,
		UnitNumber:      l.UnitNumber,
		City:            l.City,
		StateOrProvince: l.StateOrProvince,
		PostalCode:      l.PostalCode,
		PublicRemarks:   l.PublicRemarks,
		ListOfficeID:    l.ListOfficeID,
		ListMemberID:    l.ListMemberID,
		DeletedYN:       l.DeletedYN,
		ModificationAt:  l.ModificationAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		Media:           l.Media,
		Mls:             l.Mls,
	}

	fields := []struct {
		name string
		src  pgtype.Numeric
		dst  **float64
	}{
		{"listPrice", l.ListPrice, &out.ListPrice},
		{"originalListPrice", l.OriginalListPrice, &out.OriginalListPrice},
		{"closePrice", l.ClosePrice, &out.ClosePrice},
		{"livingArea", l.LivingArea, &out.LivingArea},
		{"lotSizeAcres", l.LotSizeAcres, &out.LotSizeAcres},
		{"propertyTaxes", l.PropertyTaxes, &out.PropertyTaxes},
		{"estimatedValue", l.EstimatedValue, &out.EstimatedValue},
		{"estimatedRent", l.EstimatedRent, &out.EstimatedRent},
		{"pricePerSquareFoot", l.PricePerSquareFoot, &out.PricePerSquareFoot},
		{"lastSalePrice", l.LastSalePrice, &out.LastSalePrice},
		{"latitude", l.Latitude, &out.Latitude},
		{"longitude", l.Longitude, &out.Longitude},
	}
	for _, f := range fields {
		v, err := Float(f.src)
		if err != nil {
			return nil, &FieldError{Field: f.name, Err: err}
		}
		*f.dst = v
	}

	if len(l.PriceHistories) > 0 {
		out.PriceHistories = make([]models.SerializedPriceHistory, 0, len(l.PriceHistories))
		for i, ph := range l.PriceHistories {
			price, err := Float(ph.Price)
			if err != nil {
				return nil, &FieldError{Field: fmt.Sprintf("priceHistories[%d].price", i), Err: err}
			}
			prev, err := Float(ph.PreviousPrice)
			if err != nil {
				return nil, &FieldError{Field: fmt.Sprintf("priceHistories[%d].previousPrice", i), Err: err}
			}
			out.PriceHistories = append(out.PriceHistories, models.SerializedPriceHistory{
				ID:            ph.ID,
				MlsID:         ph.MlsID,
				ListingKey:    ph.ListingKey,
				Price:         price,
				PreviousPrice: prev,
				ChangedAt:     ph.ChangedAt,
			})
		}
	}

	return out, nil
}

// Float converts one decimal. Null and zero return nil.
func Float(n pgtype.Numeric) (*float64, error) {
	if !n.Valid {
		return nil, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return nil, ErrNotNumeric
	}
	f8, err := n.Float64Value()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotNumeric, err)
	}
	if !f8.Valid || f8.Float64 == 0 {
		return nil, nil
	}
	v := f8.Float64
	return &v, nil
}

// SerializeAll serializes a batch, stopping at the first bad record.
func SerializeAll(ls []models.Listing) ([]*models.SerializedListing, error) {
	out := make([]*models.SerializedListing, 0, len(ls))
	for i := range ls {
		s, err := Serialize(&ls[i])
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", ls[i].MlsID, ls[i].ListingKey, err)
		}
		out = append(out, s)
	}
	return out, nil
}
