package listing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrUnrecognized is returned by Detect for payloads that match neither
// listing shape.
var ErrUnrecognized = errors.New("unrecognized listing shape")

// decimalKeys are the JSON names of the Listing columns decoded into
// pgtype.Numeric.
var decimalKeys = []string{
	"listPrice", "originalListPrice", "closePrice", "livingArea",
	"lotSizeAcres", "latitude", "longitude", "propertyTaxes",
	"estimatedValue", "estimatedRent", "pricePerSquareFoot", "lastSalePrice",
}

// Detect tags an untyped listing payload by capability: slug+title means
// a CMS listing, listingKey+standardStatus means an MLS record. The two
// sources share no origin tag, so this check runs once at the ingestion
// boundary and everything downstream switches on the returned Kind.
//
// Payloads matching neither shape, and CMS payloads that fail to decode,
// return an error wrapping ErrUnrecognized. An MLS payload that fails to
// decode is a data error: a bad decimal comes back as a *FieldError
// wrapping ErrNotNumeric.
//
// Relational payloads come back unserialized; callers run Serialize.
func Detect(raw json.RawMessage) (cms *models.SanityListing, rel *models.Listing, err error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, ErrUnrecognized
	}

	if present(probe, "slug") && present(probe, "title") {
		var l models.SanityListing
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, nil, fmt.Errorf("%w: cms listing: %v", ErrUnrecognized, err)
		}
		return &l, nil, nil
	}

	if present(probe, "listingKey") && present(probe, "standardStatus") {
		var l models.Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			if fe := badDecimal(probe); fe != nil {
				return nil, nil, fe
			}
			return nil, nil, fmt.Errorf("decode mls listing: %w", err)
		}
		return nil, &l, nil
	}

	return nil, nil, ErrUnrecognized
}

// badDecimal finds the first decimal key that pgtype cannot parse.
func badDecimal(probe map[string]json.RawMessage) *FieldError {
	for _, key := range decimalKeys {
		v, ok := probe[key]
		if !ok {
			continue
		}
		var n pgtype.Numeric
		if err := json.Unmarshal(v, &n); err != nil {
			return &FieldError{Field: key, Err: fmt.Errorf("%w: %s", ErrNotNumeric, v)}
		}
	}
	return nil
}

func present(m map[string]json.RawMessage, key string) bool {
	v, ok := m[key]
	return ok && string(v) != "null"
}
