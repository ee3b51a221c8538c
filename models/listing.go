package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Listing is an MLS-sourced listing as stored in the relational store.
// (MlsID, ListingKey) is the natural key; ID is a surrogate.
type Listing struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	MlsID              string         `json:"mlsId" db:"mls_id"`
	ListingKey         string         `json:"listingKey" db:"listing_key"`
	ListingID          string         `json:"listingId" db:"listing_id"` // MLS number shown to the public
	StandardStatus     string         `json:"standardStatus" db:"standard_status"`
	PropertyType       string         `json:"propertyType" db:"property_type"`
	PropertySubType    string         `json:"propertySubType" db:"property_sub_type"`
	ListPrice          pgtype.Numeric `json:"listPrice" db:"list_price"`
	OriginalListPrice  pgtype.Numeric `json:"originalListPrice" db:"original_list_price"`
	ClosePrice         pgtype.Numeric `json:"closePrice" db:"close_price"`
	BedsTotal          int            `json:"bedsTotal" db:"beds_total"`
	BathsFull          int            `json:"bathsFull" db:"baths_full"`
	BathsHalf          int            `json:"bathsHalf" db:"baths_half"`
	LivingArea         pgtype.Numeric `json:"livingArea" db:"living_area"`
	LotSizeAcres       pgtype.Numeric `json:"lotSizeAcres" db:"lot_size_acres"`
	YearBuilt          int            `json:"yearBuilt" db:"year_built"`
	UnparsedAddress    string         `json:"unparsedAddress" db:"unparsed_address"`
	StreetNumber       string         `json:"streetNumber" db:"street_number"`
	StreetName         string         `json:"streetName" db:"street_name"`
	UnitNumber         string         `json:"unitNumber" db:"unit_number"`
	City               string         `json:"city" db:"city"`
	StateOrProvince    string         `json:"stateOrProvince" db:"state_or_province"`
	PostalCode         string         `json:"postalCode" db:"postal_code"`
	Latitude           pgtype.Numeric `json:"latitude" db:"latitude"`
	Longitude          pgtype.Numeric `json:"longitude" db:"longitude"`
	PublicRemarks      string         `json:"publicRemarks" db:"public_remarks"`
	PropertyTaxes      pgtype.Numeric `json:"propertyTaxes" db:"property_taxes"`
	EstimatedValue     pgtype.Numeric `json:"estimatedValue" db:"estimated_value"`
	EstimatedRent      pgtype.Numeric `json:"estimatedRent" db:"estimated_rent"`
	PricePerSquareFoot pgtype.Numeric `json:"pricePerSquareFoot" db:"price_per_square_foot"`
	LastSalePrice      pgtype.Numeric `json:"lastSalePrice" db:"last_sale_price"`
	ListOfficeID       *uuid.UUID     `json:"listOfficeId" db:"list_office_id"`
	ListMemberID       *uuid.UUID     `json:"listMemberId" db:"list_member_id"`
	DeletedYN          bool           `json:"deletedYn" db:"deleted_yn"`
	ModificationAt     time.Time      `json:"modificationTimestamp" db:"modification_at"`
	CreatedAt          time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time      `json:"updatedAt" db:"updated_at"`

	// Eager-loaded relations
	Media          []Media        `json:"media"`
	Mls            *Mls           `json:"mls"`
	PriceHistories []PriceHistory `json:"priceHistories"`
}

// Media is one listing photo. Lowest Order is the primary image.
type Media struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MlsID      string    `json:"mlsId" db:"mls_id"`
	ListingKey string    `json:"listingKey" db:"listing_key"`
	URL        string    `json:"url" db:"url"`
	StorageKey string    `json:"storageKey" db:"storage_key"` // set when mirrored to object storage
	Order      int       `json:"order" db:"sort_order"`
	Caption    string    `json:"caption" db:"caption"`
}

// PriceHistory rows are append-only.
type PriceHistory struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	MlsID         string         `json:"mlsId" db:"mls_id"`
	ListingKey    string         `json:"listingKey" db:"listing_key"`
	Price         pgtype.Numeric `json:"price" db:"price"`
	PreviousPrice pgtype.Numeric `json:"previousPrice" db:"previous_price"`
	ChangedAt     time.Time      `json:"changedAt" db:"changed_at"`
}

// StatusHistory rows are append-only.
type StatusHistory struct {
	ID             uuid.UUID `json:"id" db:"id"`
	MlsID          string    `json:"mlsId" db:"mls_id"`
	ListingKey     string    `json:"listingKey" db:"listing_key"`
	Status         string    `json:"status" db:"status"`
	PreviousStatus string    `json:"previousStatus" db:"previous_status"`
	ChangedAt      time.Time `json:"changedAt" db:"changed_at"`
}

// Mls is an MLS vendor (e.g. NorthstarMLS).
type Mls struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Office represents a listing brokerage office
type Office struct {
	ID    uuid.UUID `json:"id" db:"id"`
	MlsID string    `json:"mlsId" db:"mls_id"`
	Key   string    `json:"officeKey" db:"office_key"`
	Name  string    `json:"name" db:"name"`
	Phone string    `json:"phone" db:"phone"`
}

// Member represents a listing agent
type Member struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	MlsID    string     `json:"mlsId" db:"mls_id"`
	Key      string     `json:"memberKey" db:"member_key"`
	FullName string     `json:"fullName" db:"full_name"`
	Email    string     `json:"email" db:"email"`
	Phone    string     `json:"phone" db:"phone"`
	OfficeID *uuid.UUID `json:"officeId" db:"office_id"`
}

// LookupValue maps a vendor code to its display text, unique per
// (MlsID, LookupName, Code).
type LookupValue struct {
	ID         uuid.UUID `json:"id" db:"id"`
	MlsID      string    `json:"mlsId" db:"mls_id"`
	LookupName string    `json:"lookupName" db:"lookup_name"`
	Code       string    `json:"code" db:"code"`
	Display    string    `json:"display" db:"display"`
}

// Lookup names
const (
	LookupPropertyType   = "PropertyType"
	LookupStandardStatus = "StandardStatus"
)

// Standard statuses (open set; vendors add their own)
const (
	StatusActive     = "Active"
	StatusPending    = "Pending"
	StatusSold       = "Sold"
	StatusComingSoon = "ComingSoon"
)

// SerializedListing is a Listing with every decimal column converted to a
// plain float. Nil means the source value was null or zero.
type SerializedListing struct {
	ID                 uuid.UUID
	MlsID              string
	ListingKey         string
	ListingID          string
	StandardStatus     string
	PropertyType       string
	PropertySubType    string
	ListPrice          *float64
	OriginalListPrice  *float64
	ClosePrice         *float64
	BedsTotal          int
	BathsFull          int
	BathsHalf          int
	LivingArea         *float64
	LotSizeAcres       *float64
	YearBuilt          int
	UnparsedAddress    string
	StreetNumber       string
	StreetName         string
	UnitNumber         string
	City               string
	StateOrProvince    string
	PostalCode         string
	Latitude           *float64
	Longitude          *float64
	PublicRemarks      string
	PropertyTaxes      *float64
	EstimatedValue     *float64
	EstimatedRent      *float64
	PricePerSquareFoot *float64
	LastSalePrice      *float64
	ListOfficeID       *uuid.UUID
	ListMemberID       *uuid.UUID
	DeletedYN          bool
	ModificationAt     time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Media          []Media
	Mls            *Mls
	PriceHistories []SerializedPriceHistory
}

type SerializedPriceHistory struct {
	ID            uuid.UUID `json:"id"`
	MlsID         string    `json:"mlsId"`
	ListingKey    string    `json:"listingKey"`
	Price         *float64  `json:"price"`
	PreviousPrice *float64  `json:"previousPrice"`
	ChangedAt     time.Time `json:"changedAt"`
}
