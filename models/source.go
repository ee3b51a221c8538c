package models

// SourceKind tags which store a listing came from.
type SourceKind string

const (
	SourceCMS        SourceKind = "cms"
	SourceRelational SourceKind = "relational"
)

// ListingSource wraps one raw listing with an explicit origin tag. It is
// built at the query boundary so normalization never guesses the shape.
// Exactly one of Relational or CMS is set for a known Kind.
type ListingSource struct {
	Kind       SourceKind
	Relational *SerializedListing
	CMS        *SanityListing
}

func FromRelational(l *SerializedListing) ListingSource {
	return ListingSource{Kind: SourceRelational, Relational: l}
}

func FromCMS(l *SanityListing) ListingSource {
	return ListingSource{Kind: SourceCMS, CMS: l}
}

// ListingView is the presentation contract shared by both sources. Every
// field is always populated with a value or its defined zero.
type ListingView struct {
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Location     string  `json:"location"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	Area         float64 `json:"area"`
	Status       string  `json:"status"`
	ImageURL     *string `json:"imageUrl"`
	ImageAlt     string  `json:"imageAlt"`
	PropertyType string  `json:"propertyType"`
	YearBuilt    *int    `json:"yearBuilt"`
	LinkURL      string  `json:"linkUrl"`
	MLS          string  `json:"mls"`
}

// View placeholders
const (
	DefaultTitle    = "Property"
	UnknownLocation = "Location Unknown"
	DeadLink        = "#"
	DefaultMLSLabel = "MLS"
)

// Normalized ListingView.Status values the presentation layer styles.
const (
	ViewActive     = "active"
	ViewPending    = "pending"
	ViewComingSoon = "coming-soon"
	ViewSold       = "sold"
)

// ListingDetail backs the single-listing page. Histories are newest first.
type ListingDetail struct {
	Listing       ListingView              `json:"listing"`
	Remarks       string                   `json:"remarks,omitempty"`
	Photos        []string                 `json:"photos"`
	PriceHistory  []SerializedPriceHistory `json:"priceHistory"`
	StatusHistory []StatusHistory          `json:"statusHistory"`

	// IDX attribution, nil when the listing carries no office or agent
	Office *Office `json:"office,omitempty"`
	Agent  *Member `json:"agent,omitempty"`
}
