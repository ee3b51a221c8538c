package listing

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ImageURLBuilder resolves a CMS image reference to a sized URL.
type ImageURLBuilder interface {
	URL(ref *models.ImageRef, width, height int) (string, error)
}

// LookupTable translates vendor codes to display text.
type LookupTable interface {
	Display(mlsID, lookupName, code string) string
}

// Adapter maps either listing source to a models.ListingView.
type Adapter struct {
	Images      ImageURLBuilder
	Lookups     LookupTable
	CMSLabel    string
	ImageWidth  int
	ImageHeight int
}

// NewAdapter returns an Adapter with 800x600 CMS images.
func NewAdapter(images ImageURLBuilder, lookups LookupTable, cmsLabel string) *Adapter {
	return &Adapter{
		Images:      images,
		Lookups:     lookups,
		CMSLabel:    cmsLabel,
		ImageWidth:  800,
		ImageHeight: 600,
	}
}

// Normalize never fails: unknown or empty sources get the fully defaulted
// view so one bad record cannot break a grid.
func (a *Adapter) Normalize(src models.ListingSource) models.ListingView {
	switch {
	case src.Kind == models.SourceCMS && src.CMS != nil:
		return a.fromCMS(src.CMS)
	case src.Kind == models.SourceRelational && src.Relational != nil:
		return a.fromRelational(src.Relational)
	}
	return Fallback()
}

// NormalizeAll preserves input order.
func (a *Adapter) NormalizeAll(srcs []models.ListingSource) []models.ListingView {
	views := make([]models.ListingView, 0, len(srcs))
	for _, s := range srcs {
		views = append(views, a.Normalize(s))
	}
	return views
}

// Fallback is the view for an unrecognized record.
func Fallback() models.ListingView {
	return models.ListingView{
		Title:    models.DefaultTitle,
		Location: models.UnknownLocation,
		ImageAlt: models.DefaultTitle,
		LinkURL:  models.DeadLink,
	}
}

func (a *Adapter) fromCMS(l *models.SanityListing) models.ListingView {
	v := Fallback()
	v.MLS = a.CMSLabel

	if t := strings.TrimSpace(l.Title); t != "" {
		v.Title = t
		v.ImageAlt = t
	}
	if l.Price > 0 {
		v.Price = l.Price
	}
	v.Status = NormalizeStatus(l.Status)

	if l.Address != nil {
		v.Location = joinLocation(l.Address.Region, l.Address.State)
	}

	if d := l.PropertyDetails; d != nil {
		v.Beds = nonNegative(d.Beds)
		v.Baths = nonNegative(d.Baths)
		v.Area = nonNegative(d.SqFt)
		v.PropertyType = strings.TrimSpace(d.PropertyType)
		if d.YearBuilt > 0 {
			year := d.YearBuilt
			v.YearBuilt = &year
		}
	}

	v.ImageURL = a.heroImage(l.HeroMedia)

	// No slug means no route; "#" is a dead link, kept as observed.
	if slug := l.Slug.String(); slug != "" {
		v.LinkURL = "/listings/" + slug
	}
	return v
}

func (a *Adapter) heroImage(hm *models.HeroMedia) *string {
	if hm == nil {
		return nil
	}
	for _, img := range []*models.ImageRef{hm.HeroImage, hm.Thumbnail} {
		if !img.HasRef() {
			continue
		}
		if u := a.resolve(img); u != nil {
			return u
		}
	}
	return nil
}

// resolve treats any builder failure as "no image".
func (a *Adapter) resolve(img *models.ImageRef) (u *string) {
	if a.Images == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			u = nil
		}
	}()
	s, err := a.Images.URL(img, a.ImageWidth, a.ImageHeight)
	if err != nil || s == "" {
		return nil
	}
	return &s
}

func (a *Adapter) fromRelational(l *models.SerializedListing) models.ListingView {
	v := Fallback()
	v.MLS = models.DefaultMLSLabel
	if l.Mls != nil && strings.TrimSpace(l.Mls.Name) != "" {
		v.MLS = strings.TrimSpace(l.Mls.Name)
	}

	title := relationalTitle(l)
	v.Title = title
	v.ImageAlt = title

	if l.ListPrice != nil && *l.ListPrice > 0 {
		v.Price = *l.ListPrice
	}
	v.Location = joinLocation(l.City, l.StateOrProvince)
	v.Beds = float64(max(l.BedsTotal, 0))
	v.Baths = Baths(l.BathsFull, l.BathsHalf)
	if l.LivingArea != nil && *l.LivingArea > 0 {
		v.Area = *l.LivingArea
	}
	v.Status = NormalizeStatus(a.display(l.MlsID, models.LookupStandardStatus, l.StandardStatus))
	v.PropertyType = a.propertyType(l)
	if l.YearBuilt > 0 {
		year := l.YearBuilt
		v.YearBuilt = &year
	}
	v.ImageURL = PrimaryImage(l.Media)
	if key := strings.TrimSpace(l.ListingKey); key != "" {
		v.LinkURL = "/listing/" + url.PathEscape(key)
	}
	return v
}

func (a *Adapter) propertyType(l *models.SerializedListing) string {
	code := strings.TrimSpace(l.PropertySubType)
	if code == "" {
		code = strings.TrimSpace(l.PropertyType)
	}
	if code == "" {
		return ""
	}
	return a.display(l.MlsID, models.LookupPropertyType, code)
}

// display translates an MLS-local code, falling back to the code itself.
func (a *Adapter) display(mlsID, lookupName, code string) string {
	code = strings.TrimSpace(code)
	if a.Lookups == nil || code == "" {
		return code
	}
	if d := a.Lookups.Display(mlsID, lookupName, code); d != "" {
		return d
	}
	return code
}

func relationalTitle(l *models.SerializedListing) string {
	if t := strings.TrimSpace(l.UnparsedAddress); t != "" {
		return t
	}
	street := strings.TrimSpace(strings.Join([]string{
		strings.TrimSpace(l.StreetNumber),
		strings.TrimSpace(l.StreetName),
	}, " "))
	if street != "" {
		if unit := strings.TrimSpace(l.UnitNumber); unit != "" {
			street += " #" + unit
		}
		return street
	}
	return models.DefaultTitle
}

// Baths encodes a half bath as 0.5 so 2 full + 1 half is 2.5.
func Baths(full, half int) float64 {
	return float64(max(full, 0)) + 0.5*float64(max(half, 0))
}

// PrimaryImage picks the media item with the lowest Order.
func PrimaryImage(media []models.Media) *string {
	candidates := make([]models.Media, 0, len(media))
	for _, m := range media {
		if strings.TrimSpace(m.URL) != "" {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Order < candidates[j].Order
	})
	u := candidates[0].URL
	return &u
}

// NormalizeStatus lower-cases a status and turns word boundaries into
// dashes: "ComingSoon" and "Coming Soon" both become "coming-soon".
func NormalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	var b strings.Builder
	prevLower := false
	for _, r := range status {
		switch {
		case r == ' ' || r == '_' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func joinLocation(first, second string) string {
	first, second = strings.TrimSpace(first), strings.TrimSpace(second)
	switch {
	case first != "" && second != "":
		return first + ", " + second
	case first != "":
		return first
	case second != "":
		return second
	}
	return models.UnknownLocation
}

func nonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
