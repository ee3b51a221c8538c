package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Variant controls image height and information density of a card.
type Variant string

const (
	VariantDefault  Variant = "default"
	VariantCompact  Variant = "compact"
	VariantFeatured Variant = "featured"
)

// ParseVariant maps unknown values to VariantDefault.
func ParseVariant(s string) Variant {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantCompact:
		return VariantCompact
	case VariantFeatured:
		return VariantFeatured
	}
	return VariantDefault
}

// PriceOnRequest is shown for a zero price.
const PriceOnRequest = "Price on request"

var printer = message.NewPrinter(language.English)

// Stat is one bed/bath/area row.
type Stat struct {
	Value string
	Label string
}

// Card is everything the card template needs, precomputed from a view.
type Card struct {
	View    models.ListingView
	Variant Variant

	ImageSrc    string
	Placeholder string
	// Fallback reports whether the <img> gets a one-shot onerror swap.
	// It is false when ImageSrc already is the placeholder.
	Fallback bool

	HeightClass  string
	ImageClass   string
	OverlayClass string

	PriceText       string
	ShowPriceBadge  bool
	ShowInlinePrice bool

	Stats []Stat
}

// NewCard derives the display rules for one listing view.
func NewCard(v models.ListingView, variant Variant, placeholder string) Card {
	variant = ParseVariant(string(variant))
	c := Card{
		View:            v,
		Variant:         variant,
		Placeholder:     placeholder,
		HeightClass:     heightClass(variant),
		ImageClass:      imageClass(v.Status),
		OverlayClass:    OverlayClass(v.Status),
		PriceText:       PriceText(v.Price),
		ShowPriceBadge:  variant != VariantCompact,
		ShowInlinePrice: variant == VariantCompact,
	}

	c.ImageSrc = placeholder
	if v.ImageURL != nil && strings.TrimSpace(*v.ImageURL) != "" {
		c.ImageSrc = *v.ImageURL
	}
	c.Fallback = placeholder != "" && c.ImageSrc != placeholder

	if v.Beds > 0 {
		c.Stats = append(c.Stats, Stat{Value: FormatCount(v.Beds), Label: plural(v.Beds, "Bed", "Beds")})
	}
	if v.Baths > 0 {
		c.Stats = append(c.Stats, Stat{Value: FormatCount(v.Baths), Label: plural(v.Baths, "Bath", "Baths")})
	}
	if v.Area > 0 {
		c.Stats = append(c.Stats, Stat{Value: printer.Sprintf("%d", int64(math.Round(v.Area))), Label: "Sq Ft"})
	}
	return c
}

// IsSold reports whether the card shows closed inventory.
func (c Card) IsSold() bool {
	return c.View.Status == models.ViewSold
}

func heightClass(v Variant) string {
	switch v {
	case VariantCompact:
		return "h-48"
	case VariantFeatured:
		return "h-96"
	}
	return "h-64"
}

func imageClass(status string) string {
	cls := "w-full h-full object-cover transition duration-500"
	if status == models.ViewSold {
		cls += " grayscale hover:grayscale-0"
	}
	return cls
}

// OverlayClass darkens the image by availability: active lightest, then
// coming-soon, then sold.
func OverlayClass(status string) string {
	switch status {
	case models.ViewActive:
		return "bg-black/20"
	case models.ViewComingSoon:
		return "bg-black/40"
	case models.ViewSold:
		return "bg-black/60"
	}
	return "bg-black/30"
}

// PriceText renders whole dollars with grouping, "$1,250,000".
func PriceText(price float64) string {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return PriceOnRequest
	}
	return printer.Sprintf("$%d", int64(math.Round(price)))
}

// FormatCount prints 2.5 as "2.5" and 3 as "3".
func FormatCount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func plural(n float64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
