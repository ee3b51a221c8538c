package content

import (
	"strings"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/identity"
	"github.com/dmrmediateam/eagan-luxury-sub001/listing"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// DisplayDateLayout is how card dates are printed.
const DisplayDateLayout = "January 2, 2006"

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// Normalizer maps CMS blog and press documents to models.ContentItem.
// It never fails: missing fields fall back to derived or placeholder values.
type Normalizer struct {
	Images      listing.ImageURLBuilder
	Placeholder string
	Width       int
	Height      int
}

func NewNormalizer(images listing.ImageURLBuilder, placeholder string) *Normalizer {
	return &Normalizer{
		Images:      images,
		Placeholder: placeholder,
		Width:       800,
		Height:      600,
	}
}

func (n *Normalizer) Blog(p models.BlogPost) models.ContentItem {
	published, date := parseDate(p.PublishedAt)
	title := strings.TrimSpace(p.Title)

	categories := compact(p.Categories)
	category := strings.TrimSpace(p.Category)
	if category == "" && len(categories) > 0 {
		category = categories[0]
	}
	if len(categories) == 0 && category != "" {
		categories = []string{category}
	}

	readTime := strings.TrimSpace(p.ReadTime)
	if readTime == "" {
		readTime = ReadTime(title, p.Excerpt, p.Body)
	}

	id := documentID(p.ID, title, p.PublishedAt)
	return models.ContentItem{
		ID:          id,
		Type:        models.ContentBlog,
		Title:       title,
		Slug:        ResolveSlug(p.Slug, id),
		Excerpt:     Excerpt(p.Excerpt, p.Body),
		Date:        date,
		PublishedAt: published,
		Category:    category,
		Categories:  categories,
		Image:       n.image(p.ImageURL, p.MainImage),
		Author:      strings.TrimSpace(p.Author),
		ReadTime:    readTime,
	}
}

// Press never estimates a read time.
func (n *Normalizer) Press(p models.PressRelease) models.ContentItem {
	raw := p.ReleaseDate
	if strings.TrimSpace(raw) == "" {
		raw = p.PublishedAt
	}
	published, date := parseDate(raw)
	title := strings.TrimSpace(p.Title)
	category := strings.TrimSpace(p.Category)

	var categories []string
	if category != "" {
		categories = []string{category}
	}

	id := documentID(p.ID, title, raw)
	return models.ContentItem{
		ID:          id,
		Type:        models.ContentPress,
		Title:       title,
		Slug:        ResolveSlug(p.Slug, id),
		Excerpt:     Excerpt(p.Excerpt, p.Body),
		Date:        date,
		PublishedAt: published,
		Category:    category,
		Categories:  categories,
		Image:       n.image(p.ImageURL, p.Image),
		Source:      strings.TrimSpace(p.Source),
		SourceURL:   strings.TrimSpace(p.SourceURL),
		Location:    strings.TrimSpace(p.Location),
		Featured:    p.Featured,
	}
}

func (n *Normalizer) BlogAll(posts []models.BlogPost) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, n.Blog(p))
	}
	return items
}

func (n *Normalizer) PressAll(releases []models.PressRelease) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(releases))
	for _, p := range releases {
		items = append(items, n.Press(p))
	}
	return items
}

// ResolveSlug prefers the document slug and falls back to id.
func ResolveSlug(slug models.Slug, id string) string {
	if s := slug.String(); s != "" {
		return s
	}
	return strings.TrimSpace(id)
}

// image order: flat URL, dereferenced asset URL, asset ref via the
// builder, placeholder.
func (n *Normalizer) image(flat string, ref *models.ImageRef) string {
	if u := strings.TrimSpace(flat); u != "" {
		return u
	}
	if ref != nil && ref.Asset != nil {
		if u := strings.TrimSpace(ref.Asset.URL); u != "" {
			return u
		}
	}
	if ref.HasRef() && n.Images != nil {
		if u := n.build(ref); u != "" {
			return u
		}
	}
	return n.Placeholder
}

func (n *Normalizer) build(ref *models.ImageRef) (u string) {
	defer func() {
		if recover() != nil {
			u = ""
		}
	}()
	s, err := n.Images.URL(ref, n.Width, n.Height)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func parseDate(raw string) (time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, t.Format(DisplayDateLayout)
		}
	}
	return time.Time{}, ""
}

func documentID(id, title, date string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return identity.Fingerprint(title, date)
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
