package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Site is the branding shown around every page.
type Site struct {
	Name      string
	AgentName string
	Brokerage string
}

// ContentGridData drives the blog and press index pages.
type ContentGridData struct {
	Page     grid.Page
	Facets   []grid.Facet
	BasePath string
}

// DetailData drives the single-listing page.
type DetailData struct {
	Card   Card
	Detail *models.ListingDetail
}

type pageData struct {
	Site  Site
	Title string
	Body  template.HTML
}

// Renderer executes the embedded card and page templates. It is safe for
// concurrent use once built.
type Renderer struct {
	tmpl        *template.Template
	site        Site
	placeholder string
}

func New(site Site, placeholder string) (*Renderer, error) {
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"pageHref":    PageHref,
		"price":       priceRef,
		"date":        formatDate,
		"iso":         formatISO,
		"statusLabel": statusLabel,
		"inc":         func(n int) int { return n + 1 },
		"dec":         func(n int) int { return n - 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, site: site, placeholder: placeholder}, nil
}

// Placeholder is the stock image used when a listing has none.
func (r *Renderer) Placeholder() string {
	return r.placeholder
}

// Cards builds one card per view with the renderer's placeholder.
func (r *Renderer) Cards(views []models.ListingView, variant Variant) []Card {
	cards := make([]Card, 0, len(views))
	for _, v := range views {
		cards = append(cards, NewCard(v, variant, r.placeholder))
	}
	return cards
}

func (r *Renderer) ListingCard(w io.Writer, card Card) error {
	return r.tmpl.ExecuteTemplate(w, "listing_card", card)
}

func (r *Renderer) ListingGrid(w io.Writer, cards []Card) error {
	return r.tmpl.ExecuteTemplate(w, "listing_grid", cards)
}

func (r *Renderer) ListingDetail(w io.Writer, data DetailData) error {
	return r.tmpl.ExecuteTemplate(w, "listing_detail", data)
}

func (r *Renderer) ContentCard(w io.Writer, item models.ContentItem) error {
	return r.tmpl.ExecuteTemplate(w, "content_card", item)
}

func (r *Renderer) ContentGrid(w io.Writer, data ContentGridData) error {
	return r.tmpl.ExecuteTemplate(w, "content_grid", data)
}

// Page renders body inside the site layout. body writes a fragment with
// one of the methods above; nothing reaches w if it fails.
func (r *Renderer) Page(w io.Writer, title string, body func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := body(&buf); err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	var out bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&out, "layout", pageData{
		Site:  r.site,
		Title: title,
		Body:  template.HTML(buf.String()),
	})
	if err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	_, err = out.WriteTo(w)
	return err
}

// PageHref builds an index link that keeps the active category.
func PageHref(base, category string, page int) string {
	q := url.Values{}
	if !grid.IsAll(category) {
		q.Set("category", category)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func priceRef(p *float64) string {
	if p == nil {
		return "-"
	}
	return PriceText(*p)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func formatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// statusLabel turns "coming-soon" into "Coming Soon".
func statusLabel(status string) string {
	words := strings.Split(status, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
