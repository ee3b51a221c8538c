package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dmrmediateam/eagan-luxury-sub001/cms"
	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/render"
	"github.com/dmrmediateam/eagan-luxury-sub001/services"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
)

type fakeListings struct {
	views  []models.ListingView
	filter storage.ListingFilter
	err    error
}

func (f *fakeListings) Search(ctx context.Context, filter storage.ListingFilter) ([]models.ListingView, error) {
	f.filter = filter
	return f.views, f.err
}

func (f *fakeListings) Detail(ctx context.Context, key string) (*models.ListingDetail, error) {
	if key != "NST-1" {
		return nil, fmt.Errorf("find listing %s: %w", key, storage.ErrNotFound)
	}
	return &models.ListingDetail{
		Listing: f.views[0],
		Remarks: "Walkout lower level.",
		Office:  &models.Office{Name: "Weichert, Realtors"},
		Agent:   &models.Member{FullName: "Cheryl Towey"},
	}, nil
}

func (f *fakeListings) Community(ctx context.Context, category string) ([]models.ListingView, error) {
	return nil, services.ErrCMSDisabled
}

func (f *fakeListings) CommunityListing(ctx context.Context, slug string) (*models.ListingView, error) {
	return nil, cms.ErrNotFound
}

func (f *fakeListings) Featured(ctx context.Context, filter storage.ListingFilter) ([]models.ListingView, error) {
	return f.views, f.err
}

type fakeContent struct {
	category string
	page     int
}

func (f *fakeContent) Grid(ctx context.Context, ct models.ContentType, category string, page int) (grid.Page, []grid.Facet, error) {
	f.category, f.page = category, page
	items := []models.ContentItem{
		{Type: ct, Title: "Spring Market Update", Slug: "spring-market", Category: "Market Trends"},
	}
	g := grid.New(items, ct, grid.Options{PageSize: 6})
	return g.View(), g.Categories(), nil
}

func (f *fakeContent) Item(ctx context.Context, ct models.ContentType, slug string) (*models.ContentItem, error) {
	if slug != "spring-market" {
		return nil, cms.ErrNotFound
	}
	return &models.ContentItem{Type: ct, Title: "Spring Market Update", Slug: slug}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func testServer(t *testing.T, listings *fakeListings, health Pinger) http.Handler {
	t.Helper()
	r, err := render.New(render.Site{Name: "Eagan Luxury", AgentName: "Eagan Luxury Team"}, "/images/placeholder.jpg")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	return NewServer(listings, &fakeContent{}, r, health).NewHandler([]string{"https://eaganluxury.com"})
}

func sampleViews() []models.ListingView {
	img := "https://mls.example.com/1.jpg"
	return []models.ListingView{{
		Title:    "1200 Lakeside Dr",
		Price:    1250000,
		Location: "Eagan, MN",
		Beds:     4,
		Baths:    3.5,
		Area:     3200,
		Status:   models.ViewActive,
		ImageURL: &img,
		ImageAlt: "1200 Lakeside Dr",
		LinkURL:  "/listing/NST-1",
		MLS:      "NorthstarMLS",
	}}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIListings_FilterAndValidation(t *testing.T) {
	listings := &fakeListings{views: sampleViews()}
	h := testServer(t, listings, nil)

	rec := get(t, h, "/api/listings?city=Eagan&status=Active&limit=12")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if listings.filter.City != "Eagan" || listings.filter.Status != "Active" || listings.filter.Limit != 12 {
		t.Fatalf("unexpected filter %+v", listings.filter)
	}
	var views []models.ListingView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Price != 1250000 {
		t.Fatalf("unexpected views %+v", views)
	}

	tests := []struct {
		name   string
		target string
	}{
		{"non-numeric limit", "/api/listings?limit=ten"},
		{"limit too large", "/api/listings?limit=500"},
		{"negative offset", "/api/listings?offset=-1"},
		{"unknown variant", "/api/listings?variant=huge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, h, tt.target); rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAPI_ErrorMapping(t *testing.T) {
	h := testServer(t, &fakeListings{views: sampleViews()}, nil)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/listings/NST-1", http.StatusOK},
		{"/api/listings/missing", http.StatusNotFound},
		{"/api/communities/Eagan", http.StatusServiceUnavailable},
		{"/api/content/blog", http.StatusOK},
		{"/api/content/podcasts", http.StatusNotFound},
		{"/api/content/press/spring-market", http.StatusOK},
		{"/api/content/press/missing", http.StatusNotFound},
		{"/api/content/blog?page=x", http.StatusBadRequest},
		{"/listings/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := get(t, h, tt.target); rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.want, rec.Code)
		}
	}

	failing := testServer(t, &fakeListings{err: errors.New("pool closed")}, nil)
	rec := get(t, failing, "/api/listings")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "pool closed") {
		t.Fatalf("expected opaque 500, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	if rec := get(t, testServer(t, &fakeListings{}, fakePinger{}), "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := get(t, testServer(t, &fakeListings{}, fakePinger{err: errors.New("down")}), "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHomePage_RendersFeaturedCards(t *testing.T) {
	rec := get(t, testServer(t, &fakeListings{views: sampleViews()}, nil), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got := doc.Find("title").Text(); got != "Featured Properties | Eagan Luxury" {
		t.Fatalf("unexpected title %q", got)
	}
	card := doc.Find("article.listing-card--featured")
	if card.Length() != 1 {
		t.Fatalf("expected one featured card, got %d", card.Length())
	}
	if href, _ := card.Find("a").Attr("href"); href != "/listing/NST-1" {
		t.Fatalf("unexpected link %s", href)
	}
}

func TestListingPage_Attribution(t *testing.T) {
	rec := get(t, testServer(t, &fakeListings{views: sampleViews()}, nil), "/listing/NST-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if got := strings.TrimSpace(doc.Find(".attribution").Text()); got != "Listed by Cheryl Towey, Weichert, Realtors" {
		t.Fatalf("unexpected attribution %q", got)
	}
	if got := doc.Find(".remarks").Text(); got != "Walkout lower level." {
		t.Fatalf("unexpected remarks %q", got)
	}
}

func TestBlogPage_PassesQuery(t *testing.T) {
	content := &fakeContent{}
	r, err := render.New(render.Site{Name: "Eagan Luxury"}, "/images/placeholder.jpg")
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	h := NewServer(&fakeListings{}, content, r, nil).NewRouter()

	rec := get(t, h, "/blog?category=Market+Trends&page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if content.category != "Market Trends" || content.page != 2 {
		t.Fatalf("unexpected query %q %d", content.category, content.page)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if doc.Find(".category-filter .facet").Length() != 2 {
		t.Fatalf("expected All plus one facet")
	}
	if href, _ := doc.Find("article.content-card a").Attr("href"); href != "/blog/spring-market" {
		t.Fatalf("unexpected content link %s", href)
	}
}

func TestCORS(t *testing.T) {
	h := testServer(t, &fakeListings{views: sampleViews()}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Origin", "https://eaganluxury.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://eaganluxury.com" {
		t.Fatalf("expected allowed origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allowed origin %q", got)
	}
}
