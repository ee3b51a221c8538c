package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
	"github.com/dmrmediateam/eagan-luxury-sub001/content"
	"github.com/dmrmediateam/eagan-luxury-sub001/listing"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type fakeStore struct {
	listings  []models.Listing
	statuses  []models.StatusHistory
	lookups   []models.LookupValue
	lookupErr error
	office    *models.Office
}

func (f *fakeStore) FindListings(ctx context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	out := make([]models.Listing, len(f.listings))
	copy(out, f.listings)
	return out, nil
}

func (f *fakeStore) FindListing(ctx context.Context, key string) (*models.Listing, error) {
	for _, l := range f.listings {
		if l.ListingKey == key {
			return &l, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) StatusHistory(ctx context.Context, mlsID, key string) ([]models.StatusHistory, error) {
	return f.statuses, nil
}

func (f *fakeStore) LookupValues(ctx context.Context, mlsID, name string) ([]models.LookupValue, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var out []models.LookupValue
	for _, v := range f.lookups {
		if v.MlsID == mlsID && v.LookupName == name {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) Attribution(ctx context.Context, officeID, memberID *uuid.UUID) (*models.Office, *models.Member, error) {
	if officeID == nil {
		return nil, nil, nil
	}
	return f.office, nil, nil
}

type fakeCMS struct {
	listings []models.SanityListing
	featured []models.ListingSource
	err      error
	posts    []models.BlogPost
	releases []models.PressRelease
}

func (f *fakeCMS) Listings(ctx context.Context, category string) ([]models.SanityListing, error) {
	return f.listings, f.err
}

func (f *fakeCMS) ListingBySlug(ctx context.Context, slug string) (*models.SanityListing, error) {
	for _, l := range f.listings {
		if l.Slug.String() == slug {
			return &l, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeCMS) Featured(ctx context.Context) ([]models.ListingSource, error) {
	return f.featured, f.err
}

func (f *fakeCMS) BlogPosts(ctx context.Context, category string) ([]models.BlogPost, error) {
	return f.posts, f.err
}

func (f *fakeCMS) PressReleases(ctx context.Context) ([]models.PressRelease, error) {
	return f.releases, f.err
}

func (f *fakeCMS) BlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug.String() == slug {
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeCMS) PressReleaseBySlug(ctx context.Context, slug string) (*models.PressRelease, error) {
	return nil, errors.New("not found")
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(ctx context.Context, key string) (string, error) {
	if key == "broken" {
		return "", errors.New("sign failed")
	}
	return "https://media.example.com/" + key + "?sig=1", nil
}

var testSite = &config.SiteConfig{
	ID:               "eagan-luxury",
	CMSSourceLabel:   "Exclusive",
	PlaceholderImage: "/images/placeholder.jpg",
	PageSize:         2,
	ImageWidth:       800,
	ImageHeight:      600,
	BlogCategories:   []string{"Selling", "Buying"},
}

func num(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %s: %v", s, err)
	}
	return n
}

func slug(t *testing.T, s string) models.Slug {
	t.Helper()
	var sl models.Slug
	if err := sl.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		t.Fatalf("slug %s: %v", s, err)
	}
	return sl
}

func TestSearch_SignsSerializesAndTranslates(t *testing.T) {
	store := &fakeStore{
		listings: []models.Listing{{
			MlsID:          "northstar",
			ListingKey:     "NST-1",
			StandardStatus: "ComingSoon",
			PropertyType:   "RES",
			City:           "Eagan",
			ListPrice:      num(t, "725000.00"),
			Media: []models.Media{
				{URL: "https://mls.example.com/1.jpg", StorageKey: "nst/1.jpg", Order: 1},
				{URL: "https://mls.example.com/0.jpg", StorageKey: "broken", Order: 0},
			},
		}},
		lookups: []models.LookupValue{{MlsID: "northstar", LookupName: models.LookupPropertyType, Code: "RES", Display: "Residential"}},
	}
	svc := NewListingService(store, nil, fakeSigner{}, nil, testSite)

	views, err := svc.Search(context.Background(), storage.ListingFilter{City: "Eagan"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one view, got %d", len(views))
	}
	v := views[0]
	if v.Price != 725000 || v.Status != models.ViewComingSoon || v.PropertyType != "Residential" {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.ImageURL == nil || *v.ImageURL != "https://mls.example.com/0.jpg" {
		t.Fatalf("failed signing must keep the MLS url, got %v", v.ImageURL)
	}
}

func TestSearch_LookupFailureStillRenders(t *testing.T) {
	store := &fakeStore{
		listings:  []models.Listing{{MlsID: "northstar", ListingKey: "NST-1", PropertyType: "RES"}},
		lookupErr: errors.New("db down"),
	}
	views, err := NewListingService(store, nil, nil, nil, testSite).Search(context.Background(), storage.ListingFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if views[0].PropertyType != "RES" {
		t.Fatalf("expected raw code without lookups, got %q", views[0].PropertyType)
	}
}

func TestSearch_BadDecimalFails(t *testing.T) {
	store := &fakeStore{listings: []models.Listing{{
		MlsID:      "northstar",
		ListingKey: "NST-NAN",
		ListPrice:  pgtype.Numeric{NaN: true, Valid: true},
	}}}
	_, err := NewListingService(store, nil, nil, nil, testSite).Search(context.Background(), storage.ListingFilter{})
	if !errors.Is(err, listing.ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
}

func TestDetail(t *testing.T) {
	officeID := uuid.New()
	store := &fakeStore{
		listings: []models.Listing{{
			MlsID:           "northstar",
			ListingKey:      "NST-2",
			UnparsedAddress: "1200 Lakeside Dr",
			PublicRemarks:   "  Walkout lower level.  ",
			ListOfficeID:    &officeID,
			Media:           []models.Media{{URL: "https://mls.example.com/a.jpg"}, {URL: " "}},
			PriceHistories:  []models.PriceHistory{{Price: num(t, "699000")}},
		}},
		statuses: []models.StatusHistory{{Status: models.StatusActive}},
		office:   &models.Office{ID: officeID, Name: "Weichert, Realtors"},
	}
	svc := NewListingService(store, nil, nil, nil, testSite)

	d, err := svc.Detail(context.Background(), "NST-2")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Listing.Title != "1200 Lakeside Dr" || d.Remarks != "Walkout lower level." {
		t.Fatalf("unexpected detail %+v", d)
	}
	if len(d.Photos) != 1 || len(d.PriceHistory) != 1 || *d.PriceHistory[0].Price != 699000 {
		t.Fatalf("unexpected photos/history %+v %+v", d.Photos, d.PriceHistory)
	}
	if d.Office == nil || d.Office.Name != "Weichert, Realtors" || d.Agent != nil {
		t.Fatalf("unexpected attribution %+v %+v", d.Office, d.Agent)
	}

	if _, err := svc.Detail(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFeatured_MergesCMSFirst(t *testing.T) {
	store := &fakeStore{listings: []models.Listing{{MlsID: "northstar", ListingKey: "NST-3", City: "Eagan"}}}
	cms := &fakeCMS{featured: []models.ListingSource{
		models.FromCMS(&models.SanityListing{Title: "Lakeside Retreat", Slug: slug(t, "lakeside-retreat")}),
		{},
	}}
	svc := NewListingService(store, cms, nil, nil, testSite)

	views, err := svc.Featured(context.Background(), storage.ListingFilter{})
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].Title != "Lakeside Retreat" || views[0].MLS != "Exclusive" {
		t.Fatalf("expected CMS first, got %+v", views[0])
	}
	if views[1].LinkURL != models.DeadLink {
		t.Fatalf("expected fallback second, got %+v", views[1])
	}
	if views[2].LinkURL != "/listing/NST-3" {
		t.Fatalf("expected relational last, got %+v", views[2])
	}

	cms.err = errors.New("cms down")
	if _, err := svc.Featured(context.Background(), storage.ListingFilter{}); err == nil {
		t.Fatalf("expected cms failure to propagate")
	}
}

func TestFeatured_SkipsDuplicateHomes(t *testing.T) {
	store := &fakeStore{listings: []models.Listing{
		{MlsID: "northstar", ListingKey: "NST-4", UnparsedAddress: "1200 Lakeside Drive"},
		{MlsID: "northstar", ListingKey: "NST-5", UnparsedAddress: "88 Bluff Ct"},
	}}
	cms := &fakeCMS{featured: []models.ListingSource{
		models.FromCMS(&models.SanityListing{Title: "1200 Lakeside Dr.", Slug: slug(t, "lakeside")}),
		models.FromRelational(&models.SerializedListing{MlsID: "northstar", ListingKey: "NST-5"}),
	}}
	svc := NewListingService(store, cms, nil, nil, testSite)

	views, err := svc.Featured(context.Background(), storage.ListingFilter{})
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views after dedupe, got %d: %+v", len(views), views)
	}
	if views[0].LinkURL != "/listings/lakeside" || views[1].LinkURL != "/listing/NST-5" {
		t.Fatalf("expected curated entries to win, got %s and %s", views[0].LinkURL, views[1].LinkURL)
	}
}

func TestCommunity_RequiresCMS(t *testing.T) {
	svc := NewListingService(&fakeStore{}, nil, nil, nil, testSite)
	if _, err := svc.Community(context.Background(), "Eagan"); !errors.Is(err, ErrCMSDisabled) {
		t.Fatalf("expected ErrCMSDisabled, got %v", err)
	}

	cms := &fakeCMS{listings: []models.SanityListing{{Title: "Bluff Estate", Slug: slug(t, "bluff-estate"), Price: 1250000}}}
	svc = NewListingService(&fakeStore{}, cms, nil, nil, testSite)
	views, err := svc.Community(context.Background(), "Eagan")
	if err != nil || len(views) != 1 || views[0].Price != 1250000 {
		t.Fatalf("unexpected community %+v %v", views, err)
	}
	v, err := svc.CommunityListing(context.Background(), "bluff-estate")
	if err != nil || v.LinkURL != "/listings/bluff-estate" {
		t.Fatalf("unexpected community listing %+v %v", v, err)
	}
}

func TestContentGrid(t *testing.T) {
	day := func(d int) string { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC).Format(time.RFC3339) }
	cms := &fakeCMS{posts: []models.BlogPost{
		{ID: "1", Title: "Old Selling Tips", PublishedAt: day(1), Categories: []string{"Selling"}},
		{ID: "2", Title: "Buying Now", PublishedAt: day(3), Categories: []string{"Buying"}},
		{ID: "3", Title: "Selling in Spring", PublishedAt: day(2), Category: "Selling"},
		{ID: "4", Title: "Newest", PublishedAt: day(4), Categories: []string{"Selling"}},
	}}
	svc := NewContentService(cms, content.NewNormalizer(nil, testSite.PlaceholderImage), testSite)

	page, facets, err := svc.Grid(context.Background(), models.ContentBlog, "Selling", 2)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 || page.CurrentPage != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Old Selling Tips" {
		t.Fatalf("expected oldest selling post on page 2, got %+v", page.Items)
	}
	if len(facets) != 3 || facets[0].Value != "All" || !facets[1].Active {
		t.Fatalf("unexpected facets %+v", facets)
	}

	page, facets, err = svc.Grid(context.Background(), models.ContentPress, "Selling", 1)
	if err != nil {
		t.Fatalf("press grid: %v", err)
	}
	if facets != nil || page.FilterEnabled {
		t.Fatalf("press must not offer facets")
	}

	item, err := svc.Item(context.Background(), models.ContentBlog, "missing")
	if err == nil || item != nil {
		t.Fatalf("expected lookup error")
	}
}
