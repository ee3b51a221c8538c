package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
	"github.com/dmrmediateam/eagan-luxury-sub001/identity"
	"github.com/dmrmediateam/eagan-luxury-sub001/listing"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrCMSDisabled is returned by CMS-backed calls when no project is configured.
var ErrCMSDisabled = errors.New("cms not configured")

// ListingStore is the relational read surface. Both storage.PostgresStore
// and storage.SQLiteStore satisfy it.
type ListingStore interface {
	FindListings(ctx context.Context, f storage.ListingFilter) ([]models.Listing, error)
	FindListing(ctx context.Context, listingKey string) (*models.Listing, error)
	StatusHistory(ctx context.Context, mlsID, listingKey string) ([]models.StatusHistory, error)
	LookupValues(ctx context.Context, mlsID, name string) ([]models.LookupValue, error)
	Attribution(ctx context.Context, officeID, memberID *uuid.UUID) (*models.Office, *models.Member, error)
}

// CMSListings is the CMS listing surface, implemented by cms.Store.
type CMSListings interface {
	Listings(ctx context.Context, category string) ([]models.SanityListing, error)
	ListingBySlug(ctx context.Context, slug string) (*models.SanityListing, error)
	Featured(ctx context.Context) ([]models.ListingSource, error)
}

// MediaSigner resolves a mirrored media storage key to a loadable URL.
type MediaSigner interface {
	SignedURL(ctx context.Context, key string) (string, error)
}

// ListingService turns raw listings from either store into views. Each
// call does its own queries; nothing is shared between requests.
type ListingService struct {
	store    ListingStore
	cms      CMSListings
	signer   MediaSigner
	images   listing.ImageURLBuilder
	cmsLabel string
	width    int
	height   int
}

// NewListingService wires the stores for one site. cms, signer and images
// may be nil.
func NewListingService(store ListingStore, cms CMSListings, signer MediaSigner, images listing.ImageURLBuilder, site *config.SiteConfig) *ListingService {
	return &ListingService{
		store:    store,
		cms:      cms,
		signer:   signer,
		images:   images,
		cmsLabel: site.CMSSourceLabel,
		width:    site.ImageWidth,
		height:   site.ImageHeight,
	}
}

func (s *ListingService) adapter(lookups listing.LookupTable) *listing.Adapter {
	a := listing.NewAdapter(s.images, lookups, s.cmsLabel)
	if s.width > 0 && s.height > 0 {
		a.ImageWidth, a.ImageHeight = s.width, s.height
	}
	return a
}

// Search queries the relational store and normalizes every row. A row that
// fails serialization fails the whole call.
func (s *ListingService) Search(ctx context.Context, f storage.ListingFilter) ([]models.ListingView, error) {
	sources, err := s.relational(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.adapter(s.lookupsFor(ctx, sources)).NormalizeAll(sources), nil
}

func (s *ListingService) relational(ctx context.Context, f storage.ListingFilter) ([]models.ListingSource, error) {
	rows, err := s.store.FindListings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	for i := range rows {
		s.signMedia(ctx, rows[i].Media)
	}
	serialized, err := listing.SerializeAll(rows)
	if err != nil {
		return nil, fmt.Errorf("serialize listings: %w", err)
	}
	sources := make([]models.ListingSource, len(serialized))
	for i, l := range serialized {
		sources[i] = models.FromRelational(l)
	}
	return sources, nil
}

// Detail builds the single-listing page model.
func (s *ListingService) Detail(ctx context.Context, listingKey string) (*models.ListingDetail, error) {
	row, err := s.store.FindListing(ctx, listingKey)
	if err != nil {
		return nil, fmt.Errorf("find listing %s: %w", listingKey, err)
	}
	s.signMedia(ctx, row.Media)

	serialized, err := listing.Serialize(row)
	if err != nil {
		return nil, fmt.Errorf("serialize listing %s: %w", listingKey, err)
	}

	statuses, err := s.store.StatusHistory(ctx, row.MlsID, row.ListingKey)
	if err != nil {
		return nil, fmt.Errorf("status history %s: %w", listingKey, err)
	}
	office, agent, err := s.store.Attribution(ctx, row.ListOfficeID, row.ListMemberID)
	if err != nil {
		return nil, fmt.Errorf("attribution %s: %w", listingKey, err)
	}

	src := models.FromRelational(serialized)
	detail := &models.ListingDetail{
		Listing:       s.adapter(s.lookupsFor(ctx, []models.ListingSource{src})).Normalize(src),
		Remarks:       strings.TrimSpace(serialized.PublicRemarks),
		Photos:        photos(serialized.Media),
		PriceHistory:  serialized.PriceHistories,
		StatusHistory: statuses,
		Office:        office,
		Agent:         agent,
	}
	return detail, nil
}

// Community returns the CMS listings for a community page.
func (s *ListingService) Community(ctx context.Context, category string) ([]models.ListingView, error) {
	if s.cms == nil {
		return nil, ErrCMSDisabled
	}
	rows, err := s.cms.Listings(ctx, category)
	if err != nil {
		return nil, err
	}
	sources := make([]models.ListingSource, len(rows))
	for i := range rows {
		sources[i] = models.FromCMS(&rows[i])
	}
	return s.adapter(nil).NormalizeAll(sources), nil
}

func (s *ListingService) CommunityListing(ctx context.Context, slug string) (*models.ListingView, error) {
	if s.cms == nil {
		return nil, ErrCMSDisabled
	}
	row, err := s.cms.ListingBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	v := s.adapter(nil).Normalize(models.FromCMS(row))
	return &v, nil
}

// Featured merges the CMS featured collection with relational results,
// CMS entries first. Both sources are fetched concurrently and either
// failure fails the call.
func (s *ListingService) Featured(ctx context.Context, f storage.ListingFilter) ([]models.ListingView, error) {
	var cmsSources, relSources []models.ListingSource

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		relSources, err = s.relational(gctx, f)
		return err
	})
	if s.cms != nil {
		g.Go(func() error {
			var err error
			cmsSources, err = s.cms.Featured(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sources := dedupeFeatured(append(cmsSources, relSources...))
	return s.adapter(s.lookupsFor(ctx, sources)).NormalizeAll(sources), nil
}

// dedupeFeatured keeps the first entry for each home. Relational entries
// match on natural key or normalized address; CMS entries match on their
// title, which editors set to the street address. Unrecognized entries are
// always kept so they still render the fallback.
func dedupeFeatured(sources []models.ListingSource) []models.ListingSource {
	seen := make(map[string]bool)
	out := sources[:0:0]
	for _, src := range sources {
		var keys []string
		switch {
		case src.Kind == models.SourceRelational && src.Relational != nil:
			keys = append(keys, identity.ListingRef(src.Relational.MlsID, src.Relational.ListingKey))
			if addr := identity.NormalizeAddress(src.Relational.UnparsedAddress); addr != "" {
				keys = append(keys, "addr:"+addr)
			}
		case src.Kind == models.SourceCMS && src.CMS != nil:
			if addr := identity.NormalizeAddress(src.CMS.Title); addr != "" {
				keys = append(keys, "addr:"+addr)
			}
		}
		dup := false
		for _, k := range keys {
			if seen[k] {
				dup = true
			}
			seen[k] = true
		}
		if dup {
			log.Printf("Warning: featured duplicate skipped: %v", keys)
			continue
		}
		out = append(out, src)
	}
	return out
}

// lookupsFor loads the code tables for every MLS present in sources. A
// failed lookup only costs translation, so it is logged and skipped.
func (s *ListingService) lookupsFor(ctx context.Context, sources []models.ListingSource) listing.Lookups {
	seen := make(map[string]bool)
	var rows []models.LookupValue
	for _, src := range sources {
		if src.Kind != models.SourceRelational || src.Relational == nil {
			continue
		}
		mlsID := src.Relational.MlsID
		if mlsID == "" || seen[mlsID] {
			continue
		}
		seen[mlsID] = true
		for _, name := range []string{models.LookupPropertyType, models.LookupStandardStatus} {
			values, err := s.store.LookupValues(ctx, mlsID, name)
			if err != nil {
				log.Printf("Warning: lookup %s for %s: %v", name, mlsID, err)
				continue
			}
			rows = append(rows, values...)
		}
	}
	return listing.NewLookups(rows)
}

// signMedia rewrites mirrored media to signed URLs in place. A signing
// failure keeps the original MLS URL.
func (s *ListingService) signMedia(ctx context.Context, media []models.Media) {
	if s.signer == nil {
		return
	}
	for i := range media {
		if media[i].StorageKey == "" {
			continue
		}
		u, err := s.signer.SignedURL(ctx, media[i].StorageKey)
		if err != nil {
			log.Printf("Warning: sign media %s: %v", media[i].StorageKey, err)
			continue
		}
		media[i].URL = u
	}
}

func photos(media []models.Media) []string {
	out := make([]string, 0, len(media))
	for _, m := range media {
		if u := strings.TrimSpace(m.URL); u != "" {
			out = append(out, u)
		}
	}
	return out
}
