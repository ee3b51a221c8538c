package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/listing"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ErrNotFound is returned by the BySlug lookups when no document matches.
var ErrNotFound = errors.New("cms document not found")

// Querier is the part of Client the store needs.
type Querier interface {
	Query(ctx context.Context, groq string, params map[string]any, out any) error
}

// Store fetches listings, blog posts and press releases from the CMS.
// Every call hits the API; nothing is cached between requests.
type Store struct {
	q Querier
}

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// Listings returns community listings. An "All" category returns every
// listing. Documents that fail to decode are logged and skipped.
func (s *Store) Listings(ctx context.Context, category string) ([]models.SanityListing, error) {
	var raw []json.RawMessage
	var err error
	if c := strings.TrimSpace(category); grid.IsAll(c) {
		err = s.q.Query(ctx, allListingsQuery, nil, &raw)
	} else {
		err = s.q.Query(ctx, listingsByCategoryQuery, map[string]any{"category": c}, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	return decodeEach[models.SanityListing]("listing", raw), nil
}

func (s *Store) ListingBySlug(ctx context.Context, slug string) (*models.SanityListing, error) {
	var out *models.SanityListing
	if err := s.q.Query(ctx, listingBySlugQuery, map[string]any{"slug": slug}, &out); err != nil {
		return nil, fmt.Errorf("query listing %s: %w", slug, err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// Featured returns the hand-picked mixed collection, each entry tagged
// with its source. MLS entries are serialized here; a bad decimal fails
// the call. Unrecognized entries come back untagged and render with the
// fallback view.
func (s *Store) Featured(ctx context.Context) ([]models.ListingSource, error) {
	var raw []json.RawMessage
	if err := s.q.Query(ctx, featuredQuery, nil, &raw); err != nil {
		return nil, fmt.Errorf("query featured: %w", err)
	}

	out := make([]models.ListingSource, 0, len(raw))
	for i, r := range raw {
		cmsListing, rel, err := listing.Detect(r)
		switch {
		case errors.Is(err, listing.ErrUnrecognized):
			log.Printf("Warning: featured item %d: %v", i, err)
			out = append(out, models.ListingSource{})
		case err != nil:
			return nil, fmt.Errorf("featured item %d: %w", i, err)
		case cmsListing != nil:
			out = append(out, models.FromCMS(cmsListing))
		default:
			serialized, err := listing.Serialize(rel)
			if err != nil {
				return nil, fmt.Errorf("featured item %d (%s): %w", i, rel.ListingKey, err)
			}
			out = append(out, models.FromRelational(serialized))
		}
	}
	return out, nil
}

// BlogPosts returns posts in one category, or all of them for "All".
// Posts that fail to decode are logged and skipped.
func (s *Store) BlogPosts(ctx context.Context, category string) ([]models.BlogPost, error) {
	var raw []json.RawMessage
	var err error
	if c := strings.TrimSpace(category); grid.IsAll(c) {
		err = s.q.Query(ctx, blogPostsQuery, nil, &raw)
	} else {
		err = s.q.Query(ctx, blogPostsByCategoryQuery, map[string]any{"category": c}, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("query blog posts: %w", err)
	}
	return decodeEach[models.BlogPost]("blog post", raw), nil
}

func (s *Store) PressReleases(ctx context.Context) ([]models.PressRelease, error) {
	var raw []json.RawMessage
	if err := s.q.Query(ctx, pressReleasesQuery, nil, &raw); err != nil {
		return nil, fmt.Errorf("query press releases: %w", err)
	}
	return decodeEach[models.PressRelease]("press release", raw), nil
}

func (s *Store) BlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var out *models.BlogPost
	if err := s.q.Query(ctx, blogPostBySlugQuery, map[string]any{"slug": slug}, &out); err != nil {
		return nil, fmt.Errorf("query blog post %s: %w", slug, err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *Store) PressReleaseBySlug(ctx context.Context, slug string) (*models.PressRelease, error) {
	var out *models.PressRelease
	if err := s.q.Query(ctx, pressReleaseBySlugQuery, map[string]any{"slug": slug}, &out); err != nil {
		return nil, fmt.Errorf("query press release %s: %w", slug, err)
	}
	if out == nil {
		return nil, ErrNotFound
	}
	return out, nil
}

// decodeEach unmarshals every document on its own so one malformed record
// costs only itself.
func decodeEach[T any](kind string, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		if string(r) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			log.Printf("Warning: skipping %s %d: %v", kind, i, err)
			continue
		}
		out = append(out, v)
	}
	return out
}
