package services

import (
	"context"
	"fmt"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
	"github.com/dmrmediateam/eagan-luxury-sub001/content"
	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ContentSource is the CMS content surface, implemented by cms.Store.
type ContentSource interface {
	BlogPosts(ctx context.Context, category string) ([]models.BlogPost, error)
	PressReleases(ctx context.Context) ([]models.PressRelease, error)
	BlogPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	PressReleaseBySlug(ctx context.Context, slug string) (*models.PressRelease, error)
}

// ContentService builds blog and press grids.
type ContentService struct {
	cms        ContentSource
	normalizer *content.Normalizer
	opts       grid.Options
}

func NewContentService(cms ContentSource, normalizer *content.Normalizer, site *config.SiteConfig) *ContentService {
	return &ContentService{
		cms:        cms,
		normalizer: normalizer,
		opts: grid.Options{
			PageSize:   site.PageSize,
			Window:     site.Window(),
			Categories: site.BlogCategories,
		},
	}
}

// Grid fetches every item of ct, newest first, and returns the requested
// page and the category facets. Filtering happens in the grid so facets
// always reflect the full collection.
func (s *ContentService) Grid(ctx context.Context, ct models.ContentType, category string, page int) (grid.Page, []grid.Facet, error) {
	items, err := s.items(ctx, ct)
	if err != nil {
		return grid.Page{}, nil, err
	}

	g := grid.New(items, ct, s.opts)
	g.SetCategory(category)
	g.SetPage(page)
	return g.View(), g.Categories(), nil
}

func (s *ContentService) items(ctx context.Context, ct models.ContentType) ([]models.ContentItem, error) {
	if s.cms == nil {
		return nil, ErrCMSDisabled
	}
	switch ct {
	case models.ContentBlog:
		posts, err := s.cms.BlogPosts(ctx, grid.AllCategory)
		if err != nil {
			return nil, err
		}
		return s.normalizer.BlogAll(posts), nil
	case models.ContentPress:
		releases, err := s.cms.PressReleases(ctx)
		if err != nil {
			return nil, err
		}
		return s.normalizer.PressAll(releases), nil
	}
	return nil, fmt.Errorf("unknown content type %q", ct)
}

// Item returns one normalized blog post or press release by slug.
func (s *ContentService) Item(ctx context.Context, ct models.ContentType, slug string) (*models.ContentItem, error) {
	if s.cms == nil {
		return nil, ErrCMSDisabled
	}
	var item models.ContentItem
	switch ct {
	case models.ContentBlog:
		post, err := s.cms.BlogPostBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		item = s.normalizer.Blog(*post)
	case models.ContentPress:
		release, err := s.cms.PressReleaseBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		item = s.normalizer.Press(*release)
	default:
		return nil, fmt.Errorf("unknown content type %q", ct)
	}
	return &item, nil
}
