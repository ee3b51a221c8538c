package web

import (
	"context"
	"net/http"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/logging"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/render"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Listings is the listing surface of services.ListingService.
type Listings interface {
	Search(ctx context.Context, f storage.ListingFilter) ([]models.ListingView, error)
	Detail(ctx context.Context, listingKey string) (*models.ListingDetail, error)
	Community(ctx context.Context, category string) ([]models.ListingView, error)
	CommunityListing(ctx context.Context, slug string) (*models.ListingView, error)
	Featured(ctx context.Context, f storage.ListingFilter) ([]models.ListingView, error)
}

// Content is the blog and press surface of services.ContentService.
type Content interface {
	Grid(ctx context.Context, ct models.ContentType, category string, page int) (grid.Page, []grid.Facet, error)
	Item(ctx context.Context, ct models.ContentType, slug string) (*models.ContentItem, error)
}

// Pinger reports whether the listing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handlers' collaborators. Handlers keep no state
// between requests.
type Server struct {
	listings Listings
	content  Content
	renderer *render.Renderer
	health   Pinger
	validate *validator.Validate
}

func NewServer(listings Listings, content Content, renderer *render.Renderer, health Pinger) *Server {
	return &Server{
		listings: listings,
		content:  content,
		renderer: renderer,
		health:   health,
		validate: validator.New(),
	}
}

// NewRouter registers the JSON API and the HTML pages.
func (s *Server) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests)

	router.HandleFunc("/healthz", s.healthz).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/listings", s.apiListings).Methods("GET")
	api.HandleFunc("/listings/featured", s.apiFeatured).Methods("GET")
	api.HandleFunc("/listings/{listingKey}", s.apiListing).Methods("GET")
	api.HandleFunc("/communities/{category}", s.apiCommunity).Methods("GET")
	api.HandleFunc("/content/{type}", s.apiContentGrid).Methods("GET")
	api.HandleFunc("/content/{type}/{slug}", s.apiContentItem).Methods("GET")

	router.HandleFunc("/", s.homePage).Methods("GET")
	router.HandleFunc("/listing/{listingKey}", s.listingPage).Methods("GET")
	router.HandleFunc("/listings/{slug}", s.communityListingPage).Methods("GET")
	router.HandleFunc("/communities/{category}", s.communityPage).Methods("GET")
	router.HandleFunc("/blog", s.contentGridPage(models.ContentBlog)).Methods("GET")
	router.HandleFunc("/press", s.contentGridPage(models.ContentPress)).Methods("GET")
	router.HandleFunc("/blog/{slug}", s.contentItemPage(models.ContentBlog)).Methods("GET")
	router.HandleFunc("/press/{slug}", s.contentItemPage(models.ContentPress)).Methods("GET")

	return router
}

// NewHandler wraps the router with CORS for the configured origins. With
// no origins the API stays same-origin.
func (s *Server) NewHandler(origins []string) http.Handler {
	router := s.NewRouter()
	if len(origins) == 0 {
		return router
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}).Handler(router)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}
