package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/cms"
	"github.com/dmrmediateam/eagan-luxury-sub001/grid"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/render"
	"github.com/dmrmediateam/eagan-luxury-sub001/services"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/gorilla/mux"
)

type contentGridResponse struct {
	Page   grid.Page    `json:"page"`
	Facets []grid.Facet `json:"facets"`
}

// =============================================================================
// JSON API
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			log.Printf("Warning: healthcheck failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) apiListings(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseListingQuery(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	views, err := s.listings.Search(r.Context(), q.filter())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) apiFeatured(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseListingQuery(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	views, err := s.listings.Featured(r.Context(), q.filter())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) apiListing(w http.ResponseWriter, r *http.Request) {
	detail, err := s.listings.Detail(r.Context(), mux.Vars(r)["listingKey"])
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) apiCommunity(w http.ResponseWriter, r *http.Request) {
	views, err := s.listings.Community(r.Context(), mux.Vars(r)["category"])
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) apiContentGrid(w http.ResponseWriter, r *http.Request) {
	ct, ok := contentType(mux.Vars(r)["type"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown content type"})
		return
	}
	q, err := s.parseContentQuery(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	page, facets, err := s.content.Grid(r.Context(), ct, q.Category, q.Page)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentGridResponse{Page: page, Facets: facets})
}

func (s *Server) apiContentItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ct, ok := contentType(vars["type"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown content type"})
		return
	}
	item, err := s.content.Item(r.Context(), ct, vars["slug"])
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// =============================================================================
// HTML pages
// =============================================================================

func (s *Server) homePage(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseListingQuery(r)
	if err != nil {
		writePageError(w, err)
		return
	}
	views, err := s.listings.Featured(r.Context(), q.filter())
	if err != nil {
		writePageError(w, err)
		return
	}
	cards := s.renderer.Cards(views, render.VariantFeatured)
	s.page(w, "Featured Properties", func(out io.Writer) error {
		return s.renderer.ListingGrid(out, cards)
	})
}

func (s *Server) listingPage(w http.ResponseWriter, r *http.Request) {
	detail, err := s.listings.Detail(r.Context(), mux.Vars(r)["listingKey"])
	if err != nil {
		writePageError(w, err)
		return
	}
	data := render.DetailData{
		Card:   render.NewCard(detail.Listing, render.VariantFeatured, s.renderer.Placeholder()),
		Detail: detail,
	}
	s.page(w, detail.Listing.Title, func(out io.Writer) error {
		return s.renderer.ListingDetail(out, data)
	})
}

func (s *Server) communityPage(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseListingQuery(r)
	if err != nil {
		writePageError(w, err)
		return
	}
	category := mux.Vars(r)["category"]
	views, err := s.listings.Community(r.Context(), category)
	if err != nil {
		writePageError(w, err)
		return
	}
	cards := s.renderer.Cards(views, q.variant())
	s.page(w, category, func(out io.Writer) error {
		return s.renderer.ListingGrid(out, cards)
	})
}

func (s *Server) communityListingPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.listings.CommunityListing(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writePageError(w, err)
		return
	}
	data := render.DetailData{Card: render.NewCard(*view, render.VariantFeatured, s.renderer.Placeholder())}
	s.page(w, view.Title, func(out io.Writer) error {
		return s.renderer.ListingDetail(out, data)
	})
}

func (s *Server) contentGridPage(ct models.ContentType) http.HandlerFunc {
	title := "Blog"
	if ct == models.ContentPress {
		title = "Press"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := s.parseContentQuery(r)
		if err != nil {
			writePageError(w, err)
			return
		}
		page, facets, err := s.content.Grid(r.Context(), ct, q.Category, q.Page)
		if err != nil {
			writePageError(w, err)
			return
		}
		data := render.ContentGridData{Page: page, Facets: facets, BasePath: "/" + string(ct)}
		s.page(w, title, func(out io.Writer) error {
			return s.renderer.ContentGrid(out, data)
		})
	}
}

func (s *Server) contentItemPage(ct models.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := s.content.Item(r.Context(), ct, mux.Vars(r)["slug"])
		if err != nil {
			writePageError(w, err)
			return
		}
		s.page(w, item.Title, func(out io.Writer) error {
			return s.renderer.ContentCard(out, *item)
		})
	}
}

// page is the error boundary for HTML: a failed render becomes a 500 and
// no partial markup is sent.
func (s *Server) page(w http.ResponseWriter, title string, body func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Page(w, title, body); err != nil {
		log.Printf("Error: render %s: %v", title, err)
		w.Header().Del("Content-Type")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// =============================================================================
// Responses
// =============================================================================

func statusFor(err error) int {
	var br *badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, cms.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrCMSDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeAPIError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := http.StatusText(status)
	switch status {
	case http.StatusBadRequest:
		msg = err.Error()
	case http.StatusInternalServerError:
		log.Printf("Error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writePageError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Error: %v", err)
	}
	http.Error(w, http.StatusText(status), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: encode response: %v", err)
	}
}

func nonNil(views []models.ListingView) []models.ListingView {
	if views == nil {
		return []models.ListingView{}
	}
	return views
}
