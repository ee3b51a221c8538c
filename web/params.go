package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
	"github.com/dmrmediateam/eagan-luxury-sub001/render"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/go-playground/validator/v10"
)

// badRequest marks an error as caused by the request's parameters.
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

type listingQuery struct {
	City         string `validate:"omitempty,max=64"`
	PropertyType string `validate:"omitempty,max=64"`
	Status       string `validate:"omitempty,max=32"`
	Limit        int    `validate:"min=0,max=100"`
	Offset       int    `validate:"min=0"`
	Variant      string `validate:"omitempty,oneof=default compact featured"`
}

func (q listingQuery) filter() storage.ListingFilter {
	return storage.ListingFilter{
		City:         q.City,
		PropertyType: q.PropertyType,
		Status:       q.Status,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
}

func (q listingQuery) variant() render.Variant {
	return render.ParseVariant(q.Variant)
}

type contentQuery struct {
	Category string `validate:"omitempty,max=64"`
	Page     int    `validate:"min=0"`
}

func (s *Server) parseListingQuery(r *http.Request) (listingQuery, error) {
	v := r.URL.Query()
	q := listingQuery{
		City:         strings.TrimSpace(v.Get("city")),
		PropertyType: strings.TrimSpace(v.Get("propertyType")),
		Status:       strings.TrimSpace(v.Get("status")),
		Variant:      strings.TrimSpace(v.Get("variant")),
	}
	var err error
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(v, "offset"); err != nil {
		return q, err
	}
	return q, s.check(q)
}

func (s *Server) parseContentQuery(r *http.Request) (contentQuery, error) {
	v := r.URL.Query()
	q := contentQuery{Category: strings.TrimSpace(v.Get("category"))}
	var err error
	if q.Page, err = intParam(v, "page"); err != nil {
		return q, err
	}
	return q, s.check(q)
}

func (s *Server) check(q any) error {
	if err := s.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &badRequest{fmt.Errorf("invalid %s: failed %s", strings.ToLower(verrs[0].Field()), verrs[0].Tag())}
		}
		return &badRequest{err}
	}
	return nil
}

func intParam(v url.Values, key string) (int, error) {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &badRequest{fmt.Errorf("invalid %s %q", key, raw)}
	}
	return n, nil
}

// contentType maps a path segment to a known type. Unknown types are 404s.
func contentType(raw string) (models.ContentType, bool) {
	ct := models.ContentType(strings.ToLower(strings.TrimSpace(raw)))
	return ct, ct.Valid()
}
