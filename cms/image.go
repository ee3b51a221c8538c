package cms

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

// ErrMalformedRef is returned for an asset reference that is not of the
// form image-{id}-{W}x{H}-{ext}.
var ErrMalformedRef = errors.New("malformed image reference")

var assetRefRegex = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+)x(\d+)-([a-z0-9]+)$`)

// ImageBuilder turns asset references into cdn.sanity.io URLs cropped to
// the requested size.
type ImageBuilder struct {
	ProjectID string
	Dataset   string
	BaseURL   string
}

func NewImageBuilder(cfg *config.SanityConfig) *ImageBuilder {
	return &ImageBuilder{ProjectID: cfg.ProjectID, Dataset: cfg.Dataset}
}

func (b *ImageBuilder) URL(ref *models.ImageRef, width, height int) (string, error) {
	if !ref.HasRef() {
		return "", ErrMalformedRef
	}
	m := assetRefRegex.FindStringSubmatch(ref.Asset.Ref)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedRef, ref.Asset.Ref)
	}
	id, w, h, ext := m[1], m[2], m[3], m[4]

	base := b.BaseURL
	if base == "" {
		base = "https://cdn.sanity.io"
	}
	q := url.Values{}
	if width > 0 {
		q.Set("w", strconv.Itoa(width))
	}
	if height > 0 {
		q.Set("h", strconv.Itoa(height))
	}
	if width > 0 && height > 0 {
		q.Set("fit", "crop")
	}

	u := fmt.Sprintf("%s/images/%s/%s/%s-%sx%s.%s", base, b.ProjectID, b.Dataset, id, w, h, ext)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}
