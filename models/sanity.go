package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SanityListing is a hand-authored "community" listing from the CMS.
type SanityListing struct {
	ID              string           `json:"_id"`
	Title           string           `json:"title"`
	Slug            Slug             `json:"slug"`
	Price           float64          `json:"price"`
	Address         *SanityAddress   `json:"address"`
	PropertyDetails *PropertyDetails `json:"propertyDetails"`
	Status          string           `json:"status"`
	HeroMedia       *HeroMedia       `json:"heroMedia"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
}

type SanityAddress struct {
	Region  string `json:"region"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type PropertyDetails struct {
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	SqFt         float64 `json:"sqft"`
	PropertyType string  `json:"propertyType"`
	YearBuilt    int     `json:"yearBuilt"`
}

type HeroMedia struct {
	HeroImage *ImageRef `json:"heroImage"`
	Thumbnail *ImageRef `json:"thumbnail"`
}

// ImageRef is a CMS image field. Asset.Ref needs the URL builder; Asset.URL
// is set when the query dereferenced the asset.
type ImageRef struct {
	Asset *ImageAsset `json:"asset"`
	Alt   string      `json:"alt"`
}

type ImageAsset struct {
	Ref string `json:"_ref"`
	URL string `json:"url"`
}

// HasRef reports whether the image carries an asset reference.
func (i *ImageRef) HasRef() bool {
	return i != nil && i.Asset != nil && strings.TrimSpace(i.Asset.Ref) != ""
}

// Slug accepts `"my-slug"`, `{"current": "my-slug"}` or null.
type Slug struct {
	Current string `json:"current"`
}

func (s *Slug) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Slug{}
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s.Current = str
		return nil
	}
	var obj struct {
		Current string `json:"current"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unknown slug shape degrades to "no slug"
		*s = Slug{}
		return nil
	}
	s.Current = obj.Current
	return nil
}

func (s Slug) String() string {
	return strings.TrimSpace(s.Current)
}
