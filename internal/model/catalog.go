package model

import (
	"time"
)

// Taxa recognized by the reference gallery.
var CatalogTaxa = []string{"abiotic", "bacteria", "fungi", "insect", "mite", "nematode"}

// MediaAsset is one image in the reference gallery, stored under the
// crop dataset folder.
type MediaAsset struct {
	ID          int64     `json:"id"`
	PublicID    string    `json:"public_id"`
	Crop        string    `json:"crop"`
	Taxon       string    `json:"taxon"`
	DiseaseSlug string    `json:"disease_slug"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsCover     bool      `json:"is_cover"`
	ThreatID    *int64    `json:"threat_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CatalogImage is one signed gallery photo inside a disease card.
type CatalogImage struct {
	Name      string `json:"name"`
	SignedURL string `json:"signed_url"`
}

// CatalogCard groups a disease's photos, cover first.
type CatalogCard struct {
	Disease     string         `json:"disease"`
	Crop        string         `json:"crop"`
	Taxon       string         `json:"taxon"`
	Description string         `json:"description"`
	Cover       string         `json:"cover,omitempty"`
	Images      []CatalogImage `json:"images"`
}
