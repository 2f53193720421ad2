package rest

import (
	"testing"

	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/stretchr/testify/assert"
)

func asset(slug, taxon string, title string) model.MediaAsset {
	a := model.MediaAsset{DiseaseSlug: slug, Taxon: taxon, Crop: "frijol"}
	if title != "" {
		a.Title = &title
	}
	return a
}

func TestSearchAssetsMatchesAllWords(t *testing.T) {
	assets := []model.MediaAsset{
		asset("roya_del_frijol", "fungi", "Hoja con pústulas"),
		asset("mosca_blanca", "insect", ""),
		asset("antracnosis", "fungi", "Vaina dañada"),
	}

	kept := searchAssets(assets, "roya frijol")
	assert.Len(t, kept, 1)
	assert.Equal(t, "roya_del_frijol", kept[0].DiseaseSlug)
}

func TestSearchAssetsIgnoresDiacriticsAndCase(t *testing.T) {
	assets := []model.MediaAsset{
		asset("antracnosis", "fungi", "Vaina dañada"),
	}

	assert.Len(t, searchAssets(assets, "DANADA"), 1)
	assert.Len(t, searchAssets(assets, "dañada"), 1)
}

func TestSearchAssetsEmptyQueryKeepsEverything(t *testing.T) {
	assets := []model.MediaAsset{
		asset("roya_del_frijol", "fungi", ""),
		asset("mosca_blanca", "insect", ""),
	}

	assert.Len(t, searchAssets(assets, "  "), 2)
}

func TestSearchAssetsMatchesTaxon(t *testing.T) {
	assets := []model.MediaAsset{
		asset("mosca_blanca", "insect", ""),
		asset("roya_del_frijol", "fungi", ""),
	}

	kept := searchAssets(assets, "insect")
	assert.Len(t, kept, 1)
	assert.Equal(t, "mosca_blanca", kept[0].DiseaseSlug)
}
