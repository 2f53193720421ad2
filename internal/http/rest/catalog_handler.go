package rest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phytoscan/phytoscan-api/internal/model"
	"github.com/phytoscan/phytoscan-api/util"
	"github.com/phytoscan/phytoscan-api/util/tracing"
	"github.com/phytoscan/phytoscan-api/util/values"
)

const (
	maxUploadBytes      = 10 << 20 // 10 MiB
	maxImagesPerDisease = 5
)

func (api *API) CatalogRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", Handler(api.ListCatalog))
	mux.Method(http.MethodGet, "/taxa", Handler(api.ListTaxa))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Use(api.RequireRole(model.RoleTecnico, model.RoleAdmin))
		r.Method(http.MethodPost, "/", Handler(api.AddCatalogImage))
	})

	return mux
}

func (api *API) ListTaxa(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return &ServerResponse{
		Message:    "Taxa retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.CatalogTaxa,
	}
}

// ListCatalog returns the reference gallery for a crop as one card per
// disease, cover image first, each photo with a short-lived signed URL.
func (api *API) ListCatalog(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	q := r.URL.Query()
	crop := q.Get("crop")
	if crop == "" {
		crop = api.Config.DatasetCrop
	}
	taxon := q.Get("taxon")
	if taxon == "all" {
		taxon = ""
	}

	assets, err := api.ListMediaAssetsRepo(r.Context(), crop, taxon)
	if err != nil {
		return respondWithError(err, "failed to list catalog", values.Error, &tc)
	}

	assets = searchAssets(assets, q.Get("q"))

	api.Deps.URLCache.Purge()
	cards := api.buildCatalogCards(assets)

	return &ServerResponse{
		Message:    "Catalog retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       cards,
	}
}

// searchAssets keeps assets where every search word appears somewhere in
// the disease slug, title or taxon, diacritics ignored.
func searchAssets(assets []model.MediaAsset, query string) []model.MediaAsset {
	words := strings.Fields(util.Normalize(query))
	if len(words) == 0 {
		return assets
	}

	var kept []model.MediaAsset
	for _, a := range assets {
		hay := a.DiseaseSlug + " " + a.Taxon
		if a.Title != nil {
			hay += " " + *a.Title
		}
		hay = util.Normalize(hay)
		match := true
		for _, w := range words {
			if !strings.Contains(hay, w) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, a)
		}
	}
	return kept
}

func (api *API) buildCatalogCards(assets []model.MediaAsset) []model.CatalogCard {
	order := make([]string, 0)
	byDisease := make(map[string][]model.MediaAsset)
	for _, a := range assets {
		if _, ok := byDisease[a.DiseaseSlug]; !ok {
			order = append(order, a.DiseaseSlug)
		}
		byDisease[a.DiseaseSlug] = append(byDisease[a.DiseaseSlug], a)
	}

	cards := make([]model.CatalogCard, 0, len(order))
	for _, slug := range order {
		group := byDisease[slug]
		if len(group) > maxImagesPerDisease {
			group = group[:maxImagesPerDisease]
		}

		card := model.CatalogCard{
			Disease: strings.ReplaceAll(slug, "_", " "),
			Crop:    group[0].Crop,
			Taxon:   group[0].Taxon,
		}
		for _, a := range group {
			if a.Description != nil && *a.Description != "" {
				card.Description = *a.Description
				break
			}
		}
		if card.Description == "" {
			card.Description = "Sin descripción"
		}

		for _, a := range group {
			signed, err := api.Deps.URLCache.Get(a.PublicID)
			if err != nil {
				// One bad asset should not empty the gallery.
				continue
			}
			name := a.PublicID
			if a.Title != nil && *a.Title != "" {
				name = *a.Title
			}
			card.Images = append(card.Images, model.CatalogImage{Name: name, SignedURL: signed})
		}
		if len(card.Images) == 0 {
			continue
		}
		card.Cover = card.Images[0].SignedURL
		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Taxon != cards[j].Taxon {
			return cards[i].Taxon < cards[j].Taxon
		}
		return cards[i].Disease < cards[j].Disease
	})
	return cards
}

// AddCatalogImage uploads a reference photo into the crop dataset
// folder and registers it.
func (api *API) AddCatalogImage(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return respondWithError(err, "unable to parse upload", values.BadRequestBody, &tc)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return respondWithError(err, "missing image file", values.BadRequestBody, &tc)
	}
	defer file.Close()

	crop := r.FormValue("crop")
	if crop == "" {
		crop = api.Config.DatasetCrop
	}
	disease := r.FormValue("disease")
	if disease == "" {
		return respondWithError(fmt.Errorf("disease is required"), "disease is required", values.BadRequestBody, &tc)
	}
	taxon := r.FormValue("taxon")
	if !validTaxon(taxon) {
		return respondWithError(fmt.Errorf("unknown taxon %q", taxon), "unknown taxon", values.BadRequestBody, &tc)
	}

	folder := fmt.Sprintf("%s/%s/%s", api.Config.DatasetFolder, util.Slugify(crop), util.Slugify(disease))
	_, publicID, err := api.Deps.Cloudinary.UploadImage(r.Context(), file, folder)
	if err != nil {
		return respondWithError(err, "failed to upload image", values.Error, &tc)
	}

	asset := model.MediaAsset{
		PublicID:    publicID,
		Crop:        crop,
		Taxon:       taxon,
		DiseaseSlug: util.Slugify(disease),
		IsCover:     r.FormValue("is_cover") == "1",
	}
	if title := r.FormValue("title"); title != "" {
		asset.Title = &title
	}
	if desc := r.FormValue("description"); desc != "" {
		asset.Description = &desc
	}
	if v, convErr := strconv.Atoi(r.FormValue("sort_order")); convErr == nil {
		asset.SortOrder = v
	}

	created, err := api.InsertMediaAssetRepo(r.Context(), asset)
	if err != nil {
		return respondWithError(err, "failed to register catalog image", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Catalog image added successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       created,
	}
}

func validTaxon(taxon string) bool {
	for _, t := range model.CatalogTaxa {
		if t == taxon {
			return true
		}
	}
	return false
}
