package rest

import (
	"context"
	"log"

	"github.com/phytoscan/phytoscan-api/internal/model"
)

const catalogFetchLimit = 5000

func (api *API) ListMediaAssetsRepo(ctx context.Context, crop, taxon string) ([]model.MediaAsset, error) {
	stmt := `
        SELECT id, public_id, crop, taxon, disease_slug, title, description,
            sort_order, is_cover, threat_id, created_at
        FROM media_assets
        WHERE crop = $1 AND ($2 = '' OR taxon = $2)
        ORDER BY disease_slug, is_cover DESC, sort_order
        LIMIT $3
    `
	rows, err := api.DB.Query(ctx, stmt, crop, taxon, catalogFetchLimit)
	if err != nil {
		log.Println("error listing media assets", err)
		return nil, err
	}
	defer rows.Close()

	var assets []model.MediaAsset
	for rows.Next() {
		var a model.MediaAsset
		if err := rows.Scan(
			&a.ID, &a.PublicID, &a.Crop, &a.Taxon, &a.DiseaseSlug, &a.Title,
			&a.Description, &a.SortOrder, &a.IsCover, &a.ThreatID, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (api *API) InsertMediaAssetRepo(ctx context.Context, a model.MediaAsset) (model.MediaAsset, error) {
	stmt := `
        INSERT INTO media_assets (public_id, crop, taxon, disease_slug, title, description, sort_order, is_cover, threat_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at
    `
	err := api.DB.QueryRow(ctx, stmt,
		a.PublicID, a.Crop, a.Taxon, a.DiseaseSlug, a.Title, a.Description,
		a.SortOrder, a.IsCover, a.ThreatID,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		log.Println("error inserting media asset", err)
		return model.MediaAsset{}, err
	}
	return a, nil
}
