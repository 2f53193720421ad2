package rest

import (
	"context"
	"fmt"

	"github.com/phytoscan/phytoscan-api/internal/model"
)

func (api *API) UpdateUserRepo(ctx context.Context, userID string, req model.UpdateUserRequest) error {
	stmt := `
        UPDATE users
        SET firstname = COALESCE($2, firstname),
            lastname = COALESCE($3, lastname),
            preferred_language = COALESCE($4, preferred_language),
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := api.DB.Exec(ctx, stmt, userID, req.FirstName, req.LastName, req.PreferredLanguage)
	if err != nil {
		return err
	}
	return nil
}

func (api *API) ChangePasswordRepo(ctx context.Context, userID, oldPassword, newPassword string) error {
	var currentHash *string
	stmt := `SELECT password_hash FROM users WHERE id = $1`
	if err := api.DB.QueryRow(ctx, stmt, userID).Scan(&currentHash); err != nil {
		return err
	}
	if currentHash == nil {
		return fmt.Errorf("account has no password set")
	}
	if err := checkPassword(*currentHash, oldPassword); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	newHash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	update := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err = api.DB.Exec(ctx, update, userID, newHash)
	return err
}

func (api *API) UpdateLanguageRepo(ctx context.Context, userID, language string) error {
	stmt := `
        UPDATE users
        SET preferred_language = $2, updated_at = NOW()
        WHERE id = $1
    `
	_, err := api.DB.Exec(ctx, stmt, userID, language)
	if err != nil {
		return err
	}
	return nil
}

// DeleteUserRepo soft-deletes so historical detections keep their
// author reference.
func (api *API) DeleteUserRepo(ctx context.Context, userID string) error {
	stmt := `UPDATE users SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`

	_, err := api.DB.Exec(ctx, stmt, userID)
	if err != nil {
		return err
	}
	return nil
}
