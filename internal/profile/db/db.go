// Package db persists the optional 1:1 details row attached to each
// account. As with accounts, the role selects the table.
package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"event-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetDetails fetches an account's details row, sql.ErrNoRows when none has
// been written yet.
func (d *DB) GetDetails(ctx context.Context, role string, accountID int64) (*models.Details, error) {
	switch role {
	case models.RoleAdmin:
		var det models.AdminDetails
		err := d.Bun.NewSelect().
			Model(&det).
			Where("account_id = ?", accountID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &det.Details, nil
	case models.RoleUser:
		var det models.UserDetails
		err := d.Bun.NewSelect().
			Model(&det).
			Where("account_id = ?", accountID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &det.Details, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

func (d *DB) InsertDetails(ctx context.Context, role string, det *models.Details) error {
	switch role {
	case models.RoleAdmin:
		row := models.AdminDetails{Details: *det}
		if _, err := d.Bun.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		*det = row.Details
		return nil
	case models.RoleUser:
		row := models.UserDetails{Details: *det}
		if _, err := d.Bun.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		*det = row.Details
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}

// UpdateDetails rewrites the mutable fields. The profile image column is
// only touched when the update carries a new image, so an update without an
// upload never clears an existing image.
func (d *DB) UpdateDetails(ctx context.Context, role string, det *models.Details, withImage bool) error {
	columns := []string{"email", "date_of_birth", "address"}
	if withImage {
		columns = append(columns, "profile_image")
	}
	switch role {
	case models.RoleAdmin:
		row := models.AdminDetails{Details: *det}
		_, err := d.Bun.NewUpdate().
			Model(&row).
			Column(columns...).
			Where("account_id = ?", det.AccountID).
			Exec(ctx)
		return err
	case models.RoleUser:
		row := models.UserDetails{Details: *det}
		_, err := d.Bun.NewUpdate().
			Model(&row).
			Column(columns...).
			Where("account_id = ?", det.AccountID).
			Exec(ctx)
		return err
	}
	return fmt.Errorf("unknown role %q", role)
}

func (d *DB) DeleteDetails(ctx context.Context, role string, accountID int64) error {
	switch role {
	case models.RoleAdmin:
		_, err := d.Bun.NewDelete().
			Model((*models.AdminDetails)(nil)).
			Where("account_id = ?", accountID).
			Exec(ctx)
		return err
	case models.RoleUser:
		_, err := d.Bun.NewDelete().
			Model((*models.UserDetails)(nil)).
			Where("account_id = ?", accountID).
			Exec(ctx)
		return err
	}
	return fmt.Errorf("unknown role %q", role)
}
