// Package db is the persistence layer for admin and user credential
// records. The two variants share one code path: the role argument selects
// the table.
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

// GetByMobile looks up an account by its login identifier within the role's
// namespace. Returns sql.ErrNoRows (wrapped by bun) when absent.
func (d *DB) GetByMobile(ctx context.Context, role, mobile string) (*models.Account, error) {
	switch role {
	case models.RoleAdmin:
		var a models.Admin
		err := d.Bun.NewSelect().
			Model(&a).
			Where("mobile = ?", mobile).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &a.Account, nil
	case models.RoleUser:
		var u models.User
		err := d.Bun.NewSelect().
			Model(&u).
			Where("mobile = ?", mobile).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &u.Account, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

func (d *DB) GetByID(ctx context.Context, role string, id int64) (*models.Account, error) {
	switch role {
	case models.RoleAdmin:
		var a models.Admin
		err := d.Bun.NewSelect().
			Model(&a).
			Where("id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &a.Account, nil
	case models.RoleUser:
		var u models.User
		err := d.Bun.NewSelect().
			Model(&u).
			Where("id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return &u.Account, nil
	}
	return nil, fmt.Errorf("unknown role %q", role)
}

// Insert stores a new account and fills in its assigned id.
func (d *DB) Insert(ctx context.Context, role string, acct *models.Account) error {
	switch role {
	case models.RoleAdmin:
		a := models.Admin{Account: *acct}
		if _, err := d.Bun.NewInsert().Model(&a).Exec(ctx); err != nil {
			return err
		}
		*acct = a.Account
		return nil
	case models.RoleUser:
		u := models.User{Account: *acct}
		if _, err := d.Bun.NewInsert().Model(&u).Exec(ctx); err != nil {
			return err
		}
		*acct = u.Account
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}

func (d *DB) UpdatePassword(ctx context.Context, role string, id int64, hash string) error {
	switch role {
	case models.RoleAdmin:
		_, err := d.Bun.NewUpdate().
			Model((*models.Admin)(nil)).
			Set("password = ?", hash).
			Where("id = ?", id).
			Exec(ctx)
		return err
	case models.RoleUser:
		_, err := d.Bun.NewUpdate().
			Model((*models.User)(nil)).
			Set("password = ?", hash).
			Where("id = ?", id).
			Exec(ctx)
		return err
	}
	return fmt.Errorf("unknown role %q", role)
}

// UpdateNames rewrites the mutable identity fields on an account row.
func (d *DB) UpdateNames(ctx context.Context, role string, id int64, first, last, mobile string) error {
	switch role {
	case models.RoleAdmin:
		_, err := d.Bun.NewUpdate().
			Model((*models.Admin)(nil)).
			Set("first_name = ?", first).
			Set("last_name = ?", last).
			Set("mobile = ?", mobile).
			Where("id = ?", id).
			Exec(ctx)
		return err
	case models.RoleUser:
		_, err := d.Bun.NewUpdate().
			Model((*models.User)(nil)).
			Set("first_name = ?", first).
			Set("last_name = ?", last).
			Set("mobile = ?", mobile).
			Where("id = ?", id).
			Exec(ctx)
		return err
	}
	return fmt.Errorf("unknown role %q", role)
}

// ListUsers returns all user accounts oldest-first.
func (d *DB) ListUsers(ctx context.Context) ([]models.Account, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, len(users))
	for i, u := range users {
		accounts[i] = u.Account
	}
	return accounts, nil
}

// DeleteUser removes a user together with their details row and bookings in
// one transaction, mirroring the schema's cascade rules on backends without
// foreign-key enforcement.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.UserDetails)(nil)).
			Where("account_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
