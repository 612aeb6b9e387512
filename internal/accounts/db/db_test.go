package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	accountsdb "event-ticketing/internal/accounts/db"
	"event-ticketing/internal/models"
)

func setupTestDB(t *testing.T) (*accountsdb.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	tables := []interface{}{
		(*models.Admin)(nil),
		(*models.User)(nil),
		(*models.AdminDetails)(nil),
		(*models.UserDetails)(nil),
		(*models.Booking)(nil),
	}
	for _, m := range tables {
		if _, err := bunDB.NewCreateTable().Model(m).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}

	return &accountsdb.DB{Bun: bunDB}, bunDB
}

func insertUser(t *testing.T, db *accountsdb.DB, mobile string) *models.Account {
	t.Helper()
	acct := &models.Account{
		FirstName:    "Nimal",
		LastName:     "Perera",
		Mobile:       mobile,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	assert.NoError(t, db.Insert(context.Background(), models.RoleUser, acct))
	return acct
}

func TestInsertAndGetByMobile(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()

	inserted := insertUser(t, db, "0711111111")
	assert.NotZero(t, inserted.ID)

	acct, err := db.GetByMobile(context.Background(), models.RoleUser, "0711111111")
	assert.NoError(t, err)
	assert.Equal(t, inserted.ID, acct.ID)
	assert.Equal(t, "Nimal", acct.FirstName)

	// same mobile in the admin namespace is absent
	_, err = db.GetByMobile(context.Background(), models.RoleAdmin, "0711111111")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRoleNamespacesAreSeparate(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()

	admin := &models.Account{FirstName: "Admin", LastName: "One", Mobile: "0700000001", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	assert.NoError(t, db.Insert(context.Background(), models.RoleAdmin, admin))
	user := &models.Account{FirstName: "User", LastName: "One", Mobile: "0700000001", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	assert.NoError(t, db.Insert(context.Background(), models.RoleUser, user))

	gotAdmin, err := db.GetByID(context.Background(), models.RoleAdmin, admin.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Admin", gotAdmin.FirstName)

	gotUser, err := db.GetByID(context.Background(), models.RoleUser, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "User", gotUser.FirstName)
}

func TestUpdatePassword(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()

	acct := insertUser(t, db, "0711111111")

	assert.NoError(t, db.UpdatePassword(context.Background(), models.RoleUser, acct.ID, "newhash"))

	got, err := db.GetByID(context.Background(), models.RoleUser, acct.ID)
	assert.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
}

func TestUpdateNames(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()

	acct := insertUser(t, db, "0711111111")

	assert.NoError(t, db.UpdateNames(context.Background(), models.RoleUser, acct.ID, "Kamala", "Silva", "0722222222"))

	got, err := db.GetByID(context.Background(), models.RoleUser, acct.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Kamala", got.FirstName)
	assert.Equal(t, "Silva", got.LastName)
	assert.Equal(t, "0722222222", got.Mobile)
}

func TestListUsersOrderedByCreation(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()

	first := &models.Account{FirstName: "First", LastName: "User", Mobile: "0711111111", PasswordHash: "h", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	assert.NoError(t, db.Insert(context.Background(), models.RoleUser, first))
	second := &models.Account{FirstName: "Second", LastName: "User", Mobile: "0722222222", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	assert.NoError(t, db.Insert(context.Background(), models.RoleUser, second))

	users, err := db.ListUsers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "First", users[0].FirstName)
	assert.Equal(t, "Second", users[1].FirstName)
}

func TestDeleteUserCascades(t *testing.T) {
	db, bunDB := setupTestDB(t)
	defer bunDB.Close()
	ctx := context.Background()

	acct := insertUser(t, db, "0711111111")

	details := &models.UserDetails{Details: models.Details{AccountID: acct.ID, Email: "nimal@example.com", CreatedAt: time.Now().UTC()}}
	_, err := bunDB.NewInsert().Model(details).Exec(ctx)
	assert.NoError(t, err)

	booking := &models.Booking{EventID: 1, UserID: acct.ID, TicketsCount: 2, BookingDate: time.Now().UTC()}
	_, err = bunDB.NewInsert().Model(booking).Exec(ctx)
	assert.NoError(t, err)

	assert.NoError(t, db.DeleteUser(ctx, acct.ID))

	_, err = db.GetByID(ctx, models.RoleUser, acct.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	detailsCount, err := bunDB.NewSelect().Model((*models.UserDetails)(nil)).Where("account_id = ?", acct.ID).Count(ctx)
	assert.NoError(t, err)
	assert.Zero(t, detailsCount)

	bookingCount, err := bunDB.NewSelect().Model((*models.Booking)(nil)).Where("user_id = ?", acct.ID).Count(ctx)
	assert.NoError(t, err)
	assert.Zero(t, bookingCount)
}
