// Package profile manages the extended 1:1 details attached to accounts:
// email, date of birth, address and a profile image stored on disk.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/upload"
)

// PlaceholderImage is returned for accounts that never uploaded a picture.
const PlaceholderImage = "https://cdn-icons-png.flaticon.com/512/847/847969.png"

type DBLayer interface {
	GetDetails(ctx context.Context, role string, accountID int64) (*models.Details, error)
	InsertDetails(ctx context.Context, role string, det *models.Details) error
	UpdateDetails(ctx context.Context, role string, det *models.Details, withImage bool) error
	DeleteDetails(ctx context.Context, role string, accountID int64) error
}

type AccountDB interface {
	GetByID(ctx context.Context, role string, id int64) (*models.Account, error)
	UpdateNames(ctx context.Context, role string, id int64, first, last, mobile string) error
}

// Files is the slice of the upload store the profile service needs.
type Files interface {
	Remove(purpose upload.Purpose, key string) error
}

type Service struct {
	DB       DBLayer
	Accounts AccountDB
	Files    Files
	BaseURL  string
	Logger   *logger.Logger
}

func NewService(db DBLayer, accounts AccountDB, files Files, baseURL string, log *logger.Logger) *Service {
	return &Service{DB: db, Accounts: accounts, Files: files, BaseURL: baseURL, Logger: log}
}

func imagePurpose(role string) upload.Purpose {
	if role == models.RoleAdmin {
		return upload.PurposeAdminProfileImage
	}
	return upload.PurposeProfileImage
}

// Get returns the account's profile. Accounts without a details row get
// defaults (placeholder image, empty fields) rather than a 404.
func (s *Service) Get(ctx context.Context, role string, accountID int64) (*models.Profile, error) {
	acct, err := s.Accounts.GetByID(ctx, role, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	p := &models.Profile{
		ID:        acct.ID,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Mobile:    acct.Mobile,
		Details: models.ProfileInfo{
			ProfileImage: PlaceholderImage,
		},
	}

	det, err := s.DB.GetDetails(ctx, role, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup details: %w", err)
	}

	p.Details.Email = det.Email
	p.Details.DateOfBirth = det.DateOfBirth
	p.Details.Address = det.Address
	if det.ProfileImage != "" {
		p.Details.ProfileImage = upload.URL(s.BaseURL, imagePurpose(role), det.ProfileImage)
	}
	return p, nil
}

// Update upserts the details row. A newly uploaded image replaces the old
// one and the old file is removed from disk. First and last name land on the
// account row itself.
func (s *Service) Update(ctx context.Context, role string, accountID int64, upd models.ProfileUpdate) (*models.Profile, error) {
	acct, err := s.Accounts.GetByID(ctx, role, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if upd.Email != "" && !validEmail(upd.Email) {
		return nil, apperr.E(apperr.ErrValidation, "Invalid email address")
	}
	if upd.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", upd.DateOfBirth); err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Date of birth must be YYYY-MM-DD")
		}
	}

	first, last := upd.FirstName, upd.LastName
	if first == "" {
		first = acct.FirstName
	}
	if last == "" {
		last = acct.LastName
	}
	if err := s.Accounts.UpdateNames(ctx, role, accountID, first, last, acct.Mobile); err != nil {
		return nil, fmt.Errorf("update account names: %w", err)
	}

	det, err := s.DB.GetDetails(ctx, role, accountID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		det = &models.Details{
			AccountID:    accountID,
			Email:        upd.Email,
			ProfileImage: upd.NewImage,
			DateOfBirth:  upd.DateOfBirth,
			Address:      upd.Address,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.DB.InsertDetails(ctx, role, det); err != nil {
			return nil, fmt.Errorf("insert details: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("lookup details: %w", err)
	default:
		if upd.NewImage != "" && det.ProfileImage != "" {
			if err := s.Files.Remove(imagePurpose(role), det.ProfileImage); err != nil {
				s.Logger.Warn("PROFILE", fmt.Sprintf("Failed to remove old image %s: %v", det.ProfileImage, err))
			}
		}
		det.Email = upd.Email
		det.DateOfBirth = upd.DateOfBirth
		det.Address = upd.Address
		if upd.NewImage != "" {
			det.ProfileImage = upd.NewImage
		}
		if err := s.DB.UpdateDetails(ctx, role, det, upd.NewImage != ""); err != nil {
			return nil, fmt.Errorf("update details: %w", err)
		}
	}

	return s.Get(ctx, role, accountID)
}

// Delete removes the details row and its image file. Deleting a profile
// that was never written is NotFound, matching the observed API.
func (s *Service) Delete(ctx context.Context, role string, accountID int64) error {
	det, err := s.DB.GetDetails(ctx, role, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.ErrNotFound, "Profile details not found")
	}
	if err != nil {
		return fmt.Errorf("lookup details: %w", err)
	}

	if det.ProfileImage != "" {
		if err := s.Files.Remove(imagePurpose(role), det.ProfileImage); err != nil {
			s.Logger.Warn("PROFILE", fmt.Sprintf("Failed to remove image %s: %v", det.ProfileImage, err))
		}
	}

	if err := s.DB.DeleteDetails(ctx, role, accountID); err != nil {
		return fmt.Errorf("delete details: %w", err)
	}
	return nil
}

// validEmail is the minimal shape check the original applied: one @ with
// something on both sides and a dot in the domain.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
