// Package accounts is the credential store for both account variants. One
// generic service handles registration, login and password management; the
// role argument picks the namespace.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/sms"
)

type DBLayer interface {
	GetByMobile(ctx context.Context, role, mobile string) (*models.Account, error)
	GetByID(ctx context.Context, role string, id int64) (*models.Account, error)
	Insert(ctx context.Context, role string, acct *models.Account) error
	UpdatePassword(ctx context.Context, role string, id int64, hash string) error
	UpdateNames(ctx context.Context, role string, id int64, first, last, mobile string) error
	ListUsers(ctx context.Context) ([]models.Account, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Publisher announces new user registrations on the message bus. A nil
// Publisher disables publishing.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, info models.AccountInfo) error
}

type Service struct {
	DB         DBLayer
	BcryptCost int
	Notifier   sms.Notifier
	Publisher  Publisher
	Logger     *logger.Logger
}

func NewService(db DBLayer, bcryptCost int, notifier sms.Notifier, pub Publisher, log *logger.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{DB: db, BcryptCost: bcryptCost, Notifier: notifier, Publisher: pub, Logger: log}
}

// Register creates an account after checking the mobile is unused within the
// role's namespace. The password is hashed before storage and the plaintext
// never retained.
func (s *Service) Register(ctx context.Context, role string, req models.RegisterRequest) (*models.Account, error) {
	if req.FirstName == "" || req.LastName == "" || req.Mobile == "" || req.Password == "" {
		return nil, apperr.E(apperr.ErrValidation, "All fields are required")
	}

	existing, err := s.DB.GetByMobile(ctx, role, req.Mobile)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check existing %s: %w", role, err)
	}
	if existing != nil {
		return nil, apperr.E(apperr.ErrConflict, "Account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &models.Account{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.Insert(ctx, role, acct); err != nil {
		return nil, fmt.Errorf("insert %s: %w", role, err)
	}

	s.Logger.Info("ACCOUNTS", fmt.Sprintf("Registered %s %d (mobile %s)", role, acct.ID, acct.Mobile))

	if s.Publisher != nil && role == models.RoleUser {
		if err := s.Publisher.PublishUserRegistered(ctx, acct.Info()); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("publish user registered: %v", err))
		}
	}
	return acct, nil
}

// Authenticate validates a mobile/password pair. An unknown mobile and a bad
// password produce the identical error so responses cannot be used to probe
// for registered numbers.
func (s *Service) Authenticate(ctx context.Context, role, mobile, password string) (*models.Account, error) {
	invalid := apperr.E(apperr.ErrInvalidCredentials, "Invalid credentials")

	if mobile == "" || password == "" {
		return nil, invalid
	}

	acct, err := s.DB.GetByMobile(ctx, role, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", role, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return acct, nil
}

// ChangePassword swaps an account's password after re-proving the old one.
func (s *Service) ChangePassword(ctx context.Context, role string, id int64, old, newPass, confirm string) error {
	if old == "" || newPass == "" || confirm == "" {
		return apperr.E(apperr.ErrValidation, "All fields are required")
	}
	if newPass != confirm {
		return apperr.E(apperr.ErrValidation, "New password and confirm password do not match")
	}

	acct, err := s.DB.GetByID(ctx, role, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.ErrNotFound, "Account not found")
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", role, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(old)) != nil {
		return apperr.E(apperr.ErrInvalidCredentials, "Old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), s.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.DB.UpdatePassword(ctx, role, id, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.Logger.LogSecurity("PASSWORD_CHANGE", fmt.Sprintf("%s %d changed password", role, id))
	return nil
}

// Dashboard returns the account summary shown after login.
func (s *Service) Dashboard(ctx context.Context, role string, id int64) (*models.AccountInfo, error) {
	acct, err := s.DB.GetByID(ctx, role, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", role, err)
	}
	info := acct.Info()
	return &info, nil
}

// ListUsers returns every user account for the admin management view.
func (s *Service) ListUsers(ctx context.Context) ([]models.AccountInfo, error) {
	accounts, err := s.DB.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	infos := make([]models.AccountInfo, len(accounts))
	for i, a := range accounts {
		infos[i] = a.Info()
	}
	return infos, nil
}

// AddUser registers a user on an admin's behalf and texts them their login
// details. Delivery is fire-and-forget: a gateway failure never fails the
// request.
func (s *Service) AddUser(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	acct, err := s.Register(ctx, models.RoleUser, req)
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		message := fmt.Sprintf(
			"Dear Mr./Ms. %s %s, you have been registered to the Event Ticketing System. Login with mobile %s and change your password after your first login.",
			acct.FirstName, acct.LastName, acct.Mobile,
		)
		mobile := acct.Mobile
		go func() {
			if !s.Notifier.Send(mobile, message) {
				s.Logger.Warn("ACCOUNTS", fmt.Sprintf("Welcome SMS to %s failed", mobile))
			}
		}()
	}

	return acct, nil
}

// UpdateUser rewrites a user's identity fields (admin management).
func (s *Service) UpdateUser(ctx context.Context, id int64, first, last, mobile string) (*models.AccountInfo, error) {
	if first == "" || last == "" || mobile == "" {
		return nil, apperr.E(apperr.ErrValidation, "All fields are required")
	}

	if _, err := s.DB.GetByID(ctx, models.RoleUser, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.E(apperr.ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.DB.UpdateNames(ctx, models.RoleUser, id, first, last, mobile); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.Dashboard(ctx, models.RoleUser, id)
}

// DeleteUser removes a user account; their details row and bookings go with
// it.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.DB.GetByID(ctx, models.RoleUser, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.E(apperr.ErrNotFound, "User not found")
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if err := s.DB.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.Logger.Info("ACCOUNTS", fmt.Sprintf("Deleted user %d", id))
	return nil
}
