package accounts_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"event-ticketing/internal/accounts"
	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetByMobile(ctx context.Context, role, mobile string) (*models.Account, error) {
	args := m.Called(ctx, role, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockDBLayer) GetByID(ctx context.Context, role string, id int64) (*models.Account, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockDBLayer) Insert(ctx context.Context, role string, acct *models.Account) error {
	args := m.Called(ctx, role, acct)
	return args.Error(0)
}

func (m *MockDBLayer) UpdatePassword(ctx context.Context, role string, id int64, hash string) error {
	args := m.Called(ctx, role, id, hash)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateNames(ctx context.Context, role string, id int64, first, last, mobile string) error {
	args := m.Called(ctx, role, id, first, last, mobile)
	return args.Error(0)
}

func (m *MockDBLayer) ListUsers(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockDBLayer) DeleteUser(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(mobile, message string) bool {
	args := m.Called(mobile, message)
	return args.Bool(0)
}

func newService(db *MockDBLayer) *accounts.Service {
	return accounts.NewService(db, bcrypt.MinCost, nil, nil, logger.NewLogger())
}

func TestRegister(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	db.On("GetByMobile", mock.Anything, models.RoleUser, "0711111111").Return(nil, sql.ErrNoRows)
	db.On("Insert", mock.Anything, models.RoleUser, mock.AnythingOfType("*models.Account")).Return(nil)

	acct, err := svc.Register(context.Background(), models.RoleUser, models.RegisterRequest{
		FirstName: "Nimal",
		LastName:  "Perera",
		Mobile:    "0711111111",
		Password:  "pass1234",
	})
	assert.NoError(t, err)
	assert.Equal(t, "0711111111", acct.Mobile)
	assert.NotEqual(t, "pass1234", acct.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("pass1234")))
	db.AssertExpectations(t)
}

func TestRegisterMissingFields(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	_, err := svc.Register(context.Background(), models.RoleUser, models.RegisterRequest{
		FirstName: "Nimal",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	db.AssertNotCalled(t, "Insert")
}

func TestRegisterDuplicateMobile(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	db.On("GetByMobile", mock.Anything, models.RoleUser, "0711111111").
		Return(&models.Account{ID: 1, Mobile: "0711111111"}, nil)

	_, err := svc.Register(context.Background(), models.RoleUser, models.RegisterRequest{
		FirstName: "Nimal",
		LastName:  "Perera",
		Mobile:    "0711111111",
		Password:  "pass1234",
	})
	assert.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	db.AssertNotCalled(t, "Insert")
}

func TestAuthenticate(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	db.On("GetByMobile", mock.Anything, models.RoleUser, "0711111111").
		Return(&models.Account{ID: 9, Mobile: "0711111111", PasswordHash: string(hash)}, nil)

	acct, err := svc.Authenticate(context.Background(), models.RoleUser, "0711111111", "pass1234")
	assert.NoError(t, err)
	assert.Equal(t, int64(9), acct.ID)
}

func TestAuthenticateSameErrorForUnknownAndWrongPassword(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pass1234"), bcrypt.MinCost)
	db.On("GetByMobile", mock.Anything, models.RoleUser, "0711111111").
		Return(&models.Account{ID: 9, PasswordHash: string(hash)}, nil)
	db.On("GetByMobile", mock.Anything, models.RoleUser, "0770000000").
		Return(nil, sql.ErrNoRows)

	_, errWrongPass := svc.Authenticate(context.Background(), models.RoleUser, "0711111111", "wrong")
	_, errUnknown := svc.Authenticate(context.Background(), models.RoleUser, "0770000000", "pass1234")

	assert.Error(t, errWrongPass)
	assert.Error(t, errUnknown)
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
	assert.Equal(t, apperr.Status(errWrongPass), apperr.Status(errUnknown))
}

func TestChangePassword(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	db.On("GetByID", mock.Anything, models.RoleAdmin, int64(2)).
		Return(&models.Account{ID: 2, PasswordHash: string(hash)}, nil)
	db.On("UpdatePassword", mock.Anything, models.RoleAdmin, int64(2), mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(context.Background(), models.RoleAdmin, 2, "oldpass", "newpass", "newpass")
	assert.NoError(t, err)
	db.AssertExpectations(t)
}

func TestChangePasswordConfirmMismatch(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	err := svc.ChangePassword(context.Background(), models.RoleAdmin, 2, "oldpass", "newpass", "different")
	assert.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	db.AssertNotCalled(t, "UpdatePassword")
}

func TestChangePasswordWrongOld(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	db.On("GetByID", mock.Anything, models.RoleUser, int64(2)).
		Return(&models.Account{ID: 2, PasswordHash: string(hash)}, nil)

	err := svc.ChangePassword(context.Background(), models.RoleUser, 2, "not-the-old", "newpass", "newpass")
	assert.Error(t, err)
	db.AssertNotCalled(t, "UpdatePassword")
}

func TestAddUserSendsWelcomeSMS(t *testing.T) {
	db := new(MockDBLayer)
	notifier := new(MockNotifier)
	svc := accounts.NewService(db, bcrypt.MinCost, notifier, nil, logger.NewLogger())

	db.On("GetByMobile", mock.Anything, models.RoleUser, "0722222222").Return(nil, sql.ErrNoRows)
	db.On("Insert", mock.Anything, models.RoleUser, mock.AnythingOfType("*models.Account")).Return(nil)

	sent := make(chan struct{})
	notifier.On("Send", "0722222222", mock.AnythingOfType("string")).
		Run(func(mock.Arguments) { close(sent) }).
		Return(true)

	_, err := svc.AddUser(context.Background(), models.RegisterRequest{
		FirstName: "Kamala",
		LastName:  "Silva",
		Mobile:    "0722222222",
		Password:  "pass1234",
	})
	assert.NoError(t, err)
	<-sent
	notifier.AssertExpectations(t)
}

func TestDeleteUserNotFound(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db)

	db.On("GetByID", mock.Anything, models.RoleUser, int64(99)).Return(nil, sql.ErrNoRows)

	err := svc.DeleteUser(context.Background(), 99)
	assert.Error(t, err)
	assert.Equal(t, 404, apperr.Status(err))
	db.AssertNotCalled(t, "DeleteUser")
}
