package events_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/events"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/upload"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) List(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) Insert(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) Update(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockFiles struct {
	mock.Mock
}

func (m *MockFiles) Remove(purpose upload.Purpose, key string) error {
	args := m.Called(purpose, key)
	return args.Error(0)
}

func newService(db *MockDBLayer, files *MockFiles) *events.Service {
	return events.NewService(db, files, "http://localhost:5000", logger.NewLogger())
}

func TestListQualifiesImageURLs(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockFiles))

	db.On("List", mock.Anything).Return([]models.Event{
		{EventID: 1, Title: "With Image", Image: "abc_expo.png"},
		{EventID: 2, Title: "Without Image"},
	}, nil)

	list, err := svc.List(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/event_images/abc_expo.png", list[0].Image)
	assert.Empty(t, list[1].Image)
}

func TestCreateValidation(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockFiles))
	price := decimal.RequireFromString("1500.00")

	_, err := svc.Create(context.Background(), "", "2026-11-05", "BMICH", price, "")
	assert.Equal(t, 400, apperr.Status(err))

	_, err = svc.Create(context.Background(), "Tech Expo", "05-11-2026", "BMICH", price, "")
	assert.Equal(t, 400, apperr.Status(err))

	_, err = svc.Create(context.Background(), "Tech Expo", "2026-11-05", "BMICH", decimal.RequireFromString("-1"), "")
	assert.Equal(t, 400, apperr.Status(err))

	db.AssertNotCalled(t, "Insert")
}

func TestCreate(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockFiles))

	db.On("Insert", mock.Anything, mock.AnythingOfType("*models.Event")).Return(nil)

	event, err := svc.Create(context.Background(), "Tech Expo", "2026-11-05", "BMICH", decimal.RequireFromString("1500.00"), "key.png")
	assert.NoError(t, err)
	assert.Equal(t, "Tech Expo", event.Title)
	assert.Equal(t, "key.png", event.Image)
	db.AssertExpectations(t)
}

func TestUpdateReplacingImageDeletesOld(t *testing.T) {
	db := new(MockDBLayer)
	files := new(MockFiles)
	svc := newService(db, files)

	db.On("GetByID", mock.Anything, int64(1)).Return(&models.Event{
		EventID: 1, Title: "Tech Expo", Date: "2026-11-05", Venue: "BMICH",
		Price: decimal.RequireFromString("1500.00"), Image: "old.png",
	}, nil)
	db.On("Update", mock.Anything, mock.AnythingOfType("*models.Event")).Return(nil)
	files.On("Remove", upload.PurposeEventImage, "old.png").Return(nil)

	event, err := svc.Update(context.Background(), 1, models.EventUpdate{NewImage: "new.png"})
	assert.NoError(t, err)
	assert.Equal(t, "new.png", event.Image)
	files.AssertExpectations(t)
}

func TestUpdatePartialFields(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockFiles))

	db.On("GetByID", mock.Anything, int64(1)).Return(&models.Event{
		EventID: 1, Title: "Tech Expo", Date: "2026-11-05", Venue: "BMICH",
		Price: decimal.RequireFromString("1500.00"),
	}, nil)
	db.On("Update", mock.Anything, mock.AnythingOfType("*models.Event")).Return(nil)

	newPrice := decimal.RequireFromString("1750.00")
	event, err := svc.Update(context.Background(), 1, models.EventUpdate{Price: &newPrice})
	assert.NoError(t, err)
	assert.Equal(t, "Tech Expo", event.Title)
	assert.True(t, newPrice.Equal(event.Price))
}

func TestUpdateNotFound(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockFiles))

	db.On("GetByID", mock.Anything, int64(404)).Return(nil, sql.ErrNoRows)

	_, err := svc.Update(context.Background(), 404, models.EventUpdate{})
	assert.Equal(t, 404, apperr.Status(err))
}

func TestDeleteRemovesImage(t *testing.T) {
	db := new(MockDBLayer)
	files := new(MockFiles)
	svc := newService(db, files)

	db.On("GetByID", mock.Anything, int64(1)).Return(&models.Event{EventID: 1, Image: "poster.png"}, nil)
	db.On("Delete", mock.Anything, int64(1)).Return(nil)
	files.On("Remove", upload.PurposeEventImage, "poster.png").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), 1))
	db.AssertExpectations(t)
	files.AssertExpectations(t)
}
