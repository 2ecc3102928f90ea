// Package mocks holds the testify mock of the Storage interface,
// shared by the service test packages.
package mocks

import (
	"context"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUser(uid int64) (*models.User, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) UpdateUserName(uid int64, name string) error {
	args := m.Called(uid, name)
	return args.Error(0)
}

func (m *MockStorage) UpdateUserLanguage(uid int64, lang string) error {
	args := m.Called(uid, lang)
	return args.Error(0)
}

func (m *MockStorage) IncrementRefCount(uid int64) error {
	args := m.Called(uid)
	return args.Error(0)
}

func (m *MockStorage) IncrementMessagesSent(uid int64) error {
	args := m.Called(uid)
	return args.Error(0)
}

func (m *MockStorage) SetBanned(uid int64, banned bool) error {
	args := m.Called(uid, banned)
	return args.Error(0)
}

func (m *MockStorage) ActiveUserIDs() ([]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockStorage) IdleUserIDs() ([]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockStorage) MatchOrEnqueue(uid int64) (storage.MatchOutcome, error) {
	args := m.Called(uid)
	return args.Get(0).(storage.MatchOutcome), args.Error(1)
}

func (m *MockStorage) CancelQueue(uid int64) (bool, error) {
	args := m.Called(uid)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) InQueue(uid int64) (bool, error) {
	args := m.Called(uid)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ActiveSessionFor(uid int64) (*models.Session, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStorage) EndSession(uid int64) (*models.Session, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStorage) AppendTranscript(entry *models.TranscriptEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockStorage) Transcript(sessionID uint) ([]models.TranscriptEntry, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TranscriptEntry), args.Error(1)
}

func (m *MockStorage) CreateRating(rating *models.Rating) error {
	args := m.Called(rating)
	return args.Error(0)
}

func (m *MockStorage) CreateReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockStorage) GetReport(id uint) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) SetReportStatus(id uint, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStorage) PendingReports() ([]models.Report, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) GlobalStats() (storage.Stats, error) {
	args := m.Called()
	return args.Get(0).(storage.Stats), args.Error(1)
}

func (m *MockStorage) SetConvState(ctx context.Context, uid int64, state storage.ConvState) error {
	args := m.Called(ctx, uid, state)
	return args.Error(0)
}

func (m *MockStorage) GetConvState(ctx context.Context, uid int64) (*storage.ConvState, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ConvState), args.Error(1)
}

func (m *MockStorage) ClearConvState(ctx context.Context, uid int64) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}
