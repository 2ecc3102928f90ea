package moderation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const adminID int64 = 99

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, uid int64, text string) error {
	args := m.Called(ctx, uid, text)
	return args.Error(0)
}

func newService(s *mocks.MockStorage, n *MockNotifier) *moderation.Service {
	return moderation.NewService(s, n, metrics.Noop{}, zap.NewNop(), adminID)
}

func TestRate_RecordsScore(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("CreateRating", mock.AnythingOfType("*models.Rating")).Return(nil)

	err := newService(storageMock, notifier).Rate(1, 2, 5, 4)

	assert.NoError(t, err)
	storageMock.AssertCalled(t, "CreateRating", mock.MatchedBy(func(r *models.Rating) bool {
		return r.RaterID == 1 && r.RatedID == 2 && r.SessionID == 5 && r.Score == 4
	}))
}

func TestRate_InvalidScore(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)

	svc := newService(storageMock, notifier)
	assert.True(t, errors.Is(svc.Rate(1, 2, 5, 0), moderation.ErrInvalidScore))
	assert.True(t, errors.Is(svc.Rate(1, 2, 5, 6), moderation.ErrInvalidScore))
	storageMock.AssertNotCalled(t, "CreateRating", mock.Anything)
}

func TestRate_AlreadyRated(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("CreateRating", mock.Anything).Return(models.ErrAlreadyRated)

	err := newService(storageMock, notifier).Rate(1, 2, 5, 4)

	assert.True(t, errors.Is(err, models.ErrAlreadyRated))
}

func TestReport_SendsDigestToAdmin(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1, Name: "Alice"}, nil)
	storageMock.On("GetUser", int64(2)).Return(&models.User{TelegramID: 2, Name: "Bob"}, nil)
	storageMock.On("CreateReport", mock.AnythingOfType("*models.Report")).Return(nil)
	storageMock.On("Transcript", uint(5)).Return([]models.TranscriptEntry{
		{SessionID: 5, SenderID: 1, Display: "Alice 👤", Label: "hi", CreatedAt: time.Now()},
	}, nil)
	notifier.On("Notify", mock.Anything, adminID, mock.AnythingOfType("string")).Return(nil)

	_, err := newService(storageMock, notifier).Report(context.Background(), 1, 2, 5)

	assert.NoError(t, err)
	notifier.AssertCalled(t, "Notify", mock.Anything, adminID, mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Alice") && strings.Contains(text, "Bob") &&
			strings.Contains(text, "hi")
	}))
}

func TestReport_AdminNotifyFailureIsNotFatal(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("GetUser", int64(2)).Return(&models.User{TelegramID: 2}, nil)
	storageMock.On("CreateReport", mock.Anything).Return(nil)
	storageMock.On("Transcript", uint(5)).Return([]models.TranscriptEntry{}, nil)
	notifier.On("Notify", mock.Anything, adminID, mock.Anything).Return(errors.New("network down"))

	_, err := newService(storageMock, notifier).Report(context.Background(), 1, 2, 5)

	assert.NoError(t, err)
}

func TestAdjudicate_BanFlipsFlagAndNotifies(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetReport", uint(7)).
		Return(&models.Report{ID: 7, ReporterID: 1, ReportedID: 2, SessionID: 5}, nil)
	storageMock.On("SetBanned", int64(2), true).Return(nil)
	storageMock.On("SetReportStatus", uint(7), models.ReportBanned).Return(nil)
	notifier.On("Notify", mock.Anything, int64(2), mock.AnythingOfType("string")).Return(nil)

	err := newService(storageMock, notifier).
		Adjudicate(context.Background(), adminID, 7, moderation.ActionBan)

	assert.NoError(t, err)
	storageMock.AssertExpectations(t)
	notifier.AssertCalled(t, "Notify", mock.Anything, int64(2), mock.AnythingOfType("string"))
}

func TestAdjudicate_SkipOnlyMovesStatus(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)
	storageMock.On("GetReport", uint(7)).
		Return(&models.Report{ID: 7, ReportedID: 2}, nil)
	storageMock.On("SetReportStatus", uint(7), models.ReportSkipped).Return(nil)

	err := newService(storageMock, notifier).
		Adjudicate(context.Background(), adminID, 7, moderation.ActionSkip)

	assert.NoError(t, err)
	storageMock.AssertNotCalled(t, "SetBanned", mock.Anything, mock.Anything)
}

func TestAdjudicate_Forbidden(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	notifier := new(MockNotifier)

	err := newService(storageMock, notifier).
		Adjudicate(context.Background(), 12345, 7, moderation.ActionBan)

	assert.True(t, errors.Is(err, models.ErrForbidden))
	storageMock.AssertNotCalled(t, "GetReport", mock.Anything)
}

func TestFormatTranscript(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	entries := []models.TranscriptEntry{
		{Display: "Alice 👧 25", Label: "hi", CreatedAt: at},
		{Display: "Bob 👦 30", Label: "[📷 Photo]", CreatedAt: at.Add(time.Minute)},
	}

	got := moderation.FormatTranscript(entries)

	assert.Equal(t, "[15:04] Alice 👧 25: hi\n[15:05] Bob 👦 30: [📷 Photo]", got)
}

func TestFormatTranscript_Empty(t *testing.T) {
	assert.Equal(t, "(empty dialog)", moderation.FormatTranscript(nil))
}
