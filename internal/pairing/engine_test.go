package pairing_test

import (
	"errors"
	"testing"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/pairing"
	"anonchat/backend/internal/storage"
	"anonchat/backend/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newEngine(s storage.Storage) *pairing.Engine {
	return pairing.NewEngine(s, metrics.Noop{}, zap.NewNop())
}

func TestFind_Queued(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).Return(nil, models.ErrNotFound)
	storageMock.On("InQueue", int64(1)).Return(false, nil)
	storageMock.On("MatchOrEnqueue", int64(1)).Return(storage.MatchOutcome{}, nil)

	res, err := newEngine(storageMock).Find(1)

	assert.NoError(t, err)
	assert.True(t, res.Queued)
	storageMock.AssertExpectations(t)
}

func TestFind_Matched(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).Return(nil, models.ErrNotFound)
	storageMock.On("InQueue", int64(1)).Return(false, nil)
	storageMock.On("MatchOrEnqueue", int64(1)).
		Return(storage.MatchOutcome{Matched: true, PartnerID: 2, SessionID: 7}, nil)

	res, err := newEngine(storageMock).Find(1)

	assert.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Equal(t, int64(2), res.PartnerID)
	assert.Equal(t, uint(7), res.SessionID)
}

func TestFind_Banned(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1, IsBanned: true}, nil)

	_, err := newEngine(storageMock).Find(1)

	assert.True(t, errors.Is(err, models.ErrBanned))
	storageMock.AssertNotCalled(t, "MatchOrEnqueue", int64(1))
}

func TestFind_AlreadyPaired(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).
		Return(&models.Session{ID: 3, User1ID: 1, User2ID: 2}, nil)

	_, err := newEngine(storageMock).Find(1)

	assert.True(t, errors.Is(err, models.ErrAlreadyPaired))
}

func TestFind_AlreadyQueued(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).Return(nil, models.ErrNotFound)
	storageMock.On("InQueue", int64(1)).Return(true, nil)

	_, err := newEngine(storageMock).Find(1)

	assert.True(t, errors.Is(err, models.ErrAlreadyQueued))
	storageMock.AssertNotCalled(t, "MatchOrEnqueue", int64(1))
}

func TestLeave_CancelsQueueWait(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("CancelQueue", int64(1)).Return(true, nil)

	res, err := newEngine(storageMock).Leave(1)

	assert.NoError(t, err)
	assert.True(t, res.Cancelled)
	storageMock.AssertNotCalled(t, "EndSession", int64(1))
}

func TestLeave_EndsSession(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("CancelQueue", int64(1)).Return(false, nil)
	storageMock.On("EndSession", int64(1)).
		Return(&models.Session{ID: 9, User1ID: 1, User2ID: 42}, nil)

	res, err := newEngine(storageMock).Leave(1)

	assert.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, int64(42), res.PartnerID)
	assert.Equal(t, uint(9), res.SessionID)
}

func TestLeave_NothingToLeave(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("CancelQueue", int64(1)).Return(false, nil)
	storageMock.On("EndSession", int64(1)).Return(nil, models.ErrNotFound)

	_, err := newEngine(storageMock).Leave(1)

	assert.True(t, errors.Is(err, models.ErrNotInSession))
}
