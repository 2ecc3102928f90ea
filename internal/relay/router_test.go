package relay_test

import (
	"context"
	"errors"
	"testing"

	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/relay"
	"anonchat/backend/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, uid int64, p models.Payload) error {
	args := m.Called(ctx, uid, p)
	return args.Error(0)
}

func TestRelay_DeliversAndRecords(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	deliverer := new(MockDeliverer)
	sender := &models.User{TelegramID: 1, Name: "Alice", Gender: models.GenderFemale, Age: 25}

	storageMock.On("GetUser", int64(1)).Return(sender, nil)
	storageMock.On("ActiveSessionFor", int64(1)).
		Return(&models.Session{ID: 5, User1ID: 1, User2ID: 2}, nil)
	deliverer.On("Deliver", mock.Anything, int64(2), mock.AnythingOfType("models.Payload")).Return(nil)
	storageMock.On("AppendTranscript", mock.AnythingOfType("*models.TranscriptEntry")).Return(nil)
	storageMock.On("IncrementMessagesSent", int64(1)).Return(nil)

	r := relay.NewRouter(storageMock, deliverer, metrics.Noop{}, zap.NewNop())
	err := r.Relay(context.Background(), 1, models.TextPayload("hello"))

	assert.NoError(t, err)
	deliverer.AssertCalled(t, "Deliver", mock.Anything, int64(2), mock.AnythingOfType("models.Payload"))
	storageMock.AssertCalled(t, "AppendTranscript", mock.MatchedBy(func(e *models.TranscriptEntry) bool {
		return e.SessionID == 5 && e.SenderID == 1 && e.Label == "hello"
	}))
	storageMock.AssertCalled(t, "IncrementMessagesSent", int64(1))
}

func TestRelay_DeliveryFailureIsSwallowed(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	deliverer := new(MockDeliverer)

	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).
		Return(&models.Session{ID: 5, User1ID: 1, User2ID: 2}, nil)
	deliverer.On("Deliver", mock.Anything, int64(2), mock.AnythingOfType("models.Payload")).
		Return(errors.New("blocked by user"))

	r := relay.NewRouter(storageMock, deliverer, metrics.Noop{}, zap.NewNop())
	err := r.Relay(context.Background(), 1, models.TextPayload("hello"))

	assert.NoError(t, err)
	// No delivery, no transcript entry and no counter bump.
	storageMock.AssertNotCalled(t, "AppendTranscript", mock.Anything)
	storageMock.AssertNotCalled(t, "IncrementMessagesSent", int64(1))
}

func TestRelay_NotInSession(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	deliverer := new(MockDeliverer)

	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1}, nil)
	storageMock.On("ActiveSessionFor", int64(1)).Return(nil, models.ErrNotFound)

	r := relay.NewRouter(storageMock, deliverer, metrics.Noop{}, zap.NewNop())
	err := r.Relay(context.Background(), 1, models.TextPayload("hello"))

	assert.True(t, errors.Is(err, models.ErrNotInSession))
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelay_Banned(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	deliverer := new(MockDeliverer)

	storageMock.On("GetUser", int64(1)).Return(&models.User{TelegramID: 1, IsBanned: true}, nil)

	r := relay.NewRouter(storageMock, deliverer, metrics.Noop{}, zap.NewNop())
	err := r.Relay(context.Background(), 1, models.TextPayload("hello"))

	assert.True(t, errors.Is(err, models.ErrBanned))
	storageMock.AssertNotCalled(t, "ActiveSessionFor", int64(1))
}
