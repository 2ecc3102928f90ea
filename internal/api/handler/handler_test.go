package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anonchat/backend/internal/api/handler"
	"anonchat/backend/internal/metrics"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/registry"
	"anonchat/backend/internal/storage"
	"anonchat/backend/internal/storage/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestRouter(storageMock *mocks.MockStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	reg := registry.NewService(storageMock, log)
	mod := moderation.NewService(storageMock, silentNotifier{}, metrics.Noop{}, log, 99)
	h := handler.NewHandler(reg, mod, storageMock, log, 99, testSecret)
	return handler.NewRouter(h, http.NotFoundHandler())
}

func obtainToken(t *testing.T, router *gin.Engine) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token",
		strings.NewReader(`{"secret":"`+testSecret+`"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Token
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(new(mocks.MockStorage))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestIssueToken_WrongSecret(t *testing.T) {
	router := newTestRouter(new(mocks.MockStorage))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token",
		strings.NewReader(`{"secret":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminStats_RequiresToken(t *testing.T) {
	router := newTestRouter(new(mocks.MockStorage))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminStats(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GlobalStats").Return(storage.Stats{
		Users: 10, Banned: 1, ActiveSessions: 2, Waiting: 3,
		TotalSessions: 20, Reports: 4, PendingReports: 2,
	}, nil)
	router := newTestRouter(storageMock)
	token := obtainToken(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":10`)
	assert.Contains(t, w.Body.String(), `"pending_reports":2`)
}

func TestAdminReports(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("PendingReports").Return([]models.Report{
		{ID: 7, ReporterID: 1, ReportedID: 2, SessionID: 5, CreatedAt: time.Now()},
	}, nil)
	router := newTestRouter(storageMock)
	token := obtainToken(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
}

func TestAdjudicateReport_UnknownAction(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("GetReport", uint(7)).
		Return(&models.Report{ID: 7, ReportedID: 2}, nil)
	router := newTestRouter(storageMock)
	token := obtainToken(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/reports/7/obliterate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBanUser(t *testing.T) {
	storageMock := new(mocks.MockStorage)
	storageMock.On("SetBanned", int64(2), true).Return(nil)
	router := newTestRouter(storageMock)
	token := obtainToken(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/users/2/ban", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertCalled(t, "SetBanned", int64(2), true)
}

type silentNotifier struct{}

func (silentNotifier) Notify(ctx context.Context, uid int64, text string) error { return nil }
