// Package handler is the operator-facing HTTP API: health, metrics
// and a small JWT-guarded admin surface over the moderation queue.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"anonchat/backend/internal/models"
	"anonchat/backend/internal/moderation"
	"anonchat/backend/internal/registry"
	"anonchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	Registry   *registry.Service
	Moderation *moderation.Service
	Storage    storage.Storage
	Log        *zap.Logger

	// AdminID is forwarded to adjudications issued over HTTP.
	AdminID   int64
	JWTSecret string
}

func NewHandler(reg *registry.Service, mod *moderation.Service, s storage.Storage, log *zap.Logger, adminID int64, jwtSecret string) *Handler {
	return &Handler{
		Registry:   reg,
		Moderation: mod,
		Storage:    s,
		Log:        log,
		AdminID:    adminID,
		JWTSecret:  jwtSecret,
	}
}

// NewRouter wires the routes. metricsHandler serves the Prometheus
// registry; the admin group is mounted only when a JWT secret is set.
func NewRouter(h *Handler, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	if h.JWTSecret != "" {
		r.POST("/auth/token", h.IssueToken)
		admin := r.Group("/admin", h.authRequired())
		admin.GET("/stats", h.Stats)
		admin.GET("/reports", h.PendingReports)
		admin.POST("/reports/:id/:action", h.AdjudicateReport)
		admin.POST("/users/:id/ban", h.SetBan(true))
		admin.POST("/users/:id/unban", h.SetBan(false))
	}
	return r
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Registry.Stats()
	if err != nil {
		h.Log.Error("stats query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":           stats.Users,
		"banned":          stats.Banned,
		"active_sessions": stats.ActiveSessions,
		"waiting":         stats.Waiting,
		"total_sessions":  stats.TotalSessions,
		"reports":         stats.Reports,
		"pending_reports": stats.PendingReports,
	})
}

func (h *Handler) PendingReports(c *gin.Context) {
	reports, err := h.Storage.PendingReports()
	if err != nil {
		h.Log.Error("pending reports query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}
	out := make([]gin.H, 0, len(reports))
	for _, r := range reports {
		out = append(out, gin.H{
			"id":          r.ID,
			"reporter_id": r.ReporterID,
			"reported_id": r.ReportedID,
			"session_id":  r.SessionID,
			"created_at":  r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (h *Handler) AdjudicateReport(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}
	action := moderation.Action(c.Param("action"))

	err = h.Moderation.Adjudicate(c.Request.Context(), h.AdminID, uint(id), action)
	switch {
	case errors.Is(err, moderation.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "no admin configured"})
	case err != nil:
		h.Log.Error("adjudication failed", zap.Uint64("report", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "adjudication failed"})
	default:
		c.JSON(http.StatusOK, gin.H{"report": id, "action": action})
	}
}

func (h *Handler) SetBan(ban bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if err := h.Storage.SetBanned(uid, ban); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			h.Log.Error("ban flip failed", zap.Int64("user", uid), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": uid, "banned": ban})
	}
}
