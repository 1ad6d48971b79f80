package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/organicmart/storefront/internal/infrastructure/logger"
	"github.com/organicmart/storefront/internal/infrastructure/telemetry"
	"github.com/organicmart/storefront/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// healthTimeout bounds the store ping made by /health
const healthTimeout = 2 * time.Second

// Pinger is anything the health check can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many carts are live in memory
type SessionCounter interface {
	Len() int
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	backend   string
	store     Pinger
	sessions  SessionCounter
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. store and sessions may be nil.
func NewSystemHandler(name, backend string, store Pinger, sessions SessionCounter) *SystemHandler {
	return &SystemHandler{
		name:      name,
		backend:   backend,
		store:     store,
		sessions:  sessions,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	GoVersion      string `json:"go_version"`
	Uptime         string `json:"uptime"`
	StorageBackend string `json:"storage_backend"`
	ActiveSessions int    `json:"active_sessions"`
}

// GetSystemInfo returns version, uptime and the cart storage in use
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:           h.name,
		Version:        telemetry.ServiceVersion,
		GoVersion:      runtime.Version(),
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		StorageBackend: h.backend,
	}
	if h.sessions != nil {
		info.ActiveSessions = h.sessions.Len()
	}
	h.Success(c, info)
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a liveness probe that touches nothing
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthResponse represents the readiness probe body
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Health is a readiness probe. An unreachable store returns 503 even though
// carts keep working from memory.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Storage: "ok"}
	if h.store == nil {
		resp.Storage = "none"
		h.Success(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("Cart store health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Storage = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp, Error: &dto.ErrorInfo{
			Code:      dto.ErrCodeUnavailable,
			Message:   "Cart store is unreachable",
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC(),
		}})
		return
	}
	h.Success(c, resp)
}
