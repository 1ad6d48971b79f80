package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/organicmart/storefront/internal/infrastructure/logger"
	"github.com/organicmart/storefront/internal/infrastructure/telemetry"
	"github.com/organicmart/storefront/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/trace"
)

// CartSessionConfig controls how a missing cart session header is handled
type CartSessionConfig struct {
	// Issue a fresh session when the request carries none. When false the
	// request is rejected with ERR_SESSION_REQUIRED.
	Issue bool
}

// CartSession resolves the shopper's cart session from the X-Cart-Session
// header. The canonical id is echoed back in the same header, stored under
// logger.GinCartSessionKey and attached to the request context and span.
func CartSession(cfg CartSessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderCartSession)

		var sessionID string
		switch {
		case raw == "" && cfg.Issue:
			sessionID = uuid.NewString()
		case raw == "":
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeSessionRequired,
				"The "+HeaderCartSession+" header is required",
				GetRequestID(c),
			))
			return
		default:
			id, err := appcart.ParseSessionID(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInvalidSession,
					err.Error(),
					GetRequestID(c),
				))
				return
			}
			sessionID = id.String()
		}

		c.Set(logger.GinCartSessionKey, sessionID)
		c.Writer.Header().Set(HeaderCartSession, sessionID)
		c.Request = c.Request.WithContext(logger.WithCartSession(c.Request.Context(), sessionID))

		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			telemetry.SetAttributes(span, telemetry.SpanAttrCartSession, sessionID)
		}

		c.Next()
	}
}

// GetCartSession returns the session resolved by CartSession
func GetCartSession(c *gin.Context) string {
	return c.GetString(logger.GinCartSessionKey)
}
