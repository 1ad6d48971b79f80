package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/cart/items", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusBadRequest, "unreadable body")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	router.GET("/cart", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	addItem := `{"product_id":"apple","unit_price":"50","quantity":2}`
	oversized := `{"product_id":"apple","unit_price":"50","name":"` + strings.Repeat("a", 300) + `"}`

	tests := []struct {
		name          string
		limit         int64
		method        string
		path          string
		body          string
		contentLength int64
		expected      int
	}{
		{"add item within limit", 1024, http.MethodPost, "/cart/items", addItem, int64(len(addItem)), http.StatusOK},
		{"declared length over limit", 128, http.MethodPost, "/cart/items", oversized, int64(len(oversized)), http.StatusRequestEntityTooLarge},
		{"streamed body over limit", 128, http.MethodPost, "/cart/items", oversized, -1, http.StatusBadRequest},
		{"body exactly at limit", int64(len(addItem)), http.MethodPost, "/cart/items", addItem, int64(len(addItem)), http.StatusOK},
		{"read without body", 8, http.MethodGet, "/cart", "", 0, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()

			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
				assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
			}
		})
	}
}
