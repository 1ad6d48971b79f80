package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabels(t *testing.T) {
	t.Run("sorted and filtered", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{
			"route":        "/api/v1/cart/items",
			"Method":       "POST",
			"cart_session": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			"operation":    "",
		})
		assert.Equal(t, []string{"method", "POST", "route", "/api/v1/cart/items"}, pairs)
	})

	t.Run("long values are truncated", func(t *testing.T) {
		pairs := sanitizeLabels(map[string]string{"route": strings.Repeat("x", 500)})
		assert.Len(t, pairs[1], MaxLabelValueLength)
	})

	t.Run("empty map", func(t *testing.T) {
		assert.Nil(t, sanitizeLabels(nil))
	})
}

func TestSanitizeLabelKey(t *testing.T) {
	assert.Equal(t, "cart_operation", sanitizeLabelKey("Cart-Operation"))
	assert.Equal(t, "item_count", sanitizeLabelKey("item count"))
	assert.Equal(t, "route", sanitizeLabelKey("route!"))
	assert.Equal(t, "", sanitizeLabelKey("!!"))
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible inside fn", func(t *testing.T) {
		var route string
		WithProfilingLabels(context.Background(), HTTPRequestLabels("GET", "/api/v1/cart", "get_cart"), func(ctx context.Context) {
			route, _ = pprof.Label(ctx, ProfilingLabelRoute)
		})
		assert.Equal(t, "/api/v1/cart", route)
	})

	t.Run("no labels still runs fn", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)
	})
}

func TestHTTPRequestLabels(t *testing.T) {
	labels := HTTPRequestLabels("DELETE", "/api/v1/cart/items/:product_id", "")
	assert.Equal(t, map[string]string{
		ProfilingLabelMethod: "DELETE",
		ProfilingLabelRoute:  "/api/v1/cart/items/:product_id",
	}, labels)
}
