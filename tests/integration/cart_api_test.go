//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/organicmart/storefront/internal/domain/cart"
	"github.com/organicmart/storefront/internal/interfaces/http/handler"
	"github.com/organicmart/storefront/internal/interfaces/http/middleware"
	"github.com/organicmart/storefront/internal/interfaces/http/router"
	"github.com/organicmart/storefront/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiStore interface {
	cart.Store
	cart.Deleter
	Ping(ctx context.Context) error
}

// newAPI builds a fresh process over store. Calling it twice with the same
// store simulates a restart.
func newAPI(t *testing.T, store apiStore, backend string) *gin.Engine {
	t.Helper()
	registry := appcart.NewSessionRegistry(appcart.RegistryConfig{
		Store:   store,
		Pricing: cart.DefaultPricingPolicy(),
	})
	engine, err := router.NewEngine(router.EngineConfig{
		MaxBodySize: 1 << 20,
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
	}, router.Handlers{
		Cart:   handler.NewCartHandler(appcart.NewCartService(registry), handler.NewMoneyPresenter("en-IN")),
		System: handler.NewSystemHandler("storefront", backend, store, registry),
	})
	require.NoError(t, err)
	return engine
}

func TestCartAPI_Postgres(t *testing.T) {
	runCartAPISuite(t, newPostgresStore(t), "postgres")
}

func TestCartAPI_Redis(t *testing.T) {
	runCartAPISuite(t, newRedisStore(t, time.Hour), "redis")
}

func runCartAPISuite(t *testing.T, store apiStore, backend string) {
	t.Run("health reports the store", func(t *testing.T) {
		client := testutil.NewCartClient(t, newAPI(t, store, backend), "")
		w, _ := client.Do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("cart survives a restart", func(t *testing.T) {
		client := testutil.NewCartClient(t, newAPI(t, store, backend), "")

		apple := testutil.NewProductFaker(11).AddItem()
		apple.ProductID = "apple"
		two := 2
		apple.Quantity = &two
		w, _ := client.Do(http.MethodPost, "/api/v1/cart/items", apple)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, client.Session)

		w, env := client.Do(http.MethodPost, "/api/v1/cart/items", testutil.WithVariant(apple, "1kg"))
		require.Equal(t, http.StatusOK, w.Code)
		before := testutil.DataAs[appcart.CartResponse](t, env)
		require.Equal(t, 2, before.SlotCount)
		assert.True(t, before.Persisted)

		restarted := testutil.NewCartClient(t, newAPI(t, store, backend), client.Session)
		w, env = restarted.Do(http.MethodGet, "/api/v1/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)

		after := testutil.DataAs[appcart.CartResponse](t, env)
		assert.Equal(t, client.Session, after.SessionID)
		assert.Equal(t, before.SlotCount, after.SlotCount)
		assert.Equal(t, before.ItemCount, after.ItemCount)
		assert.True(t, before.Pricing.GrandTotal.Equal(after.Pricing.GrandTotal))
		assert.Equal(t, before.Revision, after.Revision)
		assert.False(t, after.DrawerOpen)
	})

	t.Run("drawer state is not persisted", func(t *testing.T) {
		client := testutil.NewCartClient(t, newAPI(t, store, backend), "")
		w, _ := client.Do(http.MethodPost, "/api/v1/cart/items", testutil.NewProductFaker(12).AddItem())
		require.Equal(t, http.StatusOK, w.Code)

		w, env := client.Do(http.MethodPost, "/api/v1/cart/drawer/open", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, testutil.DataAs[appcart.CartResponse](t, env).DrawerOpen)

		restarted := testutil.NewCartClient(t, newAPI(t, store, backend), client.Session)
		_, env = restarted.Do(http.MethodGet, "/api/v1/cart", nil)
		assert.False(t, testutil.DataAs[appcart.CartResponse](t, env).DrawerOpen)
	})

	t.Run("repeated adds merge into one slot", func(t *testing.T) {
		client := testutil.NewCartClient(t, newAPI(t, store, backend), "")
		faker := testutil.NewProductFaker(13)

		for i := 0; i < 5; i++ {
			item := faker.AddItem()
			w, _ := client.Do(http.MethodPost, "/api/v1/cart/items", item)
			require.Equal(t, http.StatusOK, w.Code)

			w, env := client.Do(http.MethodPost, "/api/v1/cart/items", item)
			require.Equal(t, http.StatusOK, w.Code)

			resp := testutil.DataAs[appcart.CartResponse](t, env)
			require.Equal(t, i+1, resp.SlotCount)
			var merged *appcart.LineItemResponse
			for j := range resp.Items {
				if resp.Items[j].ProductID == item.ProductID {
					merged = &resp.Items[j]
				}
			}
			require.NotNil(t, merged)
			assert.Equal(t, 2*(*item.Quantity), merged.Quantity)
			assert.True(t, merged.UnitPrice.Equal(*item.UnitPrice))
		}
	})

	t.Run("legacy snapshot restores", func(t *testing.T) {
		session := testutil.NewTestSessionID(backend + "-legacy")
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)
		legacy := `[{"id":7,"selectedSize":"500g","price":60,"quantity":2.9,"name":"Paneer"},` +
			`{"id":"ghee","price":"550","name":"Ghee"}]`
		require.NoError(t, store.Save(ctx, appcart.DefaultKeyPrefix+session, []byte(legacy)))

		client := testutil.NewCartClient(t, newAPI(t, store, backend), session)
		w, env := client.Do(http.MethodGet, "/api/v1/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := testutil.DataAs[appcart.CartResponse](t, env)
		require.Equal(t, 2, resp.SlotCount)
		assert.Equal(t, "7", resp.Items[0].ProductID)
		assert.Equal(t, "500g", resp.Items[0].VariantKey)
		assert.Equal(t, 2, resp.Items[0].Quantity)
		assert.Equal(t, 1, resp.Items[1].Quantity)
		assert.Equal(t, "670", resp.Pricing.Subtotal.String())
		assert.Equal(t, "697", resp.Pricing.GrandTotal.String())
	})

	t.Run("corrupt snapshot starts empty", func(t *testing.T) {
		session := testutil.NewTestSessionID(backend + "-corrupt")
		ctx := testutil.ContextWithTimeout(t, 10*time.Second)
		require.NoError(t, store.Save(ctx, appcart.DefaultKeyPrefix+session, []byte("not json")))

		client := testutil.NewCartClient(t, newAPI(t, store, backend), session)
		w, env := client.Do(http.MethodGet, "/api/v1/cart", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, testutil.DataAs[appcart.CartResponse](t, env).IsEmpty)
	})

	t.Run("abandon deletes the snapshot", func(t *testing.T) {
		client := testutil.NewCartClient(t, newAPI(t, store, backend), "")
		w, _ := client.Do(http.MethodPost, "/api/v1/cart/items", testutil.NewProductFaker(14).AddItem())
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = client.Do(http.MethodDelete, "/api/v1/cart/session", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		ctx := testutil.ContextWithTimeout(t, 10*time.Second)
		_, err := store.Load(ctx, appcart.DefaultKeyPrefix+client.Session)
		assert.ErrorIs(t, err, cart.ErrSnapshotNotFound)

		restarted := testutil.NewCartClient(t, newAPI(t, store, backend), client.Session)
		_, env := restarted.Do(http.MethodGet, "/api/v1/cart", nil)
		assert.True(t, testutil.DataAs[appcart.CartResponse](t, env).IsEmpty)
	})
}
