// Package testutil provides helpers shared by the storefront's integration
// tests: deterministic session ids, fake catalog items and polling asserts.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// sessionNamespace scopes the deterministic session ids of tests
var sessionNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestSessionID returns a reproducible cart session id for seed
func NewTestSessionID(seed string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(seed)).String()
}

// ProductFaker generates catalog payloads for the add-to-cart endpoints
type ProductFaker struct {
	f *gofakeit.Faker
}

// NewProductFaker creates a faker with a fixed seed so failures reproduce
func NewProductFaker(seed uint64) *ProductFaker {
	return &ProductFaker{f: gofakeit.New(seed)}
}

// AddItem returns a request for a random product priced between 5 and 500
// with a quantity between 1 and 5.
func (p *ProductFaker) AddItem() appcart.AddItemRequest {
	qty := p.f.IntRange(1, 5)
	price := decimal.NewFromInt(int64(p.f.IntRange(500, 50000))).Shift(-2)
	return appcart.AddItemRequest{
		ProductID: fmt.Sprintf("sku-%s", p.f.LetterN(8)),
		UnitPrice: &price,
		Quantity:  &qty,
		Name:      p.f.ProductName(),
		ImageURL:  p.f.URL(),
		Unit:      p.f.RandomString([]string{"kg", "g", "l", "ml", "pc"}),
		Brand:     p.f.Company(),
	}
}

// WithVariant returns req for the given variant of the same product
func WithVariant(req appcart.AddItemRequest, variant string) appcart.AddItemRequest {
	req.VariantKey = &variant
	return req
}

// ContextWithTimeout creates a context with a timeout that is cancelled
// when the test ends.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually retries condition until it holds or timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
