package cart

import (
	"errors"
	"math"
	"testing"

	"github.com/organicmart/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewLineItem(t *testing.T) {
	t.Run("defaults quantity to one", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{ProductID: "p-1", UnitPrice: decimal.NewFromInt(50)})
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, "", item.VariantKey)
	})

	t.Run("trims identifiers", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{ProductID: "  p-1 ", VariantKey: " 500g ", UnitPrice: decimal.NewFromInt(50)})
		require.NoError(t, err)
		assert.Equal(t, SlotKey{ProductID: "p-1", VariantKey: "500g"}, item.Key())
	})

	t.Run("first image wins over the single image field", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{
			ProductID: "p-1",
			UnitPrice: decimal.NewFromInt(10),
			ImageURL:  "cover.jpg",
			Images:    []string{"", "gallery-1.jpg", "gallery-2.jpg"},
		})
		require.NoError(t, err)
		assert.Equal(t, "gallery-1.jpg", item.Display.ImageURL)
	})

	t.Run("falls back to the single image field", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{ProductID: "p-1", UnitPrice: decimal.NewFromInt(10), ImageURL: "cover.jpg"})
		require.NoError(t, err)
		assert.Equal(t, "cover.jpg", item.Display.ImageURL)
	})

	tests := []struct {
		name  string
		input LineItemInput
		code  string
	}{
		{"empty product id", LineItemInput{ProductID: "  ", UnitPrice: decimal.NewFromInt(1)}, "INVALID_PRODUCT"},
		{"negative price", LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(-1)}, "INVALID_PRICE"},
		{"zero quantity", LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(1), Quantity: intPtr(0)}, "INVALID_QUANTITY"},
		{"negative quantity", LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(1), Quantity: intPtr(-3)}, "INVALID_QUANTITY"},
		{"quantity above the slot limit", LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(1), Quantity: intPtr(MaxQuantity + 1)}, "INVALID_QUANTITY"},
		{"max int quantity", LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(1), Quantity: intPtr(math.MaxInt)}, "INVALID_QUANTITY"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := NewLineItem(tt.input)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}

	t.Run("accepts the slot limit", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{ProductID: "p", UnitPrice: decimal.NewFromInt(1), Quantity: intPtr(MaxQuantity)})
		require.NoError(t, err)
		assert.Equal(t, MaxQuantity, item.Quantity)
	})

	t.Run("accepts a free item", func(t *testing.T) {
		item, err := NewLineItem(LineItemInput{ProductID: "sample", UnitPrice: decimal.Zero, Quantity: intPtr(2)})
		require.NoError(t, err)
		assert.True(t, item.Subtotal().IsZero())
	})
}

func TestLineItem_Subtotal(t *testing.T) {
	item := LineItem{ProductID: "p", UnitPrice: decimal.RequireFromString("49.5"), Quantity: 3}
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("148.5")))
}

func TestLineItem_UnitLabel(t *testing.T) {
	assert.Equal(t, "1kg", LineItem{VariantKey: "1kg", Display: Display{Unit: "pack"}}.UnitLabel())
	assert.Equal(t, "pack", LineItem{Display: Display{Unit: "pack"}}.UnitLabel())
	assert.Equal(t, DefaultUnitLabel, LineItem{}.UnitLabel())
}
