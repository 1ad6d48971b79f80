package handler

import (
	"testing"

	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewMoneyPresenter(t *testing.T) {
	t.Run("parses the locale", func(t *testing.T) {
		p := NewMoneyPresenter("en-US")
		assert.Equal(t, "en-US", p.Locale().String())
	})

	t.Run("falls back to the default locale", func(t *testing.T) {
		p := NewMoneyPresenter("not a locale!")
		assert.Equal(t, DefaultLocale, p.Locale())
	})
}

func TestMoneyPresenter_Format(t *testing.T) {
	p := NewMoneyPresenter("en-IN")

	tests := []struct {
		name         string
		amount       decimal.Decimal
		code         string
		wantAmount   string
		wantCurrency string
		wantContains []string
	}{
		{"rupees", decimal.NewFromInt(130), "INR", "130.00", "INR", []string{"130"}},
		{"fractional", decimal.RequireFromString("12.5"), "INR", "12.50", "INR", []string{"12.50"}},
		{"empty code falls back to INR", decimal.NewFromInt(25), "", "25.00", "INR", []string{"25"}},
		{"unknown code keeps the code", decimal.NewFromInt(130), "ZZZ", "130.00", "ZZZ", []string{"ZZZ", "130"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := p.Format(tt.amount, tt.code)
			assert.Equal(t, tt.wantAmount, view.Amount)
			assert.Equal(t, tt.wantCurrency, view.Currency)
			for _, s := range tt.wantContains {
				assert.Contains(t, view.Formatted, s)
			}
		})
	}
}

func TestMoneyPresenter_FormatPricing(t *testing.T) {
	p := NewMoneyPresenter("en-IN")

	display := p.FormatPricing(appcart.PricingResponse{
		Subtotal:           decimal.NewFromInt(40),
		DeliveryCharge:     decimal.NewFromInt(25),
		HandlingCharge:     decimal.NewFromInt(2),
		SmallCartSurcharge: decimal.NewFromInt(20),
		GrandTotal:         decimal.NewFromInt(87),
		Currency:           "INR",
	})

	assert.Equal(t, "40.00", display.Subtotal.Amount)
	assert.Equal(t, "25.00", display.DeliveryCharge.Amount)
	assert.Equal(t, "2.00", display.HandlingCharge.Amount)
	assert.Equal(t, "20.00", display.SmallCartSurcharge.Amount)
	assert.Equal(t, "87.00", display.GrandTotal.Amount)
	assert.Contains(t, display.GrandTotal.Formatted, "87")
}
