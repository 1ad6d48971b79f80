package handler

import (
	appcart "github.com/organicmart/storefront/internal/application/cart"
	"github.com/organicmart/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when the configured locale cannot be parsed
var DefaultLocale = language.MustParse("en-IN")

// MoneyView is a display-ready amount
type MoneyView struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

// PricingDisplay is the formatted form of a cart bill
type PricingDisplay struct {
	Subtotal           MoneyView `json:"subtotal"`
	DeliveryCharge     MoneyView `json:"delivery_charge"`
	HandlingCharge     MoneyView `json:"handling_charge"`
	SmallCartSurcharge MoneyView `json:"small_cart_surcharge"`
	GrandTotal         MoneyView `json:"grand_total"`
}

// MoneyPresenter formats amounts for one locale. Amounts stay decimal
// everywhere else; only the HTTP layer turns them into text.
type MoneyPresenter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMoneyPresenter creates a presenter for a BCP 47 locale such as "en-IN"
func NewMoneyPresenter(locale string) *MoneyPresenter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = DefaultLocale
	}
	return &MoneyPresenter{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale returns the presenter's language tag
func (p *MoneyPresenter) Locale() language.Tag {
	return p.tag
}

// Format renders amount in the given ISO currency, e.g. "₹ 1,250.00".
// Unknown codes fall back to the plain code as prefix.
func (p *MoneyPresenter) Format(amount decimal.Decimal, code string) MoneyView {
	money, err := valueobject.NewMoney(amount, valueobject.Currency(code))
	if err != nil {
		money = valueobject.NewMoneyINR(amount)
	}
	view := MoneyView{
		Amount:   money.StringFixed(2),
		Currency: string(money.Currency()),
	}

	value := money.Amount().InexactFloat64()
	unit, err := currency.ParseISO(view.Currency)
	if err != nil {
		view.Formatted = p.printer.Sprintf("%s %v", view.Currency, number.Decimal(value, number.Scale(2)))
		return view
	}
	view.Formatted = p.printer.Sprint(currency.Symbol(unit.Amount(value)))
	return view
}

// FormatPricing renders every line of a bill
func (p *MoneyPresenter) FormatPricing(pricing appcart.PricingResponse) PricingDisplay {
	return PricingDisplay{
		Subtotal:           p.Format(pricing.Subtotal, pricing.Currency),
		DeliveryCharge:     p.Format(pricing.DeliveryCharge, pricing.Currency),
		HandlingCharge:     p.Format(pricing.HandlingCharge, pricing.Currency),
		SmallCartSurcharge: p.Format(pricing.SmallCartSurcharge, pricing.Currency),
		GrandTotal:         p.Format(pricing.GrandTotal, pricing.Currency),
	}
}
