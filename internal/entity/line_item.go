package entity

import (
	"github.com/shopspring/decimal"
)

// Amounts are exported as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// LineItem is one billed row of an invoice item table. Amounts are unset
// (Valid=false) when the row did not carry them.
type LineItem struct {
	Item       string              `json:"item"`
	Unit       string              `json:"unit"`
	Quantity   decimal.NullDecimal `json:"quantity"`
	UnitValue  decimal.NullDecimal `json:"unitValue"`
	TotalValue decimal.NullDecimal `json:"totalValue"`

	// Tax and tariff columns of richer layouts; not populated yet.
	PisCofins  decimal.NullDecimal `json:"pisCofins"`
	IcmsBase   decimal.NullDecimal `json:"icmsBase"`
	IcmsRate   decimal.NullDecimal `json:"icmsRate"`
	Icms       decimal.NullDecimal `json:"icms"`
	UnitTariff decimal.NullDecimal `json:"unitTariff"`
}

// Total returns TotalValue, or zero when unset.
func (li LineItem) Total() decimal.Decimal {
	if li.TotalValue.Valid {
		return li.TotalValue.Decimal
	}
	return decimal.Zero
}

// Amount wraps a parsed value in a set NullDecimal.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
