// Package valueobject holds small immutable value helpers shared across domains.
package valueobject

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyPlaces is the number of decimal places money amounts are rounded to
const MoneyPlaces int32 = 2

// CostPlaces is the precision kept for weighted-average unit costs
const CostPlaces int32 = 4

// Hundred is used to turn whole-number percentages into rates
var Hundred = decimal.NewFromInt(100)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// RoundMoney rounds an amount half away from zero to two decimals
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentToRate converts a whole-number percentage (35) into a rate (0.35)
func PercentToRate(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(Hundred)
}

// FormatBRL renders an amount in Brazilian reais for user-facing messages
func FormatBRL(d decimal.Decimal) string {
	f, _ := RoundMoney(d).Float64()
	return brlPrinter.Sprint(currency.Symbol(currency.BRL.Amount(f)))
}

// WeightedAverage returns the quantity-weighted average of two costs.
// When the combined quantity is zero the incoming cost wins.
func WeightedAverage(qtyA int64, costA decimal.Decimal, qtyB int64, costB decimal.Decimal) decimal.Decimal {
	total := qtyA + qtyB
	if total <= 0 {
		return costB.Round(CostPlaces)
	}
	a := costA.Mul(decimal.NewFromInt(qtyA))
	b := costB.Mul(decimal.NewFromInt(qtyB))
	return a.Add(b).Div(decimal.NewFromInt(total)).Round(CostPlaces)
}
