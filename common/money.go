package common

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"strings"
)

// MinorUnitExponent is the number of decimal places between the stored minor unit and the display unit.
const MinorUnitExponent = 2

// MinorToMajor converts an amount in minor units (paise, cents) into a decimal major amount.
func MinorToMajor(amount int64) decimal.Decimal {
	return decimal.New(amount, -MinorUnitExponent)
}

// FormatAmount renders an amount in minor units for humans, e.g. 5000 INR -> "₹ 50.00".
// A zero amount renders as "Free".
func FormatAmount(printer *message.Printer, amount int64, currencyCode string) string {
	if amount == 0 {
		return "Free"
	}

	major := MinorToMajor(amount)
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return printer.Sprintf("%s %s", strings.ToUpper(currencyCode), major.StringFixed(MinorUnitExponent))
	}

	value, _ := major.Float64()
	return printer.Sprint(currency.Symbol(unit.Amount(value)))
}

// NewAmountPrinter returns the printer used for amounts in emails and tickets.
func NewAmountPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}
