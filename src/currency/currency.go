// Package currency resolves ISO-4217 codes to display symbols.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// Info describes a currency for display.
type Info struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Fraction int    `json:"fraction"`
	Known    bool   `json:"known"`
}

// Symbol returns the grapheme of code ("USD" -> "$"). Unknown codes come back
// upper-cased; empty input returns "".
func Symbol(code string) string {
	return Lookup(code).Symbol
}

// Lookup returns display information for code.
func Lookup(code string) Info {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Info{}
	}

	cur := money.GetCurrency(code)
	if cur == nil {
		return Info{Code: code, Symbol: code}
	}

	return Info{
		Code:     cur.Code,
		Symbol:   cur.Grapheme,
		Fraction: cur.Fraction,
		Known:    true,
	}
}
