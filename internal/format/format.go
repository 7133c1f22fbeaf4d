// Package format renders amounts and dates for people.
//
// Formatting preferences live in a Config value that callers pass around
// explicitly. Storage keeps the user's choice in the settings table.
package format

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency   = "USD"
	DefaultDateFormat = "MM/DD/YYYY"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"CAD": "$",
	"AUD": "$",
	"CHF": "Fr",
	"KRW": "₩",
}

var currencyNames = map[string]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "British Pound",
	"JPY": "Japanese Yen",
	"CNY": "Chinese Yuan",
	"INR": "Indian Rupee",
	"CAD": "Canadian Dollar",
	"AUD": "Australian Dollar",
	"CHF": "Swiss Franc",
	"KRW": "South Korean Won",
}

// date format name -> Go layout
var dateLayouts = map[string]string{
	"MM/DD/YYYY":   "01/02/2006",
	"DD/MM/YYYY":   "02/01/2006",
	"YYYY-MM-DD":   "2006-01-02",
	"DD.MM.YYYY":   "02.01.2006",
	"MMM DD, YYYY": "Jan 02, 2006",
}

// Config holds the user's display preferences.
type Config struct {
	Currency   string
	DateFormat string
}

func Default() Config {
	return Config{Currency: DefaultCurrency, DateFormat: DefaultDateFormat}
}

// Symbol returns the currency symbol, falling back to "$" for unknown codes.
func (c Config) Symbol() string {
	if s, ok := currencySymbols[c.Currency]; ok {
		return s
	}
	return "$"
}

// CurrencyCode returns the configured code, or USD when it is unknown.
func (c Config) CurrencyCode() string {
	if _, ok := currencySymbols[c.Currency]; ok {
		return c.Currency
	}
	return DefaultCurrency
}

// CurrencyName returns the English name of the configured currency.
func (c Config) CurrencyName() string {
	return currencyNames[c.CurrencyCode()]
}

// Amount renders the magnitude of d with thousands separators and at most
// two decimals, e.g. $1,234.5. The sign is dropped; callers show direction.
func (c Config) Amount(d decimal.Decimal) string {
	f := d.Abs().Round(2).InexactFloat64()
	return c.Symbol() + humanize.CommafWithDigits(f, 2)
}

// Date renders t in the configured format. Zero times render as "-".
func (c Config) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	layout, ok := dateLayouts[c.DateFormat]
	if !ok {
		layout = dateLayouts[DefaultDateFormat]
	}
	return t.Format(layout)
}

// DateFormatName returns the configured date format, or the default when unknown.
func (c Config) DateFormatName() string {
	if _, ok := dateLayouts[c.DateFormat]; ok {
		return c.DateFormat
	}
	return DefaultDateFormat
}

// ShortDate renders t as "Jan 02".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02")
}

// Percent renders a percentage with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Validate checks that both preferences are supported.
func (c Config) Validate() error {
	if _, ok := currencySymbols[c.Currency]; !ok {
		return fmt.Errorf("unsupported currency %q", c.Currency)
	}
	if _, ok := dateLayouts[c.DateFormat]; !ok {
		return fmt.Errorf("unsupported date format %q", c.DateFormat)
	}
	return nil
}

// Currencies lists the supported currency codes in alphabetical order.
func Currencies() []string {
	return sortedKeys(currencySymbols)
}

// DateFormats lists the supported date format names in alphabetical order.
func DateFormats() []string {
	return sortedKeys(dateLayouts)
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
