// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by users or
// read from import files into exact decimal values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied amount into a decimal rounded to two places.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and rounding
// is half-up on the third decimal place. Negative and zero amounts are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseSignedAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSignedAmount is like ParseAmount but keeps the sign and allows zero.
// Import formats carry direction in the sign, so callers decide what it means.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	// decimal accepts exponents; amounts never carry one.
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// ParseBudget parses an optional budget value. Empty input, "none" and values
// that are not positive all mean "no budget" and yield nil.
func ParseBudget(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	d, err := ParseSignedAmount(s)
	if err != nil {
		return nil, err
	}
	if !d.IsPositive() {
		return nil, nil
	}
	return &d, nil
}

// Ratio returns part/whole*100 as a float, guarded to 0 when whole is not positive.
func Ratio(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
