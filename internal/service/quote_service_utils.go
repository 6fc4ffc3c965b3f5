package service

import (
	"errors"
	"strings"
)

func normalizePair(base, target string) (normBase, normTarget string, err error) {
	if !IsValidCurrencyCode(base) || !IsValidCurrencyCode(target) {
		return "", "", ErrInvalidPairFormat
	}
	return strings.ToUpper(base), strings.ToUpper(target), nil
}

// ErrInvalidPairFormat indicates the currency pair format is invalid.
var ErrInvalidPairFormat = errors.New("invalid currency code format")

// ErrSamePair indicates base and target are the same currency.
var ErrSamePair = errors.New("base and target currencies must differ")

// ErrInvalidAmount indicates a negative or non-finite amount.
var ErrInvalidAmount = errors.New("amount must be a non-negative number")

// ErrInvalidHorizon indicates a forecast horizon outside the allowed range.
var ErrInvalidHorizon = errors.New("invalid forecast horizon")

// ErrNoHistory indicates no usable price history exists for a forecast.
var ErrNoHistory = errors.New("no price history available")

// ErrArchiveDisabled indicates the quote archive is not configured.
var ErrArchiveDisabled = errors.New("quote archive is disabled")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// ParsePair splits a pair such as "EURMAD", "EUR/MAD", "EUR-MAD", "EUR_MAD"
// or the ticker form "EURMAD=X" into its validated components.
func ParsePair(pair string) (base, target string, err error) {
	p := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(pair)), "=X")
	switch {
	case len(p) == 6:
		base, target = p[:3], p[3:]
	case len(p) == 7 && strings.ContainsRune("/-_", rune(p[3])):
		base, target = p[:3], p[4:]
	default:
		return "", "", ErrInvalidPairFormat
	}
	return normalizePair(base, target)
}
