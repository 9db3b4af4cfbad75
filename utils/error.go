package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrInvalidPeriod means a date range was malformed or only half-supplied
	// where both bounds are required.
	ErrInvalidPeriod = errors.New("invalid period: datainicio and datafim must both be valid dates")

	// ErrInvalidGymSet means the gym id list could not be parsed into one or
	// more positive integers.
	ErrInvalidGymSet = errors.New("invalid gym set: expected one or more positive integer ids")

	// ErrAuthenticationFailed is deliberately generic; it never says which of
	// cpf/senha was wrong.
	ErrAuthenticationFailed = errors.New("cpf ou senha incorretos")

	// ErrStoreUnavailable wraps any database failure surfaced by a report or
	// aggregation query.
	ErrStoreUnavailable = errors.New("store unavailable")
)
