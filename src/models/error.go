package models

import "fmt"

var NoDataErr = fmt.Errorf("provider returned no data for symbol")
var RateLimitedErr = fmt.Errorf("provider rate limit reached")
var ProviderUnavailableErr = fmt.Errorf("provider unavailable")
var MalformedProviderResponseErr = fmt.Errorf("malformed provider response")
var InsufficientDataErr = fmt.Errorf("not enough closing prices to compute volatility")

// InvalidInputError reports which pricing parameter violated its precondition.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid pricing input: %s must be positive, got %v", e.Field, e.Value)
}

func NewInvalidInputError(field string, value float64) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value}
}

type ErrorDTO struct {
	Msg string `json:"msg"`
}
