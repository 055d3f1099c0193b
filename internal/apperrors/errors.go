package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnknownCurrency indicates a currency id with no registered metadata or storage slot.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrInsufficientFunds indicates a withdrawal larger than the current balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrStorage wraps durable I/O failures so callers can tell infrastructure
// trouble apart from user error.
var ErrStorage = errors.New("storage error")
