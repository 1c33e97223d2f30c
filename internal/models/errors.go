package models

import "errors"

// Failure taxonomy shared by every pipeline component. Per-record
// problems (bad dates, malformed rows, dangling references) are skipped
// in place; only whole-call preconditions surface these errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
