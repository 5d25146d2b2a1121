package builder

import "github.com/carlosnayan/onela-go/internal/errors"

// Errors returned by the Build methods. Match them with errors.Is.
var (
	ErrInvalidIdentifier  = errors.ErrInvalidIdentifier
	ErrUnsafeFormatValue  = errors.ErrUnsafeFormatValue
	ErrUnsupportedDialect = errors.ErrUnsupportedDialect
	ErrEmptyBatchInsert   = errors.ErrEmptyBatchInsert
	ErrInvalidCondition   = errors.ErrInvalidCondition
	ErrNoFieldsToUpdate   = errors.ErrNoFieldsToUpdate
	ErrNoColumns          = errors.ErrNoColumns
	ErrEmptyAggregate     = errors.ErrEmptyAggregate
	ErrLimitExceeded      = errors.ErrLimitExceeded
)
