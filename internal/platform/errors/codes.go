package errors

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Group errors
	CodeGroupNotFound            Code = "GROUP_NOT_FOUND"
	CodeGroupCapacityExceeded    Code = "GROUP_CAPACITY_EXCEEDED"
	CodeGroupAffiliationConflict Code = "GROUP_AFFILIATION_CONFLICT"
)

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
