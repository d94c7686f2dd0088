package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when a caller-supplied value fails local validation.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a requested option is not supported.
	Unsupported = ErrorKind("Unsupported")

	// Duplicate is returned when a write conflicts with an already recorded row.
	Duplicate = ErrorKind("Duplicate")

	// InternalError is returned for unexpected internal failures.
	InternalError = ErrorKind("Internal Error")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
