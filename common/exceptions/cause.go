package exceptions

type causeError struct {
	error
	cause error
}

func (e *causeError) Error() string {
	return e.error.Error() + ": " + e.cause.Error()
}

func (e *causeError) Unwrap() []error {
	return []error{e.error, e.cause}
}

// Extend attaches cause to a sentinel error so both satisfy errors.Is.
func Extend(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &causeError{sentinel, cause}
}
