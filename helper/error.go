package helper

import "fmt"

// Error wraps an error with the operation that failed.
type Error struct {
	Operation string
	Err       error
}

// NewError wraps err with the name of the failed operation.
// A nil err yields nil so call sites can wrap unconditionally.
func NewError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Operation: operation,
		Err:       err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
