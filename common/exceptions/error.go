package exceptions

import (
	"errors"
	"fmt"
)

type Exception interface {
	error
	Cause() error
}

type Handler interface {
	HandleError(err error)
}

type exception struct {
	message string
	cause   error
}

func (e *exception) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *exception) Cause() error {
	return e.cause
}

func (e *exception) Unwrap() error {
	return e.cause
}

func New(message ...any) error {
	return errors.New(fmt.Sprint(message...))
}

// Cause annotates err with message. A nil err stays nil so configuration
// steps can be wrapped unconditionally.
func Cause(cause error, message ...any) error {
	if cause == nil {
		return nil
	}
	return &exception{fmt.Sprint(message...), cause}
}
