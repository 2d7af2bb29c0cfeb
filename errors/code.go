package errors

import (
	"errors"
	"fmt"
	"reflect"
)

const (
	// SuccessCode is the result code of a transaction that did not fail.
	SuccessCode = 0

	// Errors that were not registered are reported with the internal code
	// and, outside of debug mode, a generic message.
	internalCode    uint32 = 1
	internalMessage        = "internal error"
)

// Info returns the result code and the message a client is shown for the
// given error.
//
// Registered errors expose their message. All other errors are internal:
// they get code 1 and their message is hidden unless debug is set. In debug
// mode the message is formatted with %+v and can contain a stack trace.
func Info(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}
	code := Code(err)
	switch {
	case debug:
		return code, fmt.Sprintf("%+v", err)
	case code == internalCode:
		return internalCode, internalMessage
	default:
		return code, err.Error()
	}
}

type coder interface {
	Code() uint32
}

// Code returns the code of the first error in the cause chain that declares
// one. Errors without a code are internal.
func Code(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// errIsNil also reports true for a typed nil pointer stored in err.
func errIsNil(err error) bool {
	if err == nil {
		return true
	}
	if val := reflect.ValueOf(err); val.Kind() == reflect.Ptr {
		return val.IsNil()
	}
	return false
}

// Redact replaces internal errors and recovered panics with a generic
// error, so that a client never sees implementation details. It does
// nothing in debug mode.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || Code(err) == internalCode {
		return errors.New(internalMessage)
	}
	return err
}
