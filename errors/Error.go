// Package errors provides the coded error type used throughout ledgersim.
//
// Every failure a caller may want to react to carries an ERR code. Callers test
// for a kind with errors.Is(err, errors.ErrPoolFull); the match is done on the
// code, anywhere in the wrap chain.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

type Error struct {
	code       ERR
	message    string
	wrappedErr error
	data       *ErrData
}

func (e *Error) Error() string {
	// predefined errors are compared through nil pointers in a few places
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Error: %s (error code: %d), Message: %s", e.code, e.code, e.message)

	if e.wrappedErr != nil {
		fmt.Fprintf(&b, ", Wrapped err: %v", e.wrappedErr)
	}

	if e.data != nil {
		b.WriteString(", Data:")
		b.WriteString(e.data.Error())
	}

	return b.String()
}

// Is reports whether e or any *Error it wraps carries the code of target.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	for cur := e; cur != nil; {
		if cur.code == t.code {
			return true
		}

		next, ok := cur.wrappedErr.(*Error)
		if !ok {
			return false
		}

		cur = next
	}

	return false
}

// As assigns e to a **Error target, or lets the error data satisfy target.
func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}

	if e.data != nil && errors.As(e.data, target) {
		return true
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}

	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) SetData(key string, value interface{}) {
	if e.data == nil {
		e.data = &ErrData{}
	}

	e.data.SetData(key, value)
}

func (e *Error) GetData(key string) interface{} {
	if e == nil || e.data == nil {
		return nil
	}

	return e.data.GetData(key)
}

// New creates an Error with the given code. The message is a format string for
// params; if the last param is an error it becomes the wrapped error.
func New(code ERR, message string, params ...interface{}) *Error {
	params, wrapped := splitWrapped(params)

	if _, known := ERR_name[int32(code)]; !known {
		return &Error{code: code, message: "invalid error code", wrappedErr: wrapped}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{code: code, message: message, wrappedErr: wrapped}
}

// splitWrapped takes a trailing error off params. A nil *Error is taken off but
// not wrapped.
func splitWrapped(params []interface{}) ([]interface{}, error) {
	if len(params) == 0 {
		return params, nil
	}

	last, ok := params[len(params)-1].(error)
	if !ok {
		return params, nil
	}

	if e, isCoded := last.(*Error); isCoded && e == nil {
		last = nil
	}

	return params[:len(params)-1], last
}

// CodeOf returns the code of the outermost *Error in err's chain, or ERR_UNKNOWN.
func CodeOf(err error) ERR {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}

	return ERR_UNKNOWN
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
