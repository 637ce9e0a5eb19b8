package shop

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrCode classifies domain failures for callers such as the HTTP layer
type ErrCode string

const (
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrValidation  ErrCode = "VALIDATION_FAILED"
	ErrConflict    ErrCode = "CONFLICT"
	ErrPersistence ErrCode = "PERSISTENCE_FAILURE"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

func notFound(entity string) error { return makeErr(ErrNotFound, entity+" not found") }

func invalid(format string, args ...any) error {
	return makeErr(ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(msg string) error { return makeErr(ErrConflict, msg) }

// Code extracts the error code, or "" for errors that carry none
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// validationErr turns validator output into a ValidationFailed error naming the first bad field
func validationErr(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return invalid("%s", err.Error())
	}

	fe := ves[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", field)
	case "email":
		return invalid("%s must be a valid email address", field)
	case "gte", "min":
		if fe.Kind() == reflect.String {
			return invalid("%s must not be empty", field)
		}
		return invalid("%s must be at least %s", field, fe.Param())
	case "gt":
		return invalid("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return invalid("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return invalid("%s is invalid", field)
}
