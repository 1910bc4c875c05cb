package form

import "errors"

var (
	ErrEmptyName         = errors.New("form: name must not be empty")
	ErrUnknownField      = errors.New("form: field is not mounted")
	ErrNotArray          = errors.New("form: field is not an array")
	ErrIsArray           = errors.New("form: field is an array")
	ErrArrayInitialValue = errors.New("form: initial value of a field array must be a slice")
	ErrIndexOutOfRange   = errors.New("form: array index out of range")
	ErrSubmitInProgress  = errors.New("form: submit already in progress")
)
