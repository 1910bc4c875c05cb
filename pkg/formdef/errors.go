package formdef

import "errors"

var (
	ErrFailedToParse     = errors.New("formdef: failed to parse definition")
	ErrFailedToReadFile  = errors.New("formdef: failed to read file")
	ErrInvalidRule       = errors.New("formdef: rule must be a name or a single-key mapping")
	ErrInvalidParams     = errors.New("formdef: invalid rule params")
	ErrDuplicateForm     = errors.New("formdef: duplicate form name")
	ErrDuplicateField    = errors.New("formdef: duplicate field name")
	ErrFormNotFound      = errors.New("formdef: form not found")
	ErrEmptyName         = errors.New("formdef: name must not be empty")
	ErrInvalidArrayValue = errors.New("formdef: initial value of an array field must be a list")
	ErrInvalidOptions    = errors.New("formdef: radio field needs options and cannot be an array")
	ErrUnknownTransform  = errors.New("formdef: unsupported linked input")
)
