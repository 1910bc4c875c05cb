package i18n

import "errors"

var (
	ErrNilAdapter        = errors.New("i18n: adapter is nil")
	ErrEmptyLanguage     = errors.New("i18n: empty language code")
	ErrUnsupportedFormat = errors.New("i18n: unsupported translation file format")
	ErrFailedToParse     = errors.New("i18n: failed to parse translations")
	ErrFailedToReadFile  = errors.New("i18n: failed to read translation file")
	ErrLoadingCancelled  = errors.New("i18n: loading translations cancelled")
	ErrInvalidStructure  = errors.New("i18n: invalid translation structure")
)
