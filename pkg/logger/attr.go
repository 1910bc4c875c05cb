package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Attribute keys shared by every formkit component.
const (
	KeyForm       = "form"
	KeyField      = "field"
	KeyIndex      = "index"
	KeyValidation = "validation"
	KeySession    = "session_id"
	KeyRequest    = "request_id"
	KeyError      = "error"
	KeyErrors     = "errors"
	KeyDuration   = "duration"
	KeyComponent  = "component"
	KeyEvent      = "event"
)

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Form(name string) slog.Attr      { return slog.String(KeyForm, name) }
func Field(name string) slog.Attr     { return slog.String(KeyField, name) }
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }

func Duration(d time.Duration) slog.Attr { return slog.Duration(KeyDuration, d) }

// Index is empty for negative i, which stands for a plain field.
func Index(i int) slog.Attr {
	if i < 0 {
		return slog.Attr{}
	}
	return slog.Int(KeyIndex, i)
}

// Validation groups a validation outcome. The message is omitted when empty.
func Validation(valid bool, message string) slog.Attr {
	if message == "" {
		return Group(KeyValidation, slog.Bool("valid", valid))
	}
	return Group(KeyValidation, slog.Bool("valid", valid), slog.String(KeyError, message))
}

func Session(id string) slog.Attr { return optional(KeySession, id) }

func RequestID(id string) slog.Attr { return optional(KeyRequest, id) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}

// Errors groups the non-nil errors by argument position.
func Errors(errs ...error) slog.Attr {
	var attrs []slog.Attr
	for i, err := range errs {
		if err != nil {
			attrs = append(attrs, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(attrs) == 0 {
		return slog.Attr{}
	}
	return Group(KeyErrors, attrs...)
}

func optional(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
