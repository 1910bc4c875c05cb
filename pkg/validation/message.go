package validation

import (
	"maps"
	"slices"
)

// MessageName identifies a failure slot of a validator.
type MessageName string

const (
	MessageShort      MessageName = "short"
	MessageLong       MessageName = "long"
	MessageUndef      MessageName = "undef"
	MessageNonNumeric MessageName = "nonNumeric"
	MessageDifferent  MessageName = "different"
	MessageTaken      MessageName = "taken"
)

// Reserved Params keys.
const (
	// ParamValue holds the value under validation.
	ParamValue = "value"
	// ParamMessage holds the MessageName of the slot being formatted.
	ParamMessage = "message"
)

// Params carries the validator parameters and the validated value to
// messages and formatters.
type Params map[string]any

// Args flattens the params into key/value string pairs, sorted by key, in the
// shape expected by translators.
func (p Params) Args() []string {
	keys := slices.Sorted(maps.Keys(p))
	args := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, Stringify(p[k]))
	}
	return args
}

func (p Params) with(key string, value any) Params {
	out := make(Params, len(p)+1)
	maps.Copy(out, p)
	out[key] = value
	return out
}

// Message produces an error message from its params.
type Message func(Params) string

// Text returns a Message that always yields s.
func Text(s string) Message {
	return func(Params) string { return s }
}

// Messages overrides default messages per slot.
type Messages map[MessageName]Message

// Formatter post-processes a resolved message, typically for localisation.
type Formatter func(message string, params Params) string

// Options are shared by every validator produced by Create.
type Options struct {
	Formatter Formatter
}

// Option configures Options.
type Option func(*Options)

// WithFormatter sets the formatter applied to every resolved message.
func WithFormatter(f Formatter) Option {
	return func(o *Options) {
		if f != nil {
			o.Formatter = f
		}
	}
}

// FormatMessage resolves the message for slot name exactly as built-in rules
// do. Validators defined in other packages use it to honour custom messages
// and the shared formatter.
func FormatMessage(msgs []Messages, params Params, opts Options, name MessageName, def string) string {
	return messageFormat(msgs, params, opts)(name, def)
}

// messageFormat returns a function resolving the message for a slot: the
// custom message when one is set, the default otherwise, passed through the
// formatter when configured.
func messageFormat(msgs []Messages, params Params, opts Options) func(MessageName, string) string {
	return func(name MessageName, def string) string {
		slotParams := params.with(ParamMessage, string(name))

		message := def
		for i := len(msgs) - 1; i >= 0; i-- {
			if m, ok := msgs[i][name]; ok && m != nil {
				message = m(slotParams)
				break
			}
		}

		if opts.Formatter != nil {
			return opts.Formatter(message, slotParams)
		}
		return message
	}
}
