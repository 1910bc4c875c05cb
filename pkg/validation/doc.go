// Package validation provides composable, context-aware field validators for
// the form package together with the combinators used to build aggregate
// rules out of small primitives.
//
// A validator is built in two steps. Calling a primitive such as AtLeast or
// Numeric with its parameters and optional custom messages returns a
// Constructor. Create (or Bind) then hands the Constructor the shared
// Reporters and Options, producing a Validator that can be invoked with a
// value and the full field map:
//
//	validators := validation.Create(map[string]validation.Constructor{
//	    "code": validation.All([]validation.Constructor{
//	        validation.AtLeast(validation.AtLeastParams{Chars: 3}),
//	        validation.AtMost(validation.AtMostParams{Chars: 7}),
//	        validation.Numeric(),
//	    }),
//	    "password": validation.Covalidate(
//	        validation.CovalidateParams{Fields: []string{"passwordConfirm"}},
//	        validation.AtLeast(validation.AtLeastParams{Chars: 5}),
//	    ),
//	    "passwordConfirm": validation.EqualTo(validation.EqualToParams{Field: "password"}),
//	})
//
// # Results
//
// Validation failures are data, not errors: every Validator returns a Result
// that is either valid, invalid with a human readable Error, or covalidated,
// in which case Covalidate names sibling fields the form must re-validate as
// a side effect. A non-nil error from a Validator means the check itself could
// not run (for example a remote lookup failed) and is handled by the caller.
//
// # Messages
//
// Every primitive ships an English default message for each failure slot
// ("short", "long", "undef", "nonNumeric", "different"). A custom Message can
// replace it per slot, and an optional Formatter receives the final message
// together with its Params; TranslatorFormatter plugs in an i18n translator.
package validation
