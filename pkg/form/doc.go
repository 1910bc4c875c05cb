// Package form holds the state of a form and orchestrates its validation.
//
// A Form owns every field record through a Store. Fields and arrays are
// mounted with Form.Field and Form.FieldArray, which return accessors
// (Field, FieldArray) bound to the form by name. Accessors never hold state;
// each call reads or atomically updates the store.
//
// # Validation
//
// Changing a value writes it immediately, marks the record as validating and
// dispatches validation in the background. The form-level validator (the
// validation.FormKey entry of the validator set) runs first, then the
// field's own validator. A covalidated result re-validates the listed
// siblings with their current values before the originating field's result
// is stored.
//
// Every record carries a stable ID and a version stamped on each write. A
// resolution is applied only if the record still has both, so out-of-date
// results and results for removed array elements are dropped.
//
// Covalidation fan-out uses a visited set per change event and is bounded by
// WithCovalidationDepth, so mutually covalidating fields terminate.
//
// A validator that returns an error or panics resolves its field to an
// invalid result with the rejection message; the error is logged and
// reported to the Observer.
//
// # Usage
//
//	f := form.MustNew("signup",
//	    form.WithValidators(validation.Create(map[string]validation.Constructor{
//	        "code": validation.All([]validation.Constructor{
//	            validation.AtLeast(validation.AtLeastParams{Chars: 3}),
//	            validation.Numeric(),
//	        }),
//	    })),
//	    form.WithInitialValues(map[string]any{"code": "123"}),
//	    form.WithOnSubmit(save),
//	)
//
//	code, _ := f.Field(ctx, "code")
//	_ = code.Change(ctx, "ab")
//	_ = f.Wait(ctx)
//	props, _ := code.Props(ctx)
//
// Submit decides on the validations settled so far. Call Wait first to
// include the ones still in flight.
package form
