package validation

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/formkit/pkg/async"
)

// Combiner joins the error messages of failed validators into one message.
type Combiner func(errs []string) string

// CovalidateParams configures Covalidate.
type CovalidateParams struct {
	Fields []string
}

// All passes when every validator passes. Validators run concurrently; the
// failure message joins the individual errors with " and " in input order,
// or uses the first combiner when one is given.
func All(validators []Constructor, combiner ...Combiner) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		bound := bindAll(validators, r, opts)

		return func(ctx context.Context, value any, fields Fields) (Result, error) {
			results, err := runConcurrently(ctx, bound, value, fields)
			if err != nil {
				return Result{}, err
			}

			covalidate := collectCovalidate(results)
			errs := collectErrors(results)
			if len(errs) == 0 {
				return Covalidated(r.Valid(), covalidate...), nil
			}

			return Covalidated(r.Invalid(combine(errs, " and ", combiner)), covalidate...), nil
		}
	}
}

// Any passes when at least one validator passes. On failure the errors are
// joined with " or ", or combined by the first combiner when one is given.
func Any(validators []Constructor, combiner ...Combiner) Constructor {
	return func(r Reporters, opts Options) Validator {
		r = r.withDefaults()
		bound := bindAll(validators, r, opts)

		return func(ctx context.Context, value any, fields Fields) (Result, error) {
			results, err := runConcurrently(ctx, bound, value, fields)
			if err != nil {
				return Result{}, err
			}

			covalidate := collectCovalidate(results)
			for _, res := range results {
				if res.Valid {
					return Covalidated(r.Valid(), covalidate...), nil
				}
			}

			return Covalidated(r.Invalid(combine(collectErrors(results), " or ", combiner)), covalidate...), nil
		}
	}
}

// Covalidate runs validator and marks params.Fields for re-validation by the
// form whenever it runs. The validator's own outcome is kept as the inner result.
func Covalidate(params CovalidateParams, validator Constructor) Constructor {
	return func(r Reporters, opts Options) Validator {
		inner := validator(r, opts)
		return func(ctx context.Context, value any, fields Fields) (Result, error) {
			res, err := inner(ctx, value, fields)
			if err != nil {
				return Result{}, err
			}
			return Covalidated(res, params.Fields...), nil
		}
	}
}

// Delayed postpones validator by d. It stands in for network-bound checks and
// gives up early when ctx is cancelled.
func Delayed(d time.Duration, validator Constructor) Constructor {
	return func(r Reporters, opts Options) Validator {
		inner := validator(r, opts)
		return func(ctx context.Context, value any, fields Fields) (Result, error) {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-timer.C:
			}
			return inner(ctx, value, fields)
		}
	}
}

func bindAll(validators []Constructor, r Reporters, opts Options) []Validator {
	bound := make([]Validator, 0, len(validators))
	for _, c := range validators {
		if c != nil {
			bound = append(bound, c(r, opts))
		}
	}
	return bound
}

func runConcurrently(ctx context.Context, validators []Validator, value any, fields Fields) ([]Result, error) {
	futures := make([]*async.Future[Result], len(validators))
	for i, v := range validators {
		futures[i] = async.Run(ctx, func(ctx context.Context) (Result, error) {
			return v(ctx, value, fields)
		})
	}
	return async.WaitAll(futures...)
}

func collectErrors(results []Result) []string {
	var errs []string
	for _, res := range results {
		if res.IsInvalid() {
			errs = append(errs, res.Error)
		}
	}
	return errs
}

func collectCovalidate(results []Result) []string {
	lists := make([][]string, 0, len(results))
	for _, res := range results {
		lists = append(lists, res.Covalidate)
	}
	return mergeFields(lists...)
}

func combine(errs []string, sep string, combiner []Combiner) string {
	if len(combiner) > 0 && combiner[0] != nil {
		return combiner[0](errs)
	}
	return strings.Join(errs, sep)
}
