package redisstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/formkit/pkg/validation"
)

// UniqueParams configures Unique.
type UniqueParams struct {
	// Set is the Redis set holding values already taken.
	Set string
}

// Unique validates that a value is not a member of a Redis set. Comparison
// is case-insensitive. Empty values are valid; pair it with Required.
// A Redis failure is returned as an error, which the form turns into its
// rejection message.
func Unique(client redis.UniversalClient, params UniqueParams, msgs ...validation.Messages) validation.Constructor {
	return func(r validation.Reporters, opts validation.Options) validation.Validator {
		if r.Valid == nil || r.Invalid == nil {
			r = validation.DefaultReporters()
		}
		return func(ctx context.Context, value any, _ validation.Fields) (validation.Result, error) {
			s := normalize(validation.Stringify(value))
			if s == "" {
				return r.Valid(), nil
			}

			taken, err := client.SIsMember(ctx, params.Set, s).Result()
			if err != nil {
				return validation.Result{}, fmt.Errorf("check %q in %s: %w", s, params.Set, err)
			}
			if !taken {
				return r.Valid(), nil
			}

			msgParams := validation.Params{"set": params.Set, validation.ParamValue: value}
			msg := validation.FormatMessage(msgs, msgParams, opts, validation.MessageTaken,
				fmt.Sprintf("%s is already taken", validation.Stringify(value)))
			return r.Invalid(msg), nil
		}
	}
}

// Claim adds value to set and reports whether it was free.
func Claim(ctx context.Context, client redis.UniversalClient, set string, value any) (bool, error) {
	s := normalize(validation.Stringify(value))
	if s == "" {
		return false, nil
	}
	added, err := client.SAdd(ctx, set, s).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

// UniqueSet returns the key of the uniqueness set for a form field.
func (f *Factory) UniqueSet(formName, field string) string {
	return joinKey(f.prefix, "unique", formName, field)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
