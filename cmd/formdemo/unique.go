package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/redisstore"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// uniqueRuleName is the formdef rule checking values against a Redis set:
//
//	- unique: {set: usernames}
const uniqueRuleName = "unique"

type uniqueParams struct {
	Set                   string `yaml:"set"`
	formdef.MessageParams `yaml:",inline"`
}

func decodeUnique(r formdef.Rule) (uniqueParams, error) {
	var p uniqueParams
	if err := r.Decode(&p); err != nil {
		return p, err
	}
	if p.Set == "" {
		return p, fmt.Errorf("%w: rule %q needs a set", formdef.ErrInvalidParams, r.Name)
	}
	return p, nil
}

// uniqueRule compiles the unique rule into redisstore.Unique.
func uniqueRule(client redis.UniversalClient, factory *redisstore.Factory) formdef.RuleFunc {
	return func(_ *formdef.Compiler, r formdef.Rule) (validation.Constructor, error) {
		p, err := decodeUnique(r)
		if err != nil {
			return nil, err
		}
		params := redisstore.UniqueParams{Set: factory.UniqueSet(p.Set, "")}
		return redisstore.Unique(client, params, p.Build()...), nil
	}
}

// skipUnique accepts every value. It stands in for uniqueRule without Redis.
func skipUnique(_ *formdef.Compiler, r formdef.Rule) (validation.Constructor, error) {
	if _, err := decodeUnique(r); err != nil {
		return nil, err
	}
	return func(validation.Reporters, validation.Options) validation.Validator {
		return func(context.Context, any, validation.Fields) (validation.Result, error) {
			return validation.Valid(), nil
		}
	}, nil
}

// claimer adds the values of unique fields to their sets once a valid form
// was submitted, so later visitors see them as taken.
type claimer struct {
	client redis.UniversalClient
	// sets maps form name to field name to set key.
	sets map[string]map[string]string
}

func newClaimer(client redis.UniversalClient, factory *redisstore.Factory, defs []formdef.Definition) (*claimer, error) {
	c := &claimer{client: client, sets: make(map[string]map[string]string)}
	for _, d := range defs {
		for _, f := range d.Fields {
			for _, r := range uniqueRules(f.Rules) {
				p, err := decodeUnique(r)
				if err != nil {
					return nil, fmt.Errorf("form %q field %q: %w", d.Name, f.Name, err)
				}
				if c.sets[d.Name] == nil {
					c.sets[d.Name] = make(map[string]string)
				}
				c.sets[d.Name][f.Name] = factory.UniqueSet(p.Set, "")
			}
		}
	}
	return c, nil
}

// Handler implements playground.Submitter.
func (c *claimer) Handler(formName string, valid bool) form.Handler {
	fields := c.sets[formName]
	if !valid || len(fields) == 0 {
		return nil
	}
	return func(ctx context.Context, values form.FieldMap) error {
		for field, set := range fields {
			v, ok := values.Lookup(field)
			if !ok {
				continue
			}
			if _, err := redisstore.Claim(ctx, c.client, set, v); err != nil {
				return fmt.Errorf("claim %s: %w", field, err)
			}
		}
		return nil
	}
}

// uniqueRules finds unique rules, including ones nested in combinators.
func uniqueRules(rules []formdef.Rule) []formdef.Rule {
	var out []formdef.Rule
	for _, r := range rules {
		if r.Name == uniqueRuleName {
			out = append(out, r)
			continue
		}
		var list []formdef.Rule
		if err := r.Decode(&list); err == nil {
			out = append(out, uniqueRules(list)...)
			continue
		}
		var nested struct {
			Rule  *formdef.Rule  `yaml:"rule"`
			Rules []formdef.Rule `yaml:"rules"`
		}
		if err := r.Decode(&nested); err != nil {
			continue
		}
		if nested.Rule != nil {
			out = append(out, uniqueRules([]formdef.Rule{*nested.Rule})...)
		}
		out = append(out, uniqueRules(nested.Rules)...)
	}
	return out
}
