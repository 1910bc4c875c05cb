package formdef

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// RuleFunc builds a constructor from a rule. Compile is passed along so that
// combinator rules can compile nested rules.
type RuleFunc func(c *Compiler, r Rule) (validation.Constructor, error)

// Compiler turns definitions into validator sets. It knows the built-in
// rules; WithRule adds application rules such as Redis uniqueness checks.
type Compiler struct {
	rules map[string]RuleFunc
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithRule registers or replaces a rule.
func WithRule(name string, fn RuleFunc) CompilerOption {
	return func(c *Compiler) { c.rules[name] = fn }
}

// NewCompiler returns a compiler with the built-in rules registered.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{rules: map[string]RuleFunc{
		"required":   ruleRequired,
		"atLeast":    ruleAtLeast,
		"atMost":     ruleAtMost,
		"numeric":    ruleNumeric,
		"matches":    ruleMatches,
		"equalTo":    ruleEqualTo,
		"exactly":    ruleExactly,
		"all":        ruleAll,
		"any":        ruleAny,
		"covalidate": ruleCovalidate,
		"delayed":    ruleDelayed,
	}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compiled is a definition ready to build forms from.
type Compiled struct {
	Definition
	Validators validation.Set
	Initial    map[string]any
}

// Options returns the form options carrying the compiled validators and
// initial values.
func (c Compiled) Options() []form.Option {
	return []form.Option{
		form.WithValidators(c.Validators),
		form.WithInitialValues(c.Initial),
	}
}

// Compile builds the validator set and initial values of d. A field with
// several rules gets them combined with validation.All.
func (c *Compiler) Compile(d Definition, opts ...validation.Option) (Compiled, error) {
	if err := d.validate(); err != nil {
		return Compiled{}, err
	}

	constructors := make(map[string]validation.Constructor)
	initial := make(map[string]any)

	for _, f := range d.Fields {
		if f.Initial != nil {
			initial[f.Name] = f.Initial
		} else if f.Array {
			initial[f.Name] = []any{}
		}

		if len(f.Rules) == 0 {
			continue
		}
		ctor, err := c.combine(f.Rules)
		if err != nil {
			return Compiled{}, fmt.Errorf("form %q field %q: %w", d.Name, f.Name, err)
		}
		constructors[f.Name] = ctor
	}

	if len(d.Form) > 0 {
		ctor, err := c.combine(d.Form)
		if err != nil {
			return Compiled{}, fmt.Errorf("form %q: %w", d.Name, err)
		}
		constructors[validation.FormKey] = ctor
	}

	return Compiled{
		Definition: d,
		Validators: validation.Create(constructors, opts...),
		Initial:    initial,
	}, nil
}

// CompileAll compiles every definition, keyed by form name.
func (c *Compiler) CompileAll(defs []Definition, opts ...validation.Option) (map[string]Compiled, error) {
	out := make(map[string]Compiled, len(defs))
	for _, d := range defs {
		compiled, err := c.Compile(d, opts...)
		if err != nil {
			return nil, err
		}
		out[d.Name] = compiled
	}
	return out, nil
}

// Rule compiles a single rule.
func (c *Compiler) Rule(r Rule) (validation.Constructor, error) {
	fn, ok := c.rules[r.Name]
	if !ok {
		return nil, errors.Join(validation.ErrUnknownRule, fmt.Errorf("%q", r.Name))
	}
	return fn(c, r)
}

// Rules compiles a list of rules.
func (c *Compiler) Rules(rules []Rule) ([]validation.Constructor, error) {
	out := make([]validation.Constructor, len(rules))
	for i, r := range rules {
		ctor, err := c.Rule(r)
		if err != nil {
			return nil, err
		}
		out[i] = ctor
	}
	return out, nil
}

func (c *Compiler) combine(rules []Rule) (validation.Constructor, error) {
	ctors, err := c.Rules(rules)
	if err != nil {
		return nil, err
	}
	if len(ctors) == 1 {
		return ctors[0], nil
	}
	return validation.All(ctors), nil
}

// MessageParams is embedded by rule params accepting custom messages, keyed
// by message slot. Messages may reference params as {name}.
type MessageParams struct {
	Messages map[string]string `yaml:"messages"`
}

// Build converts the configured messages to validation.Messages.
func (m MessageParams) Build() []validation.Messages {
	if len(m.Messages) == 0 {
		return nil
	}
	out := make(validation.Messages, len(m.Messages))
	for slot, text := range m.Messages {
		out[validation.MessageName(slot)] = template(text)
	}
	return []validation.Messages{out}
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// template returns a message replacing {name} with the matching param.
func template(text string) validation.Message {
	if !strings.Contains(text, "{") {
		return validation.Text(text)
	}
	return func(p validation.Params) string {
		return placeholder.ReplaceAllStringFunc(text, func(m string) string {
			if v, ok := p[m[1:len(m)-1]]; ok {
				return validation.Stringify(v)
			}
			return m
		})
	}
}

type charsParams struct {
	Chars         int `yaml:"chars"`
	MessageParams `yaml:",inline"`
}

type patternParams struct {
	Pattern       string `yaml:"pattern"`
	MessageParams `yaml:",inline"`
}

type fieldParams struct {
	Field         string `yaml:"field"`
	MessageParams `yaml:",inline"`
}

type valueParams struct {
	Value         any `yaml:"value"`
	MessageParams `yaml:",inline"`
}

type listParams struct {
	Rules     []Rule `yaml:"rules"`
	Separator string `yaml:"separator"`
}

type covalidateParams struct {
	Fields []string `yaml:"fields"`
	Rule   *Rule    `yaml:"rule"`
}

type delayedParams struct {
	Duration time.Duration `yaml:"duration"`
	Rule     Rule          `yaml:"rule"`
}

func ruleRequired(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p MessageParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return validation.Required(p.Build()...), nil
}

func ruleAtLeast(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p charsParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return validation.AtLeast(validation.AtLeastParams{Chars: p.Chars}, p.Build()...), nil
}

func ruleAtMost(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p charsParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return validation.AtMost(validation.AtMostParams{Chars: p.Chars}, p.Build()...), nil
}

func ruleNumeric(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p MessageParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return validation.Numeric(p.Build()...), nil
}

func ruleMatches(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p patternParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(p.Pattern)
	if err != nil {
		return nil, errors.Join(ErrInvalidParams, err)
	}
	return validation.Matches(validation.MatchesParams{Regex: re}, p.Build()...), nil
}

func ruleEqualTo(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p fieldParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	if p.Field == "" {
		return nil, errors.Join(ErrInvalidParams, errors.New("equalTo requires a field"))
	}
	return validation.EqualTo(validation.EqualToParams{Field: p.Field}, p.Build()...), nil
}

func ruleExactly(_ *Compiler, r Rule) (validation.Constructor, error) {
	var p valueParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	return validation.Exactly(validation.ExactlyParams{Value: p.Value}, p.Build()...), nil
}

func ruleAll(c *Compiler, r Rule) (validation.Constructor, error) {
	ctors, combiner, err := c.list(r)
	if err != nil {
		return nil, err
	}
	return validation.All(ctors, combiner...), nil
}

func ruleAny(c *Compiler, r Rule) (validation.Constructor, error) {
	ctors, combiner, err := c.list(r)
	if err != nil {
		return nil, err
	}
	return validation.Any(ctors, combiner...), nil
}

// list compiles the nested rules of all/any. Params are either a plain list
// of rules or a mapping with rules and an optional separator.
func (c *Compiler) list(r Rule) ([]validation.Constructor, []validation.Combiner, error) {
	var p listParams
	if err := r.Decode(&p.Rules); err != nil {
		if err := r.Decode(&p); err != nil {
			return nil, nil, err
		}
	}

	ctors, err := c.Rules(p.Rules)
	if err != nil {
		return nil, nil, err
	}
	if p.Separator == "" {
		return ctors, nil, nil
	}
	sep := p.Separator
	return ctors, []validation.Combiner{func(errs []string) string { return strings.Join(errs, sep) }}, nil
}

func ruleCovalidate(c *Compiler, r Rule) (validation.Constructor, error) {
	var p covalidateParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	if len(p.Fields) == 0 {
		return nil, errors.Join(ErrInvalidParams, errors.New("covalidate requires fields"))
	}

	inner := validation.Constructor(func(validation.Reporters, validation.Options) validation.Validator {
		return func(context.Context, any, validation.Fields) (validation.Result, error) {
			return validation.Valid(), nil
		}
	})
	if p.Rule != nil {
		var err error
		if inner, err = c.Rule(*p.Rule); err != nil {
			return nil, err
		}
	}
	return validation.Covalidate(validation.CovalidateParams{Fields: p.Fields}, inner), nil
}

func ruleDelayed(c *Compiler, r Rule) (validation.Constructor, error) {
	var p delayedParams
	if err := r.Decode(&p); err != nil {
		return nil, err
	}
	inner, err := c.Rule(p.Rule)
	if err != nil {
		return nil, err
	}
	return validation.Delayed(p.Duration, inner), nil
}
