package formdef

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is the top-level document of a definitions file.
type File struct {
	Forms []Definition `yaml:"forms"`
}

// Definition describes one form: its fields with their initial values and
// rules, plus optional form-level rules.
type Definition struct {
	Name        string     `yaml:"name"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Fields      []FieldDef `yaml:"fields"`
	// Form rules validate the whole form under validation.FormKey.
	Form []Rule `yaml:"form"`
}

// FieldDef describes one field.
type FieldDef struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Type        string `yaml:"type"`
	Placeholder string `yaml:"placeholder"`
	Array       bool   `yaml:"array"`
	Initial     any    `yaml:"initial"`
	Rules       []Rule `yaml:"rules"`
	// Options are the choices of a radio field. Every option renders its
	// own input bound to the same field.
	Options []Choice `yaml:"options"`
	// Linked inputs edit the same field through a transform.
	Linked []LinkedInput `yaml:"linked"`
}

// TypeRadio renders a field as a group of radio buttons.
const TypeRadio = "radio"

// Choice is one option of a radio field.
type Choice struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// LinkedInput is an extra input showing the field value through Transform.
// Edits made in it are transformed back before they reach the field.
type LinkedInput struct {
	Label     string `yaml:"label"`
	Transform string `yaml:"transform"`
}

type transform struct {
	show, restore func(string) string
}

var transforms = map[string]transform{
	"":        {show: identity, restore: identity},
	"reverse": {show: reverse, restore: reverse},
}

func identity(s string) string { return s }

func reverse(s string) string {
	r := []rune(s)
	slices.Reverse(r)
	return string(r)
}

// Show returns value as the linked input displays it.
func (l LinkedInput) Show(value string) string {
	return transforms[l.Transform].show(value)
}

// Restore maps an edit of the linked input back to the field value.
func (l LinkedInput) Restore(value string) string {
	return transforms[l.Transform].restore(value)
}

// Link returns the linked input of f with the given transform.
func (f FieldDef) Link(name string) (LinkedInput, bool) {
	for _, l := range f.Linked {
		if l.Transform == name {
			return l, true
		}
	}
	return LinkedInput{}, false
}

// InputType returns the HTML input type, "text" when unset.
func (f FieldDef) InputType() string {
	if f.Type == "" {
		return "text"
	}
	return f.Type
}

// Field returns the field definition by name.
func (d Definition) Field(name string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Rule is one validation rule: a name and its raw params. In YAML it is
// written either as a bare name ("numeric") or as a single-key mapping
// ("atLeast: {chars: 3}").
type Rule struct {
	Name   string
	Params yaml.Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Name = node.Value
		r.Params = yaml.Node{}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return errors.Join(ErrInvalidRule, fmt.Errorf("line %d: got %d keys", node.Line, len(node.Content)/2))
		}
		r.Name = node.Content[0].Value
		r.Params = *node.Content[1]
		return nil
	default:
		return errors.Join(ErrInvalidRule, fmt.Errorf("line %d", node.Line))
	}
}

// Decode decodes the rule params into out. Missing params leave out untouched.
func (r Rule) Decode(out any) error {
	if r.Params.Kind == 0 {
		return nil
	}
	if r.Params.Kind == yaml.ScalarNode && r.Params.Tag == "!!null" {
		return nil
	}
	if err := r.Params.Decode(out); err != nil {
		return errors.Join(ErrInvalidParams, fmt.Errorf("rule %q at line %d: %w", r.Name, r.Params.Line, err))
	}
	return nil
}

// validate checks names and initial values.
func (d Definition) validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return errors.Join(ErrEmptyName, fmt.Errorf("field of form %q", d.Name))
		}
		if _, ok := seen[f.Name]; ok {
			return errors.Join(ErrDuplicateField, fmt.Errorf("%q in form %q", f.Name, d.Name))
		}
		seen[f.Name] = struct{}{}

		if f.Array && f.Initial != nil {
			if _, ok := f.Initial.([]any); !ok {
				return errors.Join(ErrInvalidArrayValue, fmt.Errorf("%q in form %q", f.Name, d.Name))
			}
		}
		if f.Type == TypeRadio && (len(f.Options) == 0 || f.Array) {
			return errors.Join(ErrInvalidOptions, fmt.Errorf("%q in form %q", f.Name, d.Name))
		}
		for _, l := range f.Linked {
			if _, ok := transforms[l.Transform]; !ok {
				return errors.Join(ErrUnknownTransform, fmt.Errorf("%q on %q in form %q", l.Transform, f.Name, d.Name))
			}
		}
		if len(f.Linked) > 0 && f.Array {
			return errors.Join(ErrUnknownTransform, fmt.Errorf("array %q in form %q cannot have linked inputs", f.Name, d.Name))
		}
	}
	return nil
}
