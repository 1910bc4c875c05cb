package playground

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/formkit/pkg/form"
	"github.com/dmitrymomot/formkit/pkg/formdef"
	"github.com/dmitrymomot/formkit/pkg/validation"
)

// ScriptURL is the datastar client bundle loaded by the default page.
var ScriptURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Element IDs patched over SSE.
const StatusID = "form-status"

// FieldID returns the DOM id of a field fragment.
func FieldID(name string) string { return "field-" + name }

// ArrayID returns the DOM id of an array fragment.
func ArrayID(name string) string { return "array-" + name }

// Translate returns the text of key, or fallback when it has none.
type Translate func(key, fallback string) string

// Views renders the playground. Every fragment must keep the id its
// selector targets (FieldID, ArrayID, StatusID).
type Views struct {
	Index  func(IndexParams) templ.Component
	Page   func(PageParams) templ.Component
	Field  func(FieldParams) templ.Component
	Array  func(ArrayParams) templ.Component
	Status func(StatusParams) templ.Component
}

type IndexParams struct {
	Forms []formdef.Definition
	T     Translate
}

type PageParams struct {
	Definition formdef.Definition
	Lang       string
	Body       []templ.Component
	Status     templ.Component
	T          Translate
}

type FieldParams struct {
	Base  string
	Def   formdef.FieldDef
	Props form.FieldProps
	T     Translate
}

type ArrayParams struct {
	Base  string
	Def   formdef.FieldDef
	Props form.ArrayProps
	T     Translate
}

type StatusParams struct {
	Base       string
	Definition formdef.Definition
	Props      form.FormProps
	T          Translate
}

// DefaultViews returns plain HTML views with datastar attributes.
func DefaultViews() Views {
	return Views{
		Index:  indexView,
		Page:   pageView,
		Field:  fieldView,
		Array:  arrayView,
		Status: statusView,
	}
}

func (v Views) withDefaults() Views {
	d := DefaultViews()
	if v.Index == nil {
		v.Index = d.Index
	}
	if v.Page == nil {
		v.Page = d.Page
	}
	if v.Field == nil {
		v.Field = d.Field
	}
	if v.Array == nil {
		v.Array = d.Array
	}
	if v.Status == nil {
		v.Status = d.Status
	}
	return v
}

// writer accumulates the first write error.
type writer struct {
	w   io.Writer
	err error
}

func (h *writer) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *writer) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *writer) component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func label(d formdef.FieldDef) string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

func indexView(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		h.raw("<!doctype html><html><head><meta charset=\"utf-8\"><title>")
		h.text(p.T("playground.title", "Forms"))
		h.raw("</title></head><body><main><h1>")
		h.text(p.T("playground.title", "Forms"))
		h.raw("</h1><ul>")
		for _, d := range p.Forms {
			title := d.Title
			if title == "" {
				title = d.Name
			}
			h.raw("<li><a")
			h.attr("href", "/forms/"+d.Name)
			h.raw(">")
			h.text(title)
			h.raw("</a></li>")
		}
		h.raw("</ul></main></body></html>")
		return h.err
	})
}

func pageView(p PageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := p.Definition.Title
		if title == "" {
			title = p.Definition.Name
		}
		h := &writer{w: w}
		h.raw("<!doctype html><html")
		h.attr("lang", p.Lang)
		h.raw("><head><meta charset=\"utf-8\"><title>")
		h.text(title)
		h.raw("</title><script type=\"module\"")
		h.attr("src", ScriptURL)
		h.raw("></script></head><body><main><h1>")
		h.text(title)
		h.raw("</h1>")
		if p.Definition.Description != "" {
			h.raw("<p>")
			h.text(p.Definition.Description)
			h.raw("</p>")
		}
		h.raw("<form")
		h.attr("id", "form-"+p.Definition.Name)
		h.attr("data-on-submit__prevent", "@post('/forms/"+p.Definition.Name+"/submit')")
		h.raw(">")
		for _, c := range p.Body {
			h.component(ctx, c)
		}
		h.component(ctx, p.Status)
		h.raw("</form></main></body></html>")
		return h.err
	})
}

// input renders one bound input with its change, focus and blur actions.
func input(h *writer, base, signal, kind, placeholder string, props form.FieldProps) {
	h.raw("<input")
	h.attr("id", "input-"+signal)
	h.attr("name", signal)
	h.attr("type", kind)
	if placeholder != "" {
		h.attr("placeholder", placeholder)
	}
	h.attr("value", validation.Stringify(props.Value))
	h.attr("data-bind", signal)
	h.attr("data-on-input__debounce.300ms", "@post('"+base+"')")
	h.attr("data-on-focus", "@post('"+base+"/focus')")
	h.attr("data-on-blur", "@post('"+base+"/blur')")
	h.raw(">")
}

// radios renders one radio button per option, all bound to the field signal.
func radios(h *writer, base, signal string, options []formdef.Choice, props form.FieldProps) {
	current := validation.Stringify(props.Value)
	for _, opt := range options {
		id := "input-" + signal + "-" + opt.Value
		h.raw("<label")
		h.attr("for", id)
		h.raw("><input")
		h.attr("id", id)
		h.attr("name", signal)
		h.attr("type", formdef.TypeRadio)
		h.attr("value", opt.Value)
		if opt.Value == current {
			h.raw(" checked")
		}
		h.attr("data-bind", signal)
		h.attr("data-on-change", "@post('"+base+"')")
		h.attr("data-on-focus", "@post('"+base+"/focus')")
		h.attr("data-on-blur", "@post('"+base+"/blur')")
		h.raw(">")
		if opt.Label != "" {
			h.text(opt.Label)
		} else {
			h.text(opt.Value)
		}
		h.raw("</label>")
	}
}

// linked renders an input editing the field through a transform.
func linked(h *writer, base, name string, l formdef.LinkedInput, props form.FieldProps) {
	signal := LinkedSignal(name, l.Transform)
	h.raw("<label")
	h.attr("for", "input-"+signal)
	h.raw(">")
	h.text(l.Label)
	h.raw("</label><input")
	h.attr("id", "input-"+signal)
	h.attr("name", signal)
	h.attr("type", "text")
	h.attr("value", l.Show(validation.Stringify(props.Value)))
	h.attr("data-bind", signal)
	h.attr("data-on-input__debounce.300ms", "@post('"+base+"?via="+l.Transform+"')")
	h.attr("data-on-focus", "@post('"+base+"/focus')")
	h.attr("data-on-blur", "@post('"+base+"/blur')")
	h.raw(">")
}

// feedback renders the validation state of a record. Errors show once the
// value left its initial state or the field was touched.
func feedback(h *writer, t Translate, m form.FieldMeta) {
	switch {
	case m.IsValidating:
		h.raw(`<small class="validating">`)
		h.text(t("playground.validating", "Checking…"))
		h.raw("</small>")
	case !m.Valid && (!m.Pristine || m.Touched):
		h.raw(`<small class="error">`)
		h.text(m.Error)
		h.raw("</small>")
	}
}

func classes(m form.FieldMeta) string {
	c := "field"
	if m.IsValidating {
		c += " validating"
	}
	if !m.Valid {
		c += " invalid"
	}
	if m.Active {
		c += " active"
	}
	return c
}

func fieldView(p FieldParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		h.raw("<div")
		h.attr("id", FieldID(p.Def.Name))
		h.attr("class", classes(p.Props.Meta))
		h.raw(">")
		base := p.Base + "/fields/" + p.Def.Name
		if p.Def.InputType() == formdef.TypeRadio {
			h.raw("<fieldset><legend>")
			h.text(label(p.Def))
			h.raw("</legend>")
			radios(h, base, p.Def.Name, p.Def.Options, p.Props)
			h.raw("</fieldset>")
		} else {
			h.raw("<label")
			h.attr("for", "input-"+p.Def.Name)
			h.raw(">")
			h.text(label(p.Def))
			h.raw("</label>")
			input(h, base, p.Def.Name, p.Def.InputType(), p.Def.Placeholder, p.Props)
		}
		for _, l := range p.Def.Linked {
			linked(h, base, p.Def.Name, l, p.Props)
		}
		feedback(h, p.T, p.Props.Meta)
		h.raw("</div>")
		return h.err
	})
}

func arrayView(p ArrayParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		base := p.Base + "/arrays/" + p.Def.Name
		h.raw("<fieldset")
		h.attr("id", ArrayID(p.Def.Name))
		h.raw("><legend>")
		h.text(label(p.Def))
		h.raw("</legend>")
		for _, el := range p.Props.Fields {
			idx := strconv.Itoa(el.Index)
			h.raw("<div")
			h.attr("id", "element-"+el.ID)
			h.attr("class", classes(el.Meta))
			h.raw(">")
			input(h, base+"/"+idx, ElementSignal(p.Def.Name, el.Index), p.Def.InputType(), p.Def.Placeholder, el)
			h.raw("<button type=\"button\"")
			h.attr("data-on-click", "@delete('"+base+"/"+idx+"')")
			h.raw(">")
			h.text(p.T("playground.remove", "Remove"))
			h.raw("</button>")
			feedback(h, p.T, el.Meta)
			h.raw("</div>")
		}
		h.raw("<button type=\"button\"")
		h.attr("data-on-click", "@post('"+base+"')")
		h.raw(">")
		h.text(p.T("playground.add", "Add"))
		h.raw("</button></fieldset>")
		return h.err
	})
}

func statusView(p StatusParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{w: w}
		h.raw("<section")
		h.attr("id", StatusID)
		h.raw("><p class=\"state\">")
		switch {
		case p.Props.IsSubmitting:
			h.text(p.T("playground.submitting", "Submitting…"))
		case p.Props.IsValidating:
			h.text(p.T("playground.validating", "Checking…"))
		case p.Props.Valid:
			h.text(p.T("playground.valid", "All fields are valid"))
		default:
			h.text(p.T("playground.invalid", "Some fields need attention"))
		}
		h.raw("</p>")

		if p.Props.Submitted {
			h.raw("<p class=\"submitted\">")
			h.text(p.T("playground.submitted", "Submitted"))
			h.raw("</p>")
			if keys := p.Props.ErrorKeys(); len(keys) > 0 {
				h.raw("<ul class=\"errors\">")
				for _, k := range keys {
					h.raw("<li>")
					if k != validation.FormKey {
						h.text(k + ": ")
					}
					h.text(p.Props.Errors[k])
					h.raw("</li>")
				}
				h.raw("</ul>")
			}
		}

		h.raw("<button type=\"submit\"")
		if p.Props.IsSubmitting {
			h.raw(" disabled")
		}
		h.raw(">")
		h.text(p.T("playground.submit", "Submit"))
		h.raw("</button><button type=\"button\"")
		h.attr("data-on-click", "@post('"+p.Base+"/reset')")
		h.raw(">")
		h.text(p.T("playground.reset", "Reset"))
		h.raw("</button></section>")
		return h.err
	})
}

// LinkedSignal returns the datastar signal bound to a linked input.
func LinkedSignal(name, transform string) string {
	return name + "_" + transform
}

// ElementSignal returns the datastar signal bound to an array element.
func ElementSignal(name string, index int) string {
	return fmt.Sprintf("%s_%d", name, index)
}
