// Package formdialog builds validated modal forms from declarative field
// descriptors.
//
// A Schema is the list of fields for one dialog. Each field carries its own
// validator rule; the schema's validation is the union of those rules plus
// any cross-field checks. Submit parses a request against the schema,
// validates it, and only on success calls the caller's save function with
// the original record merged with the edited values. On failure the dialog
// re-renders with per-field errors and nothing is sent anywhere.
package formdialog

import "strings"

// Kind is the input kind of a field.
type Kind string

const (
	Text        Kind = "text"
	Number      Kind = "number"
	Email       Kind = "email"
	Password    Kind = "password"
	Phone       Kind = "tel"
	URL         Kind = "url"
	Date        Kind = "date"
	DateTime    Kind = "datetime-local"
	Time        Kind = "time"
	Select      Kind = "select"
	MultiSelect Kind = "multiselect"
	TextArea    Kind = "textarea"
	File        Kind = "file"
	Hidden      Kind = "hidden"
)

// Option is one choice of a select or multi-select.
type Option struct {
	Value string
	Label string
}

// Field describes one input.
type Field struct {
	Name  string
	Label string
	Kind  Kind

	// Rule is a go-playground/validator tag, e.g. "required,min=2,max=50".
	// Number fields are checked as numbers, multi-selects as slices.
	Rule string

	// Message replaces the generated error text when set.
	Message string

	Options     []Option
	Default     []string
	Placeholder string
	Accept      string // file inputs
	Span        int    // grid columns, 1 or 2
	ReadOnly    bool   // shown, never taken from the submission
}

// Required reports whether the rule demands a value.
func (f Field) Required() bool {
	for _, part := range strings.Split(f.Rule, ",") {
		if part == "required" || strings.HasPrefix(part, "required_") {
			return true
		}
	}
	return false
}

// Multi reports whether the field holds several values.
func (f Field) Multi() bool { return f.Kind == MultiSelect }

// Values is the submitted or stored state of a form, keyed by field name.
type Values map[string][]string

// Get returns the first value for name.
func (v Values) Get(name string) string {
	if vs := v[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// All returns every value for name.
func (v Values) All(name string) []string { return v[name] }

// Set replaces the values for name.
func (v Values) Set(name string, vals ...string) { v[name] = vals }

// Clone returns a deep copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Errors maps field names to messages. The empty key holds form-level
// errors such as a rejected save.
type Errors map[string]string

// Any reports whether there is at least one error.
func (e Errors) Any() bool { return len(e) > 0 }
