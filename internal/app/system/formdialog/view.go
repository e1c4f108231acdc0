package formdialog

import "slices"

// Dialog describes one render of a form dialog.
type Dialog struct {
	ID          string // DOM id of the dialog element
	Title       string
	Action      string // POST target
	Target      string // HTMX swap target for the response
	SubmitLabel string
	CSRFToken   string

	Schema *Schema
	Values Values
	Errors Errors
}

// DialogView is what the shared "form_dialog" template draws.
type DialogView struct {
	ID          string
	Title       string
	Action      string
	Target      string
	SubmitLabel string
	CSRFToken   string
	Multipart   bool
	FormError   string
	Fields      []FieldView
}

// FieldView is one drawn input.
type FieldView struct {
	Name        string
	Label       string
	Kind        Kind
	Value       string
	Options     []OptionView
	Chips       []OptionView
	Error       string
	Required    bool
	ReadOnly    bool
	Placeholder string
	Accept      string
	Span        int
}

// OptionView is one choice with its selection state.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// View builds the render model.
func (d Dialog) View() DialogView {
	v := DialogView{
		ID:          d.ID,
		Title:       d.Title,
		Action:      d.Action,
		Target:      d.Target,
		SubmitLabel: d.SubmitLabel,
		CSRFToken:   d.CSRFToken,
	}
	if v.SubmitLabel == "" {
		v.SubmitLabel = "Save"
	}
	if d.Schema == nil {
		return v
	}
	v.Multipart = d.Schema.Multipart()
	v.FormError = d.Errors[""]

	for _, f := range d.Schema.Fields {
		span := f.Span
		if span < 1 || span > 2 {
			span = 1
		}
		fv := FieldView{
			Name:        f.Name,
			Label:       f.Label,
			Kind:        f.Kind,
			Value:       d.Values.Get(f.Name),
			Error:       d.Errors[f.Name],
			Required:    f.Required(),
			ReadOnly:    f.ReadOnly,
			Placeholder: f.Placeholder,
			Accept:      f.Accept,
			Span:        span,
		}
		if f.Kind == File {
			// Browsers cannot prefill file inputs.
			fv.Value = ""
		}
		selected := d.Values.All(f.Name)
		for _, o := range f.Options {
			ov := OptionView{Value: o.Value, Label: o.Label, Selected: slices.Contains(selected, o.Value)}
			fv.Options = append(fv.Options, ov)
			if f.Multi() && ov.Selected {
				fv.Chips = append(fv.Chips, ov)
			}
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
