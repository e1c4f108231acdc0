package formdialog

import (
	"errors"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/dalemusser/visitdesk/internal/app/system/htmlsanitize"
)

// MaxUploadBytes bounds multipart bodies (visitor photo and ID proof).
const MaxUploadBytes = 10 << 20

// Check is a cross-field rule. It returns errors keyed by field name.
type Check func(Values) Errors

// Schema is the field list of one dialog plus its cross-field checks.
type Schema struct {
	Fields []Field
	Checks []Check
}

// NewSchema returns a schema over fields.
func NewSchema(fields ...Field) *Schema {
	return &Schema{Fields: fields}
}

// With adds cross-field checks and returns s.
func (s *Schema) With(checks ...Check) *Schema {
	s.Checks = append(s.Checks, checks...)
	return s
}

// Field returns the field called name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Multipart reports whether the form carries file inputs.
func (s *Schema) Multipart() bool {
	for _, f := range s.Fields {
		if f.Kind == File && !f.ReadOnly {
			return true
		}
	}
	return false
}

// Defaults returns the default values of every field.
func (s *Schema) Defaults() Values {
	out := Values{}
	for _, f := range s.Fields {
		if len(f.Default) > 0 {
			out[f.Name] = append([]string(nil), f.Default...)
		}
	}
	return out
}

// Files holds uploaded files by field name.
type Files map[string]*multipart.FileHeader

// Parse reads the editable fields of s from r. Free text is stripped of
// markup; file fields record the uploaded file name as their value.
func (s *Schema) Parse(r *http.Request) (Values, Files, error) {
	var err error
	if s.Multipart() && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(MaxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, nil, err
	}

	vals, files := Values{}, Files{}
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		if f.Kind == File {
			if r.MultipartForm != nil {
				if fhs := r.MultipartForm.File[f.Name]; len(fhs) > 0 && fhs[0].Size > 0 {
					files[f.Name] = fhs[0]
					vals.Set(f.Name, fhs[0].Filename)
				}
			}
			continue
		}

		raw, present := r.PostForm[f.Name]
		if !present {
			continue
		}
		clean := make([]string, 0, len(raw))
		for _, v := range raw {
			v = strings.TrimSpace(v)
			if f.Kind == Text || f.Kind == TextArea {
				v = htmlsanitize.StripTags(v)
			}
			clean = append(clean, v)
		}
		vals[f.Name] = clean
	}
	return vals, files, nil
}

// Merge overlays the editable fields of edited onto original. Read-only
// fields always keep their original value, and file fields keep theirs
// unless a new file was uploaded.
func (s *Schema) Merge(original, edited Values) Values {
	out := original.Clone()
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		vs, ok := edited[f.Name]
		if !ok {
			if f.Multi() {
				// An empty multi-select is not submitted at all.
				delete(out, f.Name)
			}
			continue
		}
		if f.Kind == File && len(vs) == 0 {
			continue
		}
		out[f.Name] = append([]string(nil), vs...)
	}
	return out
}

// Changed lists the editable fields whose value differs between a and b.
func (s *Schema) Changed(a, b Values) []string {
	var out []string
	for _, f := range s.Fields {
		if f.ReadOnly {
			continue
		}
		if !slices.Equal(a[f.Name], b[f.Name]) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Submission is the outcome of Submit.
type Submission struct {
	Values Values // merged record, or the raw input when invalid
	Files  Files
	Errors Errors
}

// Valid reports whether the submission passed validation.
func (s Submission) Valid() bool { return !s.Errors.Any() }

// ErrInvalid is returned by Submit when validation fails.
var ErrInvalid = errors.New("form has validation errors")

// Submit parses and validates r. Only when every rule passes does it call
// save with original merged with the submitted values. The returned error
// is ErrInvalid for validation failures, the parse error for unreadable
// bodies, or whatever save returned.
func (s *Schema) Submit(r *http.Request, original Values, save func(Values, Files) error) (Submission, error) {
	vals, files, err := s.Parse(r)
	if err != nil {
		return Submission{Errors: Errors{"": "The form could not be read."}}, err
	}

	merged := s.Merge(original, vals)
	if errs := s.Validate(merged); errs.Any() {
		return Submission{Values: merged, Files: files, Errors: errs}, ErrInvalid
	}

	if err := save(merged, files); err != nil {
		return Submission{Values: merged, Files: files}, err
	}
	return Submission{Values: merged, Files: files}, nil
}
