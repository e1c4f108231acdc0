package formdialog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	aptNameRe    = regexp.MustCompile(`^[0-9A-Za-z-]+$`)
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z ]+$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the app's custom rules:
//
//	aptname     letters, digits and hyphens only
//	alphaspace  letters and spaces only
//	digits      ASCII digits only
//	phone10     exactly ten digits
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "aptname", func(fl validator.FieldLevel) bool {
			return aptNameRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "alphaspace", func(fl validator.FieldLevel) bool {
			return alphaSpaceRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
			return digitsRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return len(s) == 10 && digitsRe.MatchString(s)
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("formdialog: register %s: %v", tag, err))
	}
}

// Validate checks vals against every field rule and cross-field check.
// Read-only fields are skipped. Empty optional fields pass.
func (s *Schema) Validate(vals Values) Errors {
	errs := Errors{}
	for _, f := range s.Fields {
		if f.ReadOnly || f.Rule == "" {
			continue
		}
		if msg := checkField(f, vals); msg != "" {
			errs[f.Name] = msg
		}
	}
	for _, check := range s.Checks {
		for name, msg := range check(vals) {
			if _, taken := errs[name]; !taken {
				errs[name] = msg
			}
		}
	}
	return errs
}

func checkField(f Field, vals Values) string {
	var value any

	if f.Multi() {
		var picked []string
		for _, v := range vals.All(f.Name) {
			if strings.TrimSpace(v) != "" {
				picked = append(picked, v)
			}
		}
		if len(picked) == 0 {
			if f.Required() {
				return message(f, "required", "")
			}
			return ""
		}
		value = picked
	} else {
		raw := strings.TrimSpace(vals.Get(f.Name))
		if raw == "" {
			if f.Required() {
				return message(f, "required", "")
			}
			return ""
		}
		value = raw
		if f.Kind == Number {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return message(f, "number", "")
			}
			value = n
		}
	}

	err := Validator().Var(value, f.Rule)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return message(f, verrs[0].Tag(), verrs[0].Param())
	}
	return message(f, "", "")
}

func message(f Field, tag, param string) string {
	if f.Message != "" {
		return f.Message
	}
	label := f.Label
	if label == "" {
		label = f.Name
	}

	switch tag {
	case "required":
		if f.Multi() || f.Kind == Select {
			return "Select " + strings.ToLower(label)
		}
		return label + " is required"
	case "number":
		return label + " must be a number"
	case "min", "gte":
		switch {
		case f.Kind == Number:
			return fmt.Sprintf("%s must be at least %s", label, param)
		case f.Multi():
			return fmt.Sprintf("Select at least %s", param)
		default:
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
	case "max", "lte":
		switch {
		case f.Kind == Number:
			return fmt.Sprintf("%s must be at most %s", label, param)
		case f.Multi():
			return fmt.Sprintf("Select at most %s", param)
		default:
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", label, param)
	case "email":
		return "Enter a valid email address"
	case "url", "http_url":
		return "Enter a valid URL"
	case "phone10":
		return label + " must be exactly 10 digits"
	case "digits", "numeric":
		return label + " must contain only digits"
	case "aptname":
		return label + " may contain only letters, digits and hyphens"
	case "alphaspace":
		return label + " may contain only letters and spaces"
	case "oneof":
		return "Choose a valid " + strings.ToLower(label)
	case "datetime":
		return "Enter a valid " + strings.ToLower(label)
	}
	return label + " is invalid"
}
