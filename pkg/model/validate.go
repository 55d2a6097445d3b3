package model

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/stateflow/pkg/errors"
)

// validate is the shared validator instance; it reports json field names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateActor checks a single actor's required fields and enum values.
func ValidateActor(a Actor) error {
	return validateStruct("actor", a)
}

// ValidateState checks a single state definition.
func ValidateState(s State) error {
	return validateStruct("state", s)
}

// ValidateCondition checks a single condition.
func ValidateCondition(c Condition) error {
	return validateStruct("condition", c)
}

// ValidateStep checks a single flow step.
func ValidateStep(s FlowStep) error {
	return validateStruct("step", s)
}

// ValidateFlow checks a flow, its trigger and every step.
func ValidateFlow(f Flow) error {
	return validateStruct("flow", f)
}

// ValidColor reports whether c is a hex, rgb(a) or hsl(a) color that can be
// written into a style attribute as is.
func ValidColor(c string) bool {
	return validate.Var(c, "required,iscolor") == nil
}

// Violation is a single failed field check.
type Violation struct {
	Field   string // Namespaced field, e.g. "flow.steps[2].type"
	Tag     string // Failed rule, e.g. "oneof"
	Message string
}

// Violations validates v and returns every failed check rather than only
// the first one.
func Violations(kind string, v any) []Violation {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return []Violation{{Field: kind, Tag: "invalid", Message: err.Error()}}
	}
	out := make([]Violation, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, Violation{
			Field:   fieldPath(kind, e),
			Tag:     e.Tag(),
			Message: describe(e),
		})
	}
	return out
}

func validateStruct(kind string, v any) error {
	vs := Violations(kind, v)
	if len(vs) == 0 {
		return nil
	}
	first := vs[0]
	return errors.New(errors.ErrCodeInvalidInput, "%s: %s", first.Field, first.Message)
}

// fieldPath replaces the Go type name at the head of the namespace with kind.
func fieldPath(kind string, e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return kind + "." + rest
	}
	return kind
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "oneof":
		return "must be one of [" + e.Param() + "], got " + quote(e.Value())
	case "max":
		return "must not exceed " + e.Param() + " characters"
	case "iscolor":
		return "must be a hex, rgb(a) or hsl(a) color, got " + quote(e.Value())
	default:
		return "validation failed (" + e.Tag() + ")"
	}
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return `"` + s + `"`
	}
	if s, ok := v.(interface{ String() string }); ok {
		return `"` + s.String() + `"`
	}
	return "value"
}
