package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks request payloads against tag-defined schemas.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Validator{validate: v}
}

// Validate validates a struct using go-playground/validator tags. Rule
// failures are returned as *Error.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return FromValidator(validationErrors)
	}
	return fmt.Errorf("validate %T: %w", i, err)
}

// FromValidator converts go-playground/validator failures into an Error.
func FromValidator(errs validator.ValidationErrors) *Error {
	issues := make([]Issue, 0, len(errs))
	for _, fe := range errs {
		issues = append(issues, Issue{
			Code:    issueCode(fe.Tag()),
			Path:    namespacePath(fe.Namespace()),
			Message: issueMessage(fe),
		})
	}
	return NewError(issues)
}

func issueCode(tag string) string {
	switch tag {
	case "required", "min", "gte", "gt":
		return CodeTooSmall
	case "max", "lte", "lt":
		return CodeTooBig
	case "oneof":
		return CodeInvalidEnumValue
	case "email", "url", "uuid", "mongodb", "hexadecimal", "alphanum":
		return CodeInvalidString
	default:
		return CodeCustom
	}
}

func issueMessage(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		// Missing keys are caught by the type pass, so the value is present but zero.
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must contain at least 1 character(s)", field)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at least 1 item(s)", field)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return fmt.Sprintf("%s must not be 0", field)
		}
		return "Required"
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must contain at least %s character(s)", field, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s item(s)", field, param)
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "max", "lte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must contain at most %s character(s)", field, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s item(s)", field, param)
		}
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "email":
		return "Invalid email"
	case "url":
		return "Invalid url"
	case "mongodb":
		return "Invalid ObjectId"
	}
	return fmt.Sprintf("%s failed on '%s' validation", field, fe.Tag())
}

// namespacePath turns "createOrderRequest.products[0].quantity" into
// ["products", "0", "quantity"].
func namespacePath(ns string) []string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	} else {
		return nil
	}
	return splitPath(ns)
}

// splitPath splits a dotted path with bracketed indexes into segments.
func splitPath(p string) []string {
	var segments []string
	for _, part := range strings.Split(p, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segments = append(segments, part)
				break
			}
			if open > 0 {
				segments = append(segments, part[:open])
			}
			end := strings.IndexByte(part[open:], ']')
			if end < 0 {
				segments = append(segments, part[open+1:])
				break
			}
			segments = append(segments, part[open+1:open+end])
			part = part[open+end+1:]
		}
	}
	return segments
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}
