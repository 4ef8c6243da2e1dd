package apierr

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/validation"
)

const (
	validatorName = "ValidatorError"
	genericKey    = "unknown"
)

func render(vr variant, input map[string]any) Response {
	switch vr := vr.(type) {
	case validationVariant:
		return renderValidation(vr.err, input)
	case duplicateKeyVariant:
		return renderDuplicateKey(vr.field, vr.value)
	case castVariant:
		return renderCast(vr.err)
	case parseVariant:
		return renderParse(vr.err)
	case statusVariant:
		return renderStatus(vr.err)
	case genericVariant:
		return renderGeneric(vr.err)
	}
	return renderUnknown()
}

func renderValidation(err *validation.Error, input map[string]any) Response {
	errs := make(map[string]FieldError, len(err.Issues))

	// Issues sharing a path overwrite each other; the last one is reported.
	for _, issue := range err.Issues {
		path := issue.JoinedPath()
		value, found := lookup(input, issue.Path)

		switch issue.Code {
		case validation.CodeInvalidType:
			if !found {
				value = issue.Received
			}
			errs[path] = FieldError{
				Message: fmt.Sprintf("Expected '%s' for \"%s\" but received '%s'!", issue.Expected, path, issue.Received),
				Name:    validatorName,
				Properties: map[string]any{
					"expected": issue.Expected,
					"received": issue.Received,
					"message":  issue.Message,
				},
				Kind:  validation.CodeInvalidType,
				Path:  path,
				Value: value,
			}
		case validation.CodeUnrecognizedKeys:
			message := unrecognizedMessage(issue.Keys)
			errs[validation.CodeUnrecognizedKeys] = FieldError{
				Message: message,
				Name:    validatorName,
				Properties: map[string]any{
					"type":    validation.CodeUnrecognizedKeys,
					"message": message,
					"keys":    issue.Keys,
				},
				Kind:  validation.CodeUnrecognizedKeys,
				Path:  path,
				Value: issue.Keys,
			}
		default:
			if !found {
				value = issue.Received
			}
			message := issue.Message
			if message == "" {
				message = issue.Code
			}
			errs[path] = FieldError{
				Message: message,
				Name:    validatorName,
				Properties: map[string]any{
					"type":    issue.Code,
					"message": message,
				},
				Kind:  issue.Code,
				Path:  path,
				Value: value,
			}
		}
	}

	return Response{
		Message: "Validation failed!",
		Error:   Detail{Name: err.Name(), Errors: errs},
	}
}

func unrecognizedMessage(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = `"` + k + `"`
	}
	noun := "Keys"
	if len(keys) == 1 {
		noun = "Key"
	}
	return fmt.Sprintf("Unrecognized %s found: %s!", noun, strings.Join(quoted, ", "))
}

func renderDuplicateKey(field string, value any) Response {
	return Response{
		Message: "Duplicate Key Error",
		Error: Detail{
			Name: "MongoError",
			Errors: map[string]FieldError{
				field: {
					Message:    fmt.Sprintf("Duplicate \"%s\" found for value \"%v\"", field, value),
					Name:       "DuplicateKeyError",
					Properties: map[string]any{"key": field, "value": value},
					Kind:       "duplicate",
					Path:       field,
					Value:      value,
				},
			},
		},
	}
}

func renderCast(err *domain.CastError) Response {
	kind := err.Kind
	if kind == "" {
		kind = "ObjectId"
	}
	message := fmt.Sprintf("Invalid %s: %v", kind, err.Value)

	return Response{
		Message: "Invalid " + kind,
		Error: Detail{
			Name: "CastError",
			Errors: map[string]FieldError{
				err.Path: {
					Message:    message,
					Name:       "CastError",
					Properties: map[string]any{"message": message, "type": kind},
					Kind:       kind,
					Path:       err.Path,
					Value:      err.Value,
				},
			},
		},
	}
}

func renderParse(err *validation.ParseError) Response {
	return Response{
		Message: "Invalid JSON payload",
		Error: Detail{
			Name: "ParserError",
			Errors: map[string]FieldError{
				"payload": {
					Message:    "Please send valid JSON data",
					Name:       "ParserError",
					Properties: map[string]any{"type": err.Type()},
					Kind:       "invalid_payload",
					Path:       "body",
					Value:      err.Body,
				},
			},
		},
	}
}

func renderStatus(err *domain.StatusError) Response {
	message := err.Message
	if message == "" {
		message = http.StatusText(err.Status)
	}
	kind := err.Kind
	if kind == "" {
		kind = "status_error"
	}

	key := err.Kind
	if key == "" {
		key = err.Path
	}
	if key == "" {
		key = genericKey
	}

	return Response{
		Message: message,
		Error: Detail{
			Name: err.Label,
			Errors: map[string]FieldError{
				key: {
					Message:    message,
					Name:       err.Label,
					Properties: map[string]any{"message": message, "type": kind},
					Kind:       kind,
					Path:       err.Path,
					Value:      err.Value,
				},
			},
		},
	}
}

func renderGeneric(err error) Response {
	message := err.Error()
	if message == "" {
		message = "An error occurred"
	}

	return Response{
		Message: message,
		Error: Detail{
			Name: errorName(err),
			Errors: map[string]FieldError{
				genericKey: {
					Message:    message,
					Name:       "Error",
					Properties: map[string]any{"type": "generic"},
					Kind:       "generic_error",
					Path:       domain.DefaultPath,
					Value:      domain.DefaultPath,
				},
			},
		},
	}
}

func renderUnknown() Response {
	return Response{
		Message: "An unknown error occurred",
		Error: Detail{
			Name:   "UnknownError",
			Errors: map[string]FieldError{},
		},
	}
}

// errorName derives a family label from the dynamic type of err, so
// *net.OpError becomes "OpError". Errors built with errors.New or fmt.Errorf
// are plain "Error".
func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch name := t.Name(); name {
	case "", "errorString", "wrapError", "wrapErrors", "joinError":
		return "Error"
	default:
		return name
	}
}

// lookup walks input along path through objects and arrays. A JSON null
// counts as not found.
func lookup(input map[string]any, path []string) (any, bool) {
	if input == nil || len(path) == 0 {
		return nil, false
	}

	var cur any = input
	for _, segment := range path {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[segment]
		case []any:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}
