package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Decode parses a JSON request body into dst, a pointer to a schema struct,
// and validates it. The decoded body is returned whenever it was valid JSON
// so callers can report offending values. Failures are *ParseError for
// malformed JSON and *Error for schema violations.
func (v *Validator) Decode(body []byte, dst any) (map[string]any, error) {
	rt := reflect.TypeOf(dst)
	if rt == nil || rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("decode target must be a pointer to struct, got %T", dst)
	}

	input := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		var raw any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, NewParseError(body, err)
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, NewError([]Issue{invalidType(nil, "object", jsonType(raw))})
		}
		input = m
	}

	if issues := checkObject(rt.Elem(), input, nil); len(issues) > 0 {
		return input, NewError(issues)
	}

	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   dst,
		Metadata: &md,
	})
	if err != nil {
		return input, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return input, fmt.Errorf("decode payload: %w", err)
	}

	if issues := unrecognizedKeys(md.Unused); len(issues) > 0 {
		return input, NewError(issues)
	}

	if err := v.Validate(dst); err != nil {
		return input, err
	}
	return input, nil
}

func checkObject(t reflect.Type, m map[string]any, path []string) []Issue {
	var issues []Issue
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "" {
			continue
		}

		p := appendPath(path, name)
		value, ok := m[name]
		if !ok {
			if isRequired(f) {
				issue := invalidType(p, typeName(f.Type), "undefined")
				issue.Message = "Required"
				issues = append(issues, issue)
			}
			continue
		}
		issues = append(issues, checkValue(f.Type, value, p)...)
	}
	return issues
}

func checkValue(t reflect.Type, value any, path []string) []Issue {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return nil
		}
		return []Issue{invalidType(path, typeName(t), "null")}
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	got := jsonType(value)
	switch t.Kind() {
	case reflect.Interface:
		return nil
	case reflect.String, reflect.Bool, reflect.Float32, reflect.Float64, reflect.Map:
		if want := typeName(t); got != want {
			return []Issue{invalidType(path, want, got)}
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if got != "number" {
			return []Issue{invalidType(path, "number", got)}
		}
		if n := value.(float64); n != math.Trunc(n) {
			return []Issue{invalidType(path, "integer", "float")}
		}
	case reflect.Slice, reflect.Array:
		items, ok := value.([]any)
		if !ok {
			return []Issue{invalidType(path, "array", got)}
		}
		var issues []Issue
		for i, item := range items {
			issues = append(issues, checkValue(t.Elem(), item, appendPath(path, strconv.Itoa(i)))...)
		}
		return issues
	case reflect.Struct:
		obj, ok := value.(map[string]any)
		if !ok {
			return []Issue{invalidType(path, "object", got)}
		}
		return checkObject(t, obj, path)
	}
	return nil
}

// unrecognizedKeys groups mapstructure's unused keys into one issue per
// enclosing object.
func unrecognizedKeys(unused []string) []Issue {
	if len(unused) == 0 {
		return nil
	}

	byParent := map[string]*Issue{}
	for _, key := range unused {
		segments := splitPath(key)
		if len(segments) == 0 {
			continue
		}
		parent := segments[:len(segments)-1]
		joined := strings.Join(parent, ".")

		issue, ok := byParent[joined]
		if !ok {
			issue = &Issue{Code: CodeUnrecognizedKeys, Path: parent}
			byParent[joined] = issue
		}
		issue.Keys = append(issue.Keys, segments[len(segments)-1])
	}

	parents := make([]string, 0, len(byParent))
	for p := range byParent {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	issues := make([]Issue, 0, len(parents))
	for _, p := range parents {
		issue := byParent[p]
		sort.Strings(issue.Keys)
		quoted := make([]string, len(issue.Keys))
		for i, k := range issue.Keys {
			quoted[i] = "'" + k + "'"
		}
		issue.Message = "Unrecognized key(s) in object: " + strings.Join(quoted, ", ")
		issues = append(issues, *issue)
	}
	return issues
}

func invalidType(path []string, expected, received string) Issue {
	return Issue{
		Code:     CodeInvalidType,
		Path:     path,
		Message:  fmt.Sprintf("Expected %s, received %s", expected, received),
		Expected: expected,
		Received: received,
	}
}

func isRequired(f reflect.StructField) bool {
	for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

func appendPath(path []string, segment string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, segment)
}

// jsonType names the JSON type of a value produced by encoding/json.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "unknown"
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return kindName(t.Kind())
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	}
	return "any"
}
