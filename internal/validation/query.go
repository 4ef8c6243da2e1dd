package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// CheckQuery reports query parameters that cannot be converted to the type
// of the dst field carrying the matching `query` tag. dst must be a pointer
// to struct. Bind and validate dst after CheckQuery succeeds.
func (v *Validator) CheckQuery(values url.Values, dst any) error {
	rt := reflect.TypeOf(dst)
	if rt == nil || rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("query target must be a pointer to struct, got %T", dst)
	}
	rt = rt.Elem()

	var issues []Issue
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("query"), ",")
		if name == "" || name == "-" || !values.Has(name) {
			continue
		}
		raw := values.Get(name)
		if raw == "" || parsesAs(f.Type, raw) {
			continue
		}
		issues = append(issues, invalidType([]string{name}, typeName(f.Type), "string"))
	}
	if len(issues) > 0 {
		return NewError(issues)
	}
	return nil
}

func parsesAs(t reflect.Type, raw string) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var err error
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, err = strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		_, err = strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		_, err = strconv.ParseFloat(raw, t.Bits())
	case reflect.Bool:
		_, err = strconv.ParseBool(raw)
	}
	return err == nil
}
