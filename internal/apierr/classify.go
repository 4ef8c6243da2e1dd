package apierr

import (
	"errors"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/validation"
)

const duplicateKeyCode = 11000

// maxDepth bounds the walk over an error tree.
const maxDepth = 64

// dupKeyPattern extracts the key from a server message such as
// `E11000 duplicate key error collection: shop.users index: email_1 dup key: { email: "a@b.com" }`.
var dupKeyPattern = regexp.MustCompile(`dup key: \{\s*"?([^\s":]+)"?\s*:\s*"?(.*?)"?\s*\}`)

// variant is one failure family. The set of implementations is closed.
type variant interface {
	family() string
}

type validationVariant struct{ err *validation.Error }

type duplicateKeyVariant struct {
	field string
	value any
}

type castVariant struct{ err *domain.CastError }

type parseVariant struct{ err *validation.ParseError }

type statusVariant struct{ err *domain.StatusError }

type genericVariant struct{ err error }

type unknownVariant struct{ value any }

func (validationVariant) family() string   { return "validation" }
func (duplicateKeyVariant) family() string { return "duplicate_key" }
func (castVariant) family() string         { return "cast" }
func (parseVariant) family() string        { return "parse" }
func (statusVariant) family() string       { return "status" }
func (genericVariant) family() string      { return "generic" }
func (unknownVariant) family() string      { return "unknown" }

// classify converts an arbitrary value into its failure family.
func classify(v any) variant {
	err, ok := v.(error)
	if !ok || isNil(v) {
		return unknownVariant{value: v}
	}

	var found variant
	walk(err, 0, func(e error) bool {
		found = match(e)
		return found != nil
	})
	if found != nil {
		return found
	}
	return genericVariant{err: err}
}

// walk visits err and its wrapped errors depth-first, outermost first, until
// visit returns true.
func walk(err error, depth int, visit func(error) bool) bool {
	if err == nil || depth > maxDepth || isNil(err) {
		return false
	}
	if visit(err) {
		return true
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), depth+1, visit)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if walk(e, depth+1, visit) {
				return true
			}
		}
	}
	return false
}

// match tests a single error layer against every known shape, in
// classification order.
func match(err error) variant {
	switch e := err.(type) {
	case *validation.Error:
		return validationVariant{err: e}
	case validator.ValidationErrors:
		return validationVariant{err: validation.FromValidator(e)}
	}

	if field, value, ok := duplicateKey(err); ok {
		return duplicateKeyVariant{field: field, value: value}
	}

	switch e := err.(type) {
	case *domain.CastError:
		return castVariant{err: e}
	case *validation.ParseError:
		return parseVariant{err: e}
	case *domain.StatusError:
		return statusVariant{err: e}
	}

	if err == mongo.ErrNoDocuments || err == domain.ErrNotFound {
		return statusVariant{err: domain.NotFound("The requested resource was not found!", nil, "document")}
	}
	return nil
}

// duplicateKey reports whether err is a mongo unique index violation and, if
// so, the violating field and value.
func duplicateKey(err error) (string, any, bool) {
	switch e := err.(type) {
	case *mongo.WriteException:
		return duplicateKey(*e)
	case *mongo.BulkWriteException:
		return duplicateKey(*e)
	case *mongo.CommandError:
		return duplicateKey(*e)
	case mongo.WriteException:
		for _, we := range e.WriteErrors {
			if we.Code == duplicateKeyCode {
				field, value := keyValue(we.Raw, we.Message)
				return field, value, true
			}
		}
	case mongo.BulkWriteException:
		for _, we := range e.WriteErrors {
			if we.Code == duplicateKeyCode {
				field, value := keyValue(we.Raw, we.Message)
				return field, value, true
			}
		}
	case mongo.CommandError:
		if e.Code == duplicateKeyCode {
			field, value := keyValue(e.Raw, e.Message)
			return field, value, true
		}
	}
	return "", nil, false
}

// keyValue reads the violating key from the server's keyValue document, or
// from the error message when the document is absent.
func keyValue(raw bson.Raw, message string) (string, any) {
	if len(raw) > 0 {
		if rv, err := raw.LookupErr("keyValue"); err == nil {
			if doc, ok := rv.DocumentOK(); ok {
				var kv bson.D
				if err := bson.Unmarshal(doc, &kv); err == nil && len(kv) > 0 {
					value := kv[0].Value
					if oid, ok := value.(primitive.ObjectID); ok {
						value = oid.Hex()
					}
					return kv[0].Key, value
				}
			}
		}
	}

	if m := dupKeyPattern.FindStringSubmatch(message); m != nil {
		return m[1], m[2]
	}
	return domain.DefaultPath, nil
}

// stackTrace returns the trace carried by the variant's error, if any.
func stackTrace(vr variant) string {
	var tracer interface{ StackTrace() string }

	switch vr := vr.(type) {
	case validationVariant:
		return vr.err.StackTrace()
	case castVariant:
		return vr.err.StackTrace()
	case statusVariant:
		return vr.err.StackTrace()
	case genericVariant:
		if errors.As(vr.err, &tracer) {
			return tracer.StackTrace()
		}
	}
	return ""
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
