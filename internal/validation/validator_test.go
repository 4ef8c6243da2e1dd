package validation

import (
	"errors"
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Product  string `json:"product" validate:"required,mongodb"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type orderRequest struct {
	Products []line `json:"products" validate:"required,min=1,dive"`
}

type productRequest struct {
	Name    string   `json:"name" validate:"required,min=1"`
	Price   float64  `json:"price" validate:"required,gte=0"`
	Type    string   `json:"type" validate:"required,oneof=Mountain Road Hybrid BMX Electric"`
	InStock *bool    `json:"inStock" validate:"required"`
	Tags    []string `json:"tags,omitempty"`
}

func decodeErr(t *testing.T, body string, dst any) (*Error, map[string]any) {
	t.Helper()

	input, err := New().Decode([]byte(body), dst)
	var verr *Error
	require.True(t, errors.As(err, &verr), "got %v", err)
	return verr, input
}

func TestDecode_Success(t *testing.T) {
	var req productRequest
	input, err := New().Decode([]byte(`{"name":"Alp","price":120.5,"type":"Road","inStock":true}`), &req)
	require.NoError(t, err)

	assert.Equal(t, "Alp", req.Name)
	assert.Equal(t, 120.5, req.Price)
	assert.Equal(t, "Road", req.Type)
	require.NotNil(t, req.InStock)
	assert.True(t, *req.InStock)
	assert.Equal(t, "Alp", input["name"])
}

func TestDecode_NestedSuccess(t *testing.T) {
	var req orderRequest
	_, err := New().Decode([]byte(`{"products":[{"product":"64b7f1f4a2b3c4d5e6f70812","quantity":2}]}`), &req)
	require.NoError(t, err)

	require.Len(t, req.Products, 1)
	assert.Equal(t, 2, req.Products[0].Quantity)
}

func TestDecode_ParseError(t *testing.T) {
	_, err := New().Decode([]byte(`{bad`), &productRequest{})

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "{bad", perr.Body)
	assert.Equal(t, ParseFailed, perr.Type())
}

func TestDecode_NotAnObject(t *testing.T) {
	verr, _ := decodeErr(t, `[1,2]`, &productRequest{})

	require.Len(t, verr.Issues, 1)
	assert.Equal(t, CodeInvalidType, verr.Issues[0].Code)
	assert.Equal(t, "object", verr.Issues[0].Expected)
	assert.Equal(t, "array", verr.Issues[0].Received)
	assert.Empty(t, verr.Issues[0].Path)
}

func TestDecode_InvalidType(t *testing.T) {
	verr, input := decodeErr(t, `{"name":"Alp","price":"abc","type":"Road","inStock":true}`, &productRequest{})

	require.Len(t, verr.Issues, 1)
	issue := verr.Issues[0]
	assert.Equal(t, CodeInvalidType, issue.Code)
	assert.Equal(t, []string{"price"}, issue.Path)
	assert.Equal(t, "number", issue.Expected)
	assert.Equal(t, "string", issue.Received)
	assert.Equal(t, "abc", input["price"])
}

func TestDecode_MissingRequired(t *testing.T) {
	verr, _ := decodeErr(t, ``, &productRequest{})

	paths := map[string]Issue{}
	for _, issue := range verr.Issues {
		paths[issue.JoinedPath()] = issue
	}
	require.Len(t, paths, 4)
	assert.Equal(t, "undefined", paths["name"].Received)
	assert.Equal(t, "Required", paths["price"].Message)
	assert.Equal(t, "boolean", paths["inStock"].Expected)
	assert.NotContains(t, paths, "tags")
}

func TestDecode_NullAndIntegers(t *testing.T) {
	verr, _ := decodeErr(t, `{"products":[{"product":null,"quantity":1.5}]}`, &orderRequest{})

	require.Len(t, verr.Issues, 2)
	assert.Equal(t, []string{"products", "0", "product"}, verr.Issues[0].Path)
	assert.Equal(t, "null", verr.Issues[0].Received)
	assert.Equal(t, []string{"products", "0", "quantity"}, verr.Issues[1].Path)
	assert.Equal(t, "integer", verr.Issues[1].Expected)
	assert.Equal(t, "float", verr.Issues[1].Received)
}

func TestDecode_UnrecognizedKeys(t *testing.T) {
	body := `{"name":"Alp","price":1,"type":"Road","inStock":true,"color":"red","wheels":2}`
	verr, _ := decodeErr(t, body, &productRequest{})

	require.Len(t, verr.Issues, 1)
	issue := verr.Issues[0]
	assert.Equal(t, CodeUnrecognizedKeys, issue.Code)
	assert.Empty(t, issue.Path)
	assert.Equal(t, []string{"color", "wheels"}, issue.Keys)
	assert.Equal(t, "Unrecognized key(s) in object: 'color', 'wheels'", issue.Message)
}

func TestDecode_NestedUnrecognizedKeys(t *testing.T) {
	body := `{"products":[{"product":"64b7f1f4a2b3c4d5e6f70812","quantity":1,"gift":true}]}`
	verr, _ := decodeErr(t, body, &orderRequest{})

	require.Len(t, verr.Issues, 1)
	assert.Equal(t, []string{"products", "0"}, verr.Issues[0].Path)
	assert.Equal(t, []string{"gift"}, verr.Issues[0].Keys)
}

func TestDecode_Rules(t *testing.T) {
	body := `{"name":"","price":-1,"type":"Tandem","inStock":false}`
	verr, _ := decodeErr(t, body, &productRequest{})

	codes := map[string]string{}
	for _, issue := range verr.Issues {
		codes[issue.JoinedPath()] = issue.Code
	}
	assert.Equal(t, CodeTooSmall, codes["name"], "empty string fails required")
	assert.Equal(t, CodeTooSmall, codes["price"])
	assert.Equal(t, CodeInvalidEnumValue, codes["type"])
}

func TestDecode_EmptyRequiredString(t *testing.T) {
	verr, input := decodeErr(t, `{"name":"","price":1,"type":"Road","inStock":true}`, &productRequest{})

	require.Len(t, verr.Issues, 1)
	issue := verr.Issues[0]
	assert.Equal(t, []string{"name"}, issue.Path)
	assert.Equal(t, CodeTooSmall, issue.Code)
	assert.Equal(t, "name must contain at least 1 character(s)", issue.Message)
	assert.Empty(t, issue.Received)
	assert.Equal(t, "", input["name"])
}

func TestDecode_BadTarget(t *testing.T) {
	_, err := New().Decode([]byte(`{}`), productRequest{})
	require.Error(t, err)

	var verr *Error
	assert.False(t, errors.As(err, &verr))
}

func TestFromValidator(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	err := v.Struct(orderRequest{Products: []line{{Product: "nope", Quantity: 0}}})
	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))

	verr := FromValidator(errs)
	require.Len(t, verr.Issues, 2)
	assert.Equal(t, []string{"products", "0", "product"}, verr.Issues[0].Path)
	assert.Equal(t, CodeInvalidString, verr.Issues[0].Code)
	assert.Equal(t, "Invalid ObjectId", verr.Issues[0].Message)
	assert.Equal(t, []string{"products", "0", "quantity"}, verr.Issues[1].Path)
	assert.Equal(t, CodeTooSmall, verr.Issues[1].Code)
	assert.Equal(t, "quantity must not be 0", verr.Issues[1].Message)
	assert.Empty(t, verr.Issues[1].Received)
}

func TestSplitPath(t *testing.T) {
	tests := map[string][]string{
		"price":               {"price"},
		"products[0].product": {"products", "0", "product"},
		"a.b[2][3].c":         {"a", "b", "2", "3", "c"},
	}
	for in, want := range tests {
		assert.Equal(t, want, splitPath(in), in)
	}
}

func TestError_Message(t *testing.T) {
	err := NewError([]Issue{
		{Code: CodeTooSmall, Path: []string{"price"}, Message: "too small"},
		{Code: CodeCustom, Path: []string{"a", "b"}, Message: "bad"},
	})
	assert.Equal(t, "validation failed: price: too small; a.b: bad", err.Error())
	assert.Equal(t, ErrorName, err.Name())
	assert.NotEmpty(t, err.StackTrace())
}

type pageQuery struct {
	Search string  `query:"search"`
	Page   int     `query:"page"`
	Min    float64 `query:"min"`
	Active bool    `query:"active"`
}

func TestCheckQuery(t *testing.T) {
	v := New()

	require.NoError(t, v.CheckQuery(url.Values{"search": {"x"}, "page": {"2"}, "min": {"1.5"}, "active": {"true"}}, &pageQuery{}))
	require.NoError(t, v.CheckQuery(url.Values{"page": {""}}, &pageQuery{}))

	err := v.CheckQuery(url.Values{"page": {"abc"}, "min": {"cheap"}, "search": {"abc"}}, &pageQuery{})
	var verr *Error
	require.True(t, errors.As(err, &verr), "got %v", err)
	require.Len(t, verr.Issues, 2)
	assert.Equal(t, []string{"page"}, verr.Issues[0].Path)
	assert.Equal(t, CodeInvalidType, verr.Issues[0].Code)
	assert.Equal(t, "number", verr.Issues[0].Expected)
	assert.Equal(t, "string", verr.Issues[0].Received)
	assert.Equal(t, []string{"min"}, verr.Issues[1].Path)

	assert.Error(t, v.CheckQuery(url.Values{}, pageQuery{}))
}
