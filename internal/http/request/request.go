// Package request decodes and validates incoming request data.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/finsave/internal/models"
)

// ErrEmptyBody is returned by Decode for a request without a body.
var ErrEmptyBody = errors.New("empty request body")

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	return v
}

// Decode reads a JSON body into dst. A body that is not JSON yields a plain
// error. When dst is a struct, each key is decoded into its field separately
// and values of the wrong type are reported as a *models.ValidationError
// keyed by the JSON field name.
func Decode(r *http.Request, dst any) error {
	var raw json.RawMessage
	err := render.DecodeJSON(r.Body, &raw)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return json.Unmarshal(raw, dst)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}

	verrs := &models.ValidationError{}
	sv := rv.Elem()
	st := sv.Type()
	for i := range st.NumField() {
		f := st.Field(i)
		name := jsonName(f)
		if !f.IsExported() || name == "" {
			continue
		}
		val, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(val, sv.Field(i).Addr().Interface()); err != nil {
			verrs.Add(name, typeMessage(name, f.Type))
		}
	}
	return verrs.OrNil()
}

var (
	decimalType    = reflect.TypeOf(decimal.Decimal{})
	nullableIDType = reflect.TypeOf(models.NullableID{})
)

func typeMessage(field string, t reflect.Type) string {
	label := strings.ReplaceAll(field, "_", " ")
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t == decimalType:
		return fmt.Sprintf("The %s must be a number.", label)
	case t == nullableIDType:
		return fmt.Sprintf("The %s must be an integer.", label)
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("The %s must be an integer.", label)
	case reflect.String:
		return fmt.Sprintf("The %s must be a string.", label)
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// ID parses the positive integer URL parameter name.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter, returning def when it
// is absent or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// QueryBool reports whether the query parameter name is "1" or "true".
func QueryBool(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true":
		return true
	}
	return false
}
