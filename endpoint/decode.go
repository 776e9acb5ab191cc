package endpoint

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal populates dst (a non-nil pointer to a struct) from the request.
//
// Supported struct tags:
//   - `path:"name"` reads r.PathValue(name)
//   - `query:"name"` reads r.URL.Query()
//   - `form:"name"` reads r.PostForm (ParseForm is called as needed)
//
// An empty tag name defaults to the lowercased field name. Supported field
// types are string, bool, integer and float kinds, and []string (all values
// for the key). Missing values leave the field at its zero value.
//
// The request body is only consumed when a form-tagged field is present and
// the body is form-encoded; JSON bodies are left for the endpoint to read.
func Unmarshal(r *http.Request, dst any) error {
	if r == nil {
		return Error(http.StatusInternalServerError, "", errors.New("endpoint: decode: nil request"))
	}
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return Error(http.StatusInternalServerError, "", errors.New("endpoint: decode: dst must be a non-nil pointer"))
	}
	root := v.Elem()
	if root.Kind() != reflect.Struct {
		return Error(http.StatusInternalServerError, "", errors.New("endpoint: decode: dst must point to a struct"))
	}

	var query url.Values
	if r.URL != nil {
		query = r.URL.Query()
	}

	rt := root.Type()
	formParsed := false
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		field := root.Field(i)

		if name, ok := tagName(sf, "path"); ok {
			if val := r.PathValue(name); val != "" {
				if err := setField(field, sf.Name, []string{val}); err != nil {
					return err
				}
				continue
			}
		}
		if name, ok := tagName(sf, "query"); ok {
			if vals, present := query[name]; present {
				if err := setField(field, sf.Name, vals); err != nil {
					return err
				}
				continue
			}
		}
		if name, ok := tagName(sf, "form"); ok {
			if !formParsed {
				if err := parseForm(r); err != nil {
					return err
				}
				formParsed = true
			}
			if vals, present := r.PostForm[name]; present {
				if err := setField(field, sf.Name, vals); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func tagName(sf reflect.StructField, tag string) (string, bool) {
	t, ok := sf.Tag.Lookup(tag)
	if !ok || t == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(t, ",")
	if name == "" {
		name = strings.ToLower(sf.Name)
	}
	return name, true
}

func parseForm(r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		// Not a form body; PostForm stays empty.
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return Error(http.StatusBadRequest, "malformed form data", err)
	}
	return nil
}

func setField(field reflect.Value, name string, vals []string) error {
	if len(vals) == 0 {
		return nil
	}
	val := vals[0]

	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Bool:
		if val == "" {
			field.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return Error(http.StatusBadRequest, "invalid boolean value for "+name, err)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if val == "" {
			return nil
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return Error(http.StatusBadRequest, "invalid integer value for "+name, err)
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		if val == "" {
			return nil
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return Error(http.StatusBadRequest, "invalid numeric value for "+name, err)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return Error(http.StatusInternalServerError, "", errors.New("endpoint: decode: unsupported slice type for "+name))
		}
		field.Set(reflect.ValueOf(append([]string(nil), vals...)))
	default:
		return Error(http.StatusInternalServerError, "", errors.New("endpoint: decode: unsupported field type for "+name))
	}
	return nil
}
