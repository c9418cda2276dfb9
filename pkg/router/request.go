package router

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

func parseRequest(req *http.Request, v any) error {
	switch req.Method {
	case http.MethodGet:
		return parseQuery(req, v)

	default:
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return err
		}

		if len(b) == 0 {
			return nil
		}

		return json.Unmarshal(b, v)
	}
}

// parseQuery fills the fields of v from the query string, using the json tag
// as the parameter name.
func parseQuery(req *http.Request, v any) error {
	value := reflect.ValueOf(v).Elem()
	if value.Kind() != reflect.Struct {
		return nil
	}

	query := req.URL.Query()
	for i := 0; i < value.NumField(); i++ {
		field := value.Type().Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" || !query.Has(name) {
			continue
		}

		raw := query.Get(name)
		f := value.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(raw)

		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			f.SetInt(n)

		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			f.SetBool(b)

		default:
			return fmt.Errorf("unsupported query field %s", name)
		}
	}

	return nil
}
