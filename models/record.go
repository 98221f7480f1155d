package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// MissingFieldError reports a required wire field that was absent or null.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Record, e.Field)
}

var jsonNull = []byte("null")

// decodeRecord checks that every required key is present and non-null before
// unmarshalling data into v. v must be an alias type without an UnmarshalJSON
// method, otherwise the call recurses. Keys are matched case-sensitively: only
// keys equal to a json tag of v reach the struct. The raw field map is
// returned so callers can keep fields they do not map.
func decodeRecord(record string, data []byte, v any, required ...string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, name := range required {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			return nil, &MissingFieldError{Record: record, Field: name}
		}
	}
	names := wireNames(reflect.TypeOf(v))
	mapped := make(map[string]json.RawMessage, len(fields))
	for name, raw := range fields {
		if _, ok := names[name]; ok {
			mapped[name] = raw
		}
	}
	exact, err := json.Marshal(mapped)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exact, v); err != nil {
		return nil, err
	}
	return fields, nil
}

var wireNameCache sync.Map // reflect.Type -> map[string]struct{}

// wireNames returns the json key of every exported field of the struct t
// points to.
func wireNames(t reflect.Type) map[string]struct{} {
	if cached, ok := wireNameCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	names := make(map[string]struct{}, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names[name] = struct{}{}
	}
	wireNameCache.Store(t, names)
	return names
}
