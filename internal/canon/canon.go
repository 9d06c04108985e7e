// Package canon produces deterministic JSON for content-addressed pipeline
// identity and for the exported rule form.
//
// Guarantees:
//   - object keys are sorted byte-wise, independent of insertion order
//   - strings are NFC normalized and encoded without HTML escaping
//   - floats use the shortest round-trip representation, so an integral
//     float and the equivalent integer serialize identically
//   - times serialize as RFC 3339 strings, the same text form the record
//     package stringifies them to
//   - functions (and any other non-data type) fail with ErrNotSerializable
//
// The same bytes in always give the same bytes out, across runs and
// platforms. That property is what the pipeline uid is built on.
package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrNotSerializable marks a value that has no canonical JSON form,
// typically a callable buried in rule parameters.
var ErrNotSerializable = errors.New("value cannot be canonically serialized")

// Marshal renders v as canonical JSON.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		return marshalString(buf, val)
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case float32:
		return marshalFloat(buf, float64(val))
	case float64:
		return marshalFloat(buf, val)
	case json.Number:
		buf.WriteString(val.String())
		return nil
	case time.Time:
		return marshalString(buf, val.Format(time.RFC3339))
	case []any:
		return marshalArray(buf, val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(buf, arr)
	case map[string]any:
		return marshalObject(buf, val)
	default:
		if reflect.ValueOf(v).Kind() == reflect.Func {
			return fmt.Errorf("%w: func %T", ErrNotSerializable, v)
		}
		return fmt.Errorf("%w: %T", ErrNotSerializable, v)
	}
}

// marshalFloat writes the shortest round-trip form. Integral values print
// without a fraction ("5", not "5.0"), which keeps the digest identical
// whether a parameter arrived as an int or a float.
func marshalFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite float %v", ErrNotSerializable, f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// marshalString NFC-normalizes and encodes without HTML escaping.
func marshalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}
	out := tmp.Bytes()
	// json.Encoder appends a newline.
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	buf.Write(out)
	return nil
}

func marshalArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshal(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalString(buf, k); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := marshal(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// Sanitize returns a JSON-safe deep copy of v with every callable removed,
// reporting whether anything was dropped. Map entries holding callables
// disappear; callables inside arrays become nulls so positions survive.
// Times become their RFC 3339 text form, so a sanitized value hashes and
// exports identically before and after a JSON round trip.
func Sanitize(v any) (any, bool) {
	switch val := v.(type) {
	case nil, bool, string, int, int64, float32, float64, json.Number:
		return val, false
	case time.Time:
		return val.Format(time.RFC3339), false
	case []any:
		dropped := false
		out := make([]any, len(val))
		for i, elem := range val {
			if isFunc(elem) {
				out[i] = nil
				dropped = true
				continue
			}
			clean, d := Sanitize(elem)
			out[i] = clean
			dropped = dropped || d
		}
		return out, dropped
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, false
	case map[string]any:
		dropped := false
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if isFunc(elem) {
				dropped = true
				continue
			}
			clean, d := Sanitize(elem)
			out[k] = clean
			dropped = dropped || d
		}
		return out, dropped
	default:
		if isFunc(val) {
			return nil, true
		}
		return val, false
	}
}

func isFunc(v any) bool {
	if v == nil {
		return false
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}
