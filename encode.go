package schemagen

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	j "github.com/goccy/go-json"

	js "github.com/reoring/schemagen/jsonschema"
)

// encodeDefault converts a default or literal value into its JSON form
// using the serialization settings in effect. Values that implement
// json.Marshaler or encoding.TextMarshaler, and structs, go through the
// JSON encoder.
func (g *Generator) encodeDefault(v any) (any, error) {
	return encodeValue(reflect.ValueOf(v), g.serJSONBytes(), g.serJSONTimedelta(), 0)
}

const maxEncodeDepth = 64

var (
	jsonMarshalerType = reflect.TypeOf((*j.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	timeType          = reflect.TypeOf(time.Time{})
	durationType      = reflect.TypeOf(time.Duration(0))
	schemaType        = reflect.TypeOf((*js.Schema)(nil))
)

func encodeValue(rv reflect.Value, bytesMode, durationMode string, depth int) (any, error) {
	if depth > maxEncodeDepth {
		return nil, fmt.Errorf("value nested deeper than %d levels", maxEncodeDepth)
	}
	if !rv.IsValid() {
		return nil, nil
	}
	switch rv.Type() {
	case schemaType:
		if rv.IsNil() {
			return nil, nil
		}
		return rv.Interface().(*js.Schema).Clone(), nil
	case timeType:
		return rv.Interface().(time.Time).Format(time.RFC3339Nano), nil
	case durationType:
		d := rv.Interface().(time.Duration)
		if durationMode == "float" {
			return d.Seconds(), nil
		}
		return isoDuration(d), nil
	}
	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
		return marshalThrough(rv.Interface())
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return encodeValue(rv.Elem(), bytesMode, durationMode, depth+1)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return u, nil
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("non-finite float %v", f)
		}
		return f, nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return encodeBytes(rv.Bytes(), bytesMode)
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			v, err := encodeValue(rv.Index(i), bytesMode, durationMode, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key())
			if err != nil {
				return nil, err
			}
			v, err := encodeValue(iter.Value(), bytesMode, durationMode, depth+1)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return js.FromMap(m), nil
	case reflect.Struct:
		return marshalThrough(rv.Interface())
	}
	return nil, fmt.Errorf("unsupported default of type %s", rv.Type())
}

func encodeBytes(b []byte, mode string) (any, error) {
	if mode == "base64" {
		return base64.URLEncoding.EncodeToString(b), nil
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("bytes default is not valid UTF-8")
	}
	return string(b), nil
}

func mapKey(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Bool:
		return strconv.FormatBool(k.Bool()), nil
	}
	if k.Type().Implements(textMarshalerType) {
		b, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		return string(b), err
	}
	return "", fmt.Errorf("unsupported map key type %s", k.Type())
}

// marshalThrough encodes v with the JSON encoder and decodes it back into
// ordered schema values, keeping the encoder's field order.
func marshalThrough(v any) (any, error) {
	raw, err := j.Marshal(v)
	if err != nil {
		return nil, err
	}
	return js.DecodeJSON(raw)
}

// isoDuration renders d as an ISO 8601 duration such as "P1DT2H3M4.5S".
func isoDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}
