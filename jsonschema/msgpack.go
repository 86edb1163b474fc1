package jsonschema

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

var (
	_ msgpack.CustomEncoder = (*Schema)(nil)
	_ msgpack.CustomDecoder = (*Schema)(nil)
)

// EncodeMsgpack writes the schema as a msgpack map in insertion order.
func (s *Schema) EncodeMsgpack(enc *msgpack.Encoder) error {
	if s == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeMapLen(len(s.keys)); err != nil {
		return err
	}
	for _, k := range s.keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := encodeMsgpackValue(enc, s.vals[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeMsgpackValue(enc *msgpack.Encoder, v any) error {
	switch t := v.(type) {
	case *Schema:
		return t.EncodeMsgpack(enc)
	case map[string]any:
		return FromMap(t).EncodeMsgpack(enc)
	case []any:
		if err := enc.EncodeArrayLen(len(t)); err != nil {
			return err
		}
		for _, it := range t {
			if err := encodeMsgpackValue(enc, it); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(t)
	}
}

// DecodeMsgpack reads a msgpack map keeping its key order.
func (s *Schema) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := decodeMsgpackValue(dec, "")
	if err != nil {
		return err
	}
	out, ok := v.(*Schema)
	if !ok {
		return fmt.Errorf("jsonschema: expected msgpack map, got %T", v)
	}
	*s = *out
	return nil
}

// DecodeMsgpack decodes one msgpack value into the same forms DecodeJSON
// produces. Binary strings become strings.
func DecodeMsgpack(data []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := decodeMsgpackValue(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.PeekCode(); err == nil {
		return nil, fmt.Errorf("jsonschema: trailing data after msgpack value")
	}
	return v, nil
}

func decodeMsgpackValue(dec *msgpack.Decoder, ptr string) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		s := New()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, fmt.Errorf("jsonschema: map key at %q: %w", ptr, err)
			}
			if s.Has(key) {
				return nil, &DuplicateKeyError{Key: key, Pointer: ptr}
			}
			v, err := decodeMsgpackValue(dec, JoinPointer(ptr, key))
			if err != nil {
				return nil, err
			}
			s.Set(key, v)
		}
		return s, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := decodeMsgpackValue(dec, JoinPointer(ptr, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	}
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t), nil
		}
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("jsonschema: non-finite number at %q", ptr)
		}
	case []byte:
		return string(t), nil
	}
	return v, nil
}
