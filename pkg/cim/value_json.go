package cim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mandelsoft/cimrepository/pkg/cimerr"
)

type valueJSON struct {
	Type  Type            `json:"type"`
	Array bool            `json:"array,omitempty"`
	Null  bool            `json:"null,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

type embeddedJSON struct {
	Class    *Class    `json:"class,omitempty"`
	Instance *Instance `json:"instance,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.typ.IsValid() {
		return []byte("null"), nil
	}
	r := valueJSON{Type: v.typ, Array: v.array, Null: v.null}
	if !v.null {
		var data any
		if v.array {
			var elems []any
			for _, e := range v.data.([]any) {
				d, err := encodeScalar(e)
				if err != nil {
					return nil, err
				}
				elems = append(elems, d)
			}
			if elems == nil {
				elems = []any{}
			}
			data = elems
		} else {
			d, err := encodeScalar(v.data)
			if err != nil {
				return nil, err
			}
			data = d
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		r.Value = raw
	}
	return json.Marshal(&r)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var r valueJSON
	err := json.Unmarshal(data, &r)
	if err != nil {
		return err
	}
	if !r.Type.IsValid() {
		return cimerr.New(cimerr.InvalidParameter, "value without type")
	}
	if r.Null || len(r.Value) == 0 {
		*v = NewNull(r.Type, r.Array)
		return nil
	}
	if !r.Array {
		d, err := decodeScalar(r.Type, r.Value)
		if err != nil {
			return err
		}
		*v = Value{typ: r.Type, data: d}
		return nil
	}
	var raws []json.RawMessage
	err = json.Unmarshal(r.Value, &raws)
	if err != nil {
		return fmt.Errorf("%s array: %w", r.Type, err)
	}
	elems := make([]any, len(raws))
	for i, raw := range raws {
		elems[i], err = decodeScalar(r.Type, raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	*v = Value{typ: r.Type, array: true, data: elems}
	return nil
}

func encodeScalar(d any) (any, error) {
	switch x := d.(type) {
	case Char16:
		return uint16(x), nil
	case DateTime:
		return x.String(), nil
	case ObjectPath:
		return x.String(), nil
	case float32:
		if isSpecialReal(float64(x)) {
			return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
		}
	case float64:
		if isSpecialReal(x) {
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		}
	case *Class:
		return &embeddedJSON{Class: x}, nil
	case *Instance:
		return &embeddedJSON{Instance: x}, nil
	case EmbeddedObject:
		return nil, fmt.Errorf("unsupported embedded object %T", d)
	}
	return d, nil
}

func decodeScalar(t Type, raw json.RawMessage) (any, error) {
	var err error
	var r any

	switch t {
	case TypeBoolean:
		r, err = decodeAs[bool](raw)
	case TypeUint8:
		r, err = decodeAs[uint8](raw)
	case TypeSint8:
		r, err = decodeAs[int8](raw)
	case TypeUint16:
		r, err = decodeAs[uint16](raw)
	case TypeSint16:
		r, err = decodeAs[int16](raw)
	case TypeUint32:
		r, err = decodeAs[uint32](raw)
	case TypeSint32:
		r, err = decodeAs[int32](raw)
	case TypeUint64:
		r, err = decodeAs[uint64](raw)
	case TypeSint64:
		r, err = decodeAs[int64](raw)
	case TypeReal32:
		if s, ok := realString(raw); ok {
			var f float64
			f, err = strconv.ParseFloat(s, 32)
			r = float32(f)
		} else {
			r, err = decodeAs[float32](raw)
		}
	case TypeReal64:
		if s, ok := realString(raw); ok {
			r, err = strconv.ParseFloat(s, 64)
		} else {
			r, err = decodeAs[float64](raw)
		}
	case TypeChar16:
		var c uint16
		c, err = decodeAs[uint16](raw)
		r = Char16(c)
	case TypeString:
		r, err = decodeAs[string](raw)
	case TypeDateTime:
		var s string
		s, err = decodeAs[string](raw)
		if err == nil {
			r, err = ParseDateTime(s)
		}
	case TypeReference:
		var s string
		s, err = decodeAs[string](raw)
		if err == nil {
			r, err = ParseObjectPath(s)
		}
	case TypeObject:
		var e embeddedJSON
		e, err = decodeAs[embeddedJSON](raw)
		switch {
		case err != nil:
		case e.Class != nil:
			r = e.Class
		case e.Instance != nil:
			r = e.Instance
		default:
			err = fmt.Errorf("embedded object requires class or instance")
		}
	default:
		err = fmt.Errorf("invalid type %s", t)
	}
	if err != nil {
		return nil, cimerr.New(cimerr.InvalidParameter, "invalid %s value: %s", t, err)
	}
	return r, nil
}

// NaN and infinite reals have no JSON number representation and are
// encoded as strings NaN, +Inf and -Inf.
func isSpecialReal(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func realString(raw json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func decodeAs[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}
