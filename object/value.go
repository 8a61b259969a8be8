package object

import (
	"bytes"
	"cmp"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnsupportedValue is returned when a value cannot be stored in a document.
var ErrUnsupportedValue = errors.New("unsupported value")

// Normalize converts the given value into one of the types a document can hold.
//
// Integers become int64, floats become float64, maps with string keys become
// Document and slices become []any. Times are truncated to millisecond
// precision and converted to UTC.
func Normalize(value any) (any, error) {
	switch t := value.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case bool:
		return t, nil
	case int64:
		return t, nil
	case float64:
		return t, nil
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint:
		return normalizeUint(uint64(t))
	case uint64:
		return normalizeUint(t)
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedValue, "number %s", t)
		}
		return f, nil
	case ID:
		return t, nil
	case time.Time:
		return t.UTC().Truncate(time.Millisecond), nil
	case primitive.DateTime:
		return t.Time().UTC(), nil
	case []byte:
		return bytes.Clone(t), nil
	case Document:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case primitive.M:
		return normalizeMap(t)
	case primitive.D:
		doc := make(Document, len(t))
		for _, e := range t {
			if err := checkKey(e.Key); err != nil {
				return nil, err
			}
			v, err := Normalize(e.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", e.Key)
			}
			doc[e.Key] = v
		}
		return doc, nil
	case []any:
		return normalizeList(t)
	case primitive.A:
		return normalizeList(t)
	}
	return normalizeReflect(value)
}

func normalizeUint(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, errors.Wrapf(ErrUnsupportedValue, "integer %d overflows int64", v)
	}
	return int64(v), nil
}

func normalizeMap(m map[string]any) (Document, error) {
	doc := make(Document, len(m))
	for k, v := range m {
		if err := checkKey(k); err != nil {
			return nil, err
		}
		nv, err := Normalize(v)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", k)
		}
		doc[k] = nv
	}
	return doc, nil
}

func normalizeList(l []any) ([]any, error) {
	out := make([]any, len(l))
	for i, v := range l {
		nv, err := Normalize(v)
		if err != nil {
			return nil, errors.Wrapf(err, "index %d", i)
		}
		out[i] = nv
	}
	return out, nil
}

// checkKey rejects field names that can not be stored in a BSON document.
func checkKey(k string) error {
	if strings.IndexByte(k, 0) >= 0 {
		return errors.Wrapf(ErrUnsupportedValue, "field %q contains a null byte", k)
	}
	return nil
}

// normalizeReflect handles typed slices and maps such as []string or map[string]int.
func normalizeReflect(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			v, err := Normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = v
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		doc := make(Document, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			if err := checkKey(k); err != nil {
				return nil, err
			}
			v, err := Normalize(iter.Value().Interface())
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", k)
			}
			doc[k] = v
		}
		return doc, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedValue, "type %T", value)
}

// Equal returns true if the given normalized scalar values are equal.
//
// Numbers compare by numeric value regardless of int64 or float64 representation.
// Documents and lists are never equal; matching is limited to scalar values.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case int64:
		switch y := b.(type) {
		case int64:
			return x == y
		case float64:
			return float64(x) == y
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return x == float64(y)
		case float64:
			return x == y
		}
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case ID:
		y, ok := b.(ID)
		return ok && x == y
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	}
	return false
}

// rank orders value types the same way BSON comparison does.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int64, float64:
		return 1
	case string:
		return 2
	case Document:
		return 3
	case []any:
		return 4
	case []byte:
		return 5
	case ID:
		return 6
	case bool:
		return 7
	case time.Time:
		return 8
	default:
		return 9
	}
}

// Compare returns the ordering of two normalized values.
//
// Values of different types are ordered by type: null, numbers, strings,
// documents, lists, binary, ids, booleans and then times.
func Compare(a, b any) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
		return cmp.Compare(float64(x), b.(float64))
	case float64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, float64(y))
		}
		return cmp.Compare(x, b.(float64))
	case string:
		return strings.Compare(x, b.(string))
	case Document:
		return cmp.Compare(len(x), len(b.(Document)))
	case []any:
		return cmp.Compare(len(x), len(b.([]any)))
	case []byte:
		return bytes.Compare(x, b.([]byte))
	case ID:
		y := b.(ID)
		return bytes.Compare(x[:], y[:])
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}
