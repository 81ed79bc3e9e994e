package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Document is a schemaless JSON value stored alongside audit rows.
// Encoding never fails and decoding never fails: corrupt content reads as
// an empty map.
type Document datatypes.JSON

// EncodeDocument serializes v, coercing values JSON cannot represent
// (times, channels, NaN, Stringers) into strings.
func EncodeDocument(v any) Document {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(coerce(v, 0))
	if err != nil {
		data, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return Document(data)
}

// Map decodes the document, returning an empty map when it is empty or corrupt.
func (d Document) Map() map[string]any {
	if len(d) == 0 {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(d, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

func (d Document) IsEmpty() bool {
	return len(d) == 0
}

func (d Document) Value() (driver.Value, error) {
	return datatypes.JSON(d).Value()
}

func (d *Document) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	var j datatypes.JSON
	if err := j.Scan(value); err != nil {
		return err
	}
	*d = Document(j)
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(d) {
		return []byte("{}"), nil
	}
	return []byte(d), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

func (Document) GormDataType() string {
	return datatypes.JSON(nil).GormDataType()
}

func (Document) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON(nil).GormDBDataType(db, field)
}

// maxDocumentDepth bounds nesting so self-referencing maps and slices
// still encode.
const maxDocumentDepth = 32

const truncatedValue = "[max depth exceeded]"

func coerce(v any, depth int) any {
	if depth > maxDocumentDepth {
		return truncatedValue
	}
	switch t := v.(type) {
	case nil, bool, string, json.Number, json.RawMessage:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339)
	case Document:
		return t.Map()
	case []byte:
		return string(t)
	case error:
		return t.Error()
	case json.Marshaler:
		if _, err := json.Marshal(t); err == nil {
			return t
		}
		return fmt.Sprint(t)
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return v
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return coerce(rv.Elem().Interface(), depth+1)
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = coerce(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = coerce(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Sprint(v)
		}
		return decoded
	}
	return fmt.Sprint(v)
}
