package db

import (
	"html"
	"reflect"

	"github.com/nickyhof/GateDB/core"
)

// sanitize HTML-escapes every string leaf of value, descending into
// records, maps and slices.
func sanitize(value any) any {
	switch v := value.(type) {
	case string:
		return html.EscapeString(v)
	case []byte:
		return html.EscapeString(string(v))
	case core.Record:
		out := make(core.Record, len(v))
		for key, item := range v {
			out[key] = sanitize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = sanitize(item)
		}
		return out
	case []core.Record:
		out := make([]core.Record, len(v))
		for i, record := range v {
			out[i] = sanitize(record).(core.Record)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitize(item)
		}
		return out
	default:
		return sanitizeReflect(value)
	}
}

// sanitizeReflect covers driver containers such as duckdb.Map. The
// container keeps its type; elements that cannot hold the escaped value
// are left as they are.
func sanitizeReflect(value any) any {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)

	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return value
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), sanitizedElem(iter.Value(), v.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return value
		}
		var out reflect.Value
		if v.Kind() == reflect.Slice {
			out = reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		} else {
			out = reflect.New(v.Type()).Elem()
		}
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(sanitizedElem(v.Index(i), v.Type().Elem()))
		}
		return out.Interface()
	case reflect.String:
		escaped := reflect.ValueOf(html.EscapeString(v.String()))
		return escaped.Convert(v.Type()).Interface()
	default:
		return value
	}
}

func sanitizedElem(elem reflect.Value, elemType reflect.Type) reflect.Value {
	if elem.Kind() == reflect.Interface && elem.IsNil() {
		return elem
	}
	sanitized := reflect.ValueOf(sanitize(elem.Interface()))
	if !sanitized.IsValid() {
		return reflect.Zero(elemType)
	}
	if sanitized.Type().AssignableTo(elemType) {
		return sanitized
	}
	return elem
}
