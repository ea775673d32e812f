// Package data defines the value model that templates are rendered against:
// a tree of maps, lists, and primitives, plus conversion from arbitrary Go
// values and the null-propagating dotted-path lookup used by directives.
package data

import (
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// New converts the given Go value into a template data value.  Maps, slices,
// arrays, structs, and primitives are handled; pointers and interfaces are
// drilled through.  Values with no template representation (channels, funcs)
// convert to Undefined rather than failing.
func New(value interface{}) Value {
	// quick return if we're passed an existing data.Value
	if val, ok := value.(Value); ok {
		return val
	}

	if value == nil {
		return Null{}
	}

	// drill through pointers and interfaces to the underlying type
	var v = reflect.ValueOf(value)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if !v.IsValid() {
		return Null{}
	}

	if v.Type() == timeType {
		return String(v.Interface().(time.Time).Format(time.RFC3339))
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(v.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(v.Float())
	case reflect.Bool:
		return Bool(v.Bool())
	case reflect.String:
		return String(v.String())
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return Null{}
		}
		var list = make(List, v.Len())
		for i := 0; i < v.Len(); i++ {
			list[i] = New(v.Index(i).Interface())
		}
		return list
	case reflect.Map:
		var m = make(Map, v.Len())
		for _, key := range v.MapKeys() {
			if key.Kind() != reflect.String {
				return Undefined{}
			}
			m[key.String()] = New(v.MapIndex(key).Interface())
		}
		return m
	case reflect.Struct:
		var m = make(Map)
		var valType = v.Type()
		for i := 0; i < valType.NumField(); i++ {
			if !v.Field(i).CanInterface() {
				continue
			}
			m[valType.Field(i).Name] = New(v.Field(i).Interface())
		}
		return m
	default:
		return Undefined{}
	}
}
