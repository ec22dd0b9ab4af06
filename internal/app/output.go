package app

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// exporter is implemented by script values that can hand out a plain Go
// representation of themselves.
type exporter interface {
	Export() any
}

func (a *App) writeExports(exports []any) error {
	out := make(map[string]any, len(exports))
	for i, id := range a.appConfig.ModuleIDs {
		out[id] = normalize(exports[i])
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode exports: %w", err)
	}
	_, err = fmt.Fprintln(a.outW, string(data))
	return err
}

// circularMarker replaces a value that contains itself.
const circularMarker = "[circular]"

// normalize turns exports into values encoding/json accepts. Functions are
// rendered as a marker string and cyclic references as circularMarker.
func normalize(v any) any {
	return normalizer{path: make(map[refKey]bool)}.walk(v)
}

type refKey struct {
	kind reflect.Kind
	ptr  uintptr
}

// normalizer tracks the maps, slices and script objects on the current path
// from the root. Values shared between siblings are not cycles.
type normalizer struct {
	path map[refKey]bool
}

func (n normalizer) enter(rv reflect.Value) (leave func(), circular bool) {
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer:
	case reflect.Slice:
		if rv.Len() == 0 {
			return func() {}, false
		}
	default:
		return func() {}, false
	}
	if rv.IsNil() {
		return func() {}, false
	}
	key := refKey{kind: rv.Kind(), ptr: rv.Pointer()}
	if n.path[key] {
		return nil, true
	}
	n.path[key] = true
	return func() { delete(n.path, key) }, false
}

func (n normalizer) walk(v any) any {
	if e, ok := v.(exporter); ok {
		leave, circular := n.enter(reflect.ValueOf(e))
		if circular {
			return circularMarker
		}
		defer leave()
		v = e.Export()
	}
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	leave, circular := n.enter(rv)
	if circular {
		return circularMarker
	}
	defer leave()

	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = n.walk(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = n.walk(val)
		}
		return s
	}

	switch rv.Kind() {
	case reflect.Func:
		return "[function]"
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Sprint(v)
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = n.walk(iter.Value().Interface())
		}
		return m
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = n.walk(rv.Index(i).Interface())
		}
		return s
	case reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprint(v)
	}
	return v
}
