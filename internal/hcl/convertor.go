package hcl

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter is the HCL-specific implementation of the config.Converter
// interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// exporter is implemented by script values (goja objects) that can turn
// themselves into plain Go data.
type exporter interface {
	Export() any
}

// ErrCircular is returned by ToCtyValue for a value that contains itself.
var ErrCircular = errors.New("circular reference has no cty representation")

// ToCtyValue converts a Go value into its corresponding cty.Value. Functions
// have no cty counterpart and become null.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	return c.toCty(v, make(map[refKey]bool))
}

type refKey struct {
	kind reflect.Kind
	ptr  uintptr
}

// visit marks rv as being on the current conversion path. Only maps, slices
// and pointers can form a cycle.
func visit(path map[refKey]bool, rv reflect.Value) (leave func(), err error) {
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice:
		if rv.IsNil() || (rv.Kind() == reflect.Slice && rv.Len() == 0) {
			return func() {}, nil
		}
	default:
		return func() {}, nil
	}
	key := refKey{kind: rv.Kind(), ptr: rv.Pointer()}
	if path[key] {
		return nil, ErrCircular
	}
	path[key] = true
	return func() { delete(path, key) }, nil
}

func (c *Converter) toCty(v any, path map[refKey]bool) (cty.Value, error) {
	if e, ok := v.(exporter); ok {
		leave, err := visit(path, reflect.ValueOf(e))
		if err != nil {
			return cty.NilVal, err
		}
		defer leave()
		v = e.Export()
	}
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}

	leave, err := visit(path, reflect.ValueOf(v))
	if err != nil {
		return cty.NilVal, err
	}
	defer leave()

	switch x := v.(type) {
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case *big.Float:
		return cty.NumberVal(x), nil
	case map[string]any:
		return c.objectVal(len(x), path, func(yield func(string, any) error) error {
			for k, val := range x {
				if err := yield(k, val); err != nil {
					return err
				}
			}
			return nil
		})
	case []any:
		return c.tupleVal(x, path)
	}

	return c.reflectToCty(reflect.ValueOf(v), path)
}

func (c *Converter) tupleVal(items []any, path map[refKey]bool) (cty.Value, error) {
	elems := make([]cty.Value, 0, len(items))
	for i, val := range items {
		ctyVal, err := c.toCty(val, path)
		if err != nil {
			return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
		}
		elems = append(elems, ctyVal)
	}
	return cty.TupleVal(elems), nil
}

func (c *Converter) objectVal(n int, path map[refKey]bool, each func(yield func(string, any) error) error) (cty.Value, error) {
	attrs := make(map[string]cty.Value, n)
	err := each(func(k string, val any) error {
		ctyVal, err := c.toCty(val, path)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		attrs[k] = ctyVal
		return nil
	})
	if err != nil {
		return cty.NilVal, err
	}
	return cty.ObjectVal(attrs), nil
}

// reflectToCty handles typed Go values from native modules.
func (c *Converter) reflectToCty(rv reflect.Value, path map[refKey]bool) (cty.Value, error) {
	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return c.toCty(rv.Elem().Interface(), path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.NilVal, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		return c.objectVal(rv.Len(), path, func(yield func(string, any) error) error {
			iter := rv.MapRange()
			for iter.Next() {
				if err := yield(iter.Key().String(), iter.Value().Interface()); err != nil {
					return err
				}
			}
			return nil
		})
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return c.tupleVal(elems, path)
	case reflect.Struct:
		// Structs go through their JSON shape so that json tags are honored.
		raw, err := json.Marshal(rv.Interface())
		if err != nil {
			return cty.NilVal, fmt.Errorf("unable to encode %s: %w", rv.Type(), err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return cty.NilVal, err
		}
		return c.toCty(generic, path)
	}

	ty, err := gocty.ImpliedType(rv.Interface())
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type of %s: %w", rv.Type(), err)
	}
	return gocty.ToCtyValue(rv.Interface(), ty)
}

// FromCtyValue converts a cty.Value to plain Go data.
func (c *Converter) FromCtyValue(val cty.Value) (any, error) {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	val, _ = val.Unmark()
	ty := val.Type()

	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			goVal, err := c.FromCtyValue(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = goVal
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			goVal, err := c.FromCtyValue(v)
			if err != nil {
				return nil, err
			}
			out = append(out, goVal)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}
