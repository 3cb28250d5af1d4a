package ul

import (
	"fmt"
	"reflect"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// Marshaller handles conversion between Go and interpreter values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value: numbers become Number, string String, bool
// Bool, nil Nil, and slices or arrays a List.
func (m *Marshaller) ToValue(val interface{}) (ast.Value, error) {
	if val == nil {
		return ast.NIL, nil
	}
	if v, ok := val.(ast.Value); ok {
		return v, nil
	}

	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ast.NIL, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &ast.Number{Value: float64(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &ast.Number{Value: float64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &ast.Number{Value: v.Float()}, nil
	case reflect.Bool:
		return ast.NewBool(v.Bool()), nil
	case reflect.String:
		return &ast.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToList(v)
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

func (m *Marshaller) sliceToList(v reflect.Value) (*ast.List, error) {
	elements := make([]ast.Entity, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elements[i] = val
	}
	return &ast.List{Elements: elements}, nil
}

// FromValue converts a value to Go. targetType is optional; without it
// numbers become float64 and lists []interface{}.
func (m *Marshaller) FromValue(val ast.Value, targetType reflect.Type) (interface{}, error) {
	if targetType != nil && targetType.Kind() == reflect.Interface && targetType.NumMethod() == 0 {
		targetType = nil
	}

	switch v := val.(type) {
	case *ast.Nil:
		return nil, nil
	case *ast.Number:
		if targetType == nil {
			return v.Value, nil
		}
		switch targetType.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return reflect.ValueOf(v.Value).Convert(targetType).Interface(), nil
		}
	case *ast.String:
		if targetType == nil {
			return v.Value, nil
		}
		if targetType.Kind() == reflect.String {
			return reflect.ValueOf(v.Value).Convert(targetType).Interface(), nil
		}
	case *ast.Bool:
		if targetType == nil {
			return v.Value, nil
		}
		if targetType.Kind() == reflect.Bool {
			return reflect.ValueOf(v.Value).Convert(targetType).Interface(), nil
		}
	case *ast.List:
		return m.listToSlice(v, targetType)
	default:
		return nil, fmt.Errorf("unsupported value type %s", val.Datatype())
	}
	return nil, fmt.Errorf("cannot convert %s to %s", val.Datatype(), targetType)
}

func (m *Marshaller) listToSlice(l *ast.List, targetType reflect.Type) (interface{}, error) {
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil {
		if targetType.Kind() != reflect.Slice {
			return nil, fmt.Errorf("cannot convert List to %s", targetType)
		}
		elemType = targetType.Elem()
	}

	sliceType := reflect.SliceOf(elemType)
	if targetType != nil {
		sliceType = targetType
	}
	slice := reflect.MakeSlice(sliceType, 0, len(l.Elements))
	for i, el := range l.Elements {
		val, ok := el.(ast.Value)
		if !ok {
			// Lists keep unevaluated syntax as written.
			val = &ast.String{Value: el.String()}
		}
		out, err := m.FromValue(val, elemType)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if out == nil {
			slice = reflect.Append(slice, reflect.Zero(elemType))
			continue
		}
		slice = reflect.Append(slice, reflect.ValueOf(out))
	}
	return slice.Interface(), nil
}
