package connector

import (
	"reflect"
)

// ShallowEqual reports whether two props maps have the same keys and equal
// values. Functions compare by pointer and maps and slices one level deep.
func ShallowEqual(a, b Props) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !shallowValueEqual(av, bv) {
			return false
		}
	}
	return true
}

func shallowValueEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Func:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		if va.IsNil() != vb.IsNil() || va.Len() != vb.Len() {
			return false
		}
		for i := 0; i < va.Len(); i++ {
			if !elementEqual(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.IsNil() != vb.IsNil() || va.Len() != vb.Len() {
			return false
		}
		iter := va.MapRange()
		for iter.Next() {
			other := vb.MapIndex(iter.Key())
			if !other.IsValid() || !elementEqual(iter.Value(), other) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func elementEqual(a, b reflect.Value) bool {
	if a.Kind() == reflect.Func || b.Kind() == reflect.Func {
		return a.Pointer() == b.Pointer()
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}
