package manifest

import (
	"fmt"
	"math"
	"strconv"

	"github.com/GriffinCanCode/bundlekit/internal/shared/utils"
)

// object reads typed properties out of a decoded map, tracking the property path
type object struct {
	path   string
	values map[string]any
}

func newObject(path string, v any) (object, error) {
	m, ok := asMap(v)
	if !ok {
		return object{}, propertyError(path, ErrPropertyTypeMismatch, "expected object, got %T", v)
	}
	return object{path: path, values: m}, nil
}

func (o object) prop(key string) string {
	if o.path == "" {
		return key
	}
	return o.path + "." + key
}

func (o object) has(key string) bool {
	v, ok := o.values[key]
	return ok && v != nil
}

// child returns the nested object at key
func (o object) child(key string, required bool) (object, bool, error) {
	if !o.has(key) {
		if required {
			return object{}, false, propertyError(o.prop(key), ErrRequiredPropertyMissing, "")
		}
		return object{}, false, nil
	}
	obj, err := newObject(o.prop(key), o.values[key])
	return obj, err == nil, err
}

// str reads a string of at most max bytes; max <= 0 means unlimited
func (o object) str(key string, required bool, max int) (string, error) {
	if !o.has(key) {
		if required {
			return "", propertyError(o.prop(key), ErrRequiredPropertyMissing, "")
		}
		return "", nil
	}
	s, ok := o.values[key].(string)
	if !ok {
		return "", propertyError(o.prop(key), ErrPropertyTypeMismatch, "expected string, got %T", o.values[key])
	}
	if max > 0 && utils.Exceeds(s, max) {
		return "", propertyError(o.prop(key), ErrPropertySizeExceeded, "%d bytes exceeds %d", len(s), max)
	}
	if required && s == "" {
		return "", propertyError(o.prop(key), ErrRequiredPropertyMissing, "empty value")
	}
	return s, nil
}

// name reads an identifier property limited to utils.MaxNameLength
func (o object) name(key string, required bool) (string, error) {
	return o.str(key, required, utils.MaxNameLength)
}

func (o object) boolean(key string, def bool) (bool, error) {
	if !o.has(key) {
		return def, nil
	}
	b, ok := o.values[key].(bool)
	if !ok {
		return def, propertyError(o.prop(key), ErrPropertyTypeMismatch, "expected boolean, got %T", o.values[key])
	}
	return b, nil
}

func (o object) uint32(key string, required bool) (uint32, error) {
	if !o.has(key) {
		if required {
			return 0, propertyError(o.prop(key), ErrRequiredPropertyMissing, "")
		}
		return 0, nil
	}
	n, ok := toUint32(o.values[key])
	if !ok {
		return 0, propertyError(o.prop(key), ErrPropertyTypeMismatch, "expected unsigned 32-bit integer, got %v", o.values[key])
	}
	return n, nil
}

// scalar reads a string or a number and returns its text form
func (o object) scalar(key string) (string, error) {
	if !o.has(key) {
		return "", nil
	}
	switch v := o.values[key].(type) {
	case string:
		return v, nil
	default:
		if n, ok := toUint32(v); ok {
			return strconv.FormatUint(uint64(n), 10), nil
		}
	}
	return "", propertyError(o.prop(key), ErrPropertyTypeMismatch, "expected string or number, got %T", o.values[key])
}

// list returns the elements of an array property, enforcing utils.MaxListLength
func (o object) list(key string) ([]any, error) {
	if !o.has(key) {
		return nil, nil
	}
	items, ok := o.values[key].([]any)
	if !ok {
		return nil, propertyError(o.prop(key), ErrPropertyTypeMismatch, "expected array, got %T", o.values[key])
	}
	if len(items) > utils.MaxListLength {
		return nil, propertyError(o.prop(key), ErrPropertySizeExceeded, "%d entries exceeds %d", len(items), utils.MaxListLength)
	}
	return items, nil
}

// objects returns the elements of an array of objects
func (o object) objects(key string) ([]object, error) {
	items, err := o.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]object, 0, len(items))
	for i, item := range items {
		obj, err := newObject(fmt.Sprintf("%s[%d]", o.prop(key), i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// strings returns the elements of an array of strings, each limited to utils.MaxNameLength
func (o object) strings(key string) ([]string, error) {
	items, err := o.list(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, propertyError(fmt.Sprintf("%s[%d]", o.prop(key), i), ErrPropertyTypeMismatch, "expected string, got %T", item)
		}
		if utils.Exceeds(s, utils.MaxNameLength) {
			return nil, propertyError(fmt.Sprintf("%s[%d]", o.prop(key), i), ErrPropertySizeExceeded, "%d bytes exceeds %d", len(s), utils.MaxNameLength)
		}
		out = append(out, s)
	}
	return out, nil
}

// asMap normalizes the map shapes produced by the JSON, YAML and TOML decoders
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

// toUint32 accepts the numeric types produced by the decoders.
// JSON yields float64, YAML uint64 or int64, TOML int64.
func toUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > math.MaxUint32 || n != math.Trunc(n) {
			return 0, false
		}
		return uint32(n), true
	case int64:
		if n < 0 || n > math.MaxUint32 {
			return 0, false
		}
		return uint32(n), true
	case uint64:
		if n > math.MaxUint32 {
			return 0, false
		}
		return uint32(n), true
	case int:
		if n < 0 || int64(n) > math.MaxUint32 {
			return 0, false
		}
		return uint32(n), true
	case uint32:
		return n, true
	}
	return 0, false
}
