package types

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	errNotString = errors.New("expected a string")
	errNotBool   = errors.New("expected a boolean")
	errNotVector = errors.New("expected [x, y, z] or {x, y, z}")
)

// Params are decoded request parameters.
type Params map[string]any

// Has reports whether key was supplied with a non-null value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Require fails with INVALID_PARAMS on the first key that is absent.
// An explicit null counts as supplied.
func (p Params) Require(keys ...string) error {
	for _, key := range keys {
		if _, ok := p[key]; !ok {
			return MissingParamError(key)
		}
	}
	return nil
}

// RequiredString combines Require with a string type check.
func (p Params) RequiredString(key string) (string, error) {
	if err := p.Require(key); err != nil {
		return "", err
	}
	s, ok := p[key].(string)
	if !ok {
		return "", InvalidParamError(key, errNotString)
	}
	return s, nil
}

// String reads an optional string parameter.
func (p Params) String(key string) (string, bool, error) {
	if !p.Has(key) {
		return "", false, nil
	}
	s, ok := p[key].(string)
	if !ok {
		return "", true, InvalidParamError(key, errNotString)
	}
	return s, true, nil
}

// Bool reads an optional boolean parameter.
func (p Params) Bool(key string) (bool, bool, error) {
	if !p.Has(key) {
		return false, false, nil
	}
	b, ok := p[key].(bool)
	if !ok {
		return false, true, InvalidParamError(key, errNotBool)
	}
	return b, true, nil
}

// Vec3 reads an optional vector parameter.
func (p Params) Vec3(key string) (mgl64.Vec3, bool, error) {
	if !p.Has(key) {
		return mgl64.Vec3{}, false, nil
	}
	v, err := ToVec3(p[key])
	if err != nil {
		return mgl64.Vec3{}, true, InvalidParamError(key, err)
	}
	return v, true, nil
}

// ToVec3 accepts arrays of three numbers or {x,y,z} objects.
func ToVec3(raw any) (mgl64.Vec3, error) {
	switch v := raw.(type) {
	case mgl64.Vec3:
		return v, nil
	case [3]float64:
		return mgl64.Vec3(v), nil
	case []float64:
		if len(v) != 3 {
			return mgl64.Vec3{}, errNotVector
		}
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	case []any:
		if len(v) != 3 {
			return mgl64.Vec3{}, errNotVector
		}
		var out mgl64.Vec3
		for i, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return mgl64.Vec3{}, fmt.Errorf("%w: element %d is %T", errNotVector, i, item)
			}
			out[i] = f
		}
		return out, nil
	case map[string]any:
		var out mgl64.Vec3
		for i, axis := range []string{"x", "y", "z"} {
			f, ok := toFloat(v[axis])
			if !ok {
				return mgl64.Vec3{}, fmt.Errorf("%w: missing %s", errNotVector, axis)
			}
			out[i] = f
		}
		return out, nil
	}
	return mgl64.Vec3{}, errNotVector
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
