package scene

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProperty = errors.New("unknown material property")
	ErrInvalidValue    = errors.New("invalid material value")
)

// MaterialProperty is the closed set of material fields that can be edited.
type MaterialProperty string

const (
	PropColor       MaterialProperty = "color"
	PropRoughness   MaterialProperty = "roughness"
	PropMetalness   MaterialProperty = "metalness"
	PropOpacity     MaterialProperty = "opacity"
	PropTransparent MaterialProperty = "transparent"
	PropWireframe   MaterialProperty = "wireframe"
)

// MaterialProperties lists every settable property.
var MaterialProperties = []MaterialProperty{
	PropColor, PropRoughness, PropMetalness, PropOpacity, PropTransparent, PropWireframe,
}

// ParseMaterialProperty rejects names outside the closed set.
func ParseMaterialProperty(name string) (MaterialProperty, error) {
	p := MaterialProperty(strings.TrimSpace(name))
	for _, known := range MaterialProperties {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

func (p MaterialProperty) isScalar() bool {
	return p == PropRoughness || p == PropMetalness || p == PropOpacity
}

func (p MaterialProperty) isFlag() bool {
	return p == PropTransparent || p == PropWireframe
}

// MaterialValue is a tagged value for one MaterialProperty. Only the field
// matching the tag is meaningful.
type MaterialValue struct {
	Property MaterialProperty
	Color    Color
	Scalar   float64
	Flag     bool
}

// ColorValue, ScalarValue and FlagValue are the typed constructors.
func ColorValue(c Color) MaterialValue { return MaterialValue{Property: PropColor, Color: c} }

func ScalarValue(p MaterialProperty, v float64) MaterialValue {
	return MaterialValue{Property: p, Scalar: v}
}

func FlagValue(p MaterialProperty, v bool) MaterialValue {
	return MaterialValue{Property: p, Flag: v}
}

// Any returns the value in its wire representation.
func (v MaterialValue) Any() any {
	switch {
	case v.Property == PropColor:
		return v.Color.HexString()
	case v.Property.isFlag():
		return v.Flag
	default:
		return v.Scalar
	}
}

// ParseMaterialValue converts a decoded parameter into a value for p.
func ParseMaterialValue(p MaterialProperty, raw any) (MaterialValue, error) {
	switch {
	case p == PropColor:
		c, err := ColorFromValue(raw)
		if err != nil {
			return MaterialValue{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return ColorValue(c), nil
	case p.isScalar():
		f, ok := toFloat(raw)
		if !ok {
			return MaterialValue{}, fmt.Errorf("%w: %s expects a number, got %T", ErrInvalidValue, p, raw)
		}
		if f < 0 || f > 1 {
			return MaterialValue{}, fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidValue, p, f)
		}
		return ScalarValue(p, f), nil
	case p.isFlag():
		b, ok := raw.(bool)
		if !ok {
			return MaterialValue{}, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, p, raw)
		}
		return FlagValue(p, b), nil
	default:
		return MaterialValue{}, fmt.Errorf("%w: %q", ErrUnknownProperty, p)
	}
}

// Material mirrors a physically based standard material.
type Material struct {
	Type        string
	Color       Color
	Roughness   float64
	Metalness   float64
	Transparent bool
	Opacity     float64
	Wireframe   bool
	// Version increases every time a property is set; renderers compare it
	// to decide whether to re-upload the material.
	Version int
}

// NewStandardMaterial returns engine defaults with the given color.
func NewStandardMaterial(color Color) *Material {
	return &Material{
		Type:      "MeshStandardMaterial",
		Color:     color,
		Roughness: 1,
		Metalness: 0,
		Opacity:   1,
	}
}

// Get reads the current value of p.
func (m *Material) Get(p MaterialProperty) MaterialValue {
	switch p {
	case PropColor:
		return ColorValue(m.Color)
	case PropRoughness:
		return ScalarValue(p, m.Roughness)
	case PropMetalness:
		return ScalarValue(p, m.Metalness)
	case PropOpacity:
		return ScalarValue(p, m.Opacity)
	case PropTransparent:
		return FlagValue(p, m.Transparent)
	case PropWireframe:
		return FlagValue(p, m.Wireframe)
	}
	return MaterialValue{Property: p}
}

// Set writes v and marks the material for update.
func (m *Material) Set(v MaterialValue) error {
	switch v.Property {
	case PropColor:
		m.Color = v.Color
	case PropRoughness:
		m.Roughness = v.Scalar
	case PropMetalness:
		m.Metalness = v.Scalar
	case PropOpacity:
		m.Opacity = v.Scalar
	case PropTransparent:
		m.Transparent = v.Flag
	case PropWireframe:
		m.Wireframe = v.Flag
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProperty, v.Property)
	}
	m.Version++
	return nil
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
