package scene

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported object type")

// Vertex counts match the engine's default tessellation for each geometry.
const (
	boxVertices      = 24
	sphereVertices   = 561
	cylinderVertices = 196
	coneVertices     = 196
	torusVertices    = 637
	planeVertices    = 4
)

var defaultMeshColor = ColorFromHex(0x3080ff)

type primitiveDef struct {
	nodeType  NodeType
	geometry  string
	vertices  int
	intensity float64
}

var primitives = map[string]primitiveDef{
	"cube":             {nodeType: TypeMesh, geometry: "BoxGeometry", vertices: boxVertices},
	"box":              {nodeType: TypeMesh, geometry: "BoxGeometry", vertices: boxVertices},
	"sphere":           {nodeType: TypeMesh, geometry: "SphereGeometry", vertices: sphereVertices},
	"cylinder":         {nodeType: TypeMesh, geometry: "CylinderGeometry", vertices: cylinderVertices},
	"cone":             {nodeType: TypeMesh, geometry: "ConeGeometry", vertices: coneVertices},
	"torus":            {nodeType: TypeMesh, geometry: "TorusGeometry", vertices: torusVertices},
	"plane":            {nodeType: TypeMesh, geometry: "PlaneGeometry", vertices: planeVertices},
	"group":            {nodeType: TypeGroup},
	"ambientlight":     {nodeType: TypeAmbientLight, intensity: 0.5},
	"directionallight": {nodeType: TypeDirectionalLight, intensity: 1},
	"pointlight":       {nodeType: TypePointLight, intensity: 1},
	"spotlight":        {nodeType: TypeSpotLight, intensity: 1},
	"hemispherelight":  {nodeType: TypeHemisphereLight, intensity: 0.6},
}

// PrimitiveKinds returns the accepted kind names in a stable order.
func PrimitiveKinds() []string {
	return []string{
		"cube", "box", "sphere", "cylinder", "cone", "torus", "plane", "group",
		"ambientLight", "directionalLight", "pointLight", "spotLight", "hemisphereLight",
	}
}

// NewPrimitive builds an unattached node for the given toolbar kind.
// Kind matching ignores case.
func NewPrimitive(kind, name string) (*Node, error) {
	def, ok := primitives[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
	node := NewNode(name, def.nodeType)
	switch {
	case def.nodeType == TypeMesh:
		node.Geometry = &Geometry{Type: def.geometry, Vertices: def.vertices}
		node.Material = NewStandardMaterial(defaultMeshColor)
	case def.nodeType.IsLight():
		node.Light = &Light{Color: ColorFromHex(0xffffff), Intensity: def.intensity}
	}
	return node, nil
}
