// Package sceneio reads and writes the editor's JSON scene format.
package sceneio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"

	"github.com/slighter12/modelweb-mcp-go/scene"
)

// FormatVersion is written into every document. Reading accepts any 1.x.
const FormatVersion = "1.0"

var readableVersions = mustConstraint("^1.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

func checkVersion(v string) error {
	parsed, err := semver.NewVersion(v)
	if err != nil || !readableVersions.Check(parsed) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	return nil
}

var (
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrUnsupportedVersion = errors.New("unsupported scene format version")
	ErrUnknownNodeType    = errors.New("unknown node type")
)

// Document is the top-level JSON scene.
type Document struct {
	Version    string   `json:"version"`
	Name       string   `json:"name"`
	Background string   `json:"background,omitempty"`
	Objects    []Object `json:"objects"`
}

// Object is one serialized node with its subtree.
type Object struct {
	UUID     string          `json:"uuid"`
	Type     scene.NodeType  `json:"type"`
	Name     string          `json:"name"`
	Position [3]float64      `json:"position"`
	Rotation [3]float64      `json:"rotation"`
	Scale    [3]float64      `json:"scale"`
	Visible  bool            `json:"visible"`
	Material *Material       `json:"material,omitempty"`
	Geometry *scene.Geometry `json:"geometry,omitempty"`
	Light    *scene.Light    `json:"light,omitempty"`
	Children []Object        `json:"children"`
}

// Material is the serialized form of scene.Material.
type Material struct {
	Type        string      `json:"type"`
	Color       scene.Color `json:"color"`
	Roughness   float64     `json:"roughness"`
	Metalness   float64     `json:"metalness"`
	Opacity     float64     `json:"opacity"`
	Transparent bool        `json:"transparent"`
	Wireframe   bool        `json:"wireframe"`
}

var knownTypes = map[scene.NodeType]bool{
	scene.TypeGroup:             true,
	scene.TypeMesh:              true,
	scene.TypeAmbientLight:      true,
	scene.TypeDirectionalLight:  true,
	scene.TypePointLight:        true,
	scene.TypeSpotLight:         true,
	scene.TypeHemisphereLight:   true,
	scene.TypePerspectiveCamera: true,
}

// Serialize renders s as indented JSON terminated by a newline.
func Serialize(s *scene.Scene) ([]byte, error) {
	doc := Document{Version: FormatVersion, Name: s.Name(), Objects: []Object{}}
	if s.Background != nil {
		doc.Background = s.Background.HexString()
	}
	for _, child := range s.Root.Children() {
		doc.Objects = append(doc.Objects, encodeNode(child))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNode(n *scene.Node) Object {
	obj := Object{
		UUID:     n.ID,
		Type:     n.Type,
		Name:     n.Name,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
		Visible:  n.Visible,
		Geometry: n.Geometry,
		Light:    n.Light,
		Children: []Object{},
	}
	if n.Material != nil {
		obj.Material = &Material{}
		// Same-named fields only; the update counter stays in memory.
		_ = copier.Copy(obj.Material, n.Material)
	}
	for _, child := range n.Children() {
		obj.Children = append(obj.Children, encodeNode(child))
	}
	return obj
}

// Deserialize rebuilds a scene from JSON produced by Serialize.
func Deserialize(data []byte) (*scene.Scene, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	s := scene.New(doc.Name)
	if doc.Background != "" {
		bg, err := scene.ParseColor(doc.Background)
		if err != nil {
			return nil, fmt.Errorf("decode background: %w", err)
		}
		s.Background = &bg
	}
	for _, obj := range doc.Objects {
		node, err := decodeObject(obj)
		if err != nil {
			return nil, err
		}
		s.Add(node)
	}
	return s, nil
}

func decodeObject(obj Object) (*scene.Node, error) {
	if !knownTypes[obj.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, obj.Type)
	}
	n := scene.NewNode(obj.Name, obj.Type)
	if obj.UUID != "" {
		n.ID = obj.UUID
	}
	n.Position = mgl64.Vec3(obj.Position)
	n.Rotation = mgl64.Vec3(obj.Rotation)
	n.Scale = mgl64.Vec3(obj.Scale)
	n.Visible = obj.Visible
	n.Geometry = obj.Geometry
	n.Light = obj.Light
	if obj.Material != nil {
		n.Material = &scene.Material{}
		if err := copier.Copy(n.Material, obj.Material); err != nil {
			return nil, fmt.Errorf("decode material of %q: %w", obj.Name, err)
		}
	}
	for _, childObj := range obj.Children {
		child, err := decodeObject(childObj)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// ExportModel encodes s in the requested format. Only the native "json"
// format is produced here; binary interchange formats belong to the engine.
func ExportModel(s *scene.Scene, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "":
		return Serialize(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// LoadFile reads a scene document from disk.
func LoadFile(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}

// SaveFile writes s to path, creating parent directories.
func SaveFile(path string, s *scene.Scene) error {
	data, err := Serialize(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
