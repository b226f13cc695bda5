package node

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/slighter12/modelweb-mcp-go/history"
	"github.com/slighter12/modelweb-mcp-go/mcp"
	"github.com/slighter12/modelweb-mcp-go/scene"
	"github.com/slighter12/modelweb-mcp-go/session"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
)

var objectNameProperty = types.StringProperty("Exact name of the target object")

// GetObjectInfoTool reports transform, material and geometry of one object.
type GetObjectInfoTool struct{}

func (t *GetObjectInfoTool) Name() string        { return mcp.OpGetObjectInfo }
func (t *GetObjectInfoTool) Description() string { return "Returns details of a named object" }
func (t *GetObjectInfoTool) InputSchema() mcp.InputSchema {
	return types.Schema("Get Object Info", map[string]any{"objectName": objectNameProperty}, "objectName")
}
func (t *GetObjectInfoTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	name, err := params.RequiredString("objectName")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	n, err := types.FindObject(sc, name)
	if err != nil {
		return nil, err
	}

	var material, geometry, light any
	if m := n.Material; m != nil {
		material = map[string]any{
			"type":        m.Type,
			"color":       m.Color.HexString(),
			"wireframe":   m.Wireframe,
			"transparent": m.Transparent,
			"opacity":     m.Opacity,
			"roughness":   m.Roughness,
			"metalness":   m.Metalness,
		}
	}
	if g := n.Geometry; g != nil {
		geometry = map[string]any{"type": g.Type, "vertices": g.Vertices}
	}
	result := map[string]any{
		"name":          n.Name,
		"type":          n.Type,
		"uuid":          n.ID,
		"position":      [3]float64(n.Position),
		"rotation":      [3]float64(n.Rotation),
		"scale":         [3]float64(n.Scale),
		"worldPosition": [3]float64(n.WorldPosition()),
		"visible":       n.Visible,
		"material":      material,
		"geometry":      geometry,
		"children":      n.ChildCount(),
	}
	if l := n.Light; l != nil {
		light = map[string]any{"color": l.Color.HexString(), "intensity": l.Intensity}
		result["light"] = light
	}
	return result, nil
}

// CreateObjectTool adds a primitive, group or light to the scene.
type CreateObjectTool struct{}

func (t *CreateObjectTool) Name() string { return mcp.OpCreateObject }
func (t *CreateObjectTool) Description() string {
	return "Creates a primitive, group or light and adds it to the scene"
}
func (t *CreateObjectTool) InputSchema() mcp.InputSchema {
	return types.Schema("Create Object", map[string]any{
		"type": map[string]any{
			"type":        "string",
			"enum":        scene.PrimitiveKinds(),
			"description": "Kind of object to create",
		},
		"name":       types.StringProperty("Object name; defaults to a unique <Type>_<n>"),
		"position":   types.Vector3Property("Initial position"),
		"rotation":   types.Vector3Property("Initial Euler rotation in radians"),
		"scale":      types.Vector3Property("Initial scale"),
		"color":      types.StringProperty("Material or light color as #rrggbb"),
		"parentName": types.StringProperty("Existing object to attach to; defaults to the scene root"),
	}, "type")
}
func (t *CreateObjectTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	kind, err := params.RequiredString("type")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}

	name, _, err := params.String("name")
	if err != nil {
		return nil, err
	}
	edits, err := parseTransform(params)
	if err != nil {
		return nil, err
	}
	var color *scene.Color
	if params.Has("color") {
		c, err := scene.ColorFromValue(params["color"])
		if err != nil {
			return nil, types.InvalidParamError("color", err)
		}
		color = &c
	}
	parent := sc.Root
	if parentName, ok, err := params.String("parentName"); err != nil {
		return nil, err
	} else if ok {
		if parent, err = types.FindObject(sc, parentName); err != nil {
			return nil, err
		}
	}

	if name == "" {
		name = scene.UniqueName(sc, kind)
	}
	n, err := scene.NewPrimitive(kind, name)
	if err != nil {
		return nil, creationFailed(err)
	}
	edits.applyTo(n)
	if color != nil {
		switch {
		case n.Material != nil:
			n.Material.Color = *color
		case n.Light != nil:
			n.Light.Color = *color
		}
	}

	if err := types.Apply(sess, history.NewAddObjectCommand(parent, n)); err != nil {
		return nil, creationFailed(err)
	}
	return map[string]any{"objectId": n.ID, "name": n.Name}, nil
}

func creationFailed(err error) error {
	return types.WrapToolError(mcp.CodeCreationFailed, "Failed to create object: "+err.Error(), err)
}

// ModifyObjectTool records one command per supplied field.
type ModifyObjectTool struct{}

func (t *ModifyObjectTool) Name() string { return mcp.OpModifyObject }
func (t *ModifyObjectTool) Description() string {
	return "Changes position, rotation, scale or visibility of an object"
}
func (t *ModifyObjectTool) InputSchema() mcp.InputSchema {
	return types.Schema("Modify Object", map[string]any{
		"objectName": objectNameProperty,
		"position":   types.Vector3Property("New position"),
		"rotation":   types.Vector3Property("New Euler rotation in radians"),
		"scale":      types.Vector3Property("New scale"),
		"visible":    map[string]any{"type": "boolean", "description": "New visibility"},
	}, "objectName")
}
func (t *ModifyObjectTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	name, err := params.RequiredString("objectName")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	n, err := types.FindObject(sc, name)
	if err != nil {
		return nil, err
	}

	edits, err := parseTransform(params)
	if err != nil {
		return nil, err
	}
	visible, hasVisible, err := params.Bool("visible")
	if err != nil {
		return nil, err
	}

	cmds := edits.commands(n)
	if hasVisible {
		cmds = append(cmds, history.NewSetVisibilityCommand(n, visible))
	}
	for _, cmd := range cmds {
		if err := types.Apply(sess, cmd); err != nil {
			return nil, types.WrapToolError(mcp.CodeModificationFailed, "Failed to modify object: "+err.Error(), err)
		}
	}
	return map[string]any{"message": fmt.Sprintf("Object %q modified successfully", name)}, nil
}

// DeleteObjectTool detaches an object from its parent.
type DeleteObjectTool struct{}

func (t *DeleteObjectTool) Name() string        { return mcp.OpDeleteObject }
func (t *DeleteObjectTool) Description() string { return "Removes a named object from the scene" }
func (t *DeleteObjectTool) InputSchema() mcp.InputSchema {
	return types.Schema("Delete Object", map[string]any{"objectName": objectNameProperty}, "objectName")
}
func (t *DeleteObjectTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	name, err := params.RequiredString("objectName")
	if err != nil {
		return nil, err
	}
	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	n, err := types.FindObject(sc, name)
	if err != nil {
		return nil, err
	}

	if err := types.Apply(sess, history.NewRemoveObjectCommand(n)); err != nil {
		return nil, types.WrapToolError(mcp.CodeDeletionFailed, "Failed to delete object: "+err.Error(), err)
	}
	return map[string]any{"message": fmt.Sprintf("Object %q deleted successfully", name)}, nil
}

// SetMaterialTool edits one property of an object's material.
type SetMaterialTool struct{}

func (t *SetMaterialTool) Name() string        { return mcp.OpSetMaterial }
func (t *SetMaterialTool) Description() string { return "Sets one material property of an object" }
func (t *SetMaterialTool) InputSchema() mcp.InputSchema {
	props := make([]string, 0, len(scene.MaterialProperties))
	for _, p := range scene.MaterialProperties {
		props = append(props, string(p))
	}
	return types.Schema("Set Material", map[string]any{
		"objectName": objectNameProperty,
		"property":   map[string]any{"type": "string", "enum": props, "description": "Material property"},
		"value":      map[string]any{"description": "#rrggbb for color, 0..1 for scalars, boolean for flags"},
	}, "objectName", "property", "value")
}
func (t *SetMaterialTool) Execute(_ context.Context, sess *session.Session, params types.Params) (any, error) {
	name, err := params.RequiredString("objectName")
	if err != nil {
		return nil, err
	}
	rawProperty, err := params.RequiredString("property")
	if err != nil {
		return nil, err
	}
	if err := params.Require("value"); err != nil {
		return nil, err
	}
	property, err := scene.ParseMaterialProperty(rawProperty)
	if err != nil {
		return nil, types.InvalidParamError("property", err)
	}
	value, err := scene.ParseMaterialValue(property, params["value"])
	if err != nil {
		return nil, types.InvalidParamError("value", err)
	}

	sc, err := types.RequireScene(sess)
	if err != nil {
		return nil, err
	}
	n, err := types.FindObject(sc, name)
	if err != nil {
		return nil, err
	}
	if n.Material == nil {
		return nil, types.NewToolError(mcp.CodeModificationFailed, fmt.Sprintf("Failed to modify object: %q has no material", name))
	}

	if err := types.Apply(sess, history.NewSetMaterialCommand(n.Material, value)); err != nil {
		return nil, types.WrapToolError(mcp.CodeModificationFailed, "Failed to modify object: "+err.Error(), err)
	}
	return map[string]any{
		"message":  fmt.Sprintf("Material %s of %q updated", property, name),
		"property": property,
		"value":    value.Any(),
	}, nil
}

// transformEdits holds the optional transform fields of a request.
type transformEdits struct {
	position, rotation, scale          mgl64.Vec3
	hasPosition, hasRotation, hasScale bool
}

func parseTransform(params types.Params) (transformEdits, error) {
	var e transformEdits
	var err error
	if e.position, e.hasPosition, err = params.Vec3("position"); err != nil {
		return e, err
	}
	if e.rotation, e.hasRotation, err = params.Vec3("rotation"); err != nil {
		return e, err
	}
	if e.scale, e.hasScale, err = params.Vec3("scale"); err != nil {
		return e, err
	}
	return e, nil
}

func (e transformEdits) commands(n *scene.Node) []history.Command {
	var cmds []history.Command
	if e.hasPosition {
		cmds = append(cmds, history.NewMoveCommand(n, e.position))
	}
	if e.hasRotation {
		cmds = append(cmds, history.NewRotateCommand(n, e.rotation))
	}
	if e.hasScale {
		cmds = append(cmds, history.NewScaleCommand(n, e.scale))
	}
	return cmds
}

// applyTo sets fields on a node that is not yet in the scene.
func (e transformEdits) applyTo(n *scene.Node) {
	if e.hasPosition {
		n.Position = e.position
	}
	if e.hasRotation {
		n.Rotation = e.rotation
	}
	if e.hasScale {
		n.Scale = e.scale
	}
}

func GetAllTools() []types.Tool {
	return []types.Tool{
		&GetObjectInfoTool{},
		&CreateObjectTool{},
		&ModifyObjectTool{},
		&DeleteObjectTool{},
		&SetMaterialTool{},
	}
}
