package tools

import (
	"github.com/slighter12/modelweb-mcp-go/tools/edit"
	"github.com/slighter12/modelweb-mcp-go/tools/node"
	"github.com/slighter12/modelweb-mcp-go/tools/project"
	"github.com/slighter12/modelweb-mcp-go/tools/scene"
	"github.com/slighter12/modelweb-mcp-go/tools/types"
	"github.com/slighter12/modelweb-mcp-go/tools/utility"
)

// GetAllTools returns all available tools from all categories
func GetAllTools() []types.Tool {
	var all []types.Tool
	all = append(all, scene.GetAllTools()...)
	all = append(all, node.GetAllTools()...)
	all = append(all, utility.GetAllTools()...)
	all = append(all, edit.GetAllTools()...)
	all = append(all, project.GetAllTools()...)
	return all
}
