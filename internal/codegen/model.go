package codegen

import (
	"github.com/okeefe/mcpbind/internal/schema"
	"github.com/okeefe/mcpbind/internal/strutil"
)

// ModelName derives the parameter container name for a tool: sanitized,
// PascalCased, suffixed "Params". "git-status" becomes "GitStatusParams".
func ModelName(toolName string) string {
	return strutil.ToPascalCase(strutil.Sanitize(toolName)) + "Params"
}

// SynthesizeModel builds the parameter container for a tool. A schema that
// is not an object, or has no properties, yields a valid empty container
// rather than an error. Fields appear in schema declaration order.
func SynthesizeModel(toolName string, node *schema.Node) Model {
	m := Model{
		Name:     ModelName(toolName),
		ToolName: toolName,
	}

	if !node.IsObject() || node.PropertyCount() == 0 {
		return m
	}

	required := node.RequiredSet()
	m.Fields = make([]Field, 0, node.PropertyCount())

	for pair := node.Properties.Oldest(); pair != nil; pair = pair.Next() {
		prop := pair.Value
		field := Field{
			Name:     pair.Key,
			Required: required[pair.Key],
			Type:     Resolve(prop, required[pair.Key]),
		}
		if prop != nil {
			field.Description = prop.Description
		}
		m.Fields = append(m.Fields, field)
	}

	return m
}

// SynthesizeWrapper builds the callable stub description for a tool. The
// qualified identifier joins server and tool name with a double underscore;
// the tool invoker on the other end splits on the same separator.
func SynthesizeWrapper(serverName, toolName, description string, model Model) Wrapper {
	return Wrapper{
		FunctionName: strutil.Sanitize(toolName),
		ToolID:       serverName + "__" + toolName,
		ParamsModel:  model.Name,
		ServerName:   serverName,
		ToolName:     toolName,
		Description:  description,
	}
}
