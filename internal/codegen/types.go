package codegen

import "encoding/json"

// ToolDescriptor is the metadata for one remote tool as listed by its
// server. InputSchema holds the raw schema bytes so property order survives
// until decoding. Descriptors are immutable for the duration of one
// generation pass.
type ToolDescriptor struct {
	ServerName  string          `json:"server"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Field is one parameter of a generated container, in schema declaration
// order.
type Field struct {
	Name        string // original property name, also the wire key
	Type        TypeExpr
	Required    bool
	Description string
}

// Model is a named parameter container for one tool.
type Model struct {
	Name     string // e.g. "GitStatusParams"
	ToolName string // original tool name
	Fields   []Field
}

// HasRequired reports whether any field is required. Wrappers for models
// without required fields default their params argument to an empty object.
func (m Model) HasRequired() bool {
	for _, f := range m.Fields {
		if f.Required {
			return true
		}
	}
	return false
}

// Wrapper describes one generated callable stub.
type Wrapper struct {
	FunctionName string // sanitized tool name
	ToolID       string // qualified "{server}__{tool}" identifier
	ParamsModel  string
	ServerName   string
	ToolName     string
	Description  string
}
