// Package schema decodes the restricted JSON Schema vocabulary used by tool
// input schemas into an immutable tree. Property declaration order is
// preserved, since generated parameter containers must list fields in the
// order the server declared them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is one schema tree node. Nodes are built once per generation run and
// never mutated afterwards.
type Node struct {
	// Types holds the declared "type" keyword: one entry for a plain type,
	// several for a union like ["string","null"], none when absent.
	Types []string

	// Properties maps property name to schema in declaration order.
	Properties *orderedmap.OrderedMap[string, *Node]

	// Required lists the names of required properties.
	Required []string

	// Items is the element schema for arrays.
	Items *Node

	// AdditionalProps is set when additionalProperties carries a schema.
	// Boolean additionalProperties collapses to the untyped map either way,
	// so it is not recorded.
	AdditionalProps *Node

	// Enum holds declared literal values as decoded, uncoerced.
	Enum []any

	Description string
}

// Kind is the shape classification a resolver dispatches on, resolved once
// per node.
type Kind int

const (
	KindUnknown Kind = iota
	KindNullUnion
	KindMultiUnion
	KindEnum
	KindPrimitive
	KindArray
	KindObjectMap
	KindObjectOpaque
)

// Parse decodes raw schema bytes into a Node. Empty input yields a nil node,
// which every consumer treats as "no schema".
func Parse(raw []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var n Node
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return nil, fmt.Errorf("schema: parse: %w", err)
	}
	return &n, nil
}

type nodeJSON struct {
	Type                 json.RawMessage                       `json:"type"`
	Properties           *orderedmap.OrderedMap[string, *Node] `json:"properties"`
	Required             []string                              `json:"required"`
	Items                *Node                                 `json:"items"`
	AdditionalProperties json.RawMessage                       `json:"additionalProperties"`
	Enum                 []any                                 `json:"enum"`
	Description          string                                `json:"description"`
}

// UnmarshalJSON accepts "type" as either a string or a list of strings and
// "additionalProperties" as either a schema or a boolean.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Properties = raw.Properties
	n.Required = raw.Required
	n.Items = raw.Items
	n.Enum = raw.Enum
	n.Description = raw.Description

	if t := bytes.TrimSpace(raw.Type); len(t) > 0 {
		switch t[0] {
		case '"':
			var s string
			if err := json.Unmarshal(t, &s); err != nil {
				return err
			}
			n.Types = []string{s}
		case '[':
			var list []string
			if err := json.Unmarshal(t, &list); err != nil {
				return err
			}
			n.Types = list
		}
	}

	if ap := bytes.TrimSpace(raw.AdditionalProperties); len(ap) > 0 && ap[0] == '{' {
		var sub Node
		if err := json.Unmarshal(ap, &sub); err != nil {
			return err
		}
		n.AdditionalProps = &sub
	}

	return nil
}

var primitiveTypes = map[string]struct{}{
	"string": {}, "number": {}, "integer": {}, "boolean": {}, "null": {},
}

// Kind classifies the node. Union checks come first so that an enum inside a
// ["T","null"] union is only seen after the null is stripped; a missing type
// keyword is treated as "object", matching the common loose schemas emitted
// by tool servers.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindUnknown
	}

	if len(n.Types) > 1 {
		if slices.Contains(n.Types, "null") {
			return KindNullUnion
		}
		return KindMultiUnion
	}

	if len(n.Enum) > 0 {
		return KindEnum
	}

	declared := "object"
	if len(n.Types) == 1 {
		declared = n.Types[0]
	}

	if _, ok := primitiveTypes[declared]; ok {
		return KindPrimitive
	}

	switch declared {
	case "array":
		return KindArray
	case "object":
		if n.AdditionalProps != nil {
			return KindObjectMap
		}
		return KindObjectOpaque
	default:
		return KindUnknown
	}
}

// Residual returns a copy of the node with "null" stripped from the type
// union, plus the count of remaining types. Sibling keywords (enum, items,
// additionalProperties) are kept so the residual type resolves with them
// intact.
func (n *Node) Residual() (*Node, int) {
	rest := make([]string, 0, len(n.Types))
	for _, t := range n.Types {
		if t != "null" {
			rest = append(rest, t)
		}
	}

	copy := *n
	copy.Types = rest
	return &copy, len(rest)
}

// IsObject reports whether the node is an object schema. A missing type
// keyword counts, consistent with Kind. Only object schemas produce
// parameter fields.
func (n *Node) IsObject() bool {
	if n == nil {
		return false
	}
	if len(n.Types) == 0 {
		return true
	}
	return len(n.Types) == 1 && n.Types[0] == "object"
}

// PropertyCount returns the number of declared properties.
func (n *Node) PropertyCount() int {
	if n == nil || n.Properties == nil {
		return 0
	}
	return n.Properties.Len()
}

// RequiredSet returns required property names as a set.
func (n *Node) RequiredSet() map[string]bool {
	set := make(map[string]bool, len(n.Required))
	for _, name := range n.Required {
		set[name] = true
	}
	return set
}
