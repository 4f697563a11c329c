package codegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okeefe/mcpbind/internal/normalize"
	"github.com/okeefe/mcpbind/internal/strutil"
)

// RenderToolFile renders one tool's source unit: the parameter interface and
// the wrapper function. Pure text building, no I/O.
func RenderToolFile(model Model, w Wrapper) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("/**\n * Generated binding for %s tool %q.\n", w.ServerName, w.ToolName))
	sb.WriteString(" * This file is auto-generated. Do not edit manually.\n */\n\n")
	sb.WriteString(`import { callTool, normalizeFields, serializeParams, unwrapResult } from "../runtime";`)
	sb.WriteString("\n\n")

	renderInterface(&sb, model)
	sb.WriteString("\n")
	renderFunction(&sb, model, w)

	return sb.String()
}

func renderInterface(sb *strings.Builder, model Model) {
	sb.WriteString(fmt.Sprintf("/**\n * Parameters for %q.\n */\n", model.ToolName))
	sb.WriteString(fmt.Sprintf("export interface %s {\n", model.Name))

	for _, f := range model.Fields {
		if f.Description != "" {
			sb.WriteString(fmt.Sprintf("  /** %s */\n", sanitizeComment(f.Description)))
		}
		marker := ""
		if !f.Required {
			marker = "?"
		}
		sb.WriteString(fmt.Sprintf("  %s%s: %s;\n", propertyKey(f.Name), marker, f.Type.Render()))
	}

	sb.WriteString("}\n")
}

func renderFunction(sb *strings.Builder, model Model, w Wrapper) {
	sb.WriteString("/**\n")
	if w.Description != "" {
		sb.WriteString(fmt.Sprintf(" * %s\n", sanitizeComment(w.Description)))
	} else {
		sb.WriteString(fmt.Sprintf(" * Call tool: %s\n", w.ToolName))
	}
	sb.WriteString(" */\n")

	params := fmt.Sprintf("params: %s", w.ParamsModel)
	if !model.HasRequired() {
		params += " = {}"
	}

	sb.WriteString(fmt.Sprintf("export async function %s(%s): Promise<any> {\n", w.FunctionName, params))
	sb.WriteString(fmt.Sprintf("  const result = await callTool(%q, serializeParams(params));\n", w.ToolID))
	sb.WriteString(fmt.Sprintf("  return normalizeFields(unwrapResult(result), %q);\n", w.ServerName))
	sb.WriteString("}\n")
}

// RenderIndexFile renders a server's aggregator unit: one explicit export
// per tool, in input order.
func RenderIndexFile(serverName string, functionNames []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("/**\n * Generated tool index for %s.\n", serverName))
	sb.WriteString(" * This file is auto-generated. Do not edit manually.\n */\n\n")

	for _, name := range functionNames {
		sb.WriteString(fmt.Sprintf("export { %s } from \"./%s\";\n", name, name))
	}

	return sb.String()
}

// RenderCatalog renders the human-readable tool catalog for a server: the
// original (unsanitized) tool names with their descriptions.
func RenderCatalog(serverName string, tools []ToolDescriptor) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s tools\n\n", serverName))
	sb.WriteString(fmt.Sprintf("Auto-generated bindings for the %s server. Do not edit manually.\n\n", serverName))
	sb.WriteString("| Tool | Description |\n|---|---|\n")

	for _, t := range tools {
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		desc = strings.ReplaceAll(desc, "\n", " ")
		desc = strings.ReplaceAll(desc, "|", "\\|")
		sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", t.Name, desc))
	}

	return sb.String()
}

// RenderRootIndex renders the top-level index re-exporting every generated
// server module plus the shared runtime helpers.
func RenderRootIndex(serverNames []string) string {
	var sb strings.Builder

	sb.WriteString("/**\n * Generated tool index.\n")
	sb.WriteString(" * This file is auto-generated. Do not edit manually.\n */\n\n")
	sb.WriteString("export * from \"./runtime\";\n\n")

	for _, name := range serverNames {
		sb.WriteString(fmt.Sprintf("export * as %s from \"./%s\";\n", strutil.Sanitize(name), name))
	}

	return sb.String()
}

// RenderRuntime renders the shared runtime unit: the host invocation bridge,
// parameter serialization, result envelope unwrapping, and field
// normalization with the rules tables embedded at generation time.
func RenderRuntime(rules *normalize.Rules) string {
	renames, styles := rules.RenameTables()

	// Map marshaling sorts keys, so output is deterministic.
	renameJSON, _ := json.Marshal(renames)
	styleJSON, _ := json.Marshal(styles)

	var sb strings.Builder

	sb.WriteString(`/**
 * Shared runtime for generated tool bindings.
 * This file is auto-generated. Do not edit manually.
 */

export type ToolArgs = Record<string, unknown>;

declare global {
  /** Invocation bridge the executing harness must provide. */
  // eslint-disable-next-line no-var
  var __invokeTool: (id: string, args: ToolArgs) => Promise<unknown>;
}

/**
 * Invoke a tool by its qualified "{server}__{tool}" identifier.
 */
export async function callTool(id: string, args: ToolArgs): Promise<unknown> {
  return await globalThis.__invokeTool(id, args);
}

/**
 * Serialize a params object to a plain mapping, dropping fields that were
 * never set. Omitted optionals are not sent to the tool at all, which is how
 * the invoker distinguishes "omitted" from "explicitly null".
 */
export function serializeParams(params: object): ToolArgs {
  const out: ToolArgs = {};
  for (const [key, value] of Object.entries(params)) {
    if (value !== undefined) {
      out[key] = value;
    }
  }
  return out;
}

/**
 * Unwrap a single-level result envelope: a result carrying a "value"
 * property yields that value, anything else passes through.
 */
export function unwrapResult(result: unknown): unknown {
  if (result !== null && typeof result === "object" && "value" in result) {
    return (result as { value: unknown }).value;
  }
  return result;
}

`)

	sb.WriteString(fmt.Sprintf("const RENAME_RULES: Record<string, Record<string, string>> = %s;\n", renameJSON))
	sb.WriteString(fmt.Sprintf("const RENAME_STYLES: Record<string, string> = %s;\n", styleJSON))

	sb.WriteString(`
function toSnakeCase(key: string): string {
  return key.replace(/([a-z0-9])([A-Z])/g, "$1_$2").toLowerCase();
}

function toCamelCase(key: string): string {
  return key.replace(/[_-]([a-zA-Z0-9])/g, (_, c: string) => c.toUpperCase());
}

function renameKey(key: string, server: string): string {
  const renames = RENAME_RULES[server];
  if (renames && key in renames) {
    return renames[key];
  }
  switch (RENAME_STYLES[server]) {
    case "snake":
      return toSnakeCase(key);
    case "camel":
      return toCamelCase(key);
    default:
      return key;
  }
}

/**
 * Rename result fields to the server's canonical convention. Maps and arrays
 * are walked recursively; other values pass through.
 */
export function normalizeFields(value: unknown, server: string): unknown {
  if (Array.isArray(value)) {
    return value.map((item) => normalizeFields(item, server));
  }
  if (value !== null && typeof value === "object") {
    const out: Record<string, unknown> = {};
    for (const [key, inner] of Object.entries(value)) {
      out[renameKey(key, server)] = normalizeFields(inner, server);
    }
    return out;
  }
  return value;
}
`)

	return sb.String()
}

// propertyKey renders an interface property name, quoting it when it is not
// a plain identifier. Property names stay verbatim because they are wire
// keys, not identifiers.
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		digit := r >= '0' && r <= '9'
		if !alpha && !(digit && i > 0) {
			return false
		}
	}
	return true
}

// sanitizeComment keeps tool descriptions from breaking out of JSDoc blocks.
func sanitizeComment(comment string) string {
	comment = strings.ReplaceAll(comment, "*/", `*\/`)
	comment = strings.ReplaceAll(comment, "/*", `/\*`)
	return comment
}
