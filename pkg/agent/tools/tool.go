// Package tools defines the contract between the agent loop and the actions it can take.
//
// The LLM invokes a tool by emitting one XML block per turn:
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>browser_navigate</tool_name>
//	<arguments>
//	  <url>https://www.linkedin.com/feed/</url>
//	</arguments>
//	</tool>
package tools

import (
	"context"
	"encoding/xml"
)

// Tool is a capability the agent can invoke.
type Tool interface {
	// Name is the identifier the LLM uses in <tool_name>.
	Name() string

	Description() string

	// Schema describes the accepted arguments as a JSON-schema object.
	Schema() map[string]interface{}

	// Execute runs the tool with the raw <arguments> element. The metadata map
	// is optional and is attached to the tool result event.
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)

	// IsLoopBreaking reports whether a successful call ends the agent turn.
	IsLoopBreaking() bool
}

// ConditionallyVisible is implemented by tools that should only be offered to
// the LLM in some states, e.g. browser tools while no session is open.
type ConditionallyVisible interface {
	ShouldShow() bool
}

// IsVisible reports whether t should be listed in the system prompt.
func IsVisible(t Tool) bool {
	if cv, ok := t.(ConditionallyVisible); ok {
		return cv.ShouldShow()
	}
	return true
}

// ToolCall is a parsed <tool> block.
type ToolCall struct {
	XMLName    xml.Name  `xml:"tool"`
	ServerName string    `xml:"server_name"`
	ToolName   string    `xml:"tool_name"`
	Arguments  RawXMLArg `xml:"arguments"`
}

// RawXMLArg keeps the arguments element undecoded so each tool can
// unmarshal it into its own struct.
type RawXMLArg struct {
	Inner []byte `xml:",innerxml"`
}

// ArgumentsXML returns the arguments wrapped in an <arguments> element.
func (tc *ToolCall) ArgumentsXML() []byte {
	buf := make([]byte, 0, len(tc.Arguments.Inner)+len("<arguments></arguments>"))
	buf = append(buf, "<arguments>"...)
	buf = append(buf, tc.Arguments.Inner...)
	return append(buf, "</arguments>"...)
}

// BaseToolSchema builds the object schema shared by all tools.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Prop is shorthand for a schema property of the given JSON type.
func Prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}
