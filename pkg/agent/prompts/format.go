package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/pilot/pkg/agent/tools"
)

// FormatToolSchemas renders tools for the <available_tools> section.
func FormatToolSchemas(list []tools.Tool) string {
	var b strings.Builder
	for _, t := range list {
		b.WriteString(FormatToolSchema(t))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatToolSchema renders one tool: name, description, parameters and an example call.
func FormatToolSchema(t tools.Tool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n", t.Name())
	b.WriteString(t.Description())
	b.WriteString("\n")
	if t.IsLoopBreaking() {
		b.WriteString("(loop-breaking: ends the current turn)\n")
	}

	props, required := schemaParts(t.Schema())
	if len(props) > 0 {
		b.WriteString("Parameters:\n")
		for _, name := range sortedKeys(props) {
			p, _ := props[name].(map[string]interface{})
			typ, _ := p["type"].(string)
			desc, _ := p["description"].(string)
			req := "optional"
			if required[name] {
				req = "required"
			}
			fmt.Fprintf(&b, "- %s (%s, %s): %s\n", name, typ, req, desc)
		}
	}

	b.WriteString("Example:\n")
	b.WriteString(exampleCall(t.Name(), props, required))
	b.WriteString("\n")
	return b.String()
}

func schemaParts(schema map[string]interface{}) (map[string]interface{}, map[string]bool) {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if req, ok := schema["required"].([]string); ok {
		for _, r := range req {
			required[r] = true
		}
	}
	return props, required
}

func exampleCall(name string, props map[string]interface{}, required map[string]bool) string {
	var b strings.Builder
	b.WriteString("<tool>\n<server_name>local</server_name>\n")
	fmt.Fprintf(&b, "<tool_name>%s</tool_name>\n<arguments>\n", name)
	for _, key := range sortedKeys(props) {
		if !required[key] {
			continue
		}
		p, _ := props[key].(map[string]interface{})
		typ, _ := p["type"].(string)
		fmt.Fprintf(&b, "  <%s>%s</%s>\n", key, placeholder(typ), key)
	}
	b.WriteString("</arguments>\n</tool>")
	return b.String()
}

func placeholder(typ string) string {
	switch typ {
	case "integer", "number":
		return "0"
	case "boolean":
		return "true"
	default:
		return "..."
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
