package tools

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultServerName is assumed when <server_name> is omitted.
	DefaultServerName = "local"

	maxToolCallSize = 10 * 1024 * 1024
	toolOpen        = "<tool>"
	toolClose       = "</tool>"
)

// ErrNoToolCall is returned when the text has no complete <tool> block.
var ErrNoToolCall = errors.New("no tool call found in text")

// ParseToolCall decodes the first <tool> block in text.
func ParseToolCall(text string) (*ToolCall, error) {
	if len(text) > maxToolCallSize {
		return nil, fmt.Errorf("tool call XML exceeds maximum size of %d bytes", maxToolCallSize)
	}

	block, ok := firstToolBlock(text)
	if !ok {
		return nil, ErrNoToolCall
	}

	var call ToolCall
	if err := UnmarshalXMLWithFallback([]byte(block), &call); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool call XML: %w\nXML snippet: %s", err, snippet(block, 200))
	}

	call.ToolName = strings.TrimSpace(call.ToolName)
	call.ServerName = strings.TrimSpace(call.ServerName)
	if call.ToolName == "" {
		return nil, errors.New("tool_name is required in tool call")
	}
	if call.ServerName == "" {
		call.ServerName = DefaultServerName
	}
	return &call, nil
}

// HasToolCall reports whether text contains a complete <tool> block.
func HasToolCall(text string) bool {
	_, ok := firstToolBlock(text)
	return ok
}

func firstToolBlock(text string) (string, bool) {
	start := strings.Index(text, toolOpen)
	if start < 0 {
		return "", false
	}
	end := strings.Index(text[start:], toolClose)
	if end < 0 {
		return "", false
	}
	return text[start : start+end+len(toolClose)], true
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// UnmarshalXMLWithFallback unmarshals data, retrying once with bare
// ampersands escaped. Models frequently write "Q&A" or URLs with query
// strings without escaping them.
func UnmarshalXMLWithFallback(data []byte, v interface{}) error {
	err := xml.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if !bytes.ContainsRune(data, '&') {
		return err
	}
	return xml.Unmarshal(escapeBareAmpersands(data), v)
}

var knownEntities = []string{"amp;", "lt;", "gt;", "quot;", "apos;"}

func escapeBareAmpersands(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + 16)
	for i := 0; i < len(data); i++ {
		if data[i] == '&' && !isEntityAt(data[i+1:]) {
			out.WriteString("&amp;")
			continue
		}
		out.WriteByte(data[i])
	}
	return out.Bytes()
}

func isEntityAt(rest []byte) bool {
	for _, e := range knownEntities {
		if bytes.HasPrefix(rest, []byte(e)) {
			return true
		}
	}
	if len(rest) < 3 || rest[0] != '#' {
		return false
	}
	digits := rest[1:]
	hex := false
	if digits[0] == 'x' || digits[0] == 'X' {
		hex = true
		digits = digits[1:]
	}
	n := 0
	for n < len(digits) && isDigit(digits[n], hex) {
		n++
	}
	return n > 0 && n < len(digits) && digits[n] == ';'
}

func isDigit(c byte, hex bool) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case hex && (c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'):
		return true
	}
	return false
}

type argumentFields struct {
	Fields []struct {
		XMLName xml.Name
		Value   string `xml:",chardata"`
	} `xml:",any"`
}

// XMLToMap flattens the direct children of an <arguments> element into a
// map of trimmed text values. Empty elements are left out.
func XMLToMap(data []byte) (map[string]interface{}, error) {
	var args argumentFields
	if err := UnmarshalXMLWithFallback(data, &args); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	result := make(map[string]interface{}, len(args.Fields))
	for _, f := range args.Fields {
		if v := strings.TrimSpace(f.Value); v != "" {
			result[f.XMLName.Local] = v
		}
	}
	return result, nil
}
