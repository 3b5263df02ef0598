package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantTool   string
		wantServer string
		wantArgs   string
		wantErr    bool
	}{
		{
			name:       "full block with surrounding text",
			text:       "I'll open the feed.\n<tool><server_name>local</server_name><tool_name>browser_navigate</tool_name><arguments><url>https://www.linkedin.com/feed/</url></arguments></tool>\n",
			wantTool:   "browser_navigate",
			wantServer: "local",
			wantArgs:   "<arguments><url>https://www.linkedin.com/feed/</url></arguments>",
		},
		{
			name:       "server name defaults",
			text:       "<tool><tool_name> browser_go_back </tool_name><arguments></arguments></tool>",
			wantTool:   "browser_go_back",
			wantServer: DefaultServerName,
			wantArgs:   "<arguments></arguments>",
		},
		{
			name:       "bare ampersand in url",
			text:       "<tool><tool_name>browser_navigate</tool_name><arguments><url>https://x.com/?a=1&b=2</url></arguments></tool>",
			wantTool:   "browser_navigate",
			wantServer: DefaultServerName,
			wantArgs:   "<arguments><url>https://x.com/?a=1&amp;b=2</url></arguments>",
		},
		{name: "missing tool name", text: "<tool><arguments></arguments></tool>", wantErr: true},
		{name: "no block", text: "just talking", wantErr: true},
		{name: "unterminated", text: "<tool><tool_name>x</tool_name>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := ParseToolCall(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTool, call.ToolName)
			assert.Equal(t, tt.wantServer, call.ServerName)
			assert.Equal(t, tt.wantArgs, string(call.ArgumentsXML()))
		})
	}
}

func TestParseToolCall_NoBlockSentinel(t *testing.T) {
	_, err := ParseToolCall("nothing here")
	assert.ErrorIs(t, err, ErrNoToolCall)
	assert.False(t, HasToolCall("nothing here"))
	assert.True(t, HasToolCall("<tool><tool_name>a</tool_name></tool>"))
}

func TestEscapeBareAmpersands(t *testing.T) {
	in := `a & b &amp; c &lt; &#38; &#x26; &#; &x`
	want := `a &amp; b &amp; c &lt; &#38; &#x26; &amp;#; &amp;x`
	assert.Equal(t, want, string(escapeBareAmpersands([]byte(in))))
}

func TestUnmarshalXMLWithFallback(t *testing.T) {
	var v struct {
		Text string `xml:"text"`
	}
	require.NoError(t, UnmarshalXMLWithFallback([]byte(`<arguments><text>Fish & chips</text></arguments>`), &v))
	assert.Equal(t, "Fish & chips", v.Text)

	assert.Error(t, UnmarshalXMLWithFallback([]byte(`<arguments><text>broken</arguments>`), &v))
}

func TestXMLToMap(t *testing.T) {
	m, err := XMLToMap([]byte(`<arguments>
  <selector> #post-button </selector>
  <empty></empty>
  <text>Hola 👋 &amp; bienvenidos</text>
</arguments>`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"selector": "#post-button",
		"text":     "Hola 👋 & bienvenidos",
	}, m)
}
