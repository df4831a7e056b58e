package ctemplate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{name: "html entities", fn: ctemplate.EscapeHTML, in: `<a href="x">'&'</a>`, want: "&lt;a href=&quot;x&quot;&gt;&#39;&amp;&#39;&lt;/a&gt;"},
		{name: "html folds whitespace", fn: ctemplate.EscapeHTML, in: "a\r\nb\tc\vd\fe", want: "a  b c d e"},
		{name: "pre keeps whitespace", fn: ctemplate.EscapePre, in: "a\n\tb<", want: "a\n\tb&lt;"},
		{name: "xml nbsp", fn: ctemplate.EscapeXML, in: "&nbsp;", want: "&#160;"},
		{name: "xml entities", fn: ctemplate.EscapeXML, in: `<&'">`, want: "&lt;&amp;&#39;&quot;&gt;"},
		{name: "js quotes", fn: ctemplate.EscapeJS, in: "'baz'", want: `\x27baz\x27`},
		{name: "js specials", fn: ctemplate.EscapeJS, in: "a=b&<>\"\\", want: `a\x3db\x26\x3c\x3e\x22\\`},
		{name: "js controls", fn: ctemplate.EscapeJS, in: "\b\t\n\v\f\r", want: `\b\t\n\x0b\f\r`},
		{name: "js line separators", fn: ctemplate.EscapeJS, in: "a\u2028b\u2029", want: `a\u2028b\u2029`},
		{name: "js keeps unicode", fn: ctemplate.EscapeJS, in: "Täst", want: "Täst"},
		{name: "js keeps invalid utf8", fn: ctemplate.EscapeJS, in: "a\xffb<\xc3", want: "a\xffb\\x3c\xc3"},
		{name: "html keeps invalid utf8", fn: ctemplate.EscapeHTML, in: "a\xff<", want: "a\xff&lt;"},
		{name: "json single quote untouched", fn: ctemplate.EscapeJSON, in: "'baz'", want: "'baz'"},
		{name: "json quotes and slash", fn: ctemplate.EscapeJSON, in: `"a/b\"`, want: `\"a\/b\\\"`},
		{name: "json html chars", fn: ctemplate.EscapeJSON, in: "<&>", want: `\u003C\u0026\u003E`},
		{name: "json controls", fn: ctemplate.EscapeJSON, in: "\x01\n\t", want: `\u0001\n\t`},
		{name: "url query", fn: ctemplate.EscapeURLQuery, in: "a b&c=d/é", want: "a+b%26c%3Dd%2F%C3%A9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestLookupModifier(t *testing.T) {
	tests := map[string]ctemplate.Modifier{
		"h":                 ctemplate.HTMLEscape,
		"html":              ctemplate.HTMLEscape,
		"html_escape":       ctemplate.HTMLEscape,
		"p":                 ctemplate.PreEscape,
		"xml":               ctemplate.XMLEscape,
		"j":                 ctemplate.JavascriptEscape,
		"javascript_escape": ctemplate.JavascriptEscape,
		"o":                 ctemplate.JSONEscape,
		"json_escape":       ctemplate.JSONEscape,
		"u":                 ctemplate.URLQueryEscape,
		"none":              ctemplate.NoEscape,
	}
	for name, want := range tests {
		got, ok := ctemplate.LookupModifier(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ctemplate.LookupModifier("x")
	assert.False(t, ok)
}

func TestModifier_AppliedOncePerMarker(t *testing.T) {
	d := ctemplate.NewRegistry().NewDictionary("d")
	d.SetValue("X", "<'>")

	assert.Equal(t, "&lt;&#39;&gt;", expandText(t, "{{X:h}}", ctemplate.DoNotStrip, d))
	assert.Equal(t, `\x26lt;\x26#39;\x26gt;`, expandText(t, "{{X:h:j}}", ctemplate.DoNotStrip, d))
	assert.Equal(t, "<'>", expandText(t, "{{X:none}}", ctemplate.DoNotStrip, d))
}
