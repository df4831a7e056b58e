package ctemplate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func expandText(t *testing.T, text string, strip ctemplate.Strip, d *ctemplate.Dictionary) string {
	t.Helper()
	tree, err := ctemplate.Parse(text, strip)
	require.NoError(t, err)

	return (&ctemplate.Expander{}).ExpandString(tree, d)
}

func TestStrip_Modes(t *testing.T) {
	const text = "a\n\n   \n  {{#S}}  \n  b {{X}} \n{{/S}}\nc\n"

	tests := []struct {
		name  string
		strip ctemplate.Strip
		show  bool
		want  string
	}{
		{name: "do not strip", strip: ctemplate.DoNotStrip, show: true, want: "a\n\n   \n    \n  b x \n\nc\n"},
		{name: "blank lines shown", strip: ctemplate.StripBlankLines, show: true, want: "a\n  b x \nc\n"},
		{name: "blank lines hidden", strip: ctemplate.StripBlankLines, show: false, want: "a\nc\n"},
		{name: "whitespace shown", strip: ctemplate.StripWhitespace, show: true, want: "ab xc"},
		{name: "whitespace hidden", strip: ctemplate.StripWhitespace, show: false, want: "ac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ctemplate.NewRegistry().NewDictionary("d")
			if tt.show {
				d.AddSectionDictionary("S").SetValue("X", "x")
			}
			assert.Equal(t, tt.want, expandText(t, text, tt.strip, d))
		})
	}
}

func TestStrip_KeepsCRLF(t *testing.T) {
	const text = "a\r\n\r\n  {{#S}}\r\nb {{X}}\r\n{{/S}}\r\nc"

	d := ctemplate.NewRegistry().NewDictionary("d")
	d.AddSectionDictionary("S").SetValue("X", "x")

	assert.Equal(t, "a\r\nb x\r\nc", expandText(t, text, ctemplate.StripBlankLines, d))
	assert.Equal(t, "ab xc", expandText(t, text, ctemplate.StripWhitespace, d))
}

func TestStrip_VariableOutputUntouched(t *testing.T) {
	d := ctemplate.NewRegistry().NewDictionary("d")
	d.SetValue("X", "  keep\n\n  ")
	assert.Equal(t, "[  keep\n\n  ]", expandText(t, "  [{{X}}]  \n", ctemplate.StripWhitespace, d))
}

func TestStrip_VariableLineIsNotStandalone(t *testing.T) {
	d := ctemplate.NewRegistry().NewDictionary("d")
	d.SetValue("X", "x")
	assert.Equal(t, "  x\n", expandText(t, "  {{X}}\n", ctemplate.StripBlankLines, d))
}

func TestParseStrip(t *testing.T) {
	tests := []struct {
		in      string
		want    ctemplate.Strip
		wantErr bool
	}{
		{in: "", want: ctemplate.DoNotStrip},
		{in: "0", want: ctemplate.DoNotStrip},
		{in: "1", want: ctemplate.StripBlankLines},
		{in: "strip_blank_lines", want: ctemplate.StripBlankLines},
		{in: "2", want: ctemplate.StripWhitespace},
		{in: "STRIP_WHITESPACE", want: ctemplate.StripWhitespace},
		{in: "3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ctemplate.ParseStrip(tt.in)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "STRIP_BLANK_LINES", ctemplate.StripBlankLines.String())
}
