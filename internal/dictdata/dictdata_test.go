package dictdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/dictdata"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

const pageYAML = `
TITLE: Report
COUNT: 3
RATIO: 0.25
TAGS: [a, b, c]
SHOW_FOOTER: true
HIDE_ME: false
EMPTY_LIST: []
AUTHOR:
  NAME: bob
ROW:
  - CELL: 1
  - CELL: 2
`

func TestBuild_YAML(t *testing.T) {
	d, err := dictdata.Build(ctemplate.NewRegistry(), "page", []byte(pageYAML), dictdata.FormatYAML)
	require.NoError(t, err)

	tests := map[string]string{
		"TITLE": "Report",
		"COUNT": "3",
		"RATIO": "0.25",
		"TAGS":  "(a, b, c)",
	}
	for key, want := range tests {
		got, ok := d.Value(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	assert.False(t, d.IsHiddenSection("SHOW_FOOTER"))
	assert.True(t, d.IsHiddenSection("HIDE_ME"))
	assert.True(t, d.IsHiddenSection("EMPTY_LIST"))

	author := d.SectionDictionaries("AUTHOR")
	require.Len(t, author, 1)
	name, _ := author[0].Value("NAME")
	assert.Equal(t, "bob", name)

	rows := d.SectionDictionaries("ROW")
	require.Len(t, rows, 2)
	cell, _ := rows[1].Value("CELL")
	assert.Equal(t, "2", cell)
	assert.Equal(t, "page/ROW#2", rows[1].Name())
}

func TestBuild_JSONKeepsNumbers(t *testing.T) {
	data := []byte(`{"BIG": 123456789012345678901234567890, "F": 1.50, "ROW": [{"X": "a"}]}`)
	d, err := dictdata.Build(ctemplate.NewRegistry(), "page", data, dictdata.FormatJSON)
	require.NoError(t, err)

	big, _ := d.Value("BIG")
	assert.Equal(t, "123456789012345678901234567890", big)
	f, _ := d.Value("F")
	assert.Equal(t, "1.50", f)
	assert.Len(t, d.SectionDictionaries("ROW"), 1)
}

func TestBuild_YAMLKeepsNumbers(t *testing.T) {
	data := []byte(`
BIG: 123456789012345678901234567890
NEG: -42
F: 1.50
EXP: 1e3
HEX: 0x1F
PLUS: +7
WHEN: 2026-10-19
BASE: &base
  X: from-base
  Y: base-y
CHILD:
  <<: *base
  Y: child-y
`)
	d, err := dictdata.Build(ctemplate.NewRegistry(), "page", data, dictdata.FormatYAML)
	require.NoError(t, err)

	tests := map[string]string{
		"BIG":  "123456789012345678901234567890",
		"NEG":  "-42",
		"F":    "1.50",
		"EXP":  "1e3",
		"HEX":  "31",
		"PLUS": "7",
		"WHEN": "2026-10-19",
	}
	for key, want := range tests {
		got, ok := d.Value(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	child := d.SectionDictionaries("CHILD")
	require.Len(t, child, 1)
	x, _ := child[0].Value("X")
	y, _ := child[0].Value("Y")
	assert.Equal(t, "from-base", x)
	assert.Equal(t, "child-y", y)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format dictdata.Format
		msg    string
	}{
		{name: "root list", data: "- a\n- b\n", format: dictdata.FormatYAML, msg: "root must be a mapping"},
		{name: "mixed list", data: `{"L": [1, {"A": 2}]}`, format: dictdata.FormatJSON, msg: "list mixes mappings and scalars"},
		{name: "bad json", data: `{"A":`, format: dictdata.FormatJSON, msg: "parse json"},
		{name: "bad yaml", data: "A: [1, 2", format: dictdata.FormatYAML, msg: "parse yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dictdata.Build(ctemplate.NewRegistry(), "d", []byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, format := range []dictdata.Format{dictdata.FormatYAML, dictdata.FormatJSON} {
		values, err := dictdata.Parse(nil, format)
		require.NoError(t, err, format.String())
		assert.Empty(t, values)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"A": "x"}`), 0o600))

	d, err := dictdata.LoadFile(ctemplate.NewRegistry(), "file", path)
	require.NoError(t, err)
	v, _ := d.Value("A")
	assert.Equal(t, "x", v)

	_, err = dictdata.LoadFile(ctemplate.NewRegistry(), "file", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestFormatDetection(t *testing.T) {
	assert.Equal(t, dictdata.FormatJSON, dictdata.FormatFromPath("x.JSON"))
	assert.Equal(t, dictdata.FormatYAML, dictdata.FormatFromPath("x.yml"))
	assert.Equal(t, dictdata.FormatJSON, dictdata.FormatFromContentType("application/json; charset=utf-8"))
	assert.Equal(t, dictdata.FormatYAML, dictdata.FormatFromContentType("application/yaml"))
	assert.Equal(t, dictdata.FormatYAML, dictdata.FormatFromContentType(""))
}
