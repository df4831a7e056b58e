package ctemplate_test

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

const exampleDump = `global dictionary {
   BI_NEWLINE: >
<
   BI_SPACE: > <
};
dictionary 'my example dict (intended for testdata/test.tpl)' {
   DICT_FOO: >87411<
   DICT_INT: >7411<
   DICT_LONG: >7412<
   DICT_TUPLE: >(1, 2, 3)<
   ESCAPE_HTML: ><baz><
   ESCAPE_JS: >'baz'<
   ESCAPE_JSON: >'baz'<
   ESCAPE_XML: >&nbsp;<
   METHOD_FOO: >baz<
   METHOD_INT: >4<
   METHOD_LONG: >5<
   section SECT1 (dict 1 of 1) -->
     dictionary 'empty dictionary' {
     }
   section SECT2 (dict 1 of 1) -->
     dictionary 'empty dictionary' {
     }
   section SUB1 (dict 1 of 2) -->
     dictionary 'my example dict/SUB1#1' {
       SUB_FOO: >bar1<
     }
   section SUB1 (dict 2 of 2) -->
     dictionary 'my example dict/SUB1#2' {
       SUB_FOO: >bar2<
     }
}
`

const exampleExpansion = "\n" +
	"Hallo, das ist ein Täst\n" +
	"GLOBAL_FOO \n" +
	"GLOBAL_INT \n" +
	"GLOBAL_LONG \n" +
	"\n" +
	"METHOD_FOO baz\n" +
	"METHOD_INT 4\n" +
	"METHOD_LONG 5\n" +
	"\n" +
	"DICT_FOO 87411\n" +
	"DICT_INT 7411\n" +
	"DICT_LONG 7412\n" +
	"DICT_TUPLE (1, 2, 3)\n" +
	"\n" +
	"ESCAPE_HTML &lt;baz&gt;\n" +
	`ESCAPE_JS \x27baz\x27` + "\n"

func newTestRegistry(t *testing.T, opts ...ctemplate.Option) *ctemplate.Registry {
	t.Helper()

	return ctemplate.NewRegistry(append([]ctemplate.Option{
		ctemplate.WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)...)
}

// buildExampleDictionary 填充与 testdata/test.tpl 配套的字典。
func buildExampleDictionary(r *ctemplate.Registry, filename string) *ctemplate.Dictionary {
	d := r.NewDictionary("my example dict")
	d.SetFilename(filename)

	d.SetValue("METHOD_FOO", "baz")
	d.SetValue("METHOD_INT", 4)
	d.SetValue("METHOD_LONG", int64(5))

	d.SetValue("ESCAPE_HTML", "<baz>")
	d.SetValue("ESCAPE_XML", "&nbsp;")
	d.SetValue("ESCAPE_JS", "'baz'")
	d.SetValue("ESCAPE_JSON", "'baz'")

	d.Set("DICT_FOO", "87411")
	d.Set("DICT_INT", 7411)
	d.Set("DICT_LONG", int64(7412))
	d.Set("DICT_TUPLE", ctemplate.Tuple{1, 2, 3})

	d.ShowSection("SECT1")
	d.Set("SECT2", true)
	d.Set("SECT3", false)

	d.AddSectionDictionary("SUB1").Set("SUB_FOO", "bar1")
	d.AddSectionDictionary("SUB1").Set("SUB_FOO", "bar2")

	return d
}

func TestDump_Example(t *testing.T) {
	r := newTestRegistry(t)
	d := buildExampleDictionary(r, filepath.Join("testdata", "test.tpl"))

	assert.Equal(t, exampleDump, d.Dump())
}

func TestDump_TemplateGlobalsAndProcessGlobals(t *testing.T) {
	r := newTestRegistry(t)
	r.SetGlobalValue("SITE", "example.org")

	d := r.NewDictionary("page")
	d.SetTemplateGlobalValue("LANG", "en")
	d.SetValue("TITLE", "hello")

	want := `global dictionary {
   BI_NEWLINE: >
<
   BI_SPACE: > <
   SITE: >example.org<
};
template dictionary {
   LANG: >en<
};
dictionary 'page' {
   TITLE: >hello<
}
`
	assert.Equal(t, want, d.Dump())
}

func TestExpand_Example(t *testing.T) {
	r := newTestRegistry(t)
	filename := filepath.Join("testdata", "test.tpl")

	require.NoError(t, r.RegisterTemplate(filename))
	tpl, err := r.GetTemplate(filename, ctemplate.DoNotStrip)
	require.NoError(t, err)
	assert.Equal(t, ctemplate.TSReady, tpl.State())

	d := buildExampleDictionary(r, filename)
	assert.Equal(t, exampleExpansion, tpl.Expand(d))
	assert.Empty(t, r.GetBadSyntaxList(true, ctemplate.DoNotStrip))
}

func TestExpand_ExampleWithGlobals(t *testing.T) {
	r := newTestRegistry(t, ctemplate.WithRootDirectory("testdata"))
	r.SetGlobalValue("GLOBAL_FOO", "bar")
	r.SetGlobalValue("GLOBAL_INT", 1)
	r.SetGlobalValue("GLOBAL_LONG", int64(2))

	tpl, err := r.GetTemplate("test.tpl", ctemplate.DoNotStrip)
	require.NoError(t, err)

	out := tpl.Expand(buildExampleDictionary(r, "test.tpl"))
	assert.Contains(t, out, "GLOBAL_FOO bar\nGLOBAL_INT 1\nGLOBAL_LONG 2\n")
}
