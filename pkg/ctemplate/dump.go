package ctemplate

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Dump 以确定的、便于阅读的嵌套文本输出整棵字典树。
//
// 输出依次包含：进程全局变量、模板全局变量（非空时）、字典本身。
// 每层的标量按名称字典序排列，段落排在标量之后，子字典按添加顺序编号 "i of N"。
//
//	global dictionary {
//	   BI_NEWLINE: >
//	<
//	   BI_SPACE: > <
//	};
//	dictionary 'page' {
//	   TITLE: >hello<
//	   section ROW (dict 1 of 1) -->
//	     dictionary 'page/ROW#1' {
//	       CELL: >1<
//	     }
//	}
func (d *Dictionary) Dump() string {
	var buf strings.Builder

	buf.WriteString("global dictionary {\n")
	dumpValues(&buf, d.globals.Snapshot(), dumpRootIndent)
	buf.WriteString("};\n")

	if tg := d.root().templateGlobals; len(tg) > 0 {
		buf.WriteString("template dictionary {\n")
		dumpValues(&buf, tg, dumpRootIndent)
		buf.WriteString("};\n")
	}

	dumpDictionary(&buf, d, 0, dumpRootIndent)

	return buf.String()
}

const dumpRootIndent = 3

func dumpDictionary(buf *strings.Builder, d *Dictionary, header, content int) {
	pad(buf, header)
	buf.WriteString("dictionary '")
	buf.WriteString(d.name)
	if d.filename != "" {
		buf.WriteString(" (intended for ")
		buf.WriteString(d.filename)
		buf.WriteString(")")
	}
	buf.WriteString("' {\n")

	dumpValues(buf, d.values, content)

	for _, name := range slices.Sorted(maps.Keys(d.sections)) {
		dicts := d.sections[name]
		for i, child := range dicts {
			pad(buf, content)
			buf.WriteString("section ")
			buf.WriteString(name)
			buf.WriteString(" (dict ")
			buf.WriteString(strconv.Itoa(i + 1))
			buf.WriteString(" of ")
			buf.WriteString(strconv.Itoa(len(dicts)))
			buf.WriteString(") -->\n")
			dumpDictionary(buf, child, content+2, content+4)
		}
	}

	pad(buf, header)
	buf.WriteString("}\n")
}

func dumpValues(buf *strings.Builder, values map[string]string, indent int) {
	for _, key := range slices.Sorted(maps.Keys(values)) {
		pad(buf, indent)
		buf.WriteString(key)
		buf.WriteString(": >")
		buf.WriteString(values[key])
		buf.WriteString("<\n")
	}
}

func pad(buf *strings.Builder, n int) {
	buf.WriteString(strings.Repeat(" ", n))
}
