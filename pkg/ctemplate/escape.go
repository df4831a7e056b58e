package ctemplate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Modifier 是附加在变量标记上的转义方式，在变量输出时应用一次。
type Modifier string

const (
	NoEscape         Modifier = "none"
	HTMLEscape       Modifier = "html_escape"
	PreEscape        Modifier = "pre_escape"
	XMLEscape        Modifier = "xml_escape"
	JavascriptEscape Modifier = "javascript_escape"
	JSONEscape       Modifier = "json_escape"
	URLQueryEscape   Modifier = "url_query_escape"
)

// modifierAliases 把标记中可写的名称映射到修饰符。
var modifierAliases = map[string]Modifier{
	"none":              NoEscape,
	"h":                 HTMLEscape,
	"html":              HTMLEscape,
	"html_escape":       HTMLEscape,
	"p":                 PreEscape,
	"pre_escape":        PreEscape,
	"xml":               XMLEscape,
	"xml_escape":        XMLEscape,
	"j":                 JavascriptEscape,
	"js":                JavascriptEscape,
	"javascript_escape": JavascriptEscape,
	"o":                 JSONEscape,
	"json":              JSONEscape,
	"json_escape":       JSONEscape,
	"u":                 URLQueryEscape,
	"url_query_escape":  URLQueryEscape,
}

// LookupModifier 按名称（含短名）查找修饰符。
func LookupModifier(name string) (Modifier, bool) {
	m, ok := modifierAliases[name]

	return m, ok
}

// Apply 对 s 应用修饰符。
func (m Modifier) Apply(s string) string {
	switch m {
	case HTMLEscape:
		return EscapeHTML(s)
	case PreEscape:
		return EscapePre(s)
	case XMLEscape:
		return EscapeXML(s)
	case JavascriptEscape:
		return EscapeJS(s)
	case JSONEscape:
		return EscapeJSON(s)
	case URLQueryEscape:
		return EscapeURLQuery(s)
	default:
		return s
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 转义函数
// ═══════════════════════════════════════════════════════════════════════════

// EscapeHTML 转义 & < > " '，并把 \r \n \v \f \t 折叠为空格。
func EscapeHTML(s string) string {
	return escapeHTML(s, true)
}

// EscapePre 与 [EscapeHTML] 相同，但保留空白字符，适合 <pre> 内容。
func EscapePre(s string) string {
	return escapeHTML(s, false)
}

func escapeHTML(s string, foldSpace bool) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '\r', '\n', '\v', '\f', '\t':
			if foldSpace {
				buf.WriteByte(' ')
			} else {
				buf.WriteByte(c)
			}
		default:
			buf.WriteByte(c)
		}
	}

	return buf.String()
}

// EscapeXML 转义 XML 特殊字符；原文中的 &nbsp; 转为数字实体 &#160;。
func EscapeXML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&':
			if strings.HasPrefix(s[i:], "&nbsp;") {
				buf.WriteString("&#160;")
				i += len("&nbsp;") - 1
				continue
			}
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteByte(c)
		}
	}

	return buf.String()
}

// EscapeJS 转义可嵌入 JS 字符串字面量（单引号或双引号）的内容。
//
// 非法 UTF-8 字节原样输出。
func EscapeJS(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteByte(s[i])
			i++

			continue
		}
		i += size

		switch r {
		case '"':
			buf.WriteString(`\x22`)
		case '\'':
			buf.WriteString(`\x27`)
		case '&':
			buf.WriteString(`\x26`)
		case '<':
			buf.WriteString(`\x3c`)
		case '>':
			buf.WriteString(`\x3e`)
		case '=':
			buf.WriteString(`\x3d`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\v':
			buf.WriteString(`\x0b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\r':
			buf.WriteString(`\r`)
		case '\u2028':
			buf.WriteString(`\u2028`)
		case '\u2029':
			buf.WriteString(`\u2029`)
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// EscapeJSON 转义 JSON 字符串字面量中不合法或不安全的字符。
func EscapeJSON(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '/':
			buf.WriteString(`\/`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '<', '>', '&':
			fmt.Fprintf(&buf, `\u%04X`, c)
		default:
			if c < 0x20 {
				fmt.Fprintf(&buf, `\u%04X`, c)
				continue
			}
			buf.WriteByte(c)
		}
	}

	return buf.String()
}

// EscapeURLQuery 按 URL query 参数规则转义。
func EscapeURLQuery(s string) string {
	return url.QueryEscape(s)
}
