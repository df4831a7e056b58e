package ctemplate

import (
	"fmt"
	"strings"
)

const (
	defaultOpen  = "{{"
	defaultClose = "}}"
)

// IncludeResolver 在解析期为 {{>NAME}} 提供子模板。nil 表示不支持包含。
type IncludeResolver func(name string) (*Tree, error)

// Parse 把模板文本编译为解析树。不支持 {{>NAME}} 包含。
func Parse(text string, strip Strip) (*Tree, error) {
	return ParseNamed("", text, strip, nil)
}

// ParseNamed 编译模板文本，name 用于错误信息，resolve 用于解析包含标记。
//
// 解析会收集全部语法问题后一次性返回 *SyntaxError。
func ParseNamed(name, text string, strip Strip, resolve IncludeResolver) (*Tree, error) {
	p := &parser{
		name:    name,
		text:    stripText(text, strip),
		line:    1,
		open:    defaultOpen,
		close:   defaultClose,
		resolve: resolve,
		stack:   []*frame{{}},
	}
	p.run()

	if len(p.problems) > 0 {
		return nil, &SyntaxError{Name: name, Problems: p.problems}
	}

	return &Tree{Name: name, Strip: strip, Nodes: p.stack[0].nodes}, nil
}

// frame 是一个尚未闭合的段落。
type frame struct {
	name  string
	line  int
	nodes []Node
}

type parser struct {
	name     string
	text     string
	pos      int
	line     int
	open     string
	close    string
	resolve  IncludeResolver
	stack    []*frame
	problems []Problem
}

func (p *parser) run() {
	for p.pos < len(p.text) {
		rest := p.text[p.pos:]
		start := strings.Index(rest, p.open)
		if start < 0 {
			p.addText(rest)
			p.advance(len(rest))

			break
		}
		p.addText(rest[:start])
		p.advance(start)

		rest = p.text[p.pos+len(p.open):]
		end := strings.Index(rest, p.close)
		if end < 0 {
			p.problem(p.open+firstLine(rest), "unterminated marker")
			p.advance(len(p.text) - p.pos)

			break
		}

		marker := p.text[p.pos : p.pos+len(p.open)+end+len(p.close)]
		line := p.line
		p.advance(len(marker))
		p.marker(rest[:end], marker, line)
	}

	for _, f := range p.stack[1:] {
		p.problems = append(p.problems, Problem{
			Line:   f.line,
			Marker: defaultOpen + "#" + f.name + defaultClose,
			Msg:    "section is never closed",
		})
	}
}

func (p *parser) marker(body, marker string, line int) {
	body = strings.TrimSpace(body)
	if body == "" {
		p.problemAt(line, marker, "empty marker")

		return
	}

	switch body[0] {
	case '!':
	case '#':
		p.openSection(strings.TrimSpace(body[1:]), marker, line)
	case '/':
		p.closeSection(strings.TrimSpace(body[1:]), marker, line)
	case '>':
		p.include(strings.TrimSpace(body[1:]), marker, line)
	case '=':
		p.setDelimiters(body, marker, line)
	default:
		p.variable(body, marker, line)
	}
}

func (p *parser) openSection(name, marker string, line int) {
	if !validName(name, isNameChar) {
		p.problemAt(line, marker, "invalid section name")

		return
	}
	p.stack = append(p.stack, &frame{name: name, line: line})
}

func (p *parser) closeSection(name, marker string, line int) {
	top := p.stack[len(p.stack)-1]
	if len(p.stack) == 1 || top.name != name {
		msg := "close without matching open"
		if len(p.stack) > 1 {
			msg = fmt.Sprintf("expected %s/%s%s", p.open, top.name, p.close)
		}
		p.problemAt(line, marker, msg)

		return
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.appendNode(&SectionNode{Name: top.name, Children: top.nodes, Line: top.line})
}

func (p *parser) include(name, marker string, line int) {
	if !validName(name, isIncludeChar) {
		p.problemAt(line, marker, "invalid include name")

		return
	}
	if p.resolve == nil {
		p.problemAt(line, marker, "includes are not supported here")

		return
	}
	tree, err := p.resolve(name)
	if err != nil {
		p.problemAt(line, marker, err.Error())

		return
	}
	p.appendNode(&IncludeNode{Name: name, Tree: tree, Line: line})
}

// setDelimiters 处理 {{=<% %>=}}。
func (p *parser) setDelimiters(body, marker string, line int) {
	if len(body) < 2 || body[len(body)-1] != '=' {
		p.problemAt(line, marker, "invalid delimiter change")

		return
	}
	parts := strings.Fields(body[1 : len(body)-1])
	if len(parts) != 2 || strings.Contains(parts[0], "=") || strings.Contains(parts[1], "=") {
		p.problemAt(line, marker, "invalid delimiter change")

		return
	}
	p.open, p.close = parts[0], parts[1]
}

func (p *parser) variable(body, marker string, line int) {
	parts := strings.Split(body, ":")
	name := parts[0]
	if !validName(name, isNameChar) {
		p.problemAt(line, marker, "invalid variable name")

		return
	}

	var mods []Modifier
	for _, raw := range parts[1:] {
		m, ok := LookupModifier(strings.TrimSpace(raw))
		if !ok {
			p.problemAt(line, marker, fmt.Sprintf("unknown modifier %q", raw))

			return
		}
		mods = append(mods, m)
	}
	p.appendNode(&VariableNode{Name: name, Modifiers: mods, Line: line})
}

// ═══════════════════════════════════════════════════════════════════════════
// 辅助函数
// ═══════════════════════════════════════════════════════════════════════════

func (p *parser) addText(s string) {
	if s == "" {
		return
	}
	f := p.stack[len(p.stack)-1]
	if n := len(f.nodes); n > 0 {
		if last, ok := f.nodes[n-1].(*TextNode); ok {
			last.Text += s

			return
		}
	}
	f.nodes = append(f.nodes, &TextNode{Text: s})
}

func (p *parser) appendNode(n Node) {
	f := p.stack[len(p.stack)-1]
	f.nodes = append(f.nodes, n)
}

func (p *parser) advance(n int) {
	p.line += strings.Count(p.text[p.pos:p.pos+n], "\n")
	p.pos += n
}

func (p *parser) problem(marker, msg string) {
	p.problemAt(p.line, marker, msg)
}

func (p *parser) problemAt(line int, marker, msg string) {
	p.problems = append(p.problems, Problem{Line: line, Marker: marker, Msg: msg})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}

func isNameChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
}

func isIncludeChar(c byte) bool {
	return isNameChar(c) || c == '.' || c == '/' || c == '-'
}

func validName(name string, ok func(byte) bool) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !ok(name[i]) {
			return false
		}
	}

	return true
}
