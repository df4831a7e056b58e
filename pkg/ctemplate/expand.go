package ctemplate

import (
	"io"
	"strings"
)

// separatorSuffix 标记段落间分隔内容：NAME 段落内的 NAME_separator 段落。
const separatorSuffix = "_separator"

// Expander 把解析树与字典展开为文本。
//
// 展开只读取树与字典，不修改任何状态；同一 Expander 可并发用于不同的字典。
type Expander struct {
	// Globals 是变量查找的最后一级，nil 表示没有进程全局变量。
	Globals *Globals
	// DefaultModifiers 用于未声明修饰符的变量；声明了任何修饰符（含 none）的变量不受影响。
	DefaultModifiers []Modifier
}

// Expand 展开 tree 并写入 w。缺失的变量输出空串，缺失的段落隐藏，不会因数据缺失报错。
func (e *Expander) Expand(w io.Writer, tree *Tree, d *Dictionary) error {
	_, err := io.WriteString(w, e.ExpandString(tree, d))

	return err
}

// ExpandString 展开 tree 并返回结果字符串。
func (e *Expander) ExpandString(tree *Tree, d *Dictionary) string {
	if tree == nil {
		return ""
	}
	if d == nil {
		d = newDictionary("", nil, e.Globals)
	}

	var buf strings.Builder
	e.expandNodes(&buf, tree.Nodes, d, iteration{})

	return buf.String()
}

// iteration 记录当前所在段落的迭代位置，用于决定是否输出分隔段落。
type iteration struct {
	separator string
	last      bool
}

func (e *Expander) expandNodes(buf *strings.Builder, nodes []Node, d *Dictionary, it iteration) {
	for _, n := range nodes {
		switch typed := n.(type) {
		case *TextNode:
			buf.WriteString(typed.Text)
		case *VariableNode:
			buf.WriteString(e.variable(typed, d))
		case *SectionNode:
			if it.separator != "" && typed.Name == it.separator {
				if !it.last {
					e.expandNodes(buf, typed.Children, d, iteration{})
				}
				continue
			}
			e.section(buf, typed, d)
		case *IncludeNode:
			if typed.Tree != nil {
				e.expandNodes(buf, typed.Tree.Nodes, d, iteration{})
			}
		}
	}
}

func (e *Expander) section(buf *strings.Builder, s *SectionNode, d *Dictionary) {
	dicts := d.sections[s.Name]
	for i, child := range dicts {
		e.expandNodes(buf, s.Children, child, iteration{
			separator: s.Name + separatorSuffix,
			last:      i == len(dicts)-1,
		})
	}
}

func (e *Expander) variable(v *VariableNode, d *Dictionary) string {
	value, ok := d.Lookup(v.Name)
	if !ok {
		value, _ = e.Globals.Lookup(v.Name)
	}

	mods := v.Modifiers
	if len(mods) == 0 {
		mods = e.DefaultModifiers
	}
	for _, m := range mods {
		value = m.Apply(value)
	}

	return value
}
