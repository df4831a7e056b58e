package ctemplate

// Node 是解析树中的节点。树在解析完成后只读，可被任意多次展开共享。
type Node interface {
	node()
}

// TextNode 是一段原样输出的模板文本。
type TextNode struct {
	Text string
}

// VariableNode 是 {{NAME:mod...}} 变量标记。
type VariableNode struct {
	Name      string
	Modifiers []Modifier
	Line      int
}

// SectionNode 是 {{#NAME}}...{{/NAME}} 段落。
type SectionNode struct {
	Name     string
	Children []Node
	Line     int
}

// IncludeNode 是 {{>NAME}} 包含标记，Tree 为解析期内联的子模板。
type IncludeNode struct {
	Name string
	Tree *Tree
	Line int
}

func (*TextNode) node()     {}
func (*VariableNode) node() {}
func (*SectionNode) node()  {}
func (*IncludeNode) node()  {}

// Tree 是一份模板文本编译后的结果。
type Tree struct {
	Name  string
	Strip Strip
	Nodes []Node
}

// Variables 按首次出现顺序返回树中（含段落与包含）引用的变量名，去重。
func (t *Tree) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	walkNodes(t.Nodes, func(n Node) {
		if v, ok := n.(*VariableNode); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})

	return names
}

// Sections 按首次出现顺序返回树中引用的段落名，去重。
func (t *Tree) Sections() []string {
	seen := make(map[string]bool)
	var names []string
	walkNodes(t.Nodes, func(n Node) {
		if s, ok := n.(*SectionNode); ok && !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	})

	return names
}

func walkNodes(nodes []Node, fn func(Node)) {
	for _, n := range nodes {
		fn(n)
		switch typed := n.(type) {
		case *SectionNode:
			walkNodes(typed.Children, fn)
		case *IncludeNode:
			if typed.Tree != nil {
				walkNodes(typed.Tree.Nodes, fn)
			}
		}
	}
}
