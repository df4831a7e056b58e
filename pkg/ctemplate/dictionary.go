package ctemplate

import (
	"slices"
	"strconv"
)

// emptyDictName 是 ShowSection 创建的子字典名称。
const emptyDictName = "empty dictionary"

// Dictionary 是一层命名的绑定作用域：标量变量 + 段落子字典列表。
//
// 子字典通过 [Dictionary.AddSectionDictionary] 创建，持有指向父字典的引用，
// 查找变量时沿父链回退；段落只能创建子节点，因此不会形成环。
//
// 同一字典内标量与段落共享名字空间，后写入者生效：
// SetValue 会移除同名段落，ShowSection / AddSectionDictionary 会移除同名标量。
//
// Dictionary 不是并发安全的，归构建它的调用方所有。
type Dictionary struct {
	name     string
	filename string
	values   map[string]string
	sections map[string][]*Dictionary
	parent   *Dictionary
	globals  *Globals

	// 仅根字典使用
	templateGlobals map[string]string
}

// NewDictionary 创建绑定到默认 [Registry] 全局变量表的根字典。
func NewDictionary(name string) *Dictionary {
	return Default().NewDictionary(name)
}

func newDictionary(name string, parent *Dictionary, globals *Globals) *Dictionary {
	return &Dictionary{
		name:     name,
		values:   make(map[string]string),
		sections: make(map[string][]*Dictionary),
		parent:   parent,
		globals:  globals,
	}
}

// Name 返回字典名称。
func (d *Dictionary) Name() string { return d.name }

// Filename 返回 SetFilename 记录的模板文件名。
func (d *Dictionary) Filename() string { return d.filename }

// Parent 返回父字典；根字典返回 nil。
func (d *Dictionary) Parent() *Dictionary { return d.parent }

// SetFilename 记录该字典预期渲染的模板，仅用于 Dump 等诊断输出。
func (d *Dictionary) SetFilename(path string) {
	d.filename = path
}

// SetValue 绑定标量变量，value 按 [FormatValue] 规则在绑定时格式化。
func (d *Dictionary) SetValue(name string, value any) {
	delete(d.sections, name)
	d.values[name] = FormatValue(value)
}

// Set 是下标赋值的语法糖：
//   - true 等价于 ShowSection(name)
//   - false 不做任何事（段落默认隐藏）
//   - 其它值等价于 SetValue(name, value)
func (d *Dictionary) Set(name string, value any) {
	if show, ok := value.(bool); ok {
		if show {
			d.ShowSection(name)
		}

		return
	}
	d.SetValue(name, value)
}

// ShowSection 显示段落：段落尚无子字典时添加一个空子字典，否则不做任何事。
func (d *Dictionary) ShowSection(name string) {
	delete(d.values, name)
	if len(d.sections[name]) > 0 {
		return
	}
	d.sections[name] = []*Dictionary{newDictionary(emptyDictName, d, d.globals)}
}

// AddSectionDictionary 为段落追加一个子字典并返回它。
//
// 同名段落多次调用会得到多个独立的子字典，展开时按调用顺序重复输出段落内容。
func (d *Dictionary) AddSectionDictionary(name string) *Dictionary {
	delete(d.values, name)
	dicts := d.sections[name]
	childName := d.name + "/" + name + "#" + strconv.Itoa(len(dicts)+1)
	child := newDictionary(childName, d, d.globals)
	d.sections[name] = append(dicts, child)

	return child
}

// SetValueAndShowSection 在 value 非空时为 section 添加一个子字典，
// 并在其中绑定 name=value；value 为空时段落保持原状。
func (d *Dictionary) SetValueAndShowSection(name string, value any, section string) {
	s := FormatValue(value)
	if s == "" {
		return
	}
	d.AddSectionDictionary(section).SetValue(name, s)
}

// SetTemplateGlobalValue 在根字典上绑定模板级全局变量，
// 对整棵字典树（含包含的模板）可见，优先级低于字典链、高于进程全局。
func (d *Dictionary) SetTemplateGlobalValue(name string, value any) {
	root := d.root()
	if root.templateGlobals == nil {
		root.templateGlobals = make(map[string]string)
	}
	root.templateGlobals[name] = FormatValue(value)
}

// Value 只在当前字典中查找标量。
func (d *Dictionary) Value(name string) (string, bool) {
	v, ok := d.values[name]

	return v, ok
}

// Lookup 沿 字典 → 父链 → 模板全局 查找标量，不含进程全局。
func (d *Dictionary) Lookup(name string) (string, bool) {
	for cur := d; cur != nil; cur = cur.parent {
		if v, ok := cur.values[name]; ok {
			return v, true
		}
	}
	if tg := d.root().templateGlobals; tg != nil {
		if v, ok := tg[name]; ok {
			return v, true
		}
	}

	return "", false
}

// SectionDictionaries 返回段落的子字典（副本），未显示的段落返回 nil。
func (d *Dictionary) SectionDictionaries(name string) []*Dictionary {
	return slices.Clone(d.sections[name])
}

// IsHiddenSection 报告段落在当前字典中是否隐藏。
func (d *Dictionary) IsHiddenSection(name string) bool {
	return len(d.sections[name]) == 0
}

// Globals 返回字典绑定的进程全局变量表。
func (d *Dictionary) Globals() *Globals {
	return d.globals
}

func (d *Dictionary) root() *Dictionary {
	cur := d
	for cur.parent != nil {
		cur = cur.parent
	}

	return cur
}
