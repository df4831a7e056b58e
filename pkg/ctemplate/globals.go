package ctemplate

import (
	"maps"
	"slices"
	"sync"
)

// 内置全局变量，每个 [Globals] 创建时自带。
const (
	BuiltinSpace   = "BI_SPACE"
	BuiltinNewline = "BI_NEWLINE"
)

// Globals 是进程级的全局变量表，是变量查找的最后一级。
//
// 写操作加锁；读操作使用读锁，可与展开并发进行。
type Globals struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewGlobals 创建包含 BI_SPACE 与 BI_NEWLINE 的全局变量表。
func NewGlobals() *Globals {
	return &Globals{
		values: map[string]string{
			BuiltinSpace:   " ",
			BuiltinNewline: "\n",
		},
	}
}

// Set 绑定全局变量，value 按 [FormatValue] 规则立即格式化。
func (g *Globals) Set(name string, value any) {
	s := FormatValue(value)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[name] = s
}

// Lookup 查找全局变量。
func (g *Globals) Lookup(name string) (string, bool) {
	if g == nil {
		return "", false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[name]

	return v, ok
}

// Delete 删除全局变量（内置变量也可删除）。
func (g *Globals) Delete(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.values, name)
}

// Snapshot 返回当前全局变量的副本。
func (g *Globals) Snapshot() map[string]string {
	if g == nil {
		return map[string]string{}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	return maps.Clone(g.values)
}

// Names 返回按字典序排序的全局变量名。
func (g *Globals) Names() []string {
	return slices.Sorted(maps.Keys(g.Snapshot()))
}
