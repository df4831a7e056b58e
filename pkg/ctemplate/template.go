package ctemplate

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// State 是模板的加载状态。
type State int32

const (
	TSUnused State = iota
	TSEmpty
	TSError
	TSReady
	TSReload
)

func (s State) String() string {
	switch s {
	case TSUnused:
		return "TS_UNUSED"
	case TSEmpty:
		return "TS_EMPTY"
	case TSError:
		return "TS_ERROR"
	case TSReady:
		return "TS_READY"
	case TSReload:
		return "TS_RELOAD"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// compiled 是一次加载的结果；替换时整体原子交换。
type compiled struct {
	tree *Tree
	err  error
	deps map[string]time.Time
}

// Template 是由 [Registry] 缓存的已编译模板，按 (name, strip) 唯一。
//
// 展开无需加锁；ReloadIfChanged 会原子地替换解析树，正在进行的展开不受影响。
type Template struct {
	name  string
	strip Strip
	reg   *Registry

	reloadMu sync.Mutex
	state    atomic.Int32
	cur      atomic.Pointer[compiled]
}

func newTemplate(reg *Registry, name string, strip Strip) *Template {
	t := &Template{name: name, strip: strip, reg: reg}
	t.state.Store(int32(TSEmpty))

	return t
}

// Name 返回模板名称（文件名或注册的键）。
func (t *Template) Name() string { return t.name }

// Strip 返回模板的 strip 模式。
func (t *Template) Strip() Strip { return t.strip }

// State 返回模板当前状态。
func (t *Template) State() State { return State(t.state.Load()) }

// Tree 返回当前解析树；从未成功解析时返回 nil。
func (t *Template) Tree() *Tree {
	if c := t.cur.Load(); c != nil {
		return c.tree
	}

	return nil
}

// Err 返回最近一次加载的错误。
func (t *Template) Err() error {
	if c := t.cur.Load(); c != nil {
		return c.err
	}

	return nil
}

// Expand 使用 d 展开模板并返回结果。模板不可用时返回空串。
func (t *Template) Expand(d *Dictionary) string {
	return t.reg.expander.ExpandString(t.Tree(), d)
}

// ExpandTo 使用 d 展开模板并写入 w。模板从未成功解析时返回加载错误。
func (t *Template) ExpandTo(w io.Writer, d *Dictionary) error {
	tree := t.Tree()
	if tree == nil {
		if err := t.Err(); err != nil {
			return err
		}

		return fmt.Errorf("ctemplate: template %s is not loaded", t.name)
	}

	return t.reg.expander.Expand(w, tree, d)
}

// ReloadIfChanged 在模板或其包含的文件修改时间变化时重新加载。
//
// 仅当内容变化且解析成功时返回 true。解析失败时状态变为 TS_ERROR，
// 但保留上一次成功的解析树继续用于展开。
func (t *Template) ReloadIfChanged() bool {
	t.reloadMu.Lock()
	defer t.reloadMu.Unlock()

	old := t.cur.Load()
	if old != nil && !t.reg.depsChanged(old.deps) {
		if t.State() == TSReload {
			t.restoreState(old)
		}

		return false
	}

	c := t.reg.compile(t.name, t.strip)
	t.replace(c)
	t.reg.logger.Debug("Reloaded template", "name", t.name, "strip", t.strip, "ok", c.err == nil)

	return c.err == nil
}

// replace 安装重新编译的结果；编译失败时沿用上一次成功的解析树。
func (t *Template) replace(c *compiled) {
	if old := t.cur.Load(); c.err != nil && old != nil && old.tree != nil {
		c.tree = old.tree
	}
	t.install(c)
}

func (t *Template) install(c *compiled) {
	t.cur.Store(c)
	t.restoreState(c)
}

func (t *Template) restoreState(c *compiled) {
	if c.err != nil {
		t.state.Store(int32(TSError))

		return
	}
	t.state.Store(int32(TSReady))
}

func (t *Template) markReload() {
	t.state.CompareAndSwap(int32(TSReady), int32(TSReload))
	t.state.CompareAndSwap(int32(TSError), int32(TSReload))
}
