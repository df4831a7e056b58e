package ctemplate

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Registry 是模板缓存、注册名单与全局变量表的持有者。
//
// 进程内通常只使用 [Default] 返回的单例；测试或需要隔离时可用 [NewRegistry]
// 创建独立实例。所有方法都是并发安全的。
type Registry struct {
	mu      sync.RWMutex
	cache   map[cacheKey]*Template
	names   []string
	nameSet map[string]bool

	loader   Loader
	strings  *MemoryLoader
	globals  *Globals
	expander *Expander
	logger   *slog.Logger
}

type cacheKey struct {
	name  string
	strip Strip
}

// Option 是 [NewRegistry] 的选项函数。
type Option func(*Registry)

// WithLoader 设置模板加载器，默认为以当前目录为根的 [DirLoader]。
func WithLoader(l Loader) Option {
	return func(r *Registry) {
		r.loader = l
	}
}

// WithRootDirectory 设置默认 [DirLoader] 的根目录。
func WithRootDirectory(dir string) Option {
	return func(r *Registry) {
		r.loader = NewDirLoader(dir)
	}
}

// WithLogger 设置日志记录器，默认为 slog.Default()。
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithGlobals 使用已有的全局变量表（可在多个 Registry 间共享）。
func WithGlobals(g *Globals) Option {
	return func(r *Registry) {
		r.globals = g
	}
}

// WithDefaultModifiers 设置未声明修饰符的变量使用的转义方式。
func WithDefaultModifiers(mods ...Modifier) Option {
	return func(r *Registry) {
		r.expander.DefaultModifiers = mods
	}
}

// NewRegistry 创建独立的模板注册表。
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cache:    make(map[cacheKey]*Template),
		nameSet:  make(map[string]bool),
		loader:   NewDirLoader(""),
		strings:  NewMemoryLoader(),
		expander: &Expander{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.globals == nil {
		r.globals = NewGlobals()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.expander.Globals = r.globals

	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default 返回进程级默认注册表。
func Default() *Registry {
	return defaultRegistry()
}

// NewDictionary 创建绑定到本注册表全局变量表的根字典。
func (r *Registry) NewDictionary(name string) *Dictionary {
	return newDictionary(name, nil, r.globals)
}

// Globals 返回全局变量表。
func (r *Registry) Globals() *Globals { return r.globals }

// Expander 返回本注册表的模板共用的展开器。
func (r *Registry) Expander() *Expander { return r.expander }

// SetGlobalValue 绑定全局变量，所有字典查找失败后使用。
func (r *Registry) SetGlobalValue(name string, value any) {
	r.globals.Set(name, value)
}

// ═══════════════════════════════════════════════════════════════════════════
// 注册与加载
// ═══════════════════════════════════════════════════════════════════════════

// RegisterTemplate 把 name 加入注册名单（供 GetBadSyntaxList / GetMissingList 检查）。
//
// 名单按首次注册顺序保存，重复注册无副作用。模板源不可读时仍会登记，
// 并返回包装 [ErrTemplateNotFound] 的错误。
func (r *Registry) RegisterTemplate(name string) error {
	r.mu.Lock()
	if !r.nameSet[name] {
		r.nameSet[name] = true
		r.names = append(r.names, name)
	}
	r.mu.Unlock()

	if _, err := r.source(name); err != nil {
		return fmt.Errorf("register template: %w", err)
	}

	return nil
}

// RegisteredNames 返回注册名单（按注册顺序）。
func (r *Registry) RegisteredNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.names)
}

// GetTemplate 返回 (name, strip) 对应的模板，首次调用时加载并解析。
//
// 同一键的并发首次加载只会解析一次。模板源不可读时返回包装 [ErrTemplateNotFound]
// 的错误且不缓存；存在语法错误时缓存 TS_ERROR 状态的模板并返回 *SyntaxError。
func (r *Registry) GetTemplate(name string, strip Strip) (*Template, error) {
	key := cacheKey{name: name, strip: strip}

	r.mu.RLock()
	t := r.cache[key]
	r.mu.RUnlock()

	if t == nil {
		var err error
		t, err = r.loadTemplate(key)
		if err != nil {
			return nil, err
		}
	} else if t.State() == TSReload {
		t.ReloadIfChanged()
	}

	if t.State() == TSError {
		return nil, t.Err()
	}

	return t, nil
}

func (r *Registry) loadTemplate(key cacheKey) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.cache[key]; t != nil {
		return t, nil
	}

	c := r.compile(key.name, key.strip)
	if c.err != nil && errors.Is(c.err, ErrTemplateNotFound) && c.deps == nil {
		r.logger.Warn("Template not found", "name", key.name, "error", c.err)

		return nil, c.err
	}

	t := newTemplate(r, key.name, key.strip)
	t.install(c)
	r.cache[key] = t
	if c.err != nil {
		r.logger.Warn("Template has syntax errors", "name", key.name, "strip", key.strip, "error", c.err)
	} else {
		r.logger.Debug("Loaded template", "name", key.name, "strip", key.strip)
	}

	return t, nil
}

// StringToTemplateCache 以 key 注册一段模板文本，此后 GetTemplate(key, ...) 与
// {{>key}} 都会使用它而不访问加载器。重复调用会替换内容并丢弃该键的缓存。
func (r *Registry) StringToTemplateCache(key, content string, strip Strip) (*Template, error) {
	r.strings.Set(key, content)

	r.mu.Lock()
	for k := range r.cache {
		if k.name == key {
			delete(r.cache, k)
		}
	}
	r.mu.Unlock()

	return r.GetTemplate(key, strip)
}

// ═══════════════════════════════════════════════════════════════════════════
// 批量检查
// ═══════════════════════════════════════════════════════════════════════════

// GetBadSyntaxList 按注册顺序返回存在语法错误的模板名。
//
// refresh 为 false 时，已加载的模板直接使用缓存状态，只解析尚未加载的模板；
// refresh 为 true 时重新解析全部注册模板。模板源缺失的名称不在此列表中，见 [Registry.GetMissingList]。
func (r *Registry) GetBadSyntaxList(refresh bool, strip Strip) []string {
	bad := []string{}
	for _, name := range r.RegisteredNames() {
		key := cacheKey{name: name, strip: strip}

		r.mu.RLock()
		t := r.cache[key]
		r.mu.RUnlock()

		switch {
		case t != nil && refresh:
			t.reloadMu.Lock()
			t.replace(r.compile(name, strip))
			t.reloadMu.Unlock()
		case t == nil:
			var err error
			if t, err = r.loadTemplate(key); err != nil {
				continue
			}
		}

		if t.State() == TSError && IsSyntaxError(t.Err()) {
			bad = append(bad, name)
		}
	}

	return bad
}

// GetMissingList 按注册顺序返回模板源不可读的名称。
//
// refresh 为 false 时，已有可用缓存的名称视为存在，不再访问加载器。
func (r *Registry) GetMissingList(refresh bool) []string {
	missing := []string{}
	for _, name := range r.RegisteredNames() {
		if !refresh && r.hasReady(name) {
			continue
		}
		if _, err := r.source(name); err != nil {
			missing = append(missing, name)
		}
	}

	return missing
}

func (r *Registry) hasReady(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, t := range r.cache {
		if k.name == name && t.State() == TSReady {
			return true
		}
	}

	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// 缓存维护
// ═══════════════════════════════════════════════════════════════════════════

// SetTemplateRootDirectory 设置模板根目录，相对名称基于它解析。
// 加载器不是 [DirLoader] 时返回 false。
func (r *Registry) SetTemplateRootDirectory(dir string) bool {
	r.mu.RLock()
	dl, ok := r.loader.(*DirLoader)
	r.mu.RUnlock()
	if !ok {
		return false
	}
	dl.SetRoot(dir)

	return true
}

// TemplateRootDirectory 返回模板根目录；加载器不是 [DirLoader] 时返回空串。
func (r *Registry) TemplateRootDirectory() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if dl, ok := r.loader.(*DirLoader); ok {
		return dl.Root()
	}

	return ""
}

// ReloadAllIfChanged 把所有已缓存模板标记为 TS_RELOAD，
// 下一次 GetTemplate 时检查修改时间并按需重新加载。
func (r *Registry) ReloadAllIfChanged() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.cache {
		t.markReload()
	}
}

// ClearCache 丢弃所有已缓存的模板。注册名单与全局变量保持不变。
func (r *Registry) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cacheKey]*Template)
}

// ═══════════════════════════════════════════════════════════════════════════
// 内部实现
// ═══════════════════════════════════════════════════════════════════════════

// source 优先读取 StringToTemplateCache 注册的文本，其次读取加载器。
func (r *Registry) source(name string) (Source, error) {
	if r.strings.Has(name) {
		return r.strings.Load(name)
	}

	return r.loader.Load(name)
}

// compile 读取并解析 name 及其包含的模板，记录每个文件的修改时间。
// 主模板源不可读时 deps 为 nil；不可读的包含模板以零值时间记录，出现后即视为变化。
func (r *Registry) compile(name string, strip Strip) *compiled {
	deps := make(map[string]time.Time)

	var parseFile func(name string, stack []string) (*Tree, error)
	parseFile = func(name string, stack []string) (*Tree, error) {
		src, err := r.source(name)
		if err != nil {
			if len(stack) > 1 {
				deps[name] = time.Time{}
			}

			return nil, err
		}
		deps[name] = src.ModTime

		resolve := func(include string) (*Tree, error) {
			if slices.Contains(stack, include) {
				return nil, fmt.Errorf("include cycle: %s", strings.Join(append(slices.Clone(stack), include), " -> "))
			}

			return parseFile(include, append(slices.Clone(stack), include))
		}

		return ParseNamed(name, string(src.Content), strip, resolve)
	}

	tree, err := parseFile(name, []string{name})
	if len(deps) == 0 {
		deps = nil
	}

	return &compiled{tree: tree, err: err, deps: deps}
}

// depsChanged 报告任一依赖文件的修改时间是否变化、已不可读，或此前缺失而现在可读。
func (r *Registry) depsChanged(deps map[string]time.Time) bool {
	if deps == nil {
		return true
	}
	for name, mod := range deps {
		src, err := r.source(name)
		switch {
		case err != nil && mod.IsZero():
			continue
		case err != nil, !src.ModTime.Equal(mod):
			return true
		}
	}

	return false
}

// ═══════════════════════════════════════════════════════════════════════════
// 默认注册表的包级函数
// ═══════════════════════════════════════════════════════════════════════════

// RegisterTemplate 调用默认注册表的 [Registry.RegisterTemplate]。
func RegisterTemplate(name string) error { return Default().RegisterTemplate(name) }

// GetTemplate 调用默认注册表的 [Registry.GetTemplate]。
func GetTemplate(name string, strip Strip) (*Template, error) {
	return Default().GetTemplate(name, strip)
}

// StringToTemplateCache 调用默认注册表的 [Registry.StringToTemplateCache]。
func StringToTemplateCache(key, content string, strip Strip) (*Template, error) {
	return Default().StringToTemplateCache(key, content, strip)
}

// SetGlobalValue 在默认注册表上绑定全局变量。
func SetGlobalValue(name string, value any) { Default().SetGlobalValue(name, value) }

// GetBadSyntaxList 调用默认注册表的 [Registry.GetBadSyntaxList]。
func GetBadSyntaxList(refresh bool, strip Strip) []string {
	return Default().GetBadSyntaxList(refresh, strip)
}

// GetMissingList 调用默认注册表的 [Registry.GetMissingList]。
func GetMissingList(refresh bool) []string { return Default().GetMissingList(refresh) }

// SetTemplateRootDirectory 设置默认注册表的模板根目录。
func SetTemplateRootDirectory(dir string) bool { return Default().SetTemplateRootDirectory(dir) }

// TemplateRootDirectory 返回默认注册表的模板根目录。
func TemplateRootDirectory() string { return Default().TemplateRootDirectory() }

// ReloadAllIfChanged 调用默认注册表的 [Registry.ReloadAllIfChanged]。
func ReloadAllIfChanged() { Default().ReloadAllIfChanged() }

// ClearCache 清空默认注册表的模板缓存。
func ClearCache() { Default().ClearCache() }
