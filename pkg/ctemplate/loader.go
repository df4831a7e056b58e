package ctemplate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Source 是从加载器读取的模板源。ModTime 用于 ReloadIfChanged 判断是否变化。
type Source struct {
	Content []byte
	ModTime time.Time
}

// Loader 按名称读取模板源。
//
// 读取失败时返回的错误应包装 [ErrTemplateNotFound]。
type Loader interface {
	Load(name string) (Source, error)
}

// DirLoader 从文件系统读取模板，相对路径基于根目录解析。
type DirLoader struct {
	mu   sync.RWMutex
	root string
}

// NewDirLoader 创建以 root 为根目录的加载器，空字符串表示当前工作目录。
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{root: root}
}

// SetRoot 修改根目录。
func (l *DirLoader) SetRoot(root string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.root = root
}

// Root 返回根目录。
func (l *DirLoader) Root() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.root
}

// Path 返回 name 对应的文件路径。
//
// name 必须是根目录内的相对路径：绝对路径或经 ".." 逃出根目录的名称返回错误。
func (l *DirLoader) Path(name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s: name must be a relative path inside the template root", ErrTemplateNotFound, name)
	}

	return filepath.Join(l.dir(), local), nil
}

func (l *DirLoader) dir() string {
	if root := l.Root(); root != "" {
		return root
	}

	return "."
}

// Load 在根目录内读取 name，经符号链接逃出根目录的文件同样被拒绝。
func (l *DirLoader) Load(name string) (Source, error) {
	path, err := l.Path(name)
	if err != nil {
		return Source{}, err
	}
	dir, err := os.OpenRoot(l.dir())
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, name, err)
	}
	defer func() { _ = dir.Close() }()

	f, err := dir.Open(filepath.Clean(filepath.FromSlash(name)))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s: is a directory", ErrTemplateNotFound, path)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, path, err)
	}

	return Source{Content: content, ModTime: info.ModTime()}, nil
}

// MemoryLoader 在内存中保存模板源，可并发使用。
//
// 每次 Set 都会得到严格递增的 ModTime，保证 ReloadIfChanged 能感知变化。
type MemoryLoader struct {
	mu    sync.RWMutex
	files map[string]Source
	last  time.Time
}

// NewMemoryLoader 创建内存加载器。
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{files: make(map[string]Source)}
}

// Set 写入或替换模板源。
func (l *MemoryLoader) Set(name, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if !now.After(l.last) {
		now = l.last.Add(time.Nanosecond)
	}
	l.last = now
	l.files[name] = Source{Content: []byte(content), ModTime: now}
}

// Delete 删除模板源。
func (l *MemoryLoader) Delete(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, name)
}

// Has 报告是否存在 name。
func (l *MemoryLoader) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.files[name]

	return ok
}

func (l *MemoryLoader) Load(name string) (Source, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src, ok := l.files[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	return src, nil
}
