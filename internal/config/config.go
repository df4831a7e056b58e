// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - 见 DefaultPaths，或 --config 指定
//  3. 环境变量 - 前缀 CTEMPLATE_，如 CTEMPLATE_TEMPLATES_ROOT
//  4. CLI flags - 仅用户显式指定的 flag，如 --templates-root
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

// AppName 用于生成默认配置文件路径。
const AppName = "ctemplate"

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "CTEMPLATE_"

// Config 应用配置。
type Config struct {
	Templates TemplatesConfig   `json:"templates" desc:"模板配置"`
	Globals   map[string]string `json:"globals" desc:"进程全局变量，所有模板可见"`
	Server    ServerConfig      `json:"server" desc:"服务端配置"`
	Log       LogConfig         `json:"log" desc:"日志配置"`
}

// TemplatesConfig 模板配置。
type TemplatesConfig struct {
	Root      string        `json:"root" desc:"模板根目录"`
	Strip     string        `json:"strip" desc:"strip 模式: 0/1/2 或 do_not_strip/strip_blank_lines/strip_whitespace"`
	Store     string        `json:"store" desc:"SQLite 模板库 DSN，非空时从数据库读取模板"`
	Modifiers []string      `json:"modifiers" desc:"未声明修饰符的变量默认使用的转义方式"`
	Reload    time.Duration `json:"reload" desc:"服务端检查模板变化的间隔，0 表示不检查"`
}

// ServerConfig 服务端配置。
type ServerConfig struct {
	Addr     string        `json:"addr" desc:"服务器监听地址"`
	Timeout  time.Duration `json:"timeout" desc:"HTTP 读写超时"`
	Idletime time.Duration `json:"idletime" desc:"HTTP 空闲超时"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `json:"level" desc:"日志级别: debug/info/warn/error"`
	Format string `json:"format" desc:"日志格式: text/json"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Templates: TemplatesConfig{
			Root:  ".",
			Strip: ctemplate.DoNotStrip.String(),
		},
		Globals: map[string]string{},
		Server: ServerConfig{
			Addr:     ":40118",
			Timeout:  15 * time.Second,
			Idletime: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// StripMode 解析 Templates.Strip。
func (c *Config) StripMode() (ctemplate.Strip, error) {
	strip, err := ctemplate.ParseStrip(c.Templates.Strip)
	if err != nil {
		return 0, fmt.Errorf("templates.strip: %w", err)
	}

	return strip, nil
}

// DefaultModifiers 解析 Templates.Modifiers。
func (c *Config) DefaultModifiers() ([]ctemplate.Modifier, error) {
	var mods []ctemplate.Modifier
	for _, name := range c.Templates.Modifiers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m, ok := ctemplate.LookupModifier(name)
		if !ok {
			return nil, fmt.Errorf("templates.modifiers: unknown modifier %q", name)
		}
		mods = append(mods, m)
	}

	return mods, nil
}

// LogLevel 解析 Log.Level，空值视为 info。
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}

	return level, nil
}
