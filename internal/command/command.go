// Package command 提供各子命令共享的配置、flag 与运行时初始化。
package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/config"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/store"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// GlobalFlags 返回根命令上的共享 flags，子命令默认继承。
//
// flag 名称与配置 key 对应："." 替换为 "-"，如 templates.root → --templates-root。
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    config.ConfigFlag,
			Aliases: []string{"c"},
			Usage:   "配置文件路径 (默认搜索 .ctemplate.yaml 等)",
		},
		&cli.StringFlag{
			Name:    "templates-root",
			Aliases: []string{"r"},
			Value:   Defaults.Templates.Root,
			Usage:   "模板根目录",
		},
		&cli.StringFlag{
			Name:    "templates-strip",
			Aliases: []string{"s"},
			Value:   Defaults.Templates.Strip,
			Usage:   "strip 模式: 0/1/2 或 do_not_strip/strip_blank_lines/strip_whitespace",
		},
		&cli.StringFlag{
			Name:  "templates-store",
			Usage: "SQLite 模板库 DSN，设置后从数据库读取模板",
		},
		&cli.StringSliceFlag{
			Name:  "templates-modifiers",
			Usage: "未声明修饰符的变量默认使用的转义方式，如 html",
		},
		&cli.StringMapFlag{
			Name:    "globals",
			Aliases: []string{"g"},
			Usage:   "全局变量 KEY=VALUE，可重复",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: Defaults.Log.Level,
			Usage: "日志级别: debug/info/warn/error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Value: Defaults.Log.Format,
			Usage: "日志格式: text/json",
		},
	}
}

// Runtime 是一次命令执行所需的已初始化组件。
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *ctemplate.Registry
	Strip    ctemplate.Strip
	Store    *store.Store // 未配置 templates.store 时为 nil
}

// Setup 加载配置并初始化日志、模板存储与模板注册表。
//
// 调用方负责在结束时调用 [Runtime.Close]。
func Setup(cmd *cli.Command) (*Runtime, error) {
	cfg, err := config.LoadCmd(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	strip, err := cfg.StripMode()
	if err != nil {
		return nil, err
	}
	mods, err := cfg.DefaultModifiers()
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger, Strip: strip}
	opts := []ctemplate.Option{
		ctemplate.WithLogger(logger),
		ctemplate.WithDefaultModifiers(mods...),
	}
	if cfg.Templates.Store != "" {
		st, err := store.Open(cfg.Templates.Store, logger)
		if err != nil {
			return nil, err
		}
		rt.Store = st
		opts = append(opts, ctemplate.WithLoader(st))
	} else {
		opts = append(opts, ctemplate.WithRootDirectory(cfg.Templates.Root))
	}

	rt.Registry = ctemplate.NewRegistry(opts...)
	for name, value := range cfg.Globals {
		rt.Registry.SetGlobalValue(name, value)
	}
	logger.Debug("Runtime ready",
		"root", cfg.Templates.Root,
		"store", cfg.Templates.Store != "",
		"strip", strip,
		"globals", len(cfg.Globals),
	)

	return rt, nil
}

// RequireStore 返回模板库；未配置 templates.store 时报错。
func (rt *Runtime) RequireStore() (*store.Store, error) {
	if rt.Store == nil {
		return nil, fmt.Errorf("templates.store is not configured (use --templates-store or %sTEMPLATES_STORE)", config.EnvPrefix)
	}

	return rt.Store, nil
}

// Close 释放模板库连接。
func (rt *Runtime) Close() error {
	if rt.Store != nil {
		return rt.Store.Close()
	}

	return nil
}

// NewLogger 按配置创建写入 w 的 slog.Logger。
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch cfg.Log.Format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
}
