package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	rt, err := command.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()
	cfg := rt.Config

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      NewHandler(rt.Registry, rt.Strip, rt.Logger),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  cfg.Server.Idletime,
	}

	reloadCtx, stopReload := context.WithCancel(ctx)
	defer stopReload()
	if cfg.Templates.Reload > 0 {
		go watchTemplates(reloadCtx, rt.Registry, cfg.Templates.Reload)
	}

	// 启动服务器（非阻塞）
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			slog.Error("Server error", "error", err)

			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("Shutting down")

	// 使用 WithoutCancel 保持 context 链，同时防止父 context 取消影响 shutdown
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown failed", "error", err)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped gracefully")

	return nil
}

// watchTemplates 每隔 interval 标记所有已缓存模板，使其在下次请求时检查修改时间。
func watchTemplates(ctx context.Context, reg *ctemplate.Registry, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.ReloadAllIfChanged()
		}
	}
}
