// Package server 提供模板渲染 HTTP 服务命令。
package server

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/version"
)

// Command 服务器命令
var Command = &cli.Command{
	Name:     "server",
	Usage:    "启动模板渲染 HTTP 服务",
	Action:   action,
	Commands: []*cli.Command{version.Command},
	Flags:    Flags(),
}

// Flags 返回服务端专属 flags。
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server-addr",
			Aliases: []string{"a"},
			Value:   command.Defaults.Server.Addr,
			Usage:   "服务器监听地址",
		},
		&cli.DurationFlag{
			Name:  "server-timeout",
			Value: command.Defaults.Server.Timeout,
			Usage: "HTTP 读写超时",
		},
		&cli.DurationFlag{
			Name:  "server-idletime",
			Value: command.Defaults.Server.Idletime,
			Usage: "HTTP 空闲超时",
		},
		&cli.DurationFlag{
			Name:  "templates-reload",
			Value: command.Defaults.Templates.Reload,
			Usage: "检查模板变化的间隔，0 表示不检查",
		},
	}
}
