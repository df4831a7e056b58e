// Package store 提供模板库管理命令。
package store

import (
	"github.com/urfave/cli/v3"
)

// Command 模板库命令
var Command = &cli.Command{
	Name:  "store",
	Usage: "管理 SQLite 模板库 (需要 --templates-store)",
	Commands: []*cli.Command{
		{
			Name:      "put",
			Usage:     "写入模板，FILE 省略或为 - 时读取标准输入",
			ArgsUsage: "NAME [FILE]",
			Action:    putAction,
		},
		{
			Name:      "get",
			Usage:     "读取模板内容",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "输出文件 (原子写入)，默认标准输出",
				},
			},
			Action: getAction,
		},
		{
			Name:   "list",
			Usage:  "列出模板",
			Action: listAction,
		},
		{
			Name:      "rm",
			Usage:     "删除模板",
			ArgsUsage: "NAME...",
			Action:    rmAction,
		},
		{
			Name:      "import",
			Usage:     "导入目录下匹配 --pattern 的文件，名称为相对路径",
			ArgsUsage: "DIR",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "pattern",
					Value: "*.tpl",
					Usage: "文件名匹配模式",
				},
			},
			Action: importAction,
		},
		{
			Name:      "export",
			Usage:     "把全部模板导出到目录",
			ArgsUsage: "DIR",
			Action:    exportAction,
		},
	},
}
