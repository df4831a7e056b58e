// Package check 提供模板语法检查命令。
package check

import (
	"github.com/urfave/cli/v3"
)

// Command 检查命令
var Command = &cli.Command{
	Name:      "check",
	Usage:     "检查模板语法与缺失的模板",
	ArgsUsage: "[TEMPLATE...]",
	Description: "未指定模板时，检查模板库中的全部模板；未配置模板库时，" +
		"检查模板根目录下匹配 --pattern 的文件。",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pattern",
			Value: "*.tpl",
			Usage: "扫描模板根目录时使用的文件名匹配模式",
		},
	},
	Action: action,
}
