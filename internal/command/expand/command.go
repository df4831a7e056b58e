// Package expand 提供模板展开命令。
package expand

import (
	"github.com/urfave/cli/v3"
)

// Command 展开命令
var Command = &cli.Command{
	Name:      "expand",
	Usage:     "使用数据文件展开模板",
	ArgsUsage: "TEMPLATE",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "字典数据文件 (yaml/json)，- 表示标准输入",
		},
		&cli.StringMapFlag{
			Name:  "set",
			Usage: "额外绑定的变量 KEY=VALUE，优先于数据文件",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "输出文件 (原子写入)，默认标准输出",
		},
		&cli.StringFlag{
			Name:  "dict-name",
			Value: "expand",
			Usage: "根字典名称",
		},
	},
	Action: action,
}
