// Package dump 提供字典调试输出命令。
package dump

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
)

// Command 字典输出命令
var Command = &cli.Command{
	Name:  "dump",
	Usage: "输出由数据文件构建的字典树",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "字典数据文件 (yaml/json)，- 表示标准输入",
		},
		&cli.StringMapFlag{
			Name:  "set",
			Usage: "额外绑定的变量 KEY=VALUE",
		},
		&cli.StringFlag{
			Name:  "dict-name",
			Value: "dump",
			Usage: "根字典名称",
		},
		&cli.StringFlag{
			Name:  "filename",
			Usage: "记录字典预期渲染的模板，仅用于输出",
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		rt, err := command.Setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		d, err := command.BuildDictionary(rt.Registry, cmd.String("dict-name"), cmd.String("data"), cmd.StringMap("set"))
		if err != nil {
			return err
		}
		if f := cmd.String("filename"); f != "" {
			d.SetFilename(f)
		}
		_, err = cmd.Root().Writer.Write([]byte(d.Dump()))

		return err
	},
}
