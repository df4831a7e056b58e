package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	app "github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/server"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/version"
)

func main() {
	root := &cli.Command{
		Name:     version.AppRawName + "-server",
		Usage:    app.Command.Usage,
		Version:  version.GetVersion(),
		Flags:    append(command.GlobalFlags(), app.Flags()...),
		Action:   app.Command.Action,
		Commands: []*cli.Command{version.Command},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		slog.Error("应用程序运行失败", "error", err)
		os.Exit(1)
	}
}
