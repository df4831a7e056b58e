package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/check"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/dump"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/expand"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/server"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/store"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    version.AppRawName,
		Usage:   "ctemplate 风格的文本模板展开工具",
		Version: version.GetVersion(),
		Flags:   command.GlobalFlags(),
		Commands: []*cli.Command{
			version.Command,
			expand.Command,
			check.Command,
			dump.Command,
			store.Command,
			server.Command,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
