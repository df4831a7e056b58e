package expand

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
)

func action(_ context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errors.New("missing TEMPLATE argument")
	}

	rt, err := command.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	tpl, err := rt.Registry.GetTemplate(name, rt.Strip)
	if err != nil {
		return err
	}

	d, err := command.BuildDictionary(rt.Registry, cmd.String("dict-name"), cmd.String("data"), cmd.StringMap("set"))
	if err != nil {
		return err
	}
	d.SetFilename(name)

	var buf bytes.Buffer
	if err := tpl.ExpandTo(&buf, d); err != nil {
		return fmt.Errorf("expand %s: %w", name, err)
	}

	output := cmd.String("output")
	if output == "" {
		_, err = cmd.Root().Writer.Write(buf.Bytes())

		return err
	}
	size := buf.Len()
	if err := atomic.WriteFile(output, &buf); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	rt.Logger.Info("Expanded template", "template", name, "output", output, "bytes", size)

	return nil
}
