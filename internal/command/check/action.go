package check

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

func action(ctx context.Context, cmd *cli.Command) error {
	rt, err := command.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	names := cmd.Args().Slice()
	if len(names) == 0 {
		if names, err = discover(ctx, rt, cmd.String("pattern")); err != nil {
			return err
		}
	}

	return Run(cmd.Root().Writer, rt.Registry, names, rt.Strip)
}

// Run 注册 names 并报告语法错误与缺失的模板，存在任一问题时返回错误。
func Run(w io.Writer, reg *ctemplate.Registry, names []string, strip ctemplate.Strip) error {
	for _, name := range names {
		_ = reg.RegisterTemplate(name)
	}

	bad := reg.GetBadSyntaxList(true, strip)
	missing := reg.GetMissingList(true)
	for _, name := range bad {
		_, err := reg.GetTemplate(name, strip)
		_, _ = fmt.Fprintf(w, "BAD      %s\n         %v\n", name, err)
	}
	for _, name := range missing {
		_, _ = fmt.Fprintf(w, "MISSING  %s\n", name)
	}

	ok := len(names) - len(bad) - len(missing)
	_, _ = fmt.Fprintf(w, "%d ok, %d bad, %d missing\n", ok, len(bad), len(missing))
	if len(bad)+len(missing) > 0 {
		return fmt.Errorf("%d template(s) failed the check", len(bad)+len(missing))
	}

	return nil
}

// discover 列出模板库中的全部模板，或模板根目录下匹配 pattern 的文件。
func discover(ctx context.Context, rt *command.Runtime, pattern string) ([]string, error) {
	if rt.Store != nil {
		entries, err := rt.Store.List(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name
		}

		return names, nil
	}

	root := rt.Registry.TemplateRootDirectory()
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	slices.Sort(names)

	return names, nil
}
