package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	tplstore "github.com/lwmacct/251219-go-pkg-ctemplate/internal/store"
)

// withStore 初始化运行时并确保模板库可用。
func withStore(cmd *cli.Command, fn func(st *tplstore.Store, rt *command.Runtime) error) error {
	rt, err := command.Setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	st, err := rt.RequireStore()
	if err != nil {
		return err
	}

	return fn(st, rt)
}

func putAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().Get(0)
	if name == "" {
		return errors.New("missing NAME argument")
	}
	src := cmd.Args().Get(1)

	var (
		body []byte
		err  error
	)
	if src == "" || src == "-" {
		body, err = io.ReadAll(os.Stdin)
	} else {
		body, err = os.ReadFile(src) //nolint:gosec // path is provided by the user
	}
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	return withStore(cmd, func(st *tplstore.Store, _ *command.Runtime) error {
		return st.Put(ctx, name, string(body))
	})
}

func getAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errors.New("missing NAME argument")
	}

	return withStore(cmd, func(st *tplstore.Store, _ *command.Runtime) error {
		body, _, err := st.Get(ctx, name)
		if err != nil {
			return err
		}
		if output := cmd.String("output"); output != "" {
			return atomic.WriteFile(output, strings.NewReader(body))
		}
		_, err = io.WriteString(cmd.Root().Writer, body)

		return err
	})
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	return withStore(cmd, func(st *tplstore.Store, _ *command.Runtime) error {
		entries, err := st.List(ctx)
		if err != nil {
			return err
		}
		w := cmd.Root().Writer
		for _, e := range entries {
			_, _ = fmt.Fprintf(w, "%-40s %8d  %s\n", e.Name, e.Size, e.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		return nil
	})
}

func rmAction(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return errors.New("missing NAME argument")
	}

	return withStore(cmd, func(st *tplstore.Store, _ *command.Runtime) error {
		var errs []error
		for _, name := range names {
			errs = append(errs, st.Delete(ctx, name))
		}

		return errors.Join(errs...)
	})
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		return errors.New("missing DIR argument")
	}
	pattern := cmd.String("pattern")

	return withStore(cmd, func(st *tplstore.Store, rt *command.Runtime) error {
		count := 0
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			body, err := os.ReadFile(path) //nolint:gosec // path comes from walking the import directory
			if err != nil {
				return err
			}
			if err := st.Put(ctx, filepath.ToSlash(rel), string(body)); err != nil {
				return err
			}
			count++

			return nil
		})
		if err != nil {
			return fmt.Errorf("import %s: %w", dir, err)
		}
		rt.Logger.Info("Imported templates", "dir", dir, "count", count)

		return nil
	})
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		return errors.New("missing DIR argument")
	}

	return withStore(cmd, func(st *tplstore.Store, rt *command.Runtime) error {
		entries, err := st.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			body, _, err := st.Get(ctx, e.Name)
			if err != nil {
				return err
			}
			if !filepath.IsLocal(filepath.FromSlash(e.Name)) {
				return fmt.Errorf("export %s: name escapes the target directory", e.Name)
			}
			path := filepath.Join(dir, filepath.FromSlash(e.Name))
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return err
			}
			if err := atomic.WriteFile(path, strings.NewReader(body)); err != nil {
				return fmt.Errorf("export %s: %w", e.Name, err)
			}
		}
		rt.Logger.Info("Exported templates", "dir", dir, "count", len(entries))

		return nil
	})
}
