package expand_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command"
	"github.com/lwmacct/251219-go-pkg-ctemplate/internal/command/expand"
)

func TestExpandCommand(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"config.yaml": "log:\n  level: error\n",
		"page.tpl":    "{{TITLE}}:{{#ITEM}} {{V}}{{/ITEM}}|{{EXTRA}}\n",
		"data.json":   `{"TITLE": "list", "ITEM": [{"V": "a"}, {"V": "b"}]}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	var stdout bytes.Buffer
	app := &cli.Command{
		Name:     "ctemplate",
		Flags:    command.GlobalFlags(),
		Commands: []*cli.Command{expand.Command},
		Writer:   &stdout,
	}
	base := []string{"ctemplate", "--config", filepath.Join(dir, "config.yaml"), "--templates-root", dir}

	err := app.Run(context.Background(), append(base,
		"expand", "--data", filepath.Join(dir, "data.json"), "--set", "EXTRA=x", "page.tpl"))
	require.NoError(t, err)
	assert.Equal(t, "list: a b|x\n", stdout.String())

	output := filepath.Join(dir, "out.txt")
	err = app.Run(context.Background(), append(base,
		"expand", "--data", filepath.Join(dir, "data.json"), "--set", "EXTRA=x", "--output", output, "page.tpl"))
	require.NoError(t, err)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "list: a b|x\n", string(got))
}
