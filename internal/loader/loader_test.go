package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/lazygrid/internal/loader"
	"github.com/vk/lazygrid/internal/position"
	"github.com/vk/lazygrid/internal/program"
	"github.com/vk/lazygrid/internal/stdlib"
	"github.com/vk/lazygrid/internal/typeexpr"
	"github.com/zclconf/go-cty/cty"
)

func setup() (*loader.Loader, *position.Files, *program.Program) {
	files := position.NewFiles()
	return loader.New(files), files, program.New()
}

func TestLoadStdlib(t *testing.T) {
	l, files, prog := setup()

	builtin, err := l.LoadStdlib(context.Background(), prog)

	require.NoError(t, err)
	assert.Equal(t, stdlib.FileName, files.Name(builtin))
	for _, name := range []string{"id", "first", "apply", "compose", "positive", "between", "port"} {
		fn, ok := prog.Functions[name]
		if assert.True(t, ok, "builtin %q", name) {
			assert.Equal(t, builtin, fn.File)
		}
	}
	assert.Empty(t, prog.UserLets(builtin))
	assert.Contains(t, l.HCLFiles(), stdlib.FileName)
}

func TestLoadSource(t *testing.T) {
	l, files, prog := setup()
	src := `
function "add" {
  params    = ["a", "b"]
  contracts = { a = number }
  result    = a + b
}

total = add(1, 2)
`
	require.NoError(t, l.LoadSource(context.Background(), prog, "main.hcl", []byte(src)))

	fn := prog.Functions["add"]
	require.NotNil(t, fn)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	require.Contains(t, fn.Contracts, "a")
	assert.Equal(t, typeexpr.ShapePrimitive, fn.Contracts["a"].Shape)
	assert.True(t, fn.Contracts["a"].Type.Equals(cty.Number))
	assert.NotContains(t, fn.Contracts, "b")

	let := prog.Lets["total"]
	require.NotNil(t, let)
	assert.Equal(t, "main.hcl", files.Name(let.File))
	assert.Equal(t, 8, let.Range.Start.Line)

	rng, ok := prog.DefRange("add")
	require.True(t, ok)
	assert.Equal(t, 2, rng.Start.Line)
}

func TestLoadSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax error", "a = = 1\n", "failed to parse HCL file main.hcl"},
		{"missing result", "function \"f\" {\n  params = [\"x\"]\n}\n", "Missing required argument"},
		{"duplicate parameter", "function \"f\" {\n  params = [\"x\", \"x\"]\n  result = x\n}\n", "Duplicate parameter"},
		{"invalid parameter", "function \"f\" {\n  params = [\"1x\"]\n  result = 1\n}\n", "Invalid parameter name"},
		{"unknown contract", "function \"f\" {\n  params = [\"x\"]\n  contracts = { y = number }\n  result = x\n}\n", "Contract for unknown parameter"},
		{"invalid function name", "function \"1fn\" {\n  result = 1\n}\n", "Invalid function name"},
		{"unknown block", "resource \"x\" {\n}\n", "failed to decode HCL file main.hcl"},
		{"unknown block type", "a = 1\nlocals {\n  b = 2\n}\n", "Unsupported block type"},
		{"unnamed function", "function {\n  result = 1\n}\n", "Invalid function block"},
		{"function with two labels", "function \"f\" \"g\" {\n  result = 1\n}\n", "Invalid function block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, prog := setup()
			err := l.LoadSource(context.Background(), prog, "main.hcl", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSource_MissingResultPointsAtBlock(t *testing.T) {
	l, _, prog := setup()
	src := "function \"f\" {\n  params = [\"x\"]\n}\n"

	err := l.LoadSource(context.Background(), prog, "main.hcl", []byte(src))

	var diags hcl.Diagnostics
	require.ErrorAs(t, err, &diags)
	require.Len(t, diags, 1)
	assert.Equal(t, "Missing required argument", diags[0].Summary)
	assert.Equal(t, 1, diags[0].Subject.Start.Line)
	assert.NotContains(t, err.Error(), "Unsupported syntax")
}

func TestLoadSource_BlocksAndAttributesInOneFile(t *testing.T) {
	l, _, prog := setup()
	ctx := context.Background()
	_, err := l.LoadStdlib(ctx, prog)
	require.NoError(t, err, "the builtin library is made of function blocks")

	src := `
a = 1

function "twice" {
  params = ["n"]
  result = n * 2
}

b = twice(a)
`
	require.NoError(t, l.LoadSource(ctx, prog, "main.hcl", []byte(src)))
	assert.Contains(t, prog.Lets, "a")
	assert.Contains(t, prog.Lets, "b")
	assert.Contains(t, prog.Functions, "twice")
	assert.Contains(t, prog.Functions, "id")
}

func TestLoadSource_DuplicateDefinition(t *testing.T) {
	l, _, prog := setup()
	ctx := context.Background()
	_, err := l.LoadStdlib(ctx, prog)
	require.NoError(t, err)

	err = l.LoadSource(ctx, prog, "main.hcl", []byte("id = 1\n"))

	var diags hcl.Diagnostics
	require.ErrorAs(t, err, &diags)
	require.Len(t, diags, 1)
	assert.Equal(t, "Duplicate definition", diags[0].Summary)
	assert.Equal(t, "main.hcl", diags[0].Subject.Filename)
}

func TestLoadPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte("x = double(2)\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "math.hcl"),
		[]byte("function \"double\" {\n  params = [\"n\"]\n  result = n * 2\n}\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes\n"), 0o600))

	l, files, prog := setup()
	require.NoError(t, l.LoadPaths(context.Background(), prog, dir))

	assert.Contains(t, prog.Lets, "x")
	assert.Contains(t, prog.Functions, "double")
	assert.Equal(t, 2, files.Len())
}

func TestLoadPaths_Errors(t *testing.T) {
	l, _, prog := setup()
	ctx := context.Background()

	err := l.LoadPaths(ctx, prog, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl files found")

	err = l.LoadPaths(ctx, prog, filepath.Join(t.TempDir(), "missing.hcl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
