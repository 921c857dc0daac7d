package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"
)

func TestRunStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt"}, strings.NewReader("let x=1+2;"), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 0, code, "exit code")
	assert.EqualValuesf(t, "let x = 1 + 2\n", out.String(), "stdout")
	assert.EqualValuesf(t, "", errOut.String(), "stderr")
}

func TestRunStdinParseError(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt"}, strings.NewReader("let x = ;"), &out, &errOut)

	require.NoErrorf(t, err, "run itself should not fail; the parse error is reported on wErr")
	assert.EqualValuesf(t, 1, code, "exit code")
	assert.EqualValuesf(t, true, errOut.Len() > 0, "stderr should report the parse error")
}

func TestRunStdinList(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-l"}, strings.NewReader("let x=1;"), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 1, code, "exit code when stdin differs from its formatted form")
	assert.EqualValuesf(t, "<standard input>\n", out.String(), "stdout")
}

func TestRunWriteForbiddenWithStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-w"}, strings.NewReader("let x=1;"), &out, &errOut)

	assert.EqualValuesf(t, 2, code, "exit code")
	require.NotNilf(t, err, "expected an error")
	assert.EqualValuesf(t, true, strings.Contains(err.Error(), "-w"), "error should mention -w")
}

func TestRunUnknownFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-bogus"}, strings.NewReader(""), &out, &errOut)

	assert.EqualValuesf(t, 2, code, "exit code")
	require.NotNilf(t, err, "expected an error")
	assert.EqualValuesf(t, true, errOut.Len() > 0, "the flag package should have reported the unknown flag on stderr")
}

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-h"}, strings.NewReader(""), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 0, code, "exit code")
	assert.EqualValuesf(t, true, strings.Contains(errOut.String(), "usage:"), "stderr should print usage")
}

func TestRunVersion(t *testing.T) {
	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-v"}, strings.NewReader(""), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 0, code, "exit code")
	assert.EqualValuesf(t, true, out.Len() > 0, "stdout should print a version")
}

func TestRunFileInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "puzzle.santa")
	require.NoErrorf(t, os.WriteFile(path, []byte("let x=1;"), 0o644), "WriteFile")

	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-w", path}, strings.NewReader(""), &out, &errOut)
	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 0, code, "exit code")

	got, readErr := os.ReadFile(path)
	require.NoErrorf(t, readErr, "ReadFile")
	assert.EqualValuesf(t, "let x = 1;\n", string(got), "file should be rewritten in place")
}

func TestRunList(t *testing.T) {
	dir := t.TempDir()
	unformatted := filepath.Join(dir, "a.santa")
	formatted := filepath.Join(dir, "b.santa")
	require.NoErrorf(t, os.WriteFile(unformatted, []byte("let x=1;"), 0o644), "WriteFile")
	require.NoErrorf(t, os.WriteFile(formatted, []byte("let x = 1\n"), 0o644), "WriteFile")

	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-l", unformatted, formatted}, strings.NewReader(""), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 1, code, "exit code when a listed file differs")
	assert.EqualValuesf(t, unformatted+"\n", out.String(), "only the differing file should be listed")
}

func TestRunDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.santa")
	require.NoErrorf(t, os.WriteFile(path, []byte("let x=1;"), 0o644), "WriteFile")

	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-d", path}, strings.NewReader(""), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 0, code, "exit code")
	assert.EqualValuesf(t, true, strings.Contains(out.String(), "diff "+path), "diff should name the file")
	assert.EqualValuesf(t, true, strings.Contains(out.String(), "@@"), "diff should contain a hunk header")
}

func TestRunDirectoryRecursion(t *testing.T) {
	dir := t.TempDir()
	require.NoErrorf(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755), "Mkdir")
	nested := filepath.Join(dir, "sub", "nested.santa")
	require.NoErrorf(t, os.WriteFile(nested, []byte("let x=1;"), 0o644), "WriteFile")
	require.NoErrorf(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not santa"), 0o644), "WriteFile")
	require.NoErrorf(t, os.WriteFile(filepath.Join(dir, ".hidden.santa"), []byte("let x=1;"), 0o644), "WriteFile")

	var out, errOut bytes.Buffer
	code, err := run([]string{"santafmt", "-l", dir}, strings.NewReader(""), &out, &errOut)

	require.NoErrorf(t, err, "run")
	assert.EqualValuesf(t, 1, code, "exit code")
	assert.EqualValuesf(t, true, strings.Contains(out.String(), "nested.santa"), "nested .santa file should be listed")
	assert.EqualValuesf(t, false, strings.Contains(out.String(), "ignore.txt"), "non-.santa file should be skipped")
	assert.EqualValuesf(t, false, strings.Contains(out.String(), ".hidden.santa"), "dotfile should be skipped")
}
