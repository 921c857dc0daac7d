// Command santafmt formats santa-lang source files.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"golang.org/x/term"

	"github.com/teleivo/santafmt"
	santafile "github.com/teleivo/santafmt/internal/format"
	"github.com/teleivo/santafmt/internal/layout"
	"github.com/teleivo/santafmt/internal/version"
)

// errFlagParse is a sentinel indicating flag parsing failed. The flag
// package already printed the error, so main must not print it again.
var errFlagParse = errors.New("flag parse error")

func main() {
	code, err := run(os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil && err != errFlagParse {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(code)
}

func run(args []string, r io.Reader, w io.Writer, wErr io.Writer) (int, error) {
	flags := flag.NewFlagSet("santafmt", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintln(wErr, "usage: santafmt [flags] [path ...]")
		fmt.Fprintln(wErr, "")
		fmt.Fprintln(wErr, "With no path, santafmt formats stdin and writes the result to stdout.")
		fmt.Fprintln(wErr, "")
		fmt.Fprintln(wErr, "flags:")
		flags.PrintDefaults()
	}
	write := flags.Bool("w", false, "write result to (source) file instead of stdout")
	list := flags.Bool("l", false, "list files whose formatting differs from santafmt's")
	diff := flags.Bool("d", false, "display diffs of formatting changes")
	help := flags.Bool("h", false, "print this help message")
	showVersion := flags.Bool("v", false, "print version and exit")
	flags.BoolVar(showVersion, "version", false, "print version and exit")

	if err := flags.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0, nil
		}
		return 2, errFlagParse
	}

	if *help {
		flags.Usage()
		return 0, nil
	}
	if *showVersion {
		fmt.Fprintln(w, version.Version())
		return 0, nil
	}

	paths := flags.Args()
	if *write && len(paths) == 0 {
		return 2, errors.New("santafmt: cannot use -w with standard input")
	}

	c := &cmd{w: w, wErr: wErr, write: *write, list: *list, diff: *diff}

	if len(paths) == 0 {
		return c.runStdin(r), nil
	}

	var errs []error
	for _, path := range paths {
		if err := c.runPath(path); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return 1, errors.Join(errs...)
	}
	if c.exitOne {
		return 1, nil
	}
	return 0, nil
}

// cmd holds the flags and output streams shared by every path santafmt
// processes in a single invocation.
type cmd struct {
	w, wErr io.Writer
	write   bool
	list    bool
	diff    bool
	// exitOne is set once any file differs from its formatted form while -l
	// is active.
	exitOne bool
}

func (c *cmd) runStdin(r io.Reader) int {
	src, err := io.ReadAll(io.LimitReader(r, santafile.MaxFileSize+1))
	if err != nil {
		fmt.Fprintf(c.wErr, "error reading stdin: %v\n", err)
		return 1
	}
	if len(src) > santafile.MaxFileSize {
		fmt.Fprintf(c.wErr, "stdin exceeds the %d byte limit\n", santafile.MaxFileSize)
		return 1
	}

	out, err := santafmt.Format(src, layout.Default)
	if err != nil {
		fmt.Fprintf(c.wErr, "<standard input>: %v\n", err)
		return 1
	}
	if c.list {
		if !bytes.Equal(src, out) {
			fmt.Fprintln(c.w, "<standard input>")
			return 1
		}
		return 0
	}
	if c.diff {
		if !bytes.Equal(src, out) {
			c.printDiff("<standard input>", src, out)
		}
		return 0
	}
	if _, err := c.w.Write(out); err != nil {
		fmt.Fprintf(c.wErr, "%v\n", err)
		return 1
	}
	return 0
}

func (c *cmd) runPath(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", path, err)
	}
	if !fi.IsDir() {
		return c.processFile(path)
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %v", path, err)
	}
	return fs.WalkDir(os.DirFS(root), ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !santafile.IsSantaFile(d.Name()) {
			return nil
		}
		return c.processFile(filepath.Join(root, p))
	})
}

func (c *cmd) processFile(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", path, err)
	}
	if fi.Size() > santafile.MaxFileSize {
		return fmt.Errorf("%s: exceeds the %d byte limit", path, santafile.MaxFileSize)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %v", path, err)
	}

	out, err := santafmt.Format(src, layout.Default)
	if err != nil {
		return fmt.Errorf("%s: %v", path, err)
	}
	if bytes.Equal(src, out) {
		return nil
	}

	if c.list {
		c.exitOne = true
		fmt.Fprintln(c.w, path)
	}
	if c.diff {
		c.printDiff(path, src, out)
	}
	if c.write {
		if err := santafile.File(path, layout.Default); err != nil {
			return err
		}
	}
	if !c.list && !c.diff && !c.write {
		if _, err := c.w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func (c *cmd) printDiff(path string, src, out []byte) {
	edits := myers.ComputeEdits(span.URIFromPath(path), string(src), string(out))
	unified := gotextdiff.ToUnified(path, path, string(src), edits)
	fmt.Fprintf(c.w, "diff %s\n", path)
	c.writeDiffLines(fmt.Sprint(unified))
}

// writeDiffLines writes a unified diff, colorizing additions, deletions and
// hunk headers when w is a terminal.
func (c *cmd) writeDiffLines(diffText string) {
	f, isFile := c.w.(*os.File)
	if !isFile || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.w, diffText)
		return
	}

	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	for _, line := range strings.Split(strings.TrimSuffix(diffText, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			add.Fprintln(c.w, line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			del.Fprintln(c.w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprintln(c.w, line)
		default:
			fmt.Fprintln(c.w, line)
		}
	}
}
