package internal

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

const (
	JackExt = ".jack"
	VMExt   = ".vm"
)

type Options struct {
	OutDir string // next to the source if empty
	Tokens bool   // also write <Name>T.xml
	Keep   bool   // write .vm even if there are diagnostics
	Jobs   int    // files compiled in parallel, NumCPU if not positive
}

type FileResult struct {
	Path   string
	Output string // empty if nothing was written
	Class  string
	Errors ErrorList
}

// Compile translates one class from src into vm code written to w.
// Code is written even if errs is not empty; err is set only if writing failed.
func Compile(ctx context.Context, src []byte, w io.Writer) (class string, errs ErrorList, err error) {
	parser := NewParser(ctx, src, w)

	errs, err = parser.CompileClass()

	return parser.ClassName(), errs, err
}

// CompileFile compiles one .jack file into <base>.vm.
// Diagnostics are returned in the result, the error is for i/o failures only.
func CompileFile(ctx context.Context, path string, opts Options) (res FileResult, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile file", "path", path)
	defer tr.Finish("err", &err)

	res.Path = path

	if err = ctx.Err(); err != nil {
		return res, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return res, errors.Wrap(err, "read %v", path)
	}

	var buf bytes.Buffer

	res.Class, res.Errors, err = Compile(ctx, src, &buf)
	if err != nil {
		return res, errors.Wrap(err, "compile %v", path)
	}

	base := strings.TrimSuffix(filepath.Base(path), JackExt)

	if res.Class != "" && res.Class != base {
		tr.Printw("class name differs from file name", "class", res.Class, "file", base)
	}

	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(path)
	} else if err = os.MkdirAll(dir, 0o755); err != nil {
		return res, errors.Wrap(err, "create output dir")
	}

	if opts.Tokens {
		// lexical errors are already in res.Errors
		tokens, _ := Tokenize(src)

		err = writeFile(filepath.Join(dir, base+"T.xml"), func(w io.Writer) error {
			return WriteTokensXML(w, tokens)
		})
		if err != nil {
			return res, err
		}
	}

	if len(res.Errors) != 0 && !opts.Keep {
		tr.Printw("not written", "class", res.Class, "errors", len(res.Errors))
		return res, nil
	}

	output := filepath.Join(dir, base+VMExt)

	err = writeFile(output, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return res, err
	}

	res.Output = output

	tr.Printw("compiled", "class", res.Class, "output", output, "errors", len(res.Errors))

	return res, nil
}

// CompilePaths compiles every given file and every .jack file directly in every given directory.
// Results are in the order files were found. The first i/o error stops the rest.
func CompilePaths(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	files, err := jackFiles(paths)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]FileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, file := range files {
		i, file := i, file
		g.Go(func() (err error) {
			results[i], err = CompileFile(ctx, file, opts)
			return err
		})
	}

	err = g.Wait()

	return results, err
}

func jackFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "stat %v", path)
		}

		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		// ReadDir returns entries sorted by name.
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, errors.Wrap(err, "read dir %v", path)
		}

		for _, e := range entries {
			// Skip sub dirs and not-jack files.
			if e.IsDir() || !isJackFile(e.Name()) {
				continue
			}

			files = append(files, filepath.Join(path, e.Name()))
		}
	}

	return files, nil
}

func isJackFile(name string) bool {
	return len(name) > len(JackExt) && strings.HasSuffix(name, JackExt)
}

func writeFile(name string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create %v", name)
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close %v", name)
		}
	}()

	if err = write(f); err != nil {
		return errors.Wrap(err, "write %v", name)
	}

	return nil
}
