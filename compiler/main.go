package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/xiaobogaga/jackc/compiler/internal"
	"github.com/xiaobogaga/jackc/vmcode"
)

// jackc compiles jack classes to vm code, one .vm file per .jack file.

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile .jack files and directories of them",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "", "output directory, next to the source by default"),
			cli.NewFlag("tokens,t", false, "also write <Name>T.xml token listings"),
			cli.NewFlag("keep,k", false, "write .vm files even if there are errors"),
			cli.NewFlag("jobs,j", 0, "files compiled in parallel, number of cpus by default"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics: symbols,labels,diag"),
		},
	}

	checkCmd := &cli.Command{
		Name:        "check",
		Description: "validate .vm files",
		Action:      checkAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
		},
	}

	app := &cli.Command{
		Name:        "jackc",
		Description: "jackc is a jack to vm code compiler",
		Commands: []*cli.Command{
			compileCmd,
			checkCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) (err error) {
	tlog.SetVerbosity(c.String("verbosity"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("no input files")
	}

	opts := internal.Options{
		OutDir: c.String("out"),
		Tokens: c.Bool("tokens"),
		Keep:   c.Bool("keep"),
		Jobs:   c.Int("jobs"),
	}

	results, err := internal.CompilePaths(ctx, c.Args, opts)

	failed := 0

	for _, res := range results {
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "%s:%v\n", res.Path, e)
		}

		if len(res.Errors) != 0 {
			failed++
		}
	}

	if err != nil {
		return errors.Wrap(err, "compile")
	}

	if failed != 0 {
		return errors.New("%d of %d files have errors", failed, len(results))
	}

	return nil
}

func checkAct(c *cli.Command) (err error) {
	tlog.SetVerbosity(c.String("verbosity"))

	for _, a := range c.Args {
		err = checkFile(a)
		if err != nil {
			return err
		}
	}

	return nil
}

func checkFile(name string) (err error) {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "open %v", name)
	}

	defer f.Close()

	cmds, err := vmcode.ParseReader(f)
	if err != nil {
		return errors.Wrap(err, "check %v", name)
	}

	tlog.Printw("vm file is valid", "file", name, "commands", len(cmds))

	return nil
}
