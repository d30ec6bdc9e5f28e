package main

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/npuc/npuc/compiler"
	"github.com/npuc/npuc/compiler/format"
	"github.com/npuc/npuc/compiler/stat"
)

func main() {
	genCmd := &cli.Command{
		Name:        "gen,g",
		Description: "lower module weights into a weight artifact",
		Action:      genAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "weight.bin", "weight artifact path"),
			cli.NewFlag("align", 1, "weight range alignment in bytes"),
			cli.NewFlag("map", "", "write weight map listing to the file"),
			cli.NewFlag("stats", false, "print counters as yaml"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
		},
	}

	dumpCmd := &cli.Command{
		Name:        "dump",
		Description: "hex dump weight artifacts",
		Action:      dumpAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "npuc",
		Description: "npuc is a neural network compiler backend for tensor accelerators",
		Commands: []*cli.Command{
			genCmd,
			dumpCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func genAct(c *cli.Command) (err error) {
	tlog.SetVerbosity(c.String("verbosity"))

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) != 1 {
		return errors.New("expected one module file, got %d", len(c.Args))
	}

	st := stat.New()

	m, w, err := compiler.CompileFile(ctx, c.Args[0], compiler.Config{
		Out:   c.String("out"),
		Align: c.Int("align"),
		Stats: st,
	})
	if err != nil {
		return errors.Wrap(err, "compile %v", c.Args[0])
	}

	if name := c.String("map"); name != "" {
		b, err := format.Format(ctx, nil, format.Listing{Module: m, Weights: w})
		if err != nil {
			return errors.Wrap(err, "format map")
		}

		err = os.WriteFile(name, b, 0o644)
		if err != nil {
			return errors.Wrap(err, "write map")
		}
	}

	if c.Bool("stats") {
		b, err := yaml.Marshal(st)
		if err != nil {
			return errors.Wrap(err, "marshal stats")
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "print stats")
		}
	}

	return nil
}

func dumpAct(c *cli.Command) (err error) {
	ctx := context.Background()

	for _, a := range c.Args {
		data, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		b, err := format.Format(ctx, nil, data)
		if err != nil {
			return errors.Wrap(err, "dump %v", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}
