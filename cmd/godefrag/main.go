// Command godefrag is the CLI entrypoint: flag parsing, config-file merge,
// and wiring the engine/parser/reporter/snapshot packages together per
// spec §6 and SPEC_FULL.md's CLI ambient-stack section. CLI argument
// parsing itself is named out of scope by spec §1 ("interfaces specified
// in §6 only"), but the flag surface and exit-code contract it specifies
// still need a concrete binary, built here the way the teacher structures
// its own CLI entrypoint (urfave/cli v1, one global flag set, an Action
// closure per command).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"github.com/jkdefrag/godefrag/config"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/reporter"
)

func main() {
	app := cli.NewApp()
	app.Name = "godefrag"
	app.Usage = "NTFS/FAT volume defragmenter and space optimizer"
	app.ArgsUsage = "VOLUME [VOLUME...]"
	app.Flags = godefragFlags
	app.Action = runAction

	err := app.Run(os.Args)
	xlog.Flush()
	if err != nil {
		xlog.Errorf("%v", err)
		os.Exit(classifyExitErr(err))
	}
}

func runAction(c *cli.Context) error {
	if dir := c.String("l"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err == nil {
			_ = flag.Set("log_dir", dir)
			_ = flag.Set("alsologtostderr", "true")
		}
	}

	base, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("strict-fragment-cap") {
		base.StrictFragmentCap = c.Bool("strict-fragment-cap")
	}
	base.ApplyGlobals()
	opts := buildRunOptions(c, base)

	volumes, err := resolveVolumes(c.Args())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			xlog.Warningf("interrupt received, requesting cooperative stop")
			cancel()
		case <-ctx.Done():
		}
	}()

	snapDB := c.String("snapshot-db")
	quit := c.Bool("q")

	if len(volumes) == 1 {
		rep := buildReporter(c, true)
		err := runOne(volumes[0], rep, opts, snapDB, quit)
		waitIfProgress(rep)
		return err
	}

	newReporter := func() reporter.Reporter { return buildReporter(c, false) }
	return runAllVolumes(ctx, volumes, newReporter, opts, snapDB, quit, c.Int("j"))
}

// waitIfProgress blocks until every mpb bar has finished rendering, for a
// clean terminal before the process exits; a plain LogReporter has nothing
// to wait on.
func waitIfProgress(rep reporter.Reporter) {
	if pr, ok := rep.(*reporter.ProgressReporter); ok {
		pr.Wait()
	}
}
