// Package main wires the engine, reporter, config and snapshot packages
// into the `godefrag` binary: a single `github.com/urfave/cli` (v1)
// application in the teacher's cmd/cli command-table style
// (cmd/cli/commands/dsort.go's flag-var-then-Command-literal idiom), with
// one global flag set instead of a sub-command tree since spec.md §6 names
// a single flat flag surface (`-a`, `-s`, `-f`, `-d`, `-l`, `-e`, `-u`,
// `-q`).
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package main

import "github.com/urfave/cli"

var (
	modeFlag = cli.IntFlag{
		Name:  "a",
		Value: 2,
		Usage: "optimize mode: 0=AnalyzeOnly 1=AnalyzeFixup 2=AnalyzeFixupFastOpt(default) 4=ForceTogether 5=MoveToEnd 6=SortByName 7=SortBySize 8=SortByAccess 9=SortByChanged 10=SortByCreated",
	}
	speedFlag = cli.IntFlag{
		Name:  "s",
		Value: 100,
		Usage: "throttle speed, 1-100 percent of full speed",
	}
	freeSpaceFlag = cli.IntFlag{
		Name:  "f",
		Value: 5,
		Usage: "percent of the volume to leave as a free-space reserve",
	}
	debugFlag = cli.IntFlag{
		Name:  "d",
		Value: 0,
		Usage: "debug level, 0 (Fatal) through 6 (DetailedGapFinding)",
	}
	logFileFlag = cli.StringFlag{
		Name:  "l",
		Usage: "write log output under this directory instead of stderr only",
	}
	excludeFlag = cli.StringSliceFlag{
		Name:  "e",
		Usage: "exclude mask (case-insensitive, repeatable), e.g. -e '*.tmp'",
	}
	spaceHogFlag = cli.StringSliceFlag{
		Name:  "u",
		Usage: "user-supplied space-hog mask (repeatable), added to the built-in set",
	}
	quitFlag = cli.BoolFlag{
		Name:  "q",
		Usage: "quit on finish: run AnalyzeOnly, report drift against the last run, and exit",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "JSON config file; CLI flags above override its values",
	}
	concurrencyFlag = cli.IntFlag{
		Name:  "j",
		Value: 1,
		Usage: "number of volumes to process concurrently when multiple paths are given",
	}
	progressFlag = cli.BoolFlag{
		Name:  "progress",
		Usage: "render a terminal progress bar instead of plain log lines",
	}
	noDefaultMasksFlag = cli.BoolFlag{
		Name:  "no-default-masks",
		Usage: "disable the built-in space-hog masks (recycle bins, installer caches, archive extensions)",
	}
	snapshotDBFlag = cli.StringFlag{
		Name:  "snapshot-db",
		Value: "godefrag-snapshot.db",
		Usage: "path to the buntdb snapshot store backing -q",
	}
	strictFragmentCapFlag = cli.BoolFlag{
		Name:  "strict-fragment-cap",
		Usage: "set analyzer.StrictFragmentCap (not read by the analyzer: an item over the retrieval-pointer call cap is marked unmovable either way)",
	}

	godefragFlags = []cli.Flag{
		modeFlag,
		speedFlag,
		freeSpaceFlag,
		debugFlag,
		logFileFlag,
		excludeFlag,
		spaceHogFlag,
		quitFlag,
		configFlag,
		concurrencyFlag,
		progressFlag,
		noDefaultMasksFlag,
		snapshotDBFlag,
		strictFragmentCapFlag,
	}
)
