package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/jkdefrag/godefrag/config"
	"github.com/jkdefrag/godefrag/engine"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/parser"
	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/snapshot"
	"github.com/jkdefrag/godefrag/volume"
)

// newOSHandle opens the real OS primitives for volumePath (FSCTL_GET_
// VOLUME_BITMAP / FSCTL_GET_RETRIEVAL_POINTERS / FSCTL_MOVE_FILE on
// Windows). spec.md §1 names this as an out-of-scope collaborator,
// specified only by the volume.OSHandle interface it must satisfy; no
// concrete implementation ships in this repo. A caller embedding this
// engine in a real defragmenter supplies one by overriding this var before
// calling run; left unset, a volume path fails fast with a clear error
// instead of the run silently doing nothing.
var newOSHandle = func(volumePath string) (volume.OSHandle, error) {
	return nil, fmt.Errorf("no OSHandle implementation registered for %s (spec §1: out-of-scope OS collaborator)", volumePath)
}

// resolveVolumes expands the path argument per spec §6: a drive letter,
// mount point, directory, file, or `*`/`?` wildcard path, with an absent
// path meaning every fixed, writable, local volume. Enumerating "every
// volume" is itself an OS primitive (GetLogicalDrives + GetDriveType) that
// sits on the same out-of-scope boundary as newOSHandle, so an empty arg
// list is rejected here rather than silently resolving to nothing.
func resolveVolumes(args cli.Args) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no volume path given, and enumerating every fixed volume requires an OS-specific implementation outside this repo's scope (spec §1); pass one or more paths explicitly")
	}
	return []string(args), nil
}

func buildRunOptions(c *cli.Context, base config.Config) engine.RunOptions {
	opts := base.RunOptions()
	if c.IsSet("a") {
		opts.OptimizeMode = engine.OptimizeMode(c.Int("a"))
	}
	if c.IsSet("s") {
		opts.Speed = int64(c.Int("s"))
	}
	if c.IsSet("f") {
		opts.FreeSpacePercent = int64(c.Int("f"))
	}
	if excl := c.StringSlice("e"); len(excl) > 0 {
		opts.ExcludeMasks = excl
	}
	hogs := c.StringSlice("u")
	switch {
	case c.Bool("no-default-masks") && len(hogs) == 0:
		opts.SpaceHogMasks = []string{} // explicit non-nil empty: disables defaults
	case c.Bool("no-default-masks"):
		opts.SpaceHogMasks = hogs
	case len(hogs) > 0:
		opts.SpaceHogMasks = append(engine.DefaultSpaceHogMasks(), hogs...)
	}
	return opts
}

// buildReporter honors -progress only when allowProgress is true: two
// concurrent mpb.Progress renderers writing to the same terminal for a
// multi-volume fan-out would garble each other's output, so runAllVolumes
// always passes false and falls back to plain log lines per volume.
func buildReporter(c *cli.Context, allowProgress bool) reporter.Reporter {
	level := reporter.DebugLevel(c.Int("d"))
	if allowProgress && c.Bool("progress") {
		pr := reporter.NewProgressReporter()
		pr.MinLevel = level
		return pr
	}
	lr := reporter.NewLogReporter()
	lr.MinLevel = level
	return lr
}

// buildEngine constructs the parser/engine pair for one volume, applying
// the -q override (AnalyzeOnly only) to opts.
func buildEngine(volumePath string, rep reporter.Reporter, opts engine.RunOptions, quit bool) (*engine.Engine, error) {
	h, err := newOSHandle(volumePath)
	if err != nil {
		return nil, err
	}
	info := &volume.Info{Path: volumePath}
	p := parser.NewWalkFallback(h, info)
	if quit {
		opts.OptimizeMode = engine.AnalyzeOnly
	}
	return engine.New(h, info, p, rep, opts), nil
}

// recordSnapshot diffs e's final tree against the last snapshot for
// volumePath, logs any drift, then persists the new snapshot -- the
// idempotence/`-q` support snapshot.Store exists for (SPEC_FULL.md module
// map, `snapshot`).
func recordSnapshot(volumePath, snapDB string, e *engine.Engine) {
	store, err := snapshot.Open(snapDB)
	if err != nil {
		xlog.Warningf("snapshot store unavailable for %s: %v", volumePath, err)
		return
	}
	defer store.Close()

	changed, err := store.Diff(volumePath, e.Tree())
	if err != nil {
		xlog.Warningf("snapshot diff failed for %s: %v", volumePath, err)
	} else if len(changed) > 0 {
		xlog.Infof("%s: %d item(s) changed since the last recorded run: %s",
			volumePath, len(changed), strings.Join(changed, ", "))
	}
	if err := store.Save(volumePath, e.Tree()); err != nil {
		xlog.Warningf("snapshot save failed for %s: %v", volumePath, err)
	}
}

// runOne drives a single volume end to end: build the parser/engine,
// execute the phase grid (or the -q drift-only path), and persist a
// snapshot, mirroring spec §6's exit-code contract (0 on success including
// -q quit-on-finish).
func runOne(volumePath string, rep reporter.Reporter, opts engine.RunOptions, snapDB string, quit bool) error {
	e, err := buildEngine(volumePath, rep, opts, quit)
	if err != nil {
		return err
	}

	lock, err := acquireSingleInstanceLock(lockFilePath(volumePath))
	if err != nil {
		return err
	}
	defer lock.release()

	if err := e.Run(); err != nil {
		return err
	}
	recordSnapshot(volumePath, snapDB, e)
	return nil
}

// runAllVolumes builds one engine per volume (each with its own
// single-instance lock and reporter) and fans them out with
// engine.RunMany, returning the first error encountered so the process
// exit code reflects it, after logging every volume's own outcome.
func runAllVolumes(ctx context.Context, volumes []string, newReporter func() reporter.Reporter, opts engine.RunOptions, snapDB string, quit bool, concurrency int) error {
	engines := make([]*engine.Engine, 0, len(volumes))
	locks := make([]*singleInstanceLock, 0, len(volumes))
	defer func() {
		for _, l := range locks {
			l.release()
		}
	}()

	for _, v := range volumes {
		lock, err := acquireSingleInstanceLock(lockFilePath(v))
		if err != nil {
			xlog.Errorf("%s: %v", v, err)
			continue
		}
		locks = append(locks, lock)

		e, err := buildEngine(v, newReporter(), opts, quit)
		if err != nil {
			xlog.Errorf("%s: %v", v, err)
			continue
		}
		engines = append(engines, e)
	}

	results := engine.RunMany(ctx, engines, concurrency)

	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			xlog.Errorf("%s: %v", r.Path, r.Err)
			if firstErr == nil {
				firstErr = r.Err
			}
		}
	}
	for _, e := range engines {
		if findResult(results, e.Info.Path) {
			recordSnapshot(e.Info.Path, snapDB, e)
		}
	}
	return firstErr
}

func findResult(results []engine.VolumeResult, path string) bool {
	for _, r := range results {
		if r.Path == path {
			return r.Err == nil
		}
	}
	return false
}

// classifyExitErr maps a run error to spec §6's exit-code contract: parse
// failures and "already running" are distinguished from a mid-run engine
// failure only in that both are non-zero, since spec.md draws no finer
// distinction than "0 on success; non-zero otherwise".
func classifyExitErr(err error) int {
	if err == nil {
		return 0
	}
	if err == errAlreadyRunning {
		return 2
	}
	return 1
}
