package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jkdefrag/godefrag/analyzer"
	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/cmn"
	"github.com/jkdefrag/godefrag/cmn/cos"
	"github.com/jkdefrag/godefrag/internal/xlog"
	"github.com/jkdefrag/godefrag/item"
	"github.com/jkdefrag/godefrag/mover"
	"github.com/jkdefrag/godefrag/parser"
	"github.com/jkdefrag/godefrag/reporter"
	"github.com/jkdefrag/godefrag/selector"
	"github.com/jkdefrag/godefrag/volume"
	"github.com/jkdefrag/godefrag/zone"
)

// Engine drives one volume through the phase sequence in spec §4.8. It owns
// the item tree, bitmap cache and mover for the volume's lifetime; nothing
// else is allowed to mutate them concurrently (spec §5 "shared resources").
type Engine struct {
	OS       volume.OSHandle
	Info     *volume.Info
	Parser   parser.Parser
	Reporter reporter.Reporter
	Opts     RunOptions

	runID      string
	tree       *item.Tree
	bitmap     *volume.BitmapCache
	mover      *mover.Mover
	boundaries zone.Boundaries
	ctrl       *Control
	throttle   *Throttle
}

// New constructs an Engine for one volume. Parser and Reporter must not be
// nil; Reporter may be reporter.NewLogReporter() for a minimal sink. Each
// Engine is stamped with its own UUID (mirrors the teacher's xaction UUIDs),
// surfaced in every reporter.State so concurrent multi-volume runs log
// distinguishably.
func New(os volume.OSHandle, info *volume.Info, p parser.Parser, rep reporter.Reporter, opts RunOptions) *Engine {
	info.IgnoreMFTExcludes = opts.IgnoreMFTExcludes
	bitmap := volume.NewBitmapCache(os)
	e := &Engine{
		OS:       os,
		Info:     info,
		Parser:   p,
		Reporter: rep,
		Opts:     opts,
		runID:    uuid.NewString(),
		tree:     item.New(),
		bitmap:   bitmap,
		ctrl:     NewControl(),
		throttle: NewThrottle(opts.Speed),
	}
	e.mover = mover.New(os, info.BytesPerCluster, e.findGap)
	return e
}

// Control returns the cancellation handle external callers use to request a
// cooperative stop (spec §5).
func (e *Engine) Control() *Control { return e.ctrl }

// RunID returns this engine's run-scoped UUID.
func (e *Engine) RunID() string { return e.runID }

// Tree returns the item tree built by the last Run. Exposed so callers can
// snapshot it (the `-q` drift report) or inspect the final layout after a
// run completes; empty before the first successful analyze.
func (e *Engine) Tree() *item.Tree { return e.tree }

// findGap adapts volume.FindGap to the mover.GapFinder shape, always
// honoring the engine's MFT-exclude setting, and reports every gap the scan
// passes over to the reporter at DetailedGapFinding level.
func (e *Engine) findGap(minLCN, maxLCN cluster.LCN, minSize int64, mustFit, findHighest bool) (cluster.Extent, bool, error) {
	onGap := func(g cluster.Extent) {
		e.Reporter.OnDebug(reporter.DetailedGapFinding, nil, fmt.Sprintf("gap found: %d[%d]", g.Begin, g.Length()))
	}
	return volume.FindGap(e.bitmap, e.Info, minLCN, maxLCN, minSize, mustFit, findHighest, e.Opts.IgnoreMFTExcludes, onGap)
}

// timedPhase runs fn, then reports its wall-clock duration to the reporter
// at Progress level ("analyze took 1.2s", spec.md's original StopWatch
// timing around find_gap, generalized here to every phase rather than just
// the gap scan). Uses cmn.NanoTime's monotonic counter so the duration
// can't be corrupted by a wall-clock adjustment mid-phase.
func (e *Engine) timedPhase(name string, fn func() error) error {
	start := cmn.NanoTime()
	err := fn()
	elapsed := time.Duration(cmn.NanoTime() - start)
	e.Reporter.OnDebug(reporter.Progress, nil, fmt.Sprintf("%s took %s", name, elapsed))
	return err
}

// Run executes the phase grid selected by Opts.OptimizeMode (spec §6's
// optimize-mode table). Every phase checks Control().ShouldStop() and
// returns early on cancellation (spec §4.8).
func (e *Engine) Run() error {
	defer e.ctrl.MarkStopped()

	if err := e.timedPhase("analyze", e.analyze); err != nil {
		return err
	}
	if e.ctrl.ShouldStop() {
		return cmn.NewAbortedError("analyze")
	}

	switch e.Opts.OptimizeMode.normalize() {
	case AnalyzeOnly:
		// nothing further
	case AnalyzeFixup:
		return e.timedPhase("defragment", e.defragment)
	case AnalyzeFixupFastOpt:
		if err := e.timedPhase("defragment", e.defragment); err != nil {
			return err
		}
		if e.ctrl.ShouldStop() {
			return cmn.NewAbortedError("defragment")
		}
		if err := e.timedPhase("fixup", e.fixup); err != nil {
			return err
		}
		if e.ctrl.ShouldStop() {
			return cmn.NewAbortedError("fixup")
		}
		if err := e.timedPhase("optimize", e.optimize); err != nil {
			return err
		}
		if e.ctrl.ShouldStop() {
			return cmn.NewAbortedError("optimize")
		}
		if err := e.timedPhase("fixup", e.fixup); err != nil {
			return err
		}
	case ForceTogether:
		return e.timedPhase("force-together", e.forceTogether)
	case MoveToEnd:
		return e.timedPhase("move-to-end", e.moveToEnd)
	case SortByNameMode:
		return e.timedPhase("sort-by-name", func() error { return e.sortPhase(SortByName) })
	case SortBySizeMode:
		return e.timedPhase("sort-by-size", func() error { return e.sortPhase(SortBySize) })
	case SortByAccessMode:
		return e.timedPhase("sort-by-access", func() error { return e.sortPhase(SortByLastAccess) })
	case SortByChangedMode:
		return e.timedPhase("sort-by-changed", func() error { return e.sortPhase(SortByMftChange) })
	case SortByCreatedMode:
		return e.timedPhase("sort-by-created", func() error { return e.sortPhase(SortByCreation) })
	}

	if e.ctrl.ShouldStop() {
		return cmn.NewAbortedError("run")
	}
	if e.Opts.MoveMFT && e.Info.FSType == volume.FSNTFS {
		return e.timedPhase("mft-move", e.moveMftToBeginOfDisk)
	}
	return nil
}

// analyze implements spec §4.8 step 1: parse the volume, classify every
// item, draw it through the reporter, and compute the initial zone
// boundaries.
func (e *Engine) analyze() error {
	info, err := e.Parser.Parse(e.Info.Path, e.tree)
	if err != nil {
		return err
	}
	*e.Info = *info
	e.Info.IgnoreMFTExcludes = e.Opts.IgnoreMFTExcludes

	nowTicks := time.Now().UnixNano() / 100

	e.tree.InOrder(func(it *item.Item) bool {
		if e.ctrl.ShouldStop() {
			return false
		}
		e.classify(it, nowTicks)
		e.Reporter.OnAnalyze(e.status("analyze"), it)
		return true
	})

	e.boundaries = zone.Compute(e.tree, e.Info, e.Opts.FreeSpacePercent)
	e.Reporter.OnStatus(e.status("analyze"))
	return nil
}

// classify assigns is_excluded, is_hog and is_unmovable from the
// include/exclude/space-hog masks, the last-access and size thresholds, and
// the hard-coded unmovable list (spec §4.8 step 1). The hard-coded list
// itself is applied by the parser (it alone knows the volume's root
// syntax); classify only adds mask- and threshold-driven flags.
func (e *Engine) classify(it *item.Item, nowTicks int64) {
	if matchAny(e.Opts.ExcludeMasks, it.LongPath, it.ShortPath) {
		it.IsExcluded = true
	}

	hogMasks := e.Opts.SpaceHogMasks
	if hogMasks == nil {
		hogMasks = defaultSpaceHogMasks
	}
	if matchAny(hogMasks, it.LongPath, it.ShortPath) {
		it.IsHog = true
	}
	if it.Bytes > spaceHogSizeThresholdBytes {
		it.IsHog = true
	}
	if e.Opts.UseLastAccess && item.LastAccessBefore(nowTicks, it.LastAccessTime, 30*24*time.Hour) {
		it.IsHog = true
	}
}

func (e *Engine) status(phase string) reporter.State {
	return reporter.State{
		RunID:          e.runID,
		Phase:          phase,
		ItemsDone:      int64(e.tree.Len()),
		ItemsTotal:     int64(e.tree.Len()),
		ClustersTotal:  e.Info.TotalClusters,
		CannotMoveDirs: e.mover.CannotMoveDirs(),
	}
}

// moveItem wraps mover.Move with throttle bookkeeping and the OnMove
// reporter callback (spec §5 "suspension points": every OS move call is a
// potential cancellation poll, recorded against the throttle).
func (e *Engine) moveItem(it *item.Item, newLCN cluster.LCN, offset, size int64, direction item.Direction) error {
	fromLCN := it.LCN()
	start := time.Now()
	err := e.mover.Move(it, newLCN, offset, size, direction)
	e.throttle.RecordRun(time.Since(start))
	e.throttle.MaybeSleep(e.ctrl)
	if err == nil {
		e.tree.Detach(it)
		e.tree.Insert(it)
		e.Reporter.OnMove(it, size, fromLCN, newLCN, cluster.VCN(offset))
	}
	return err
}

// snapshotAscending collects every item in the tree in ascending-LCN order
// at the moment it's called. Phases that may move the item they're
// currently visiting must walk this snapshot instead of the live tree:
// moveItem re-keys the tree on every successful move, which would otherwise
// corrupt an in-progress InOrder walk (grounded on the original's own
// comment at this exact phase -- "the loop will change the position of the
// item in the tree, so we have to determine the next item before executing
// the loop", JkDefragLib.cpp).
func (e *Engine) snapshotAscending() []*item.Item {
	var items []*item.Item
	e.tree.InOrder(func(it *item.Item) bool {
		items = append(items, it)
		return true
	})
	return items
}

// defragment implements spec §4.8 step 2.
func (e *Engine) defragment() error {
	for _, it := range e.snapshotAscending() {
		if e.ctrl.ShouldStop() {
			return nil
		}
		if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
			continue
		}
		if !analyzer.IsFragmented(it, 0, it.Clusters) {
			continue
		}
		if err := e.placeFragmentedItem(it); err != nil {
			if cos.IsItemLevel(err) {
				xlog.Warningf("defragment: %s: %v", it.LongPath, err)
				continue
			}
			if isDiskFull(err) {
				e.Reporter.OnDebug(reporter.Warning, it, err.Error())
				return nil
			}
			return err
		}
	}
	return nil
}

// isDiskFull reports whether err is cos.ErrDiskFull: per spec §7 this is a
// debug message, not a fatal failure -- the phase that hit it returns early,
// but the run as a whole still succeeds (spec §8 scenario 6).
func isDiskFull(err error) bool {
	var diskFull *cos.ErrDiskFull
	return errors.As(err, &diskFull)
}

// placeFragmentedItem finds a gap (preferring the item's preferred zone,
// falling back anywhere) and moves the item into it in one piece if it
// fits, else greedily piecewise into the best gaps available (spec §4.8
// step 2).
func (e *Engine) placeFragmentedItem(it *item.Item) error {
	zoneBegin, zoneEnd := e.zoneRange(it.PreferredZone())
	gap, ok, err := e.findGap(zoneBegin, zoneEnd, it.Clusters, true, false)
	if err != nil {
		return err
	}
	if !ok {
		gap, ok, err = e.findGap(0, 0, it.Clusters, true, false)
		if err != nil {
			return err
		}
	}
	if ok {
		return e.moveItem(it, gap.Begin, 0, it.Clusters, item.DirAbove)
	}
	return e.placeFragmentedItemPiecewise(it)
}

// placeFragmentedItemPiecewise handles the case where no single gap is big
// enough to hold it whole: it repeatedly takes the single largest free
// extent left on the volume and moves as much of the item into it as will
// fit, largest gap first, until the item is fully placed or the volume has
// no more free space to offer (spec §4.8 step 2, grounded on Defragment's
// move_piecewise fallback against successive find_gap results:
// JkDefragLib.cpp Defragment()).
func (e *Engine) placeFragmentedItemPiecewise(it *item.Item) error {
	// A minSize no real gap can meet forces findGap's mustFit=false path to
	// fall back to the single largest free extent on the volume, regardless
	// of how much of the item is left to place.
	noGapCanMeet := e.Info.TotalClusters + 1

	var placed int64
	for placed < it.Clusters {
		remaining := it.Clusters - placed
		gap, ok, err := e.findGap(0, 0, noGapCanMeet, false, false)
		if err != nil {
			return err
		}
		chunk := gap.Length()
		if !ok || chunk <= 0 {
			return &cos.ErrDiskFull{NeedClusters: remaining}
		}
		if chunk > remaining {
			chunk = remaining
		}
		if err := e.moveItem(it, gap.Begin, placed, chunk, item.DirAbove); err != nil {
			return err
		}
		placed += chunk
	}
	return nil
}

func (e *Engine) zoneRange(z item.Zone) (cluster.LCN, cluster.LCN) {
	switch z {
	case item.ZoneDirectories:
		return 0, e.boundaries.ZoneEnd[0]
	case item.ZoneRegular:
		return e.boundaries.ZoneEnd[0], e.boundaries.ZoneEnd[1]
	default:
		return e.boundaries.ZoneEnd[1], e.boundaries.ZoneEnd[2]
	}
}

// fixup implements spec §4.8 step 3.
func (e *Engine) fixup() error {
	nowTicks := time.Now().UnixNano() / 100
	for _, it := range e.snapshotAscending() {
		if e.ctrl.ShouldStop() {
			return nil
		}
		if it.IsUnmovable || it.IsExcluded || it.Clusters == 0 {
			continue
		}
		if nowTicks-it.MFTChangeTime < recentModifyWindowTicks {
			continue
		}
		if !e.needsFixup(it) {
			continue
		}
		zoneBegin, zoneEnd := e.zoneRange(it.PreferredZone())
		gap, ok, err := e.findGap(zoneBegin, zoneEnd, it.Clusters, true, false)
		if err != nil {
			return err
		}
		if !ok {
			continue // spec: DiskFull for this placement just skips it
		}
		if err := e.moveItem(it, gap.Begin, 0, it.Clusters, item.DirAbove); err != nil {
			if !cos.IsItemLevel(err) {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) needsFixup(it *item.Item) bool {
	if analyzer.IsFragmented(it, 0, it.Clusters) {
		return true
	}
	if e.Info.IsExcluded(it.LCN()) && !e.isMFT(it) {
		return true
	}
	if !it.IsDir && !it.IsHog && it.LCN() < e.boundaries.ZoneEnd[0] {
		return true
	}
	if it.IsHog && it.LCN() < e.boundaries.ZoneEnd[1] {
		return true
	}
	return false
}

func (e *Engine) isMFT(it *item.Item) bool {
	return matchMask(`*\$mft`, it.LongPath)
}

// moveMftToBeginOfDisk implements spec §4.8 step 5.
func (e *Engine) moveMftToBeginOfDisk() error {
	mft := selector.FindHighestItem(e.tree, cluster.NewExtent(0, e.Info.TotalClusters), item.DirAbove, item.ZoneAll)
	for it := e.tree.Smallest(); it != nil; it = item.NextPrev(it, item.DirAbove) {
		if matchMask(`*\$mft`, it.LongPath) {
			mft = it
			break
		}
	}
	if mft == nil || mft.IsUnmovable || mft.Clusters == 0 {
		return nil
	}
	gap, ok, err := e.findGap(0, 0, mft.Clusters, true, false)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return e.moveItem(mft, gap.Begin, 0, mft.Clusters, item.DirAbove)
}
