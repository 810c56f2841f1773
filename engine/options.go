package engine

// OptimizeMode selects the phase grid the optimize stage runs (spec §6,
// stable numeric codes matching the CLI's `-a N` flag).
type OptimizeMode int

const (
	AnalyzeOnly          OptimizeMode = 0
	AnalyzeFixup         OptimizeMode = 1
	AnalyzeFixupFastOpt  OptimizeMode = 2 // default
	analyzeFixupFastOptV3 OptimizeMode = 3 // deprecated alias of AnalyzeFixupFastOpt
	ForceTogether        OptimizeMode = 4
	MoveToEnd            OptimizeMode = 5
	SortByNameMode       OptimizeMode = 6
	SortBySizeMode       OptimizeMode = 7
	SortByAccessMode     OptimizeMode = 8
	SortByChangedMode    OptimizeMode = 9
	SortByCreatedMode    OptimizeMode = 10
)

// normalize folds the deprecated mode 3 into mode 2 (spec §6).
func (m OptimizeMode) normalize() OptimizeMode {
	if m == analyzeFixupFastOptV3 {
		return AnalyzeFixupFastOpt
	}
	return m
}

// RunOptions configures one engine run (spec §6 CLI flags, §4.8 phases).
type RunOptions struct {
	OptimizeMode     OptimizeMode
	Speed            int64 // 1..100, spec §5
	FreeSpacePercent int64 // spec §4.6
	UseLastAccess    bool
	ExcludeMasks     []string
	SpaceHogMasks    []string
	// MoveMFT opts into phase 5 (spec §4.8 step 5): only meaningful on NTFS
	// volumes whose OS version supports an online MFT move, per spec §9's
	// open question -- the caller asserts both preconditions by setting
	// this explicitly rather than the engine probing for OS support itself.
	MoveMFT bool
	// IgnoreMFTExcludes disables treating MFT exclusion ranges as in-use
	// (spec §3), normally left false.
	IgnoreMFTExcludes bool
}

// recentModifyWindowTicks is the "skip files modified within the last 15
// minutes" rule in the fixup phase (spec §4.8 step 3), expressed in 100ns
// ticks (the parser's timestamp unit).
const recentModifyWindowTicks = 15 * 60 * 1e7

// spaceHogSizeThresholdBytes is the fixed size threshold (spec §4.8 step 1)
// for flagging an item as a space hog absent an explicit user mask match.
const spaceHogSizeThresholdBytes = 50 * 1024 * 1024

// lastAccessAgeTicks is the fixed last-access threshold (spec §4.8 step 1,
// "≥ 30 days ago").
const lastAccessAgeTicks = int64(30 * 24 * 60 * 60 * 1e7)
