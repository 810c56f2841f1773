package engine

import (
	"regexp"
	"strings"
)

// matchAny reports whether the long path, or the short path when set,
// matches any of masks, with mask and path both lower-cased first. A * in a
// mask matches any run of characters (path separators included) and a ?
// matches exactly one character (spec §6 "masks
// are case-insensitive... an item matches if either its long or short path
// matches").
func matchAny(masks []string, longPath, shortPath string) bool {
	for _, m := range masks {
		if matchMask(m, longPath) || (shortPath != "" && matchMask(m, shortPath)) {
			return true
		}
	}
	return false
}

func matchMask(mask, path string) bool {
	re := "^" + regexp.QuoteMeta(strings.ToLower(mask)) + "$"
	re = strings.NewReplacer(`\*`, `.*`, `\?`, `.`).Replace(re)
	ok, err := regexp.MatchString(re, strings.ToLower(path))
	return err == nil && ok
}

// defaultSpaceHogMasks is the built-in space-hog mask list (spec §6),
// applied unless the caller passes an explicit DisableDefaults-equivalent
// (an empty RunOptions.SpaceHogMasks with a nil, as opposed to an explicit
// empty non-nil slice, falls back to this list).
var defaultSpaceHogMasks = []string{
	`*\$recycle.bin\*`,
	`*\recycler\*`,
	`*\windows\softwaredistribution\*`,
	`*\windows\installer\*`,
	`*\symbols\*`,
	`*\fonts\*`,
	"*.7z",
	"*.zip",
	"*.rar",
	"*.gz",
	"*.iso",
	"*.mp3",
	"*.avi",
	"*.mkv",
}

// DefaultSpaceHogMasks returns a copy of the built-in space-hog mask list,
// for callers (cmd/godefrag's -u/-no-default-masks merge) that need to
// combine it with user-supplied masks before constructing RunOptions.
func DefaultSpaceHogMasks() []string {
	out := make([]string, len(defaultSpaceHogMasks))
	copy(out, defaultSpaceHogMasks)
	return out
}
