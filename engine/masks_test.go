package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchMaskCaseInsensitive(t *testing.T) {
	assert.True(t, matchMask(`*.ZIP`, `C:\data\archive.zip`))
	assert.True(t, matchMask(`c:\windows\*`, `C:\Windows\System32`))
	assert.False(t, matchMask(`*.zip`, `C:\data\archive.rar`))
}

func TestMatchAnyChecksBothPaths(t *testing.T) {
	masks := []string{"*.tmp"}
	assert.True(t, matchAny(masks, `C:\long\name.tmp`, ""))
	assert.True(t, matchAny(masks, `C:\long\name.dat`, `C:\LONG~1\NAME.TMP`))
	assert.False(t, matchAny(masks, `C:\long\name.dat`, `C:\LONG~1\NAME.DAT`))
}

func TestDefaultSpaceHogMasksMatchKnownPaths(t *testing.T) {
	assert.True(t, matchAny(defaultSpaceHogMasks, `C:\movies\clip.mkv`, ""))
	assert.True(t, matchAny(defaultSpaceHogMasks, `C:\archives\backup.iso`, ""))
	assert.False(t, matchAny(defaultSpaceHogMasks, `C:\docs\report.docx`, ""))
}
