package reporter

import (
	"testing"

	"github.com/jkdefrag/godefrag/cluster"
	"github.com/jkdefrag/godefrag/item"
	"github.com/stretchr/testify/assert"
)

func TestLogReporterImplementsReporter(t *testing.T) {
	var r Reporter = NewLogReporter()
	assert.NotNil(t, r)
}

func TestLogReporterCallbacksDoNotPanic(t *testing.T) {
	r := NewLogReporter()
	it := &item.Item{LongPath: `C:\file.txt`}

	assert.NotPanics(t, func() {
		r.OnStatus(State{Phase: "analyze", ItemsDone: 1, ItemsTotal: 2})
		r.OnAnalyze(State{Phase: "analyze"}, it)
		r.OnMove(it, 10, cluster.LCN(5), cluster.LCN(50), cluster.VCN(0))
		r.OnDebug(DetailedProgress, it, "moving")
		r.OnDrawCluster(cluster.LCN(0), cluster.LCN(10), ColorFragmented)
		r.OnClearScreen("")
	})
}

func TestDebugLevelString(t *testing.T) {
	assert.Equal(t, "Fatal", Fatal.String())
	assert.Equal(t, "DetailedGapFinding", DetailedGapFinding.String())
	assert.Equal(t, "Unknown", DebugLevel(99).String())
}
