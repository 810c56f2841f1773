package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli"

	"github.com/jkdefrag/godefrag/reporter"
)

func TestBuildReporterPlainByDefault(t *testing.T) {
	runWithFlags(t, nil, func(c *cli.Context) {
		rep := buildReporter(c, true)
		_, isProgress := rep.(*reporter.ProgressReporter)
		assert.False(t, isProgress)
	})
}

func TestBuildReporterUsesProgressWhenAllowedAndRequested(t *testing.T) {
	runWithFlags(t, []string{"-progress"}, func(c *cli.Context) {
		rep := buildReporter(c, true)
		_, isProgress := rep.(*reporter.ProgressReporter)
		assert.True(t, isProgress)
	})
}

func TestBuildReporterIgnoresProgressWhenNotAllowed(t *testing.T) {
	runWithFlags(t, []string{"-progress"}, func(c *cli.Context) {
		rep := buildReporter(c, false)
		_, isProgress := rep.(*reporter.ProgressReporter)
		assert.False(t, isProgress)
	})
}

func TestBuildReporterAppliesDebugLevel(t *testing.T) {
	runWithFlags(t, []string{"-d", "2"}, func(c *cli.Context) {
		rep := buildReporter(c, false)
		lr, ok := rep.(*reporter.LogReporter)
		if assert.True(t, ok) {
			assert.Equal(t, reporter.Progress, lr.MinLevel)
		}
	})
}
