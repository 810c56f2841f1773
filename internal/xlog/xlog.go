// Package xlog wraps github.com/golang/glog the same way the teacher wraps
// its upstream logging dependency under 3rdparty/glog: a thin pass-through
// so call sites (engine, volume, mover, cmd/godefrag) don't import glog
// directly, and so the wrapper is the single place that would change if the
// logging backend ever did.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package xlog

import "github.com/golang/glog"

func Infof(format string, args ...interface{})    { glog.Infof(format, args...) }
func Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func Errorf(format string, args ...interface{})   { glog.Errorf(format, args...) }
func Info(args ...interface{})                    { glog.Info(args...) }
func Warning(args ...interface{})                 { glog.Warning(args...) }
func Error(args ...interface{})                   { glog.Error(args...) }
func Flush()                                       { glog.Flush() }


// V reports whether verbosity level v is enabled, matching glog's `V(2).Infof(...)`
// idiom used throughout the teacher codebase for DetailedProgress-grade logging.
func V(level glog.Level) glog.Verbose { return glog.V(level) }
