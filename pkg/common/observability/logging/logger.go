/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging sets up the process loggers. Every logger built here writes to stderr so that reports printed
// on stdout stay machine readable.
package logging

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	logutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/logging"
)

// level backs every process logger, so verbosity parsed from flags also reaches the loggers handed out before
// parsing.
var level = uberzap.NewAtomicLevelAt(zapcore.InfoLevel)

// InitSetupLogging installs an info level logger for controller-runtime and klog users, so messages logged while
// flags are being parsed are kept.
func InitSetupLogging() {
	logger := zap.New(zap.Level(level), zap.WriteTo(os.Stderr), zap.RawZapOpts(uberzap.AddCaller()))
	ctrl.SetLogger(logger)
	klog.SetLogger(logger)
}

// InitLogging builds the run logger from the parsed zap options. The options' level becomes the process level.
// Libraries that log through klog, such as the apimachinery decoders, are redirected to the returned logger.
func InitLogging(opts *zap.Options) logr.Logger {
	if opts.Level != nil {
		switch lvl := opts.Level.(type) {
		case uberzap.AtomicLevel:
			level.SetLevel(lvl.Level())
		case zapcore.Level:
			level.SetLevel(lvl)
		}
	}
	logger := zap.New(zap.UseFlagOptions(opts), zap.Level(level), zap.WriteTo(os.Stderr),
		zap.RawZapOpts(uberzap.AddCaller()))
	klog.SetLogger(logger)
	return logger
}

// Level returns the current process level.
func Level() zapcore.Level {
	return level.Level()
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	return zap.New(
		zap.UseDevMode(true),
		zap.Level(uberzap.NewAtomicLevelAt(zapcore.Level(-1*logutil.TRACE))),
		zap.RawZapOpts(uberzap.AddCaller()),
	)
}

// NewTestLoggerIntoContext creates a new Zap logger using the dev mode and inserts it into the given context.
func NewTestLoggerIntoContext(ctx context.Context) context.Context {
	return log.IntoContext(ctx, NewTestLogger())
}
