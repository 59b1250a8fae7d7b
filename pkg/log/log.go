// Copyright © 2024 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const maxFieldLength = 61

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L accesses the current logger from the context
	L = loggerFromContext

	initAtLeastOnce atomic.Bool
)

type (
	ctxLogKey struct{}
)

func InitConfig(conf *htconf.LogConfig) {
	initAtLeastOnce.Store(true) // must store before SetLevel

	SetLevel(confutil.StringNotEmpty(conf.Level, *htconf.LogDefaults.Level))
	logrus.SetOutput(outputFor(conf))

	formatter := newFormatter(conf)
	if confutil.Bool(conf.UTC, *htconf.LogDefaults.UTC) {
		formatter = &utcFormat{f: formatter}
	}
	logrus.SetFormatter(formatter)
}

func outputFor(conf *htconf.LogConfig) io.Writer {
	switch confutil.StringNotEmpty(conf.Output, *htconf.LogDefaults.Output) {
	case "file":
		filename := confutil.StringNotEmpty(conf.File.Filename, *htconf.LogDefaults.File.Filename)
		rootLogger.Infof("Logs diverted to %s", filename)
		maxSizeBytes := confutil.ByteSize(conf.File.MaxSize, 0, *htconf.LogDefaults.File.MaxSize)
		maxAge := confutil.DurationMin(conf.File.MaxAge, 0, *htconf.LogDefaults.File.MaxAge)
		return &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    int(math.Ceil(float64(maxSizeBytes) / 1024 / 1024)), // megabytes, rounded up
			MaxBackups: confutil.IntMin(conf.File.MaxBackups, 0, *htconf.LogDefaults.File.MaxBackups),
			MaxAge:     int(math.Ceil(float64(maxAge) / float64(24*time.Hour))), // days, rounded up
			Compress:   confutil.Bool(conf.File.Compress, *htconf.LogDefaults.File.Compress),
		}
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}

func IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}

// EnsureInit applies default config if nothing has initialized logging yet (unit tests)
func EnsureInit() {
	if !initAtLeastOnce.Load() {
		InitConfig(&htconf.LogConfig{})
	}
}

// WithLogger adds the specified logger to the context
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	EnsureInit()
	return context.WithValue(ctx, ctxLogKey{}, logger)
}

// WithLogField adds the specified field to the logger in the context.
// Long values (such as transaction hashes with prefixes) are truncated.
func WithLogField(ctx context.Context, key, value string) context.Context {
	EnsureInit()
	return WithLogger(ctx, loggerFromContext(ctx).WithField(key, truncate(value)))
}

// WithRole tags all log lines from a background component
func WithRole(ctx context.Context, role string) context.Context {
	return WithLogField(ctx, "role", role)
}

func truncate(value string) string {
	if len(value) > maxFieldLength {
		return value[0:maxFieldLength] + "..."
	}
	return value
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(ctxLogKey{})
	if logger == nil {
		return rootLogger
	}
	return logger.(*logrus.Entry)
}

// GetLevel reports the active level using the same names SetLevel accepts
func GetLevel() string {
	if l := logrus.GetLevel(); l != logrus.WarnLevel {
		return l.String()
	}
	return "warn"
}

// SetLevel falls back to info for anything unrecognized, and never allows
// a level that would suppress errors.
func SetLevel(level string) {
	l, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil || l < logrus.ErrorLevel {
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

type utcFormat struct {
	f logrus.Formatter
}

func (utc *utcFormat) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return utc.f.Format(e)
}

func newFormatter(conf *htconf.LogConfig) logrus.Formatter {
	defs := htconf.LogDefaults
	noColor := confutil.Bool(conf.DisableColor, *defs.DisableColor)
	forceColor := confutil.Bool(conf.ForceColor, *defs.ForceColor)
	tsFormat := confutil.StringNotEmpty(conf.TimeFormat, *defs.TimeFormat)

	format := confutil.StringNotEmpty(conf.Format, *defs.Format)
	logrus.SetReportCaller(format == "detailed")
	switch format {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: tsFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  confutil.StringNotEmpty(conf.JSON.TimestampField, *defs.JSON.TimestampField),
				logrus.FieldKeyLevel: confutil.StringNotEmpty(conf.JSON.LevelField, *defs.JSON.LevelField),
				logrus.FieldKeyMsg:   confutil.StringNotEmpty(conf.JSON.MessageField, *defs.JSON.MessageField),
				logrus.FieldKeyFunc:  confutil.StringNotEmpty(conf.JSON.FuncField, *defs.JSON.FuncField),
				logrus.FieldKeyFile:  confutil.StringNotEmpty(conf.JSON.FileField, *defs.JSON.FileField),
			},
		}
	case "detailed":
		return &logrus.TextFormatter{
			DisableColors:   noColor,
			ForceColors:     forceColor,
			TimestampFormat: tsFormat,
			FullTimestamp:   true,
		}
	default:
		return &prefixed.TextFormatter{
			DisableColors:   noColor,
			ForceColors:     forceColor,
			TimestampFormat: tsFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
}
