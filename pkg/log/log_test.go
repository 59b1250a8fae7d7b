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
	"os"
	"path"
	"testing"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContext(t *testing.T) {
	ctx := WithLogField(context.Background(), "batch", "BATCH-0001")
	assert.Equal(t, "BATCH-0001", L(ctx).Data["batch"])
}

func TestLogRole(t *testing.T) {
	ctx := WithRole(context.Background(), "reconcile")
	assert.Equal(t, "reconcile", L(ctx).Data["role"])
}

func TestLogContextLimited(t *testing.T) {
	ctx := WithLogField(context.Background(), "tx", "0x0123456789012345678901234567890123456789012345678901234567890123")
	assert.Equal(t, "0x01234567890123456789012345678901234567890123456789012345678...", L(ctx).Data["tx"])
}

func TestLevels(t *testing.T) {
	defer SetLevel("info")

	SetLevel("eRrOr")
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
	assert.Equal(t, "error", GetLevel())

	SetLevel("WARNING")
	assert.Equal(t, "warn", GetLevel())

	SetLevel("DEBUG")
	assert.True(t, IsDebugEnabled())
	assert.Equal(t, "debug", GetLevel())

	SetLevel("trace")
	assert.Equal(t, "trace", GetLevel())

	SetLevel("something else")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.Equal(t, "info", GetLevel())
}

func TestSetFormatting(t *testing.T) {
	defer func() { InitConfig(&htconf.LogConfig{}) }()
	for _, conf := range []*htconf.LogConfig{
		{DisableColor: confutil.P(true), UTC: confutil.P(true)},
		{Output: confutil.P("stdout")},
		{Format: confutil.P("detailed")},
		{Format: confutil.P("json")},
	} {
		InitConfig(conf)
		L(context.Background()).Infof("formatted")
	}
	logrus.SetReportCaller(false)
}

func TestSetFormattingFile(t *testing.T) {
	defer func() { InitConfig(&htconf.LogConfig{}) }()
	logFile := path.Join(t.TempDir(), "anchord.log")
	InitConfig(&htconf.LogConfig{
		Output: confutil.P("file"),
		File: htconf.LogFileConfig{
			Filename: confutil.P(logFile),
		},
	})
	L(context.Background()).Infof("File logs")

	fileInfo, err := os.Stat(logFile)
	require.NoError(t, err)
	assert.False(t, fileInfo.IsDir())
}
