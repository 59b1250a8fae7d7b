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

package htconf

import (
	"context"
	"os"

	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"

	"sigs.k8s.io/yaml" // handles json tags
)

type AnchorConfig struct {
	Log          LogConfig          `json:"log"`
	DB           DBConfig           `json:"db"`
	Ledger       LedgerConfig       `json:"ledger"`
	Scheduler    SchedulerConfig    `json:"scheduler"`
	Reconcile    ReconcileConfig    `json:"reconcile"`
	Cleanup      CleanupConfig      `json:"cleanup"`
	StatusServer StatusServerConfig `json:"statusServer"`
	DebugServer  DebugServerConfig  `json:"debugServer"`
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}

	return nil
}
