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

package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/anchord"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/spf13/cobra"
)

var managerFactory = anchord.NewManager

const defaultConfigFile = "anchord.yaml"

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "anchord",
		Short:         "HerbTrace ledger anchoring daemon",
		Long:          `anchord anchors supply chain records onto an Ethereum ledger, and reconciles the outcome of every submitted transaction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigFile, "path to the YAML configuration file")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newCleanupCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newAnchorCommand())
	return rootCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithLogField(ctx, "pid", strconv.Itoa(os.Getpid()))
}

func loadConfig(cmd *cobra.Command) (*htconf.AnchorConfig, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	var conf htconf.AnchorConfig
	if err := htconf.ReadAndParseYAMLFile(commandContext(cmd), configFile, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// withManager runs fn against an initialized but not started manager, for the one-shot commands
func withManager(cmd *cobra.Command, fn func(ctx context.Context, m anchord.Manager) error) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		log.L(commandContext(cmd)).Error(err.Error())
		return err
	}
	ctx := commandContext(cmd)
	m := managerFactory(ctx, conf)
	defer m.Stop()
	if err = m.Init(); err == nil {
		err = fn(ctx, m)
	}
	if err != nil {
		log.L(ctx).Error(err.Error())
	}
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
