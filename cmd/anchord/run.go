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
	"os"
	"os/signal"
	"syscall"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the anchoring daemon until interrupted",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				log.L(commandContext(cmd)).Error(err.Error())
				return err
			}
			ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer cancel()
			return runDaemon(ctx, conf)
		},
	}
}

// runDaemon blocks until ctx is cancelled, then stops every component
func runDaemon(ctx context.Context, conf *htconf.AnchorConfig) error {
	m := managerFactory(ctx, conf)
	defer m.Stop()

	err := m.Init()
	if err == nil {
		err = m.Start()
	}
	if err != nil {
		log.L(ctx).Error(err.Error())
		return err
	}
	log.L(ctx).Infof("anchord started")

	<-ctx.Done()
	log.L(ctx).Infof("anchord stopping")
	return nil
}
