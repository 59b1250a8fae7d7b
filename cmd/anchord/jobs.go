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

	"github.com/AakashChawla07/Herbtrace-Hack/internal/anchord"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/htapi"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/spf13/cobra"
)

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Poll the ledger once for every pending transaction in the lookback window",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, m anchord.Manager) error {
				summary, err := m.Reconciler().ReconcileAll(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, summary)
			})
		},
	}
}

type cleanupResult struct {
	Deleted int64 `json:"deleted"`
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete failed transaction records older than the retention period",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, m anchord.Manager) error {
				deleted, err := m.Cleanup().DeleteExpired(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, &cleanupResult{Deleted: deleted})
			})
		},
	}
}

func parseKindArg(ctx context.Context, s string) (htapi.Kind, error) {
	kind, ok := htapi.ParseKind(s)
	if !ok {
		return "", i18n.NewError(ctx, msgs.MsgRecordKindNotAnchorable, s)
	}
	return kind, nil
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <kind> <id>",
		Short: "Compare a record with the hash anchored on the ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, m anchord.Manager) error {
				kind, err := parseKindArg(ctx, args[0])
				if err != nil {
					return err
				}
				res, err := m.Verifier().Verify(ctx, kind, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
}

type anchorResult struct {
	Kind            htapi.Kind `json:"kind"`
	SubjectID       string     `json:"subjectId"`
	TransactionHash string     `json:"transactionHash"`
}

func newAnchorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "anchor <kind> <id>",
		Short: "Anchor one record now, retrying per the scheduler policy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(cmd, func(ctx context.Context, m anchord.Manager) error {
				kind, err := parseKindArg(ctx, args[0])
				if err != nil {
					return err
				}
				txHash, err := m.Scheduler().AnchorNow(ctx, kind, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, &anchorResult{Kind: kind, SubjectID: args[1], TransactionHash: txHash})
			})
		},
	}
}
