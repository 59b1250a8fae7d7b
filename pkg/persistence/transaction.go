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

package persistence

import (
	"context"
	"runtime/debug"

	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"gorm.io/gorm"
)

type DBTX interface {
	// Access the Gorm DB object for the transaction
	DB() *gorm.DB
	// Only called after a transaction is successfully committed - useful for triggering other actions that are conditional on new data
	AddPostCommit(func(ctx context.Context))
}

type transaction struct {
	db          *gorm.DB
	postCommits []func(ctx context.Context)
}

func (t *transaction) DB() *gorm.DB {
	return t.db
}

func (t *transaction) AddPostCommit(fn func(ctx context.Context)) {
	t.postCommits = append(t.postCommits, fn)
}

// Transaction runs fn inside a gorm transaction, then runs any post-commit callbacks on success.
// A panic inside fn is logged and re-raised.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, dbTX DBTX) error) (err error) {
	completed := false
	tx := &transaction{}
	defer func() {
		if !completed {
			log.L(ctx).Errorf("Panic within database transaction: %s", debug.Stack())
			return
		}
		if err == nil {
			for _, fn := range tx.postCommits {
				fn(ctx)
			}
		}
	}()

	err = db.WithContext(ctx).Transaction(func(gormTX *gorm.DB) error {
		tx.db = gormTX
		return fn(ctx, tx)
	})

	completed = true
	return err
}
