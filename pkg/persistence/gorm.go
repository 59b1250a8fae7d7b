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
	"database/sql"
	"errors"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/internal/msgs"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/log"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"gorm.io/gorm"

	// Import migrate file source
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// SQLDBProvider supplies the dialect specifics for one SQL engine.
type SQLDBProvider interface {
	DBName() string
	Open(uri string) gorm.Dialector
	GetMigrationDriver(*sql.DB) (migratedb.Driver, error)
}

type gormPersistence struct {
	dialect SQLDBProvider
	gdb     *gorm.DB
	sqlDB   *sql.DB
	conf    *htconf.SQLDBConfig
}

// NewSQLProvider opens the pool, applies the pool limits and brings the
// anchoring schema up to date when autoMigrate is set.
func NewSQLProvider(ctx context.Context, dialect SQLDBProvider, conf *htconf.SQLDBConfig, defs *htconf.SQLDBConfig) (Persistence, error) {
	if conf.DSN == "" {
		return nil, i18n.NewError(ctx, msgs.MsgPersistenceMissingURI)
	}
	gdb, err := gorm.Open(dialect.Open(conf.DSN), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgPersistenceInitFailed)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgPersistenceInitFailed)
	}
	if conf.DebugQueries {
		gdb = gdb.Debug()
	}
	gp := &gormPersistence{dialect: dialect, gdb: gdb, sqlDB: sqlDB, conf: conf}
	gp.applyPoolLimits(defs)
	log.L(ctx).Debugf("%s pool ready", dialect.DBName())

	if confutil.Bool(conf.AutoMigrate, *defs.AutoMigrate) {
		if err := gp.migrateUp(ctx); err != nil {
			return nil, err
		}
	}
	return gp, nil
}

func (gp *gormPersistence) applyPoolLimits(defs *htconf.SQLDBConfig) {
	c := gp.conf
	gp.sqlDB.SetMaxOpenConns(confutil.IntMin(c.MaxOpenConns, 1, *defs.MaxOpenConns))
	gp.sqlDB.SetMaxIdleConns(confutil.Int(c.MaxIdleConns, *defs.MaxIdleConns))
	gp.sqlDB.SetConnMaxIdleTime(confutil.DurationMin(c.ConnMaxIdleTime, 0, *defs.ConnMaxIdleTime))
	gp.sqlDB.SetConnMaxLifetime(confutil.DurationMin(c.ConnMaxLifetime, 0, *defs.ConnMaxLifetime))
}

func (gp *gormPersistence) migrateUp(ctx context.Context) error {
	if gp.conf.MigrationsDir == "" {
		return i18n.NewError(ctx, msgs.MsgPersistenceMissingMigrationDir)
	}
	source := "file://" + gp.conf.MigrationsDir
	log.L(ctx).Infof("Applying anchoring schema migrations from %s", source)
	driver, err := gp.dialect.GetMigrationDriver(gp.sqlDB)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgPersistenceMigrationFailed)
	}
	m, err := migrate.NewWithDatabaseInstance(source, gp.dialect.DBName(), driver)
	if err == nil {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return i18n.WrapError(ctx, err, msgs.MsgPersistenceMigrationFailed)
	}
	version, dirty, _ := m.Version()
	log.L(ctx).Infof("Schema at version %d (dirty=%t)", version, dirty)
	return nil
}

func (gp *gormPersistence) DB() *gorm.DB {
	return gp.gdb
}

func (gp *gormPersistence) Close() {
	if err := gp.sqlDB.Close(); err != nil {
		log.L(context.Background()).Warnf("Closing %s pool: %s", gp.dialect.DBName(), err)
		return
	}
	log.L(context.Background()).Infof("%s pool closed", gp.dialect.DBName())
}

func (gp *gormPersistence) Transaction(ctx context.Context, fn func(ctx context.Context, dbTX DBTX) error) error {
	return Transaction(ctx, gp.gdb, fn)
}
