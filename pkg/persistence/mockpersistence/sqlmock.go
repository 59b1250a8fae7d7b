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

package mockpersistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AakashChawla07/Herbtrace-Hack/config/pkg/htconf"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/confutil"
	"github.com/AakashChawla07/Herbtrace-Hack/pkg/persistence"
	"github.com/DATA-DOG/go-sqlmock"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// SQLMockDefaults keeps a single connection so expectations are consumed in order.
var SQLMockDefaults = &htconf.SQLDBConfig{
	MaxOpenConns:    confutil.P(1),
	MaxIdleConns:    confutil.P(1),
	ConnMaxIdleTime: confutil.P("0"),
	ConnMaxLifetime: confutil.P("0"),
	AutoMigrate:     confutil.P(false),
}

// SQLMockProvider is a Persistence whose statements are answered by go-sqlmock,
// so stores can be pushed down their DB failure paths.
type SQLMockProvider struct {
	DB   *sql.DB
	Mock sqlmock.Sqlmock
	P    persistence.Persistence
}

var errNoMigrations = errors.New("sqlmock has no migration driver")

func NewSQLMockProvider() (*SQLMockProvider, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, err
	}
	mp := &SQLMockProvider{DB: db, Mock: mock}
	mp.P, err = persistence.NewSQLProvider(context.Background(), mp,
		&htconf.SQLDBConfig{DSN: "sqlmock"}, SQLMockDefaults)
	return mp, err
}

func (mp *SQLMockProvider) DBName() string { return "sqlmock" }

// Open uses the mysql dialect since it needs no server version query when handed an existing conn.
func (mp *SQLMockProvider) Open(string) gorm.Dialector {
	return mysql.New(mysql.Config{Conn: mp.DB, SkipInitializeWithVersion: true})
}

func (mp *SQLMockProvider) GetMigrationDriver(*sql.DB) (migratedb.Driver, error) {
	return nil, errNoMigrations
}
