//go:build cgo_sqlite

package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName 是当前构建使用的 database/sql 驱动名称。
const DriverName = "sqlite3"

func openDB(dsn string) (*sql.DB, error) {
	return sql.Open(DriverName, dsn)
}
