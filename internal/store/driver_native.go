//go:build !cgo_sqlite

package store

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// DriverName 是当前构建使用的 database/sql 驱动名称。
const DriverName = "sqlite"

func openDB(dsn string) (*sql.DB, error) {
	return sql.Open(DriverName, dsn)
}
