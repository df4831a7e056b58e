// Package store 提供基于 SQLite 的模板存储，实现 ctemplate.Loader。
//
// 默认使用纯 Go 驱动 modernc.org/sqlite；以 -tags cgo_sqlite 构建时改用
// github.com/mattn/go-sqlite3。模板的 updated_at 列作为修改时间，
// Registry 的 ReloadIfChanged 据此判断是否需要重新解析。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lwmacct/251219-go-pkg-ctemplate/pkg/ctemplate"
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Entry 是模板列表中的一项。
type Entry struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"` //nolint:tagliatelle
}

// Store 是 SQLite 模板存储，可并发使用。
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ctemplate.Loader = (*Store)(nil)

// Open 打开（必要时创建）dsn 指向的数据库并初始化表结构。
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open template store: %w", err)
	}
	// SQLite 单写者；单连接同时保证 :memory: 数据库在整个 Store 生命周期内可见
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create template schema: %w", err)
	}
	logger.Debug("Opened template store", "driver", DriverName, "dsn", dsn)

	return &Store{db: db, logger: logger}, nil
}

// Close 关闭数据库。
func (s *Store) Close() error {
	return s.db.Close()
}

// Put 写入或替换模板。updated_at 严格递增，同一纳秒内的连续写入也能被感知。
func (s *Store) Put(ctx context.Context, name, body string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	updated := time.Now().UnixNano()
	var prev int64
	err = tx.QueryRowContext(ctx, "SELECT updated_at FROM templates WHERE name = ?", name).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("put %s: %w", name, err)
	case updated <= prev:
		updated = prev + 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO templates (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, body, updated)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	s.logger.Debug("Stored template", "name", name, "size", len(body))

	return nil
}

// Get 读取模板内容与修改时间。模板不存在时返回包装 ctemplate.ErrTemplateNotFound 的错误。
func (s *Store) Get(ctx context.Context, name string) (string, time.Time, error) {
	var (
		body    string
		updated int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT body, updated_at FROM templates WHERE name = ?", name).Scan(&body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, fmt.Errorf("%w: %s", ctemplate.ErrTemplateNotFound, name)
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("get %s: %w", name, err)
	}

	return body, time.Unix(0, updated), nil
}

// Delete 删除模板。模板不存在时返回包装 ctemplate.ErrTemplateNotFound 的错误。
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ctemplate.ErrTemplateNotFound, name)
	}
	s.logger.Debug("Deleted template", "name", name)

	return nil
}

// List 按名称排序返回所有模板。
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, length(body), updated_at FROM templates ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			updated int64
		)
		if err := rows.Scan(&e.Name, &e.Size, &updated); err != nil {
			return nil, fmt.Errorf("list templates: %w", err)
		}
		e.UpdatedAt = time.Unix(0, updated)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return entries, nil
}

// Load 实现 ctemplate.Loader。
func (s *Store) Load(name string) (ctemplate.Source, error) {
	body, updated, err := s.Get(context.Background(), name)
	if err != nil {
		if !errors.Is(err, ctemplate.ErrTemplateNotFound) {
			err = fmt.Errorf("%w: %w", ctemplate.ErrTemplateNotFound, err)
		}

		return ctemplate.Source{}, err
	}

	return ctemplate.Source{Content: []byte(body), ModTime: updated}, nil
}
