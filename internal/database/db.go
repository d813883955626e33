package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open はSQLiteデータベース接続を開く。
// databasePathには単一ファイルのパスを指定する（例: "./local.db"）。
// busy_timeoutで書き込み競合時の即時エラーを避け、foreign_keysで
// 参照整合性を有効化する。
// sql.Openは接続を試行しないため、実際の接続確認にはdb.Ping()を使用すること。
func Open(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(databasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLiteは単一ライターのため、接続を1本に制限して
	// SQLITE_BUSYの発生を抑える。
	db.SetMaxOpenConns(1)

	return db, nil
}

// DSN はSQLiteの接続文字列を構築する。
func DSN(databasePath string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", databasePath)
}
