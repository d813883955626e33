package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/articledesk/internal/model"
)

// SqliteUserRepo はSQLiteを使用したユーザーリポジトリ。
type SqliteUserRepo struct {
	db *sql.DB
}

// NewSqliteUserRepo はSqliteUserRepoを生成する。
func NewSqliteUserRepo(db *sql.DB) *SqliteUserRepo {
	return &SqliteUserRepo{db: db}
}

// scanUser は1行を読み取ってUserに詰める。
func scanUser(scan func(dest ...any) error) (*model.User, error) {
	u := &model.User{}
	var token sql.NullString

	err := scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &token, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.Token = token.String
	return u, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SqliteUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, token, created_at, updated_at
		 FROM users WHERE id = ?`, id)

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return u, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *SqliteUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, token, created_at, updated_at
		 FROM users WHERE email = ?`, email)

	u, err := scanUser(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return u, nil
}

// Create はユーザーを作成し、採番されたIDを返す。
// emailのUNIQUE制約違反はそのままエラーとして返る（呼び出し元が事前に
// FindByEmailで重複チェックする想定）。
func (r *SqliteUserRepo) Create(ctx context.Context, user *model.User) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user ID: %w", err)
	}
	return id, nil
}

// UpdateToken は最終発行トークンとupdated_atを更新する。
func (r *SqliteUserRepo) UpdateToken(ctx context.Context, id int64, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		token, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*SqliteUserRepo)(nil)
