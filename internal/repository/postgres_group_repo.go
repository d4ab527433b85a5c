package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// GetOrCreateByName は指定名のグループを取得し、存在しなければ作成する。
// ON CONFLICT DO NOTHINGで同時作成と競合しても冪等に動作する。
func (r *PostgresGroupRepo) GetOrCreateByName(ctx context.Context, name string) (*model.Group, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.New().String(), name, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("グループの作成に失敗しました: %w", err)
	}

	group := &model.Group{}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE name = $1`,
		name,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	return group, nil
}

// ReplaceUserGroups はユーザーの所属グループを指定の1グループだけに置き換える。
// 削除と追加を同一トランザクションで行う。
func (r *PostgresGroupRepo) ReplaceUserGroups(ctx context.Context, userID, groupID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_groups WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("所属グループの削除に失敗しました: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2)`,
		userID, groupID,
	); err != nil {
		return fmt.Errorf("所属グループの追加に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListNamesByUserID はユーザーが所属するグループ名の一覧を返す。
func (r *PostgresGroupRepo) ListNamesByUserID(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.name FROM groups g
		 JOIN user_groups ug ON ug.group_id = g.id
		 WHERE ug.user_id = $1 ORDER BY g.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("所属グループの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("グループ行の読み取りに失敗しました: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("所属グループの走査に失敗しました: %w", err)
	}
	return names, nil
}

// SetPermissions はグループの権限コード一覧を置き換える。
func (r *PostgresGroupRepo) SetPermissions(ctx context.Context, groupID string, permissions []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM group_permissions WHERE group_id = $1`, groupID,
	); err != nil {
		return fmt.Errorf("権限の削除に失敗しました: %w", err)
	}

	for _, perm := range permissions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_permissions (group_id, permission) VALUES ($1, $2)`,
			groupID, perm,
		); err != nil {
			return fmt.Errorf("権限の追加に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
