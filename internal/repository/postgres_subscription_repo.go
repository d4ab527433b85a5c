package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresSubscriptionRepo はPostgreSQLを使用した購読リポジトリ。
type PostgresSubscriptionRepo struct {
	db *sql.DB
}

// NewPostgresSubscriptionRepo はPostgresSubscriptionRepoを生成する。
func NewPostgresSubscriptionRepo(db *sql.DB) *PostgresSubscriptionRepo {
	return &PostgresSubscriptionRepo{db: db}
}

// SubscribeJournalist は読者→記者の購読を作成する。新規作成でtrueを返す。
func (r *PostgresSubscriptionRepo) SubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO journalist_subscriptions (reader_id, journalist_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		readerID, journalistID,
	)
	if err != nil {
		return false, fmt.Errorf("記者購読の作成に失敗しました: %w", err)
	}
	return rowsAffected(result)
}

// UnsubscribeJournalist は読者→記者の購読を解除する。購読が存在した場合はtrueを返す。
func (r *PostgresSubscriptionRepo) UnsubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM journalist_subscriptions WHERE reader_id = $1 AND journalist_id = $2`,
		readerID, journalistID,
	)
	if err != nil {
		return false, fmt.Errorf("記者購読の解除に失敗しました: %w", err)
	}
	return rowsAffected(result)
}

// SubscribePublisher は読者→発行元の購読を作成する。新規作成でtrueを返す。
func (r *PostgresSubscriptionRepo) SubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO publisher_subscriptions (reader_id, publisher_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		readerID, publisherID,
	)
	if err != nil {
		return false, fmt.Errorf("発行元購読の作成に失敗しました: %w", err)
	}
	return rowsAffected(result)
}

// UnsubscribePublisher は読者→発行元の購読を解除する。購読が存在した場合はtrueを返す。
func (r *PostgresSubscriptionRepo) UnsubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM publisher_subscriptions WHERE reader_id = $1 AND publisher_id = $2`,
		readerID, publisherID,
	)
	if err != nil {
		return false, fmt.Errorf("発行元購読の解除に失敗しました: %w", err)
	}
	return rowsAffected(result)
}

// IsSubscribedToJournalist は読者が指定記者を購読しているかを返す。
func (r *PostgresSubscriptionRepo) IsSubscribedToJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM journalist_subscriptions WHERE reader_id = $1 AND journalist_id = $2
		 )`,
		readerID, journalistID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("購読の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListJournalistIDsByReader は読者が購読している記者IDの一覧を返す。
func (r *PostgresSubscriptionRepo) ListJournalistIDsByReader(ctx context.Context, readerID string) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT journalist_id FROM journalist_subscriptions WHERE reader_id = $1 ORDER BY created_at`,
		readerID)
}

// ListPublisherIDsByReader は読者が購読している発行元IDの一覧を返す。
func (r *PostgresSubscriptionRepo) ListPublisherIDsByReader(ctx context.Context, readerID string) ([]string, error) {
	return r.queryIDs(ctx,
		`SELECT publisher_id FROM publisher_subscriptions WHERE reader_id = $1 ORDER BY created_at`,
		readerID)
}

// ListSubscribers は指定記者の購読者と指定発行元の購読者の和集合を
// READERロールのユーザーとして重複なしで返す。
// UNIONが重複を除去するため、両方を購読している読者も1回だけ現れる。
func (r *PostgresSubscriptionRepo) ListSubscribers(ctx context.Context, journalistID, publisherID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.email, u.role FROM users u
		 JOIN (
		   SELECT reader_id FROM journalist_subscriptions WHERE journalist_id = $1
		   UNION
		   SELECT reader_id FROM publisher_subscriptions WHERE publisher_id = $2
		 ) s ON s.reader_id = u.id
		 WHERE u.role = 'READER'
		 ORDER BY u.username`,
		journalistID, publisherID,
	)
	if err != nil {
		return nil, fmt.Errorf("購読者の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var subscribers []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Role); err != nil {
			return nil, fmt.Errorf("購読者行の読み取りに失敗しました: %w", err)
		}
		subscribers = append(subscribers, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購読者一覧の走査に失敗しました: %w", err)
	}
	return subscribers, nil
}

// DeleteByReader は読者の全購読エッジを削除する。役割変更時のクリアに使う。
func (r *PostgresSubscriptionRepo) DeleteByReader(ctx context.Context, readerID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM journalist_subscriptions WHERE reader_id = $1`, readerID,
	); err != nil {
		return fmt.Errorf("記者購読の一括削除に失敗しました: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM publisher_subscriptions WHERE reader_id = $1`, readerID,
	); err != nil {
		return fmt.Errorf("発行元購読の一括削除に失敗しました: %w", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepo) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("購読行の読み取りに失敗しました: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("購読一覧の走査に失敗しました: %w", err)
	}
	return ids, nil
}

func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// compile-time interface check
var _ SubscriptionRepository = (*PostgresSubscriptionRepo)(nil)
