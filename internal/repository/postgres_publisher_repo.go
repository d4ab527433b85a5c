package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresPublisherRepo はPostgreSQLを使用した発行元リポジトリ。
type PostgresPublisherRepo struct {
	db *sql.DB
}

// NewPostgresPublisherRepo はPostgresPublisherRepoを生成する。
func NewPostgresPublisherRepo(db *sql.DB) *PostgresPublisherRepo {
	return &PostgresPublisherRepo{db: db}
}

// FindByID は指定IDの発行元を取得する。見つからない場合はnilを返す。
func (r *PostgresPublisherRepo) FindByID(ctx context.Context, id string) (*model.Publisher, error) {
	pub := &model.Publisher{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM publishers WHERE id = $1`,
		id,
	).Scan(&pub.ID, &pub.Name, &pub.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("発行元の取得に失敗しました: %w", err)
	}
	return pub, nil
}

// GetOrCreateByName は指定名の発行元を取得し、存在しなければ作成する。冪等。
func (r *PostgresPublisherRepo) GetOrCreateByName(ctx context.Context, name string) (*model.Publisher, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publishers (id, name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`,
		uuid.New().String(), name, time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("発行元の作成に失敗しました: %w", err)
	}

	pub := &model.Publisher{}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM publishers WHERE name = $1`,
		name,
	).Scan(&pub.ID, &pub.Name, &pub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("発行元の取得に失敗しました: %w", err)
	}
	return pub, nil
}

// List は発行元一覧を名前昇順で返す。
func (r *PostgresPublisherRepo) List(ctx context.Context) ([]*model.Publisher, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM publishers ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("発行元一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var pubs []*model.Publisher
	for rows.Next() {
		pub := &model.Publisher{}
		if err := rows.Scan(&pub.ID, &pub.Name, &pub.CreatedAt); err != nil {
			return nil, fmt.Errorf("発行元行の読み取りに失敗しました: %w", err)
		}
		pubs = append(pubs, pub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("発行元一覧の走査に失敗しました: %w", err)
	}
	return pubs, nil
}

// AddEditor は発行元に編集者を所属させる。重複追加は無視される。
func (r *PostgresPublisherRepo) AddEditor(ctx context.Context, publisherID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publisher_editors (publisher_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		publisherID, userID,
	)
	if err != nil {
		return fmt.Errorf("編集者の追加に失敗しました: %w", err)
	}
	return nil
}

// AddJournalist は発行元に記者を所属させる。重複追加は無視される。
func (r *PostgresPublisherRepo) AddJournalist(ctx context.Context, publisherID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO publisher_journalists (publisher_id, user_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		publisherID, userID,
	)
	if err != nil {
		return fmt.Errorf("記者の追加に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PublisherRepository = (*PostgresPublisherRepo)(nil)
