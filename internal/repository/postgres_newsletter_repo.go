package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresNewsletterRepo はPostgreSQLを使用したニュースレターリポジトリ。
type PostgresNewsletterRepo struct {
	db *sql.DB
}

// NewPostgresNewsletterRepo はPostgresNewsletterRepoを生成する。
func NewPostgresNewsletterRepo(db *sql.DB) *PostgresNewsletterRepo {
	return &PostgresNewsletterRepo{db: db}
}

const newsletterSelect = `
	SELECT n.id, n.title, n.content, n.created_at,
	       u.id, u.username, u.email, u.role
	FROM newsletters n
	JOIN users u ON u.id = n.journalist_id`

func scanNewsletter(row interface{ Scan(...any) error }) (*model.Newsletter, error) {
	n := &model.Newsletter{Journalist: &model.User{}}
	err := row.Scan(
		&n.ID, &n.Title, &n.Content, &n.CreatedAt,
		&n.Journalist.ID, &n.Journalist.Username,
		&n.Journalist.Email, &n.Journalist.Role,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// FindByID は指定IDのニュースレターを記者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresNewsletterRepo) FindByID(ctx context.Context, id string) (*model.Newsletter, error) {
	n, err := scanNewsletter(r.db.QueryRowContext(ctx, newsletterSelect+` WHERE n.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ニュースレターの取得に失敗しました: %w", err)
	}
	return n, nil
}

// Create はニュースレターを作成する。
func (r *PostgresNewsletterRepo) Create(ctx context.Context, newsletter *model.Newsletter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO newsletters (id, title, content, journalist_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		newsletter.ID, newsletter.Title, newsletter.Content,
		newsletter.JournalistID(), newsletter.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ニュースレターの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はニュースレターのタイトル・本文を更新する。
func (r *PostgresNewsletterRepo) Update(ctx context.Context, newsletter *model.Newsletter) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE newsletters SET title = $1, content = $2 WHERE id = $3`,
		newsletter.Title, newsletter.Content, newsletter.ID,
	)
	if err != nil {
		return fmt.Errorf("ニュースレターの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("newsletter not found: %s", newsletter.ID)
	}
	return nil
}

// DeleteByID は指定IDのニュースレターを物理削除する。
func (r *PostgresNewsletterRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ニュースレターの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("newsletter not found: %s", id)
	}
	return nil
}

// ListByJournalist は指定記者のニュースレターをcreated_at降順で返す。
func (r *PostgresNewsletterRepo) ListByJournalist(ctx context.Context, journalistID string) ([]*model.Newsletter, error) {
	return r.queryNewsletters(ctx,
		newsletterSelect+` WHERE n.journalist_id = $1 ORDER BY n.created_at DESC, n.id`,
		journalistID)
}

// ListForReader は読者が購読している記者のニュースレターをcreated_at降順で返す。
func (r *PostgresNewsletterRepo) ListForReader(ctx context.Context, readerID string) ([]*model.Newsletter, error) {
	return r.queryNewsletters(ctx,
		newsletterSelect+`
		 JOIN journalist_subscriptions js ON js.journalist_id = n.journalist_id
		 WHERE js.reader_id = $1 ORDER BY n.created_at DESC, n.id`,
		readerID)
}

// ListAll は全ニュースレターをcreated_at降順で返す。編集者ビュー用。
func (r *PostgresNewsletterRepo) ListAll(ctx context.Context) ([]*model.Newsletter, error) {
	return r.queryNewsletters(ctx,
		newsletterSelect+` ORDER BY n.created_at DESC, n.id`)
}

func (r *PostgresNewsletterRepo) queryNewsletters(ctx context.Context, query string, args ...any) ([]*model.Newsletter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var newsletters []*model.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("ニュースレター行の読み取りに失敗しました: %w", err)
		}
		newsletters = append(newsletters, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ニュースレター一覧の走査に失敗しました: %w", err)
	}
	return newsletters, nil
}

// compile-time interface check
var _ NewsletterRepository = (*PostgresNewsletterRepo)(nil)
