package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/newsdesk/internal/model"
)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresArticleRepo struct {
	db *sql.DB
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db *sql.DB) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// articleSelect は記事を記者・発行元とJOINして取得する共通SELECT句。
const articleSelect = `
	SELECT a.id, a.title, a.content, a.is_approved, a.created_at, a.updated_at,
	       u.id, u.username, u.email, u.role,
	       p.id, p.name
	FROM articles a
	JOIN users u ON u.id = a.journalist_id
	LEFT JOIN publishers p ON p.id = a.publisher_id`

// scanArticle は共通SELECT句の1行をmodel.Articleに読み取る。
func scanArticle(row interface{ Scan(...any) error }) (*model.Article, error) {
	article := &model.Article{Journalist: &model.User{}}
	var pubID, pubName sql.NullString

	err := row.Scan(
		&article.ID, &article.Title, &article.Content, &article.IsApproved,
		&article.CreatedAt, &article.UpdatedAt,
		&article.Journalist.ID, &article.Journalist.Username,
		&article.Journalist.Email, &article.Journalist.Role,
		&pubID, &pubName,
	)
	if err != nil {
		return nil, err
	}

	if pubID.Valid {
		article.Publisher = &model.Publisher{ID: pubID.String, Name: pubName.String}
	}
	return article, nil
}

// FindByID は指定IDの記事を記者・発行元情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return article, nil
}

// Create は記事を作成する。
func (r *PostgresArticleRepo) Create(ctx context.Context, article *model.Article) error {
	var publisherID any
	if article.Publisher != nil {
		publisherID = article.Publisher.ID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, content, is_approved, journalist_id, publisher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		article.ID, article.Title, article.Content, article.IsApproved,
		article.JournalistID(), publisherID, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は記事のタイトル・本文・発行元を更新し、updated_atを進める。
func (r *PostgresArticleRepo) Update(ctx context.Context, article *model.Article) error {
	var publisherID any
	if article.Publisher != nil {
		publisherID = article.Publisher.ID
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE articles SET title = $1, content = $2, publisher_id = $3, updated_at = now()
		 WHERE id = $4`,
		article.Title, article.Content, publisherID, article.ID,
	)
	if err != nil {
		return fmt.Errorf("記事の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("article not found: %s", article.ID)
	}
	return nil
}

// DeleteByID は指定IDの記事を物理削除する。
func (r *PostgresArticleRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("article not found: %s", id)
	}
	return nil
}

// MarkApproved はis_approved=falseの記事だけを条件付きで承認済みに更新する。
// WHERE句の条件付き更新により、同時承認の競合でも通知の二重発火が起きない。
func (r *PostgresArticleRepo) MarkApproved(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE articles SET is_approved = TRUE, updated_at = now()
		 WHERE id = $1 AND is_approved = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("記事の承認更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// ListApproved は承認済み記事をcreated_at降順でページ取得し、総件数も返す。
func (r *PostgresArticleRepo) ListApproved(ctx context.Context, limit, offset int) ([]*model.Article, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM articles WHERE is_approved = TRUE`,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("承認済み記事数の取得に失敗しました: %w", err)
	}

	articles, err := r.queryArticles(ctx,
		articleSelect+` WHERE a.is_approved = TRUE ORDER BY a.created_at DESC, a.id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ListPending は未承認記事をcreated_at降順で返す。
func (r *PostgresArticleRepo) ListPending(ctx context.Context) ([]*model.Article, error) {
	return r.queryArticles(ctx,
		articleSelect+` WHERE a.is_approved = FALSE ORDER BY a.created_at DESC, a.id`)
}

// ListByJournalist は指定記者の記事をcreated_at降順で返す。承認状態は問わない。
func (r *PostgresArticleRepo) ListByJournalist(ctx context.Context, journalistID string) ([]*model.Article, error) {
	return r.queryArticles(ctx,
		articleSelect+` WHERE a.journalist_id = $1 ORDER BY a.created_at DESC, a.id`,
		journalistID)
}

func (r *PostgresArticleRepo) queryArticles(ctx context.Context, query string, args ...any) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var articles []*model.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}
	return articles, nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
