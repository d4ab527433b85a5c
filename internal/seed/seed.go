// Package seed は初期データの投入を提供する。
//
// 役割グループと権限のブートストラップ、および動作確認用のサンプルデータ
// （出版社・ユーザー・記事）の作成を行う。いずれも冪等で、再実行しても
// 重複データは作られない。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// rolePermissions は役割グループごとの権限コード。
var rolePermissions = map[string][]string{
	"Reader": {
		"view_article",
		"view_newsletter",
	},
	"Journalist": {
		"add_article", "change_article", "delete_article", "view_article",
		"add_newsletter", "change_newsletter", "delete_newsletter", "view_newsletter",
	},
	"Editor": {
		"change_article", "delete_article", "view_article",
		"change_newsletter", "delete_newsletter", "view_newsletter",
	},
}

// Seeder は初期データ投入を行う。
type Seeder struct {
	userRepo      repository.UserRepository
	groupRepo     repository.GroupRepository
	publisherRepo repository.PublisherRepository
	articleRepo   repository.ArticleRepository
}

// NewSeeder はSeederを生成する。
func NewSeeder(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	publisherRepo repository.PublisherRepository,
	articleRepo repository.ArticleRepository,
) *Seeder {
	return &Seeder{
		userRepo:      userRepo,
		groupRepo:     groupRepo,
		publisherRepo: publisherRepo,
		articleRepo:   articleRepo,
	}
}

// SeedGroups は役割グループと権限を作成する。冪等。
func (s *Seeder) SeedGroups(ctx context.Context) error {
	for name, permissions := range rolePermissions {
		group, err := s.groupRepo.GetOrCreateByName(ctx, name)
		if err != nil {
			return fmt.Errorf("グループ%sの作成に失敗しました: %w", name, err)
		}
		if err := s.groupRepo.SetPermissions(ctx, group.ID, permissions); err != nil {
			return fmt.Errorf("グループ%sの権限設定に失敗しました: %w", name, err)
		}
		slog.Info("role group seeded",
			slog.String("group", name),
			slog.Int("permissions", len(permissions)),
		)
	}
	return nil
}

// SeedSampleData は動作確認用のサンプルデータを作成する。
// 出版社、記者・編集者アカウント、承認済みおよび承認待ちの記事を投入する。
func (s *Seeder) SeedSampleData(ctx context.Context) error {
	publishers := make(map[string]*model.Publisher)
	for _, name := range []string{"Tech News Network", "Sports Daily", "Politics Today"} {
		p, err := s.publisherRepo.GetOrCreateByName(ctx, name)
		if err != nil {
			return fmt.Errorf("出版社%sの作成に失敗しました: %w", name, err)
		}
		publishers[name] = p
	}

	techJournalist, err := s.ensureUser(ctx, "tech_journalist", "tech@newsapp.local", model.RoleJournalist)
	if err != nil {
		return err
	}
	sportsJournalist, err := s.ensureUser(ctx, "sports_journalist", "sports@newsapp.local", model.RoleJournalist)
	if err != nil {
		return err
	}
	editor, err := s.ensureUser(ctx, "sample_editor", "editor@newsapp.local", model.RoleEditor)
	if err != nil {
		return err
	}

	if err := s.publisherRepo.AddJournalist(ctx, publishers["Tech News Network"].ID, techJournalist.ID); err != nil {
		return fmt.Errorf("記者の所属設定に失敗しました: %w", err)
	}
	if err := s.publisherRepo.AddJournalist(ctx, publishers["Sports Daily"].ID, sportsJournalist.ID); err != nil {
		return fmt.Errorf("記者の所属設定に失敗しました: %w", err)
	}
	if err := s.publisherRepo.AddEditor(ctx, publishers["Tech News Network"].ID, editor.ID); err != nil {
		return fmt.Errorf("編集者の所属設定に失敗しました: %w", err)
	}

	approved := []struct {
		title     string
		content   string
		writer    *model.User
		publisher *model.Publisher
	}{
		{"AI Breakthrough in Natural Language Processing", "Researchers announce a major advance in language model reasoning.", techJournalist, publishers["Tech News Network"]},
		{"Quantum Computing Reaches New Milestone", "A new processor demonstrates error-corrected logical qubits.", techJournalist, publishers["Tech News Network"]},
		{"Championship Finals Set Attendance Record", "The stadium was filled beyond all previous records.", sportsJournalist, publishers["Sports Daily"]},
		{"Rising Star Signs Historic Contract", "The young athlete agreed to a record-breaking deal.", sportsJournalist, publishers["Sports Daily"]},
		{"Local Team Advances to National League", "A dramatic overtime win secures promotion.", sportsJournalist, publishers["Sports Daily"]},
	}
	pending := []struct {
		title     string
		content   string
		writer    *model.User
		publisher *model.Publisher
	}{
		{"Upcoming Smartphone Lineup Leaked", "Specifications for next year's flagship devices surfaced online.", techJournalist, publishers["Tech News Network"]},
		{"Transfer Rumors Heat Up Before Deadline", "Several clubs are reportedly in talks over star players.", sportsJournalist, publishers["Sports Daily"]},
	}

	for _, a := range approved {
		if err := s.ensureArticle(ctx, a.title, a.content, a.writer, a.publisher, true); err != nil {
			return err
		}
	}
	for _, a := range pending {
		if err := s.ensureArticle(ctx, a.title, a.content, a.writer, a.publisher, false); err != nil {
			return err
		}
	}

	slog.Info("sample data seeded")
	return nil
}

// ensureUser は指定ユーザー名のユーザーを取得し、存在しなければ作成する。
// サンプルユーザーのパスワードはすべて "password123"。
func (s *Seeder) ensureUser(ctx context.Context, username, email string, role model.Role) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザー%sの検索に失敗しました: %w", username, err)
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザー%sの作成に失敗しました: %w", username, err)
	}

	group, err := s.groupRepo.GetOrCreateByName(ctx, role.GroupName())
	if err != nil {
		return nil, fmt.Errorf("グループの取得に失敗しました: %w", err)
	}
	if err := s.groupRepo.ReplaceUserGroups(ctx, user.ID, group.ID); err != nil {
		return nil, fmt.Errorf("グループ所属の設定に失敗しました: %w", err)
	}

	slog.Info("sample user created",
		slog.String("username", username),
		slog.String("role", string(role)),
	)
	return user, nil
}

// ensureArticle は同タイトルの記事が記者に存在しない場合のみ記事を作成する。
func (s *Seeder) ensureArticle(ctx context.Context, title, content string, writer *model.User, publisher *model.Publisher, approve bool) error {
	existing, err := s.articleRepo.ListByJournalist(ctx, writer.ID)
	if err != nil {
		return fmt.Errorf("記事の検索に失敗しました: %w", err)
	}
	for _, a := range existing {
		if a.Title == title {
			return nil
		}
	}

	now := time.Now()
	a := &model.Article{
		ID:         uuid.New().String(),
		Title:      title,
		Content:    content,
		IsApproved: false,
		Journalist: writer,
		Publisher:  publisher,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.articleRepo.Create(ctx, a); err != nil {
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	if approve {
		if _, err := s.articleRepo.MarkApproved(ctx, a.ID); err != nil {
			return fmt.Errorf("記事の承認に失敗しました: %w", err)
		}
	}
	return nil
}
