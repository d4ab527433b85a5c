package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/newsdesk/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	updateRoleFn func(ctx context.Context, id string, role model.Role) error
	listFn       func(ctx context.Context, limit, offset int) ([]*model.User, int, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil
}
func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	return m.listFn(ctx, limit, offset)
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFn(ctx, id)
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error { return nil }
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error { return nil }
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return m.deleteByUserIDFn(ctx, userID)
}

type mockRoleSyncer struct {
	syncFn func(ctx context.Context, user *model.User) error
	synced []*model.User
}

func (m *mockRoleSyncer) Sync(ctx context.Context, user *model.User) error {
	m.synced = append(m.synced, user)
	if m.syncFn != nil {
		return m.syncFn(ctx, user)
	}
	return nil
}

// --- テスト ---

// TestService_List はユーザー一覧の取得を検証する。
func TestService_List(t *testing.T) {
	repo := &mockUserRepo{
		listFn: func(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
			if limit != 10 || offset != 20 {
				t.Errorf("unexpected paging: limit=%d offset=%d", limit, offset)
			}
			return []*model.User{{ID: "u1"}, {ID: "u2"}}, 42, nil
		},
	}
	svc := NewService(repo, &mockSessionRepo{}, &mockRoleSyncer{})

	users, total, err := svc.List(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("want 2 users, got %d", len(users))
	}
	if total != 42 {
		t.Errorf("want total 42, got %d", total)
	}
}

// TestService_Withdraw は退会処理の実行順序を検証する。
// セッション削除がユーザー削除より先でなければならない。
func TestService_Withdraw(t *testing.T) {
	var order []string
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			order = append(order, "user")
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			order = append(order, "sessions")
			return nil
		},
	}
	svc := NewService(userRepo, sessionRepo, &mockRoleSyncer{})

	if err := svc.Withdraw(context.Background(), "user-1"); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if len(order) != 2 || order[0] != "sessions" || order[1] != "user" {
		t.Errorf("want sessions deleted before user, got %v", order)
	}
}

// TestService_Withdraw_NotFound は存在しないユーザーの退会を検証する。
func TestService_Withdraw_NotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, &mockRoleSyncer{})

	err := svc.Withdraw(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("want USER_NOT_FOUND, got %v", err)
	}
}

// TestService_ChangeRole は編集者による役割変更を検証する。
// 役割の保存が先で、その後にグループ同期が走らなければならない。
func TestService_ChangeRole(t *testing.T) {
	var order []string
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Username: "alice", Role: model.RoleReader}, nil
		},
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			order = append(order, "update")
			if role != model.RoleJournalist {
				t.Errorf("want JOURNALIST, got %s", role)
			}
			return nil
		},
	}
	syncer := &mockRoleSyncer{
		syncFn: func(ctx context.Context, user *model.User) error {
			order = append(order, "sync")
			return nil
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, syncer)
	editor := &model.User{ID: "editor-1", Role: model.RoleEditor}

	updated, err := svc.ChangeRole(context.Background(), editor, "user-1", model.RoleJournalist)
	if err != nil {
		t.Fatalf("change role failed: %v", err)
	}
	if updated.Role != model.RoleJournalist {
		t.Errorf("want role JOURNALIST, got %s", updated.Role)
	}
	if len(order) != 2 || order[0] != "update" || order[1] != "sync" {
		t.Errorf("want role saved before sync, got %v", order)
	}
	if len(syncer.synced) != 1 || syncer.synced[0].Role != model.RoleJournalist {
		t.Errorf("sync should receive the user with the new role: %+v", syncer.synced)
	}
}

// TestService_ChangeRole_NonEditorDenied は編集者以外による役割変更の拒否を検証する。
func TestService_ChangeRole_NonEditorDenied(t *testing.T) {
	for _, role := range []model.Role{model.RoleReader, model.RoleJournalist} {
		t.Run(string(role), func(t *testing.T) {
			updated := false
			userRepo := &mockUserRepo{
				updateRoleFn: func(ctx context.Context, id string, r model.Role) error {
					updated = true
					return nil
				},
			}
			svc := NewService(userRepo, &mockSessionRepo{}, &mockRoleSyncer{})
			actor := &model.User{ID: "actor-1", Role: role}

			_, err := svc.ChangeRole(context.Background(), actor, "user-1", model.RoleEditor)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodePermissionDenied {
				t.Fatalf("want PERMISSION_DENIED, got %v", err)
			}
			if updated {
				t.Error("role should not be updated without permission")
			}
		})
	}
}

// TestService_ChangeRole_InvalidRole は未知の役割の拒否を検証する。
func TestService_ChangeRole_InvalidRole(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{}, &mockRoleSyncer{})
	editor := &model.User{ID: "editor-1", Role: model.RoleEditor}

	_, err := svc.ChangeRole(context.Background(), editor, "user-1", model.Role("ADMIN"))
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRole {
		t.Fatalf("want INVALID_ROLE, got %v", err)
	}
}

// TestService_ChangeRole_NotFound は存在しないユーザーへの役割変更を検証する。
func TestService_ChangeRole_NotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, &mockRoleSyncer{})
	editor := &model.User{ID: "editor-1", Role: model.RoleEditor}

	_, err := svc.ChangeRole(context.Background(), editor, "missing", model.RoleJournalist)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Fatalf("want USER_NOT_FOUND, got %v", err)
	}
}

// TestService_ChangeRole_SameRoleNoop は同じ役割への変更が保存も同期も
// 行わないことを検証する。
func TestService_ChangeRole_SameRoleNoop(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleReader}, nil
		},
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			t.Error("role should not be re-saved")
			return nil
		},
	}
	syncer := &mockRoleSyncer{}
	svc := NewService(userRepo, &mockSessionRepo{}, syncer)
	editor := &model.User{ID: "editor-1", Role: model.RoleEditor}

	updated, err := svc.ChangeRole(context.Background(), editor, "user-1", model.RoleReader)
	if err != nil {
		t.Fatalf("change role failed: %v", err)
	}
	if updated.Role != model.RoleReader {
		t.Errorf("want role READER, got %s", updated.Role)
	}
	if len(syncer.synced) != 0 {
		t.Error("sync should not run when the role is unchanged")
	}
}

// TestService_ChangeRole_SyncFailureKeepsRole はグループ同期の失敗が
// 役割の保存を巻き戻さないことを検証する。
func TestService_ChangeRole_SyncFailureKeepsRole(t *testing.T) {
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleReader}, nil
		},
	}
	syncer := &mockRoleSyncer{
		syncFn: func(ctx context.Context, user *model.User) error {
			return errors.New("group sync error")
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, syncer)
	editor := &model.User{ID: "editor-1", Role: model.RoleEditor}

	updated, err := svc.ChangeRole(context.Background(), editor, "user-1", model.RoleJournalist)
	if err != nil {
		t.Fatalf("sync failure should not fail the role change: %v", err)
	}
	if updated.Role != model.RoleJournalist {
		t.Errorf("want role JOURNALIST, got %s", updated.Role)
	}
}

// TestService_Withdraw_SessionDeleteFailure はセッション削除失敗時に
// ユーザー削除へ進まないことを検証する。
func TestService_Withdraw_SessionDeleteFailure(t *testing.T) {
	userDeleted := false
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			userDeleted = true
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{
		deleteByUserIDFn: func(ctx context.Context, userID string) error {
			return errors.New("db error")
		},
	}
	svc := NewService(userRepo, sessionRepo, &mockRoleSyncer{})

	if err := svc.Withdraw(context.Background(), "user-1"); err == nil {
		t.Fatal("want error when session delete fails")
	}
	if userDeleted {
		t.Error("user should not be deleted after session delete failure")
	}
}
