package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/newsdesk/internal/model"
)

// --- モック ---

type mockSubscriptionRepo struct {
	subscribeJournalistFn       func(ctx context.Context, readerID, journalistID string) (bool, error)
	unsubscribeJournalistFn     func(ctx context.Context, readerID, journalistID string) (bool, error)
	subscribePublisherFn        func(ctx context.Context, readerID, publisherID string) (bool, error)
	unsubscribePublisherFn      func(ctx context.Context, readerID, publisherID string) (bool, error)
	listJournalistIDsByReaderFn func(ctx context.Context, readerID string) ([]string, error)
	listPublisherIDsByReaderFn  func(ctx context.Context, readerID string) ([]string, error)
}

func (m *mockSubscriptionRepo) SubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	return m.subscribeJournalistFn(ctx, readerID, journalistID)
}
func (m *mockSubscriptionRepo) UnsubscribeJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	return m.unsubscribeJournalistFn(ctx, readerID, journalistID)
}
func (m *mockSubscriptionRepo) SubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error) {
	return m.subscribePublisherFn(ctx, readerID, publisherID)
}
func (m *mockSubscriptionRepo) UnsubscribePublisher(ctx context.Context, readerID, publisherID string) (bool, error) {
	return m.unsubscribePublisherFn(ctx, readerID, publisherID)
}
func (m *mockSubscriptionRepo) IsSubscribedToJournalist(ctx context.Context, readerID, journalistID string) (bool, error) {
	return false, nil
}
func (m *mockSubscriptionRepo) ListJournalistIDsByReader(ctx context.Context, readerID string) ([]string, error) {
	return m.listJournalistIDsByReaderFn(ctx, readerID)
}
func (m *mockSubscriptionRepo) ListPublisherIDsByReader(ctx context.Context, readerID string) ([]string, error) {
	return m.listPublisherIDsByReaderFn(ctx, readerID)
}
func (m *mockSubscriptionRepo) ListSubscribers(ctx context.Context, journalistID, publisherID string) ([]*model.User, error) {
	return nil, nil
}
func (m *mockSubscriptionRepo) DeleteByReader(ctx context.Context, readerID string) error {
	return nil
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

type mockPublisherFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Publisher, error)
}

func (m *mockPublisherFinder) FindByID(ctx context.Context, id string) (*model.Publisher, error) {
	return m.findByIDFn(ctx, id)
}

func reader() *model.User {
	return &model.User{ID: "reader-1", Username: "alice", Role: model.RoleReader}
}

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *model.APIError, got %v", err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("want code %s, got %s", wantCode, apiErr.Code)
	}
}

// --- テスト ---

// TestService_SubscribeJournalist は記者購読の作成を検証する。
func TestService_SubscribeJournalist(t *testing.T) {
	journalistFinder := &mockUserFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleJournalist}, nil
		},
	}

	t.Run("success", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			subscribeJournalistFn: func(ctx context.Context, readerID, journalistID string) (bool, error) {
				if readerID != "reader-1" || journalistID != "journalist-1" {
					t.Errorf("unexpected args: %s, %s", readerID, journalistID)
				}
				return true, nil
			},
		}
		svc := NewService(repo, journalistFinder, &mockPublisherFinder{})
		if err := svc.SubscribeJournalist(context.Background(), reader(), "journalist-1"); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			subscribeJournalistFn: func(ctx context.Context, readerID, journalistID string) (bool, error) {
				return false, nil
			},
		}
		svc := NewService(repo, journalistFinder, &mockPublisherFinder{})
		err := svc.SubscribeJournalist(context.Background(), reader(), "journalist-1")
		assertAPIErrorCode(t, err, model.ErrCodeDuplicateSubscription)
	})

	t.Run("target not journalist", func(t *testing.T) {
		finder := &mockUserFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id, Role: model.RoleReader}, nil
			},
		}
		svc := NewService(&mockSubscriptionRepo{}, finder, &mockPublisherFinder{})
		err := svc.SubscribeJournalist(context.Background(), reader(), "reader-2")
		assertAPIErrorCode(t, err, model.ErrCodeValidation)
	})

	t.Run("target not found", func(t *testing.T) {
		finder := &mockUserFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
				return nil, nil
			},
		}
		svc := NewService(&mockSubscriptionRepo{}, finder, &mockPublisherFinder{})
		err := svc.SubscribeJournalist(context.Background(), reader(), "missing")
		assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
	})

	t.Run("non-reader denied", func(t *testing.T) {
		svc := NewService(&mockSubscriptionRepo{}, journalistFinder, &mockPublisherFinder{})
		for _, role := range []model.Role{model.RoleJournalist, model.RoleEditor} {
			actor := &model.User{ID: "u", Role: role}
			err := svc.SubscribeJournalist(context.Background(), actor, "journalist-1")
			assertAPIErrorCode(t, err, model.ErrCodePermissionDenied)
		}
	})
}

// TestService_UnsubscribeJournalist は記者購読の解除を検証する。
func TestService_UnsubscribeJournalist(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			unsubscribeJournalistFn: func(ctx context.Context, readerID, journalistID string) (bool, error) {
				return true, nil
			},
		}
		svc := NewService(repo, &mockUserFinder{}, &mockPublisherFinder{})
		if err := svc.UnsubscribeJournalist(context.Background(), reader(), "journalist-1"); err != nil {
			t.Fatalf("unsubscribe failed: %v", err)
		}
	})

	t.Run("not subscribed", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			unsubscribeJournalistFn: func(ctx context.Context, readerID, journalistID string) (bool, error) {
				return false, nil
			},
		}
		svc := NewService(repo, &mockUserFinder{}, &mockPublisherFinder{})
		err := svc.UnsubscribeJournalist(context.Background(), reader(), "journalist-1")
		assertAPIErrorCode(t, err, model.ErrCodeSubscriptionNotFound)
	})
}

// TestService_SubscribePublisher は出版社購読の作成を検証する。
func TestService_SubscribePublisher(t *testing.T) {
	publisherFinder := &mockPublisherFinder{
		findByIDFn: func(ctx context.Context, id string) (*model.Publisher, error) {
			return &model.Publisher{ID: id, Name: "Tech News Network"}, nil
		},
	}

	t.Run("success", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			subscribePublisherFn: func(ctx context.Context, readerID, publisherID string) (bool, error) {
				return true, nil
			},
		}
		svc := NewService(repo, &mockUserFinder{}, publisherFinder)
		if err := svc.SubscribePublisher(context.Background(), reader(), "publisher-1"); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	})

	t.Run("publisher not found", func(t *testing.T) {
		finder := &mockPublisherFinder{
			findByIDFn: func(ctx context.Context, id string) (*model.Publisher, error) {
				return nil, nil
			},
		}
		svc := NewService(&mockSubscriptionRepo{}, &mockUserFinder{}, finder)
		err := svc.SubscribePublisher(context.Background(), reader(), "missing")
		assertAPIErrorCode(t, err, model.ErrCodePublisherNotFound)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := &mockSubscriptionRepo{
			subscribePublisherFn: func(ctx context.Context, readerID, publisherID string) (bool, error) {
				return false, nil
			},
		}
		svc := NewService(repo, &mockUserFinder{}, publisherFinder)
		err := svc.SubscribePublisher(context.Background(), reader(), "publisher-1")
		assertAPIErrorCode(t, err, model.ErrCodeDuplicateSubscription)
	})
}

// TestService_List は購読一覧の取得を検証する。
func TestService_List(t *testing.T) {
	repo := &mockSubscriptionRepo{
		listJournalistIDsByReaderFn: func(ctx context.Context, readerID string) ([]string, error) {
			return []string{"journalist-1", "journalist-2"}, nil
		},
		listPublisherIDsByReaderFn: func(ctx context.Context, readerID string) ([]string, error) {
			return []string{"publisher-1"}, nil
		},
	}
	svc := NewService(repo, &mockUserFinder{}, &mockPublisherFinder{})

	subs, err := svc.List(context.Background(), reader())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subs.JournalistIDs) != 2 {
		t.Errorf("want 2 journalist IDs, got %d", len(subs.JournalistIDs))
	}
	if len(subs.PublisherIDs) != 1 {
		t.Errorf("want 1 publisher ID, got %d", len(subs.PublisherIDs))
	}

	_, err = svc.List(context.Background(), &model.User{ID: "e", Role: model.RoleEditor})
	assertAPIErrorCode(t, err, model.ErrCodePermissionDenied)
}
