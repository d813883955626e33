package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hitoshi/articledesk/internal/model"
)

// seedBookmarkFixtures はブックマークテスト用のユーザーと記事を投入する。
func seedBookmarkFixtures(t *testing.T, db *sql.DB) (userID int64, articleIDs []int64) {
	t.Helper()
	ctx := context.Background()

	users := NewSqliteUserRepo(db)
	uid, err := users.Create(ctx, &model.User{Name: "Taro", Email: "bm@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create(user) error = %v", err)
	}

	articles := NewSqliteArticleRepo(db)
	batch := []model.Article{
		testArticle("https://example.com/bm1", "BM One", "2026-08-01T09:00:00Z"),
		testArticle("https://example.com/bm2", "BM Two", "2026-08-02T09:00:00Z"),
	}
	if err := articles.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	list, err := articles.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, a := range list {
		articleIDs = append(articleIDs, a.ID)
	}

	return uid, articleIDs
}

// TestSqliteBookmarkRepo_CreateAndList はブックマーク登録と一覧取得を検証する。
func TestSqliteBookmarkRepo_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteBookmarkRepo(db)
	ctx := context.Background()

	userID, articleIDs := seedBookmarkFixtures(t, db)

	var bookmarkIDs []int64
	for _, aid := range articleIDs {
		id, err := repo.Create(ctx, userID, aid)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		bookmarkIDs = append(bookmarkIDs, id)
	}

	count, err := repo.CountByUser(ctx, userID)
	if err != nil {
		t.Fatalf("CountByUser() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountByUser() = %d, want 2", count)
	}

	got, err := repo.ListByUser(ctx, userID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByUser() returned %d bookmarks, want 2", len(got))
	}
	// 登録日時の降順（同時刻はID降順）で返ること
	if got[0].BookmarkID != bookmarkIDs[len(bookmarkIDs)-1] {
		t.Errorf("ListByUser() first = %d, want latest bookmark %d", got[0].BookmarkID, bookmarkIDs[len(bookmarkIDs)-1])
	}
	if got[0].Title == "" || got[0].URL == "" {
		t.Errorf("ListByUser() missing joined article fields: %+v", got[0])
	}
}

// TestSqliteBookmarkRepo_CreateDuplicate は同一記事の重複登録が失敗することを検証する。
func TestSqliteBookmarkRepo_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteBookmarkRepo(db)
	ctx := context.Background()

	userID, articleIDs := seedBookmarkFixtures(t, db)

	if _, err := repo.Create(ctx, userID, articleIDs[0]); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := repo.Create(ctx, userID, articleIDs[0]); err == nil {
		t.Error("Create() duplicate bookmark succeeded, want error")
	}

	// 既存ブックマークは事前にFindByUserAndArticleで検出できる
	existing, err := repo.FindByUserAndArticle(ctx, userID, articleIDs[0])
	if err != nil {
		t.Fatalf("FindByUserAndArticle() error = %v", err)
	}
	if existing == nil {
		t.Fatal("FindByUserAndArticle() = nil, want bookmark")
	}
}

// TestSqliteBookmarkRepo_Delete は削除と所有者スコープを検証する。
func TestSqliteBookmarkRepo_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteBookmarkRepo(db)
	ctx := context.Background()

	userID, articleIDs := seedBookmarkFixtures(t, db)

	id, err := repo.Create(ctx, userID, articleIDs[0])
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 他ユーザーのIDスコープでは見つからない
	other, err := repo.FindByIDAndUser(ctx, id, userID+1)
	if err != nil {
		t.Fatalf("FindByIDAndUser() error = %v", err)
	}
	if other != nil {
		t.Errorf("FindByIDAndUser() for other user = %+v, want nil", other)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, err := repo.CountByUser(ctx, userID)
	if err != nil {
		t.Fatalf("CountByUser() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountByUser() after delete = %d, want 0", count)
	}

	// 削除済みIDの再削除はエラー
	if err := repo.Delete(ctx, id); err == nil {
		t.Error("Delete() of missing bookmark succeeded, want error")
	}
}
