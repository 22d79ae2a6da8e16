package sqlite

import (
	"context"
	"testing"

	"github.com/nhasan/codenest/internal/model"
)

// newTestDB opens a fresh in-memory database for one test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, userID, email, name string) *model.User {
	t.Helper()
	user := &model.User{UserID: userID, Email: email, Name: name}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestSnippet(t *testing.T, db *DB, userID, title, language string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		UserID:   userID,
		Title:    title,
		Code:     "console.log('hi')",
		Language: language,
		UserName: "Test User",
	}
	if err := db.Snippets().Create(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

func appendTestExecution(t *testing.T, db *DB, userID, language string) *model.Execution {
	t.Helper()
	exec := &model.Execution{UserID: userID, Language: language, Code: "1+1"}
	if err := db.Executions().Append(context.Background(), exec); err != nil {
		t.Fatalf("failed to append test execution: %v", err)
	}
	return exec
}
