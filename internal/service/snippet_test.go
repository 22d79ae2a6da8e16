package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nhasan/codenest/internal/apperror"
)

func newTestSnippetService(t *testing.T) (*SnippetService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	svc := NewSnippetService(newMockSnippetRepo(), newMockStarRepo(), newMockCommentRepo(), users, testLogger(t))
	return svc, users
}

func TestSnippetCreate_DenormalizesAuthorName(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "u1", "Ada Lovelace", false)

	snippet, err := svc.Create(context.Background(), "u1", "notes", "x := 1", "go")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.UserName != "Ada Lovelace" {
		t.Errorf("UserName = %q, want the author's display name", snippet.UserName)
	}
}

func TestSnippetCreate_Validation(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "u1", "Ada", false)
	ctx := context.Background()

	cases := []struct {
		name             string
		title, language  string
	}{
		{"empty title", "", "go"},
		{"whitespace title", "   ", "go"},
		{"empty language", "ok", ""},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, "u1", tc.title, "code", tc.language)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestSnippetDelete_OwnerOnly(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "owner", "Owner", false)
	ctx := context.Background()

	snippet, err := svc.Create(ctx, "owner", "mine", "x", "go")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, snippet.ID, "intruder"); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden for non-owner", err)
	}
	if err := svc.Delete(ctx, snippet.ID, "owner"); err != nil {
		t.Errorf("owner Delete() error = %v", err)
	}
}

func TestToggleStar(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "author", "Author", false)
	ctx := context.Background()

	snippet, err := svc.Create(ctx, "author", "starred", "x", "rust")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	starred, err := svc.ToggleStar(ctx, "reader", snippet.ID)
	if err != nil {
		t.Fatalf("ToggleStar() error = %v", err)
	}
	if !starred {
		t.Error("first toggle should star")
	}

	starred, err = svc.ToggleStar(ctx, "reader", snippet.ID)
	if err != nil {
		t.Fatalf("second ToggleStar() error = %v", err)
	}
	if starred {
		t.Error("second toggle should unstar")
	}

	has, err := svc.IsStarred(ctx, "reader", snippet.ID)
	if err != nil {
		t.Fatalf("IsStarred() error = %v", err)
	}
	if has {
		t.Error("snippet should be unstarred after toggling twice")
	}
}

func TestToggleStar_MissingSnippet(t *testing.T) {
	svc, _ := newTestSnippetService(t)

	_, err := svc.ToggleStar(context.Background(), "reader", "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAddComment(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "author", "Author", false)
	seedUser(t, users, "reader", "Reader", false)
	ctx := context.Background()

	snippet, err := svc.Create(ctx, "author", "discussed", "x", "go")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	comment, err := svc.AddComment(ctx, "reader", snippet.ID, "  nice one  ")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.Content != "nice one" {
		t.Errorf("Content = %q, want trimmed text", comment.Content)
	}
	if comment.UserName != "Reader" {
		t.Errorf("UserName = %q, want commenter's display name", comment.UserName)
	}

	comments, err := svc.ListComments(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("got %d comments, want 1", len(comments))
	}
}

func TestAddComment_EmptyContent(t *testing.T) {
	svc, users := newTestSnippetService(t)
	seedUser(t, users, "author", "Author", false)

	snippet, err := svc.Create(context.Background(), "author", "s", "x", "go")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.AddComment(context.Background(), "author", snippet.ID, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}
