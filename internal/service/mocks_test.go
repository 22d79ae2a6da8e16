package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// In-memory mocks for the repository interfaces. Each can be primed with a
// failure to exercise persistence-error paths.

type mockUserRepo struct {
	users   map[string]*model.User // keyed by external UserID
	nextID  int
	failAll error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.users[user.UserID]; ok {
		return apperror.Conflict("user", user.UserID)
	}
	m.nextID++
	user.ID = fmt.Sprintf("mock-user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.UserID] = &stored
	return nil
}

func (m *mockUserRepo) GetByUserID(_ context.Context, userID string) (*model.User, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) SetProTier(_ context.Context, userID, customerID, orderID string) error {
	if m.failAll != nil {
		return m.failAll
	}
	user, ok := m.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	now := time.Now()
	user.IsPro = true
	user.ProSince = &now
	user.LSCustomerID = customerID
	user.LSOrderID = orderID
	return nil
}

type mockExecutionRepo struct {
	executions []model.Execution
	nextID     int
	failAll    error
}

func newMockExecutionRepo() *mockExecutionRepo {
	return &mockExecutionRepo{}
}

func (m *mockExecutionRepo) Append(_ context.Context, exec *model.Execution) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.nextID++
	exec.ID = fmt.Sprintf("mock-exec-%d", m.nextID)
	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now()
	}
	m.executions = append(m.executions, *exec)
	return nil
}

func (m *mockExecutionRepo) ListByUser(_ context.Context, userID string, opts repository.PageOptions) (*repository.ExecutionPage, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	var mine []model.Execution
	for _, e := range m.executions {
		if e.UserID == userID {
			mine = append(mine, e)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	page := &repository.ExecutionPage{}
	if len(mine) > limit {
		mine = mine[:limit]
	}
	page.Executions = mine
	return page, nil
}

func (m *mockExecutionRepo) CollectAllByUser(_ context.Context, userID string) ([]model.Execution, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	var mine []model.Execution
	for _, e := range m.executions {
		if e.UserID == userID {
			mine = append(mine, e)
		}
	}
	return mine, nil
}

type mockSnippetRepo struct {
	snippets map[string]*model.Snippet
	order    []string
	nextID   int
	failAll  error
}

func newMockSnippetRepo() *mockSnippetRepo {
	return &mockSnippetRepo{snippets: make(map[string]*model.Snippet)}
}

func (m *mockSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.nextID++
	snippet.ID = fmt.Sprintf("mock-snip-%d", m.nextID)
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	m.order = append(m.order, snippet.ID)
	return nil
}

func (m *mockSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	snippet, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	result := *snippet
	return &result, nil
}

func (m *mockSnippetRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	result := make([]model.Snippet, 0, len(m.order))
	// Newest first = reverse insertion order.
	for i := len(m.order) - 1; i >= 0; i-- {
		if s, ok := m.snippets[m.order[i]]; ok {
			result = append(result, *s)
		}
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []model.Snippet{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockSnippetRepo) Delete(_ context.Context, id string) error {
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

type mockStarRepo struct {
	stars   []model.Star
	nextID  int
	failAll error
}

func newMockStarRepo() *mockStarRepo {
	return &mockStarRepo{}
}

func (m *mockStarRepo) Create(_ context.Context, star *model.Star) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.nextID++
	star.ID = fmt.Sprintf("mock-star-%d", m.nextID)
	star.CreatedAt = time.Now()
	m.stars = append(m.stars, *star)
	return nil
}

func (m *mockStarRepo) Delete(_ context.Context, userID, snippetID string) error {
	if m.failAll != nil {
		return m.failAll
	}
	kept := m.stars[:0]
	for _, s := range m.stars {
		if s.UserID != userID || s.SnippetID != snippetID {
			kept = append(kept, s)
		}
	}
	m.stars = kept
	return nil
}

func (m *mockStarRepo) ListByUser(_ context.Context, userID string) ([]model.Star, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	var mine []model.Star
	for _, s := range m.stars {
		if s.UserID == userID {
			mine = append(mine, s)
		}
	}
	return mine, nil
}

func (m *mockStarRepo) ListBySnippet(_ context.Context, snippetID string) ([]model.Star, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	var result []model.Star
	for _, s := range m.stars {
		if s.SnippetID == snippetID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *mockStarRepo) HasStarred(_ context.Context, userID, snippetID string) (bool, error) {
	if m.failAll != nil {
		return false, m.failAll
	}
	for _, s := range m.stars {
		if s.UserID == userID && s.SnippetID == snippetID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStarRepo) CountBySnippet(_ context.Context, snippetID string) (int, error) {
	if m.failAll != nil {
		return 0, m.failAll
	}
	count := 0
	for _, s := range m.stars {
		if s.SnippetID == snippetID {
			count++
		}
	}
	return count, nil
}

type mockCommentRepo struct {
	comments []model.Comment
	nextID   int
	failAll  error
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.nextID++
	comment.ID = fmt.Sprintf("mock-comment-%d", m.nextID)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) ListBySnippet(_ context.Context, snippetID string) ([]model.Comment, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	var result []model.Comment
	for _, c := range m.comments {
		if c.SnippetID == snippetID {
			result = append(result, c)
		}
	}
	return result, nil
}

// testLogger discards everything below errors to keep test output readable.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seedUser adds a provisioned user directly to the mock.
func seedUser(t *testing.T, repo *mockUserRepo, userID, name string, isPro bool) {
	t.Helper()
	user := &model.User{UserID: userID, Email: userID + "@example.com", Name: name}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", userID, err)
	}
	if isPro {
		if err := repo.SetProTier(context.Background(), userID, "cust", "order"); err != nil {
			t.Fatalf("upgrading user %s: %v", userID, err)
		}
	}
}
