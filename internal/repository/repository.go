// Package repository defines the storage contracts the service layer depends
// on. The sqlite subpackage provides the concrete implementation; tests use
// in-memory mocks.
package repository

import (
	"context"

	"github.com/nhasan/codenest/internal/model"
)

// ListOptions paginates offset-based listings (snippets).
type ListOptions struct {
	Limit  int
	Offset int
}

// PageOptions paginates cursor-based listings (executions). Cursor is opaque
// to callers: pass the NextCursor from the previous page, or "" for the first
// page.
type PageOptions struct {
	Cursor string
	Limit  int
}

// ExecutionPage is one page of a user's execution history, newest first.
// NextCursor is "" when the history is exhausted.
type ExecutionPage struct {
	Executions []model.Execution `json:"executions"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type UserRepository interface {
	// Create inserts a new user. Fails with a conflict if the external
	// identity is already registered.
	Create(ctx context.Context, user *model.User) error
	// GetByUserID looks a user up by external identity. A missing user is an
	// explicit apperror.ErrNotFound, never a panic — callers treat it as a
	// normal outcome.
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
	// SetProTier records a billing-tier upgrade.
	SetProTier(ctx context.Context, userID, customerID, orderID string) error
}

// ExecutionRepository is the append-only execution log.
type ExecutionRepository interface {
	// Append inserts an immutable execution record and fills in its ID and
	// creation time.
	Append(ctx context.Context, exec *model.Execution) error
	// ListByUser returns one page of a user's executions in descending
	// creation-time order. Resuming from NextCursor never repeats or skips a
	// record already returned; records appended after the cursor was cut are
	// not visible to resumed pages.
	ListByUser(ctx context.Context, userID string, opts PageOptions) (*ExecutionPage, error)
	// CollectAllByUser returns the full unordered history for a user. It is
	// O(n) in the user's history and exists for the aggregator's snapshot
	// read; don't call it where a page would do.
	CollectAllByUser(ctx context.Context, userID string) ([]model.Execution, error)
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	// GetByID returns the snippet or apperror.ErrNotFound. Star resolution
	// relies on the explicit absence: a star may reference a snippet deleted
	// after the star was created.
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Delete(ctx context.Context, id string) error
}

// StarRepository is the user<->snippet bookmark relation, queryable from
// either side.
type StarRepository interface {
	Create(ctx context.Context, star *model.Star) error
	// Delete removes every star the user holds on the snippet (the pair is
	// not unique, so duplicates are cleared together).
	Delete(ctx context.Context, userID, snippetID string) error
	ListByUser(ctx context.Context, userID string) ([]model.Star, error)
	ListBySnippet(ctx context.Context, snippetID string) ([]model.Star, error)
	// HasStarred answers the specific-pair check via the compound index.
	HasStarred(ctx context.Context, userID, snippetID string) (bool, error)
	CountBySnippet(ctx context.Context, snippetID string) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error)
}
