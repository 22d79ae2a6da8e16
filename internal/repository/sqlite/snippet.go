package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// SnippetRepo and CommentRepo are relation views over the shared pool.
type SnippetRepo struct {
	conn *sql.DB
}

type CommentRepo struct {
	conn *sql.DB
}

// compile-time checks for the snippet and comment contracts
var (
	_ repository.SnippetRepository = (*SnippetRepo)(nil)
	_ repository.CommentRepository = (*CommentRepo)(nil)
)

// Create inserts a new snippet and fills in its ID and timestamps.
func (r *SnippetRepo) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, user_id, title, code, language, user_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Title,
		snippet.Code,
		snippet.Language,
		snippet.UserName,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// GetByID retrieves a single snippet. The apperror.ErrNotFound return is load
// bearing: stars resolve their targets through this and a deleted snippet must
// come back as an explicit absence, not a failure.
func (r *SnippetRepo) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, code, language, user_name, created_at, updated_at
		 FROM snippets
		 WHERE id = ?`,
		id,
	).Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Code,
		&s.Language,
		&s.UserName,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return &s, nil
}

// List retrieves snippets with offset pagination, newest first.
func (r *SnippetRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, title, code, language, user_name, created_at, updated_at
		 FROM snippets
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Code, &s.Language, &s.UserName,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// Delete removes a snippet. Stars pointing at it are left in place — the
// aggregator and star resolution treat the dangling reference as an absence.
func (r *SnippetRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// Create inserts a comment on a snippet.
func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO snippet_comments (id, snippet_id, user_id, user_name, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.SnippetID,
		comment.UserID,
		comment.UserName,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// ListBySnippet returns a snippet's comments, oldest first.
func (r *CommentRepo) ListBySnippet(ctx context.Context, snippetID string) ([]model.Comment, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, snippet_id, user_id, user_name, content, created_at
		 FROM snippet_comments
		 WHERE snippet_id = ?
		 ORDER BY created_at ASC`,
		snippetID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for %s: %w", snippetID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.SnippetID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
