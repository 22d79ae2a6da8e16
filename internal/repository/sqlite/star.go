package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// StarRepo is the user<->snippet star relation view over the shared pool.
type StarRepo struct {
	conn *sql.DB
}

// compile-time check that *StarRepo implements repository.StarRepository
var _ repository.StarRepository = (*StarRepo)(nil)

// Create inserts a star row. No uniqueness is enforced on the
// (user_id, snippet_id) pair — the model allows duplicate stars and the
// aggregator counts each row.
func (r *StarRepo) Create(ctx context.Context, star *model.Star) error {
	star.ID = xid.New().String()
	star.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO stars (id, user_id, snippet_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		star.ID,
		star.UserID,
		star.SnippetID,
		star.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating star: %w", err)
	}

	return nil
}

// Delete removes every star the user holds on the snippet. Deleting zero rows
// is not an error — a toggle-off on an unstarred snippet is a no-op.
func (r *StarRepo) Delete(ctx context.Context, userID, snippetID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM stars WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting star (%s, %s): %w", userID, snippetID, err)
	}
	return nil
}

// ListByUser returns all stars held by a user.
func (r *StarRepo) ListByUser(ctx context.Context, userID string) ([]model.Star, error) {
	return r.list(ctx, `SELECT id, user_id, snippet_id, created_at
	                    FROM stars WHERE user_id = ?`, userID)
}

// ListBySnippet returns all stars on a snippet.
func (r *StarRepo) ListBySnippet(ctx context.Context, snippetID string) ([]model.Star, error) {
	return r.list(ctx, `SELECT id, user_id, snippet_id, created_at
	                    FROM stars WHERE snippet_id = ?`, snippetID)
}

func (r *StarRepo) list(ctx context.Context, query, key string) ([]model.Star, error) {
	rows, err := r.conn.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing stars for %s: %w", key, err)
	}
	defer rows.Close()

	var stars []model.Star
	for rows.Next() {
		var s model.Star
		if err := rows.Scan(&s.ID, &s.UserID, &s.SnippetID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning star row: %w", err)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stars: %w", err)
	}

	return stars, nil
}

// HasStarred checks a single (user, snippet) pair through the compound index.
func (r *StarRepo) HasStarred(ctx context.Context, userID, snippetID string) (bool, error) {
	var exists int
	err := r.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM stars WHERE user_id = ? AND snippet_id = ?)`,
		userID, snippetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking star (%s, %s): %w", userID, snippetID, err)
	}
	return exists == 1, nil
}

// CountBySnippet returns how many star rows a snippet has.
func (r *StarRepo) CountBySnippet(ctx context.Context, snippetID string) (int, error) {
	var count int
	err := r.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stars WHERE snippet_id = ?`,
		snippetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting stars for %s: %w", snippetID, err)
	}
	return count, nil
}
