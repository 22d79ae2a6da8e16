package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// ExecutionRepo is the append-only execution log view over the shared pool.
type ExecutionRepo struct {
	conn *sql.DB
}

// compile-time check that *ExecutionRepo implements repository.ExecutionRepository
var _ repository.ExecutionRepository = (*ExecutionRepo)(nil)

const (
	defaultExecutionPageSize = 20
	maxExecutionPageSize     = 100
)

// Append inserts an immutable execution record.
// Timestamps are truncated to milliseconds — that is the precision the
// created_at column stores and the cursor encodes.
func (r *ExecutionRepo) Append(ctx context.Context, exec *model.Execution) error {
	exec.ID = xid.New().String()
	exec.CreatedAt = time.Now().Truncate(time.Millisecond)

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO executions (id, user_id, language, code, output, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.UserID,
		exec.Language,
		exec.Code,
		nullable(exec.Output),
		nullable(exec.Error),
		exec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending execution: %w", err)
	}

	return nil
}

// ListByUser returns one page of a user's executions, newest first, resumable
// via an opaque keyset cursor over (created_at, id).
//
// Keyset pagination is stable under concurrent appends: every row in a resumed
// page sorts strictly below the cursor position, so rows already returned
// never reappear and none in the remaining range are skipped. New appends sort
// above the cursor and simply stay invisible to the resumed scan.
func (r *ExecutionRepo) ListByUser(ctx context.Context, userID string, opts repository.PageOptions) (*repository.ExecutionPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultExecutionPageSize
	}
	if limit > maxExecutionPageSize {
		limit = maxExecutionPageSize
	}

	query := `SELECT id, user_id, language, code, output, error, created_at
	          FROM executions
	          WHERE user_id = ?`
	args := []any{userID}

	if opts.Cursor != "" {
		createdMs, id, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, apperror.ValidationFailed("cursor", "invalid pagination cursor")
		}
		query += ` AND (created_at < ? OR (created_at = ? AND id < ?))`
		args = append(args, createdMs, createdMs, id)
	}

	// Fetch one extra row to learn whether another page exists.
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing executions for %s: %w", userID, err)
	}
	defer rows.Close()

	executions := make([]model.Execution, 0, limit)
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	page := &repository.ExecutionPage{}
	if len(executions) > limit {
		executions = executions[:limit]
		last := executions[len(executions)-1]
		page.NextCursor = encodeCursor(last.CreatedAt.UnixMilli(), last.ID)
	}
	page.Executions = executions

	return page, nil
}

// CollectAllByUser returns the user's full execution history, unordered.
// O(n) in the history size; only the stats aggregator should call this.
func (r *ExecutionRepo) CollectAllByUser(ctx context.Context, userID string) ([]model.Execution, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, language, code, output, error, created_at
		 FROM executions
		 WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: collecting executions for %s: %w", userID, err)
	}
	defer rows.Close()

	var executions []model.Execution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	return executions, nil
}

func scanExecution(rows *sql.Rows) (model.Execution, error) {
	var (
		e         model.Execution
		output    sql.NullString
		errText   sql.NullString
		createdMs int64
	)
	if err := rows.Scan(
		&e.ID, &e.UserID, &e.Language, &e.Code,
		&output, &errText, &createdMs,
	); err != nil {
		return model.Execution{}, fmt.Errorf("sqlite: scanning execution row: %w", err)
	}
	if output.Valid {
		e.Output = &output.String
	}
	if errText.Valid {
		e.Error = &errText.String
	}
	e.CreatedAt = time.UnixMilli(createdMs)
	return e, nil
}

// nullable maps an absent optional field to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// encodeCursor packs (created_at ms, id) into an opaque URL-safe token.
func encodeCursor(createdMs int64, id string) string {
	raw := strconv.FormatInt(createdMs, 10) + ":" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (int64, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, "", fmt.Errorf("decoding cursor: %w", err)
	}
	createdStr, id, ok := strings.Cut(string(raw), ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed cursor %q", raw)
	}
	createdMs, err := strconv.ParseInt(createdStr, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parsing cursor timestamp: %w", err)
	}
	return createdMs, id, nil
}
