package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// UserRepo is the users-relation view over the shared connection pool.
type UserRepo struct {
	conn *sql.DB
}

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

// Create inserts a new user row. The UNIQUE constraint on user_id means a
// concurrent duplicate sync loses with a conflict error instead of silently
// double-inserting.
func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, user_id, email, name, is_pro, pro_since,
		                    ls_customer_id, ls_order_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.UserID,
		user.Email,
		user.Name,
		user.IsPro,
		user.ProSince,
		user.LSCustomerID,
		user.LSOrderID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", user.UserID)
		}
		return fmt.Errorf("sqlite: inserting user (userID=%s): %w", user.UserID, err)
	}

	return nil
}

// GetByUserID retrieves a user by their external identity.
// Returns apperror.ErrNotFound if no such user exists — a normal outcome for
// identities whose first sync hasn't run yet.
func (r *UserRepo) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	var (
		u        model.User
		proSince sql.NullTime
	)

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, email, name, is_pro, pro_since,
		        ls_customer_id, ls_order_id, created_at, updated_at
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(
		&u.ID,
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.IsPro,
		&proSince,
		&u.LSCustomerID,
		&u.LSOrderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", userID, err)
	}

	if proSince.Valid {
		u.ProSince = &proSince.Time
	}

	return &u, nil
}

// SetProTier records a billing-tier upgrade for the given external identity.
func (r *UserRepo) SetProTier(ctx context.Context, userID, customerID, orderID string) error {
	now := time.Now()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE users
		 SET is_pro = 1, pro_since = ?, ls_customer_id = ?, ls_order_id = ?, updated_at = ?
		 WHERE user_id = ?`,
		now, customerID, orderID, now, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upgrading user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}

	return nil
}
