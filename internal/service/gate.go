// Package service contains the business logic layer: the access gate, the
// execution log, the usage-analytics aggregator, account provisioning, and
// snippets. Services depend on repository interfaces, never on sqlite or HTTP.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/repository"
)

// Gate decides whether a caller may record an execution in a given language.
//
// It is a pure policy check with no side effects: callers perform the actual
// write only after an allow. Free-tier users are restricted to the single
// free language; pro users may use anything.
type Gate struct {
	users        repository.UserRepository
	freeLanguage string
}

func NewGate(users repository.UserRepository, freeLanguage string) *Gate {
	return &Gate{
		users:        users,
		freeLanguage: freeLanguage,
	}
}

// Check returns nil to allow, or a typed denial:
//   - apperror.ErrUnauthenticated when the identity resolves to no user row.
//     An identity-provider session can exist before the first sync has run,
//     so "not found" here is a normal outcome and a deny, never a crash.
//   - the pro_required apperror when a free-tier user requests a non-free
//     language.
func (g *Gate) Check(ctx context.Context, userID, language string) error {
	user, err := g.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Unauthenticated("no account for caller identity")
		}
		return fmt.Errorf("resolving caller identity: %w", err)
	}

	if !user.IsPro && language != g.freeLanguage {
		return apperror.ProRequired(language)
	}

	return nil
}
