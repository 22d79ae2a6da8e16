package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// MaxExecutionCodeLength bounds the stored source per execution (~100KB).
const MaxExecutionCodeLength = 100000

// ExecutionService owns the write and read paths of the execution log.
type ExecutionService struct {
	executions repository.ExecutionRepository
	gate       *Gate
	logger     *slog.Logger
}

func NewExecutionService(executions repository.ExecutionRepository, gate *Gate, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		executions: executions,
		gate:       gate,
		logger:     logger,
	}
}

// Save records one code-execution attempt for the caller.
//
// The gate runs first; a denial surfaces unchanged (unauthenticated or
// pro_required) and nothing is written. Output and errText are optional and
// independent — both, either, or neither may be present.
func (s *ExecutionService) Save(ctx context.Context, userID, language, code string, output, errText *string) (*model.Execution, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}
	if len(code) > MaxExecutionCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxExecutionCodeLength))
	}

	if err := s.gate.Check(ctx, userID, language); err != nil {
		return nil, err
	}

	exec := &model.Execution{
		UserID:   userID,
		Language: language,
		Code:     code,
		Output:   output,
		Error:    errText,
	}

	if err := s.executions.Append(ctx, exec); err != nil {
		s.logger.Error("failed to append execution",
			slog.String("userId", userID),
			slog.String("language", language),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("appending execution: %w", err)
	}

	s.logger.Info("execution recorded",
		slog.String("id", exec.ID),
		slog.String("userId", userID),
		slog.String("language", language),
	)

	return exec, nil
}

// ListByUser returns one page of a user's executions, newest first. Pass the
// previous page's NextCursor to resume; limit is clamped by the repository.
func (s *ExecutionService) ListByUser(ctx context.Context, userID, cursor string, limit int) (*repository.ExecutionPage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	page, err := s.executions.ListByUser(ctx, userID, repository.PageOptions{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing executions: %w", err)
	}

	return page, nil
}
