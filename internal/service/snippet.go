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

const (
	MaxSnippetTitleLength = 100
	MaxSnippetCodeLength  = 100000
	MaxCommentLength      = 10000
)

// SnippetService handles shared snippets, their stars, and their comments.
type SnippetService struct {
	snippets repository.SnippetRepository
	stars    repository.StarRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewSnippetService(
	snippets repository.SnippetRepository,
	stars repository.StarRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		stars:    stars,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// Create validates and shares a new snippet for the caller. The author's
// display name is denormalized onto the snippet at creation time.
func (s *SnippetService) Create(ctx context.Context, userID, title, code, language string) (*model.Snippet, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxSnippetTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxSnippetTitleLength))
	}
	if len(code) > MaxSnippetCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxSnippetCodeLength))
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}

	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		UserID:   userID,
		Title:    title,
		Code:     code,
		Language: language,
		UserName: user.Name,
	}

	if err := s.snippets.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userId", userID),
	)

	return snippet, nil
}

// GetByID retrieves a snippet; apperror.ErrNotFound if it doesn't exist.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.snippets.GetByID(ctx, id)
}

// List retrieves snippets with pagination, newest first.
func (s *SnippetService) List(ctx context.Context, limit, offset int) ([]model.Snippet, error) {
	snippets, err := s.snippets.List(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return snippets, nil
}

// Delete removes a snippet. Only the owner may delete; stars referencing the
// snippet are left dangling and excluded by star resolution from then on.
func (s *SnippetService) Delete(ctx context.Context, id, callerID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.UserID != callerID {
		return apperror.Forbidden("only the owner can delete a snippet")
	}

	if err := s.snippets.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// ToggleStar stars the snippet for the user, or unstars it if already
// starred. Returns true when the snippet ends up starred.
func (s *SnippetService) ToggleStar(ctx context.Context, userID, snippetID string) (bool, error) {
	if _, err := s.snippets.GetByID(ctx, snippetID); err != nil {
		return false, err
	}

	starred, err := s.stars.HasStarred(ctx, userID, snippetID)
	if err != nil {
		return false, fmt.Errorf("checking star: %w", err)
	}

	if starred {
		if err := s.stars.Delete(ctx, userID, snippetID); err != nil {
			return false, fmt.Errorf("unstarring snippet: %w", err)
		}
		return false, nil
	}

	star := &model.Star{UserID: userID, SnippetID: snippetID}
	if err := s.stars.Create(ctx, star); err != nil {
		return false, fmt.Errorf("starring snippet: %w", err)
	}
	return true, nil
}

// IsStarred reports whether the user has starred the snippet.
func (s *SnippetService) IsStarred(ctx context.Context, userID, snippetID string) (bool, error) {
	return s.stars.HasStarred(ctx, userID, snippetID)
}

// StarCount returns the number of star rows on the snippet.
func (s *SnippetService) StarCount(ctx context.Context, snippetID string) (int, error) {
	return s.stars.CountBySnippet(ctx, snippetID)
}

// AddComment attaches a comment to a snippet on behalf of the caller.
func (s *SnippetService) AddComment(ctx context.Context, userID, snippetID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.snippets.GetByID(ctx, snippetID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		SnippetID: snippetID,
		UserID:    userID,
		UserName:  user.Name,
		Content:   content,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	return comment, nil
}

// ListComments returns a snippet's comments, oldest first.
func (s *SnippetService) ListComments(ctx context.Context, snippetID string) ([]model.Comment, error) {
	comments, err := s.comments.ListBySnippet(ctx, snippetID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}
