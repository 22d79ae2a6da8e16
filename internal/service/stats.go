package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// recentWindow is the lookback for the Last24Hours count.
const recentWindow = 24 * time.Hour

// StatsService derives a usage Summary from one user's execution history and
// starred snippets.
//
// The snapshot reads are not transactionally isolated from concurrent appends:
// an execution or star added mid-aggregation may or may not be reflected.
// That weak consistency is accepted — the summary is advisory, not billed.
// The wall clock is injected so the 24-hour window is testable.
type StatsService struct {
	executions repository.ExecutionRepository
	stars      repository.StarRepository
	snippets   repository.SnippetRepository
	now        func() time.Time
	logger     *slog.Logger
}

func NewStatsService(
	executions repository.ExecutionRepository,
	stars repository.StarRepository,
	snippets repository.SnippetRepository,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		executions: executions,
		stars:      stars,
		snippets:   snippets,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the wall-clock source. Tests use this to pin "now".
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Summarize computes the analytics Summary for one user.
//
// It reads a point-in-time snapshot of the user's executions and stars,
// resolves each star's snippet, and hands everything to BuildSummary. A star
// whose snippet no longer exists is silently discarded — a broken reference
// is a normal condition here, not an error. Transient read failures propagate
// to the caller; there are no retries at this layer.
func (s *StatsService) Summarize(ctx context.Context, userID string) (*model.Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	executions, err := s.executions.CollectAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("collecting executions: %w", err)
	}

	stars, err := s.stars.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing stars: %w", err)
	}

	starred := make([]model.Snippet, 0, len(stars))
	for _, star := range stars {
		snippet, err := s.snippets.GetByID(ctx, star.SnippetID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// Snippet deleted after the star was created; exclude it.
				continue
			}
			return nil, fmt.Errorf("resolving starred snippet %s: %w", star.SnippetID, err)
		}
		starred = append(starred, *snippet)
	}

	summary := BuildSummary(executions, starred, s.now())

	s.logger.Debug("summary computed",
		slog.String("userId", userID),
		slog.Int("totalExecutions", summary.TotalExecutions),
		slog.Int("starredResolved", len(starred)),
	)

	return summary, nil
}

// BuildSummary is the pure aggregation over one snapshot.
//
// now is sampled exactly once by the caller so the 24-hour filter is
// internally consistent across every row. The window comparison is a strict
// "after": an execution created exactly at now-24h is excluded. Because now
// moves between calls, repeated summaries are not idempotent at the boundary.
//
// Both frequency rankings break ties by first-encountered order: the language
// whose first occurrence appears earliest in the scanned slice wins among
// equal counts. That makes the choice deterministic for a given snapshot
// ordering instead of leaning on map iteration order.
func BuildSummary(executions []model.Execution, starredSnippets []model.Snippet, now time.Time) *model.Summary {
	starredLanguages := newLanguageCounter()
	for _, snippet := range starredSnippets {
		starredLanguages.Add(snippet.Language)
	}

	languageStats := newLanguageCounter()
	cutoff := now.Add(-recentWindow)
	last24Hours := 0
	for _, exec := range executions {
		languageStats.Add(exec.Language)
		if exec.CreatedAt.After(cutoff) {
			last24Hours++
		}
	}

	return &model.Summary{
		TotalExecutions:     len(executions),
		LanguagesCount:      len(languageStats.order),
		Languages:           languageStats.Languages(),
		Last24Hours:         last24Hours,
		FavoriteLanguage:    languageStats.Top(),
		LanguageStats:       languageStats.Counts(),
		MostStarredLanguage: starredLanguages.Top(),
	}
}

// languageCounter is a frequency table that remembers the order in which
// languages were first seen, so ranking ties resolve reproducibly.
type languageCounter struct {
	counts map[string]int
	order  []string
}

func newLanguageCounter() *languageCounter {
	return &languageCounter{counts: make(map[string]int)}
}

func (c *languageCounter) Add(language string) {
	if _, seen := c.counts[language]; !seen {
		c.order = append(c.order, language)
	}
	c.counts[language]++
}

// Top returns the most frequent language; ties go to the one seen first.
// Returns the "N/A" sentinel for an empty table.
func (c *languageCounter) Top() string {
	top := model.LanguageSentinel
	best := 0
	for _, language := range c.order {
		if c.counts[language] > best {
			top = language
			best = c.counts[language]
		}
	}
	return top
}

// Languages returns the distinct languages in first-encountered order.
func (c *languageCounter) Languages() []string {
	languages := make([]string, len(c.order))
	copy(languages, c.order)
	return languages
}

// Counts returns the frequency table. Always non-nil, so an empty history
// serializes as {} rather than null.
func (c *languageCounter) Counts() map[string]int {
	counts := make(map[string]int, len(c.counts))
	for language, n := range c.counts {
		counts[language] = n
	}
	return counts
}
