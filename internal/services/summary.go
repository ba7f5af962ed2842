package services

import (
	"context"
	"time"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// SummaryService generates daily summaries and keeps the latest one per day.
type SummaryService struct {
	store      store.Store
	summarizer *ai.Summarizer
}

func NewSummaryService(s store.Store, summarizer *ai.Summarizer) *SummaryService {
	return &SummaryService{store: s, summarizer: summarizer}
}

// GetDailySummary returns the stored summary for a date without regenerating.
func (s *SummaryService) GetDailySummary(ctx context.Context, elderID, date string) (*model.DailySummary, error) {
	return s.store.Summaries().Get(ctx, elderID, date)
}

// DailySummary regenerates the summary for the given elder-local date and
// stores it, overwriting any previous summary for that day.
func (s *SummaryService) DailySummary(ctx context.Context, elderID, date string) (*model.DailySummary, error) {
	text, err := s.summarizer.Summarize(ctx, elderID, date)
	if err != nil {
		return nil, err
	}
	return s.store.Summaries().Upsert(ctx, &model.DailySummary{
		ElderID:     elderID,
		Date:        date,
		SummaryText: text,
		CreatedAt:   time.Now().UTC(),
	})
}
