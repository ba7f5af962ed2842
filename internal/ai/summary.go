package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

// EmptyDaySummary is returned verbatim for a day with no memories. No model
// call happens in that case.
const EmptyDaySummary = "No memories recorded for today."

// Summarizer produces a short narrative for one elder-local calendar day.
type Summarizer struct {
	memories MemoryLister
	gen      Generator
	loc      *time.Location
	log      zerolog.Logger
}

// NewSummarizer creates a summarizer. gen may be nil to force the literal
// fallback; loc defaults to time.Local when nil.
func NewSummarizer(memories MemoryLister, gen Generator, loc *time.Location, log zerolog.Logger) *Summarizer {
	if loc == nil {
		loc = time.Local
	}
	return &Summarizer{memories: memories, gen: gen, loc: loc, log: log}
}

const summaryPromptFmt = `You are a gentle memory assistant. Write a warm
narrative summary of an elderly person's day from the memories below, in
three to five sentences, addressed to their caregiver.

Memories (most recent first):
%s`

// Summarize builds the summary for date (YYYY-MM-DD). A store failure is a
// hard error; model failures degrade to a numbered concatenation of the raw
// memory texts in fetched order.
func (s *Summarizer) Summarize(ctx context.Context, elderID, date string) (string, error) {
	start, end, err := DayBounds(date, s.loc)
	if err != nil {
		return "", fmt.Errorf("%w: %s", model.ErrValidation, err)
	}

	memories, err := s.memories.List(ctx, model.ListMemoriesRequest{
		ElderID: elderID,
		After:   &start,
		Before:  &end,
	})
	if err != nil {
		return "", fmt.Errorf("load memories: %w", err)
	}

	if len(memories) == 0 {
		return EmptyDaySummary, nil
	}

	if s.gen != nil {
		var sb strings.Builder
		for _, m := range memories {
			fmt.Fprintf(&sb, "- %s\n", m.RawText)
		}
		out, err := s.gen.Generate(ctx, fmt.Sprintf(summaryPromptFmt, sb.String()))
		if err == nil {
			return strings.TrimSpace(out), nil
		}
		s.log.Warn().Err(err).Msg("model summary failed, using literal fallback")
	}

	var sb strings.Builder
	for i, m := range memories {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, m.RawText)
	}
	return sb.String(), nil
}

// DayBounds returns the inclusive [00:00:00.000, 23:59:59.999] range for a
// calendar day in loc.
func DayBounds(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end, nil
}
