package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

func TestSummarize_EmptyDayLiteralNoModelCall(t *testing.T) {
	lister := &fakeMemoryLister{}
	gen := &fakeGenerator{model: "m", out: "should not be used"}
	s := NewSummarizer(lister, gen, time.UTC, zerolog.Nop())

	out, err := s.Summarize(context.Background(), "elder-1", "2026-08-28")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != EmptyDaySummary {
		t.Fatalf("out = %q", out)
	}
	if gen.calls != 0 {
		t.Fatal("model must not be called for an empty day")
	}
}

func TestSummarize_ModelPath(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "evening walk"),
		mem("m2", "morning tea"),
	}}
	gen := &fakeGenerator{model: "m", out: " A lovely day with tea and a walk. "}
	s := NewSummarizer(lister, gen, time.UTC, zerolog.Nop())

	out, err := s.Summarize(context.Background(), "elder-1", "2026-08-28")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if out != "A lovely day with tea and a walk." {
		t.Fatalf("out = %q", out)
	}
}

func TestSummarize_FallbackNumbersFetchedOrder(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "evening walk"),
		mem("m2", "morning tea"),
		mem("m3", "breakfast with Anna"),
	}}
	gen := &fakeGenerator{model: "m", err: errors.New("quota exceeded")}
	s := NewSummarizer(lister, gen, time.UTC, zerolog.Nop())

	out, err := s.Summarize(context.Background(), "elder-1", "2026-08-28")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	want := "1. evening walk\n2. morning tea\n3. breakfast with Anna"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestSummarize_StoreFailureSurfaces(t *testing.T) {
	boom := errors.New("connection refused")
	lister := &fakeMemoryLister{err: boom}
	s := NewSummarizer(lister, nil, time.UTC, zerolog.Nop())

	if _, err := s.Summarize(context.Background(), "elder-1", "2026-08-28"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSummarize_InvalidDate(t *testing.T) {
	s := NewSummarizer(&fakeMemoryLister{}, nil, time.UTC, zerolog.Nop())
	if _, err := s.Summarize(context.Background(), "elder-1", "28-08-2026"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2026-08-28", time.UTC)
	if err != nil {
		t.Fatalf("DayBounds: %v", err)
	}
	if !start.Equal(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 8, 28, 23, 59, 59, 999000000, time.UTC)) {
		t.Fatalf("end = %v", end)
	}
}
