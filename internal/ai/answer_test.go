package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

type fakeMemoryLister struct {
	memories []*model.Memory
	err      error
	lastReq  model.ListMemoriesRequest
}

func (f *fakeMemoryLister) List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.memories, nil
}

func TestAnswer_ModelPathReturnsThreeMatched(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "keys by the radio"),
		mem("m2", "lunch with Anna"),
		mem("m3", "walk in the park"),
		mem("m4", "took my pills"),
	}}
	gen := &fakeGenerator{model: "m", out: "  Your keys are by the radio.  "}
	a := NewAnswerer(lister, gen, zerolog.Nop())

	res, err := a.Answer(context.Background(), "Where are my keys?", "elder-1")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Answer != "Your keys are by the radio." {
		t.Fatalf("answer not trimmed: %q", res.Answer)
	}
	if len(res.MatchedMemories) != 3 || res.MatchedMemories[0].ID != "m1" {
		t.Fatalf("matched = %d, first = %v", len(res.MatchedMemories), res.MatchedMemories)
	}
	if lister.lastReq.Limit != 50 {
		t.Fatalf("fetch limit = %d, want 50", lister.lastReq.Limit)
	}
}

func TestAnswer_NoGeneratorNeverCallsModel(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "keys by the radio"),
	}}
	a := NewAnswerer(lister, nil, zerolog.Nop())

	res, err := a.Answer(context.Background(), "Where are my keys?", "elder-1")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(res.MatchedMemories) != 1 {
		t.Fatalf("keyword path must report at most one match, got %d", len(res.MatchedMemories))
	}
	if !strings.Contains(res.Answer, "keys by the radio") {
		t.Fatalf("fallback answer must quote the memory: %q", res.Answer)
	}
}

func TestAnswer_ModelFailureFallsBackToKeywords(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "newest, nothing relevant"),
		mem("m2", "keys by the radio"),
	}}
	gen := &fakeGenerator{model: "m", err: errors.New("quota exceeded")}
	a := NewAnswerer(lister, gen, zerolog.Nop())

	res, err := a.Answer(context.Background(), "Where are my keys?", "elder-1")
	if err != nil {
		t.Fatalf("model failure must not surface: %v", err)
	}
	if len(res.MatchedMemories) != 1 || res.MatchedMemories[0].ID != "m2" {
		t.Fatalf("expected first keyword match in recency order, got %v", res.MatchedMemories)
	}
	if gen.calls != 1 {
		t.Fatalf("model calls = %d", gen.calls)
	}
}

func TestAnswer_NoMatchesCannedAnswer(t *testing.T) {
	lister := &fakeMemoryLister{memories: []*model.Memory{
		mem("m1", "watered the garden"),
	}}
	a := NewAnswerer(lister, nil, zerolog.Nop())

	res, err := a.Answer(context.Background(), "Where is my wallet?", "elder-1")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if res.Answer != NoInformationAnswer {
		t.Fatalf("answer = %q", res.Answer)
	}
	if len(res.MatchedMemories) != 0 {
		t.Fatalf("matched must be empty, got %d", len(res.MatchedMemories))
	}
}

func TestAnswer_EmptyMemorySetSkipsModel(t *testing.T) {
	lister := &fakeMemoryLister{}
	gen := &fakeGenerator{model: "m", out: "should not be used"}
	a := NewAnswerer(lister, gen, zerolog.Nop())

	res, err := a.Answer(context.Background(), "Where are my keys?", "elder-1")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("model must not be called with zero memories")
	}
	if res.Answer != NoInformationAnswer {
		t.Fatalf("answer = %q", res.Answer)
	}
}

func TestAnswer_StoreFailureIsHardError(t *testing.T) {
	boom := errors.New("connection refused")
	lister := &fakeMemoryLister{err: boom}
	a := NewAnswerer(lister, nil, zerolog.Nop())

	if _, err := a.Answer(context.Background(), "anything", "elder-1"); !errors.Is(err, boom) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}
