package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

const (
	// answerFetchLimit bounds how many recent memories are loaded as context.
	answerFetchLimit = 50
	// answerPromptMemories bounds how many of those go into the prompt.
	answerPromptMemories = 10
	// answerMatchedOnSuccess is how many recent memories are reported as
	// matched when the model produced the answer.
	answerMatchedOnSuccess = 3

	// NoInformationAnswer is returned when neither the model nor keyword
	// matching found anything to answer with.
	NoInformationAnswer = "I don't have any information about that yet. Try adding a memory about it first."
)

// MemoryLister is the read access the AI pipeline needs from the store.
type MemoryLister interface {
	List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error)
}

// AnswerResult is the outcome of answering one question. MatchedMemories
// length depends on the path taken (3 on the model path, 0 or 1 on the
// keyword path); callers must not assume a fixed count.
type AnswerResult struct {
	Answer          string          `json:"answer"`
	MatchedMemories []*model.Memory `json:"matchedMemories"`
}

// Answerer answers free-text questions grounded in an elder's recent
// memories, with a keyword fallback when the model path is unavailable.
type Answerer struct {
	memories MemoryLister
	gen      Generator
	log      zerolog.Logger
}

// NewAnswerer creates an answerer. gen may be nil to force keyword-only mode.
func NewAnswerer(memories MemoryLister, gen Generator, log zerolog.Logger) *Answerer {
	return &Answerer{memories: memories, gen: gen, log: log}
}

const answerPromptFmt = `You are a gentle memory assistant for an elderly person.
Answer their question using only the memories below. Be warm and reassuring,
and keep the answer to three sentences at most. If the memories do not contain
the answer, say so kindly.

Memories (most recent first):
%s
Question: %s`

// Answer resolves a question for the given elder. A memory-load failure is
// the only error surfaced to the caller; model failures degrade silently to
// keyword matching.
func (a *Answerer) Answer(ctx context.Context, question, elderID string) (*AnswerResult, error) {
	memories, err := a.memories.List(ctx, model.ListMemoriesRequest{ElderID: elderID, Limit: answerFetchLimit})
	if err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}

	if a.gen != nil && len(memories) > 0 {
		answer, err := a.answerWithModel(ctx, question, memories)
		if err == nil {
			matched := memories
			if len(matched) > answerMatchedOnSuccess {
				matched = matched[:answerMatchedOnSuccess]
			}
			return &AnswerResult{Answer: answer, MatchedMemories: matched}, nil
		}
		a.log.Warn().Err(err).Msg("model answer failed, using keyword fallback")
	}

	return a.answerByKeywords(question, memories), nil
}

func (a *Answerer) answerWithModel(ctx context.Context, question string, memories []*model.Memory) (string, error) {
	n := len(memories)
	if n > answerPromptMemories {
		n = answerPromptMemories
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "- %s\n", memories[i].RawText)
	}

	out, err := a.gen.Generate(ctx, fmt.Sprintf(answerPromptFmt, sb.String(), question))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// answerByKeywords never calls the model. The first match wins because the
// input is ordered by recency; matches are not ranked by overlap count.
func (a *Answerer) answerByKeywords(question string, memories []*model.Memory) *AnswerResult {
	matched := MatchMemories(question, memories)
	if len(matched) == 0 {
		return &AnswerResult{Answer: NoInformationAnswer, MatchedMemories: []*model.Memory{}}
	}
	best := matched[0]
	return &AnswerResult{
		Answer:          fmt.Sprintf("You told me: %q", best.RawText),
		MatchedMemories: []*model.Memory{best},
	}
}
