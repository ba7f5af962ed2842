package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// QuestionService answers questions and keeps the question history.
type QuestionService struct {
	store    store.Store
	answerer *ai.Answerer
}

func NewQuestionService(s store.Store, answerer *ai.Answerer) *QuestionService {
	return &QuestionService{store: s, answerer: answerer}
}

// AskResult pairs the stored question with the memories the answer drew on.
type AskResult struct {
	Question        *model.Question `json:"question"`
	MatchedMemories []*model.Memory `json:"matchedMemories"`
}

// Ask answers questionText against the elder's memories and persists the
// question together with its answer. Answering is synchronous; AnsweredAt is
// set in the same call.
func (s *QuestionService) Ask(ctx context.Context, elderID, questionText string) (*AskResult, error) {
	res, err := s.answerer.Answer(ctx, questionText, elderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := &model.Question{
		ID:           uuid.NewString(),
		ElderID:      elderID,
		QuestionText: questionText,
		AnswerText:   &res.Answer,
		CreatedAt:    now,
		AnsweredAt:   &now,
	}
	stored, err := s.store.Questions().Create(ctx, q)
	if err != nil {
		return nil, err
	}
	return &AskResult{Question: stored, MatchedMemories: res.MatchedMemories}, nil
}

func (s *QuestionService) ListQuestions(ctx context.Context, elderID string, limit int) ([]*model.Question, error) {
	return s.store.Questions().List(ctx, elderID, limit)
}
