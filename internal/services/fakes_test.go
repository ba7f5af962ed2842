package services

import (
	"context"
	"fmt"

	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// --- Fakes ---

type fakeStore struct {
	memories  []*model.Memory
	questions []*model.Question
	profiles  map[string]*model.Profile
	links     []*model.CaregiverElderLink
	summaries map[string]*model.DailySummary

	listErr    error
	linkCalled struct {
		caregiverUserID, elderEmail string
		called                      bool
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  map[string]*model.Profile{},
		summaries: map[string]*model.DailySummary{},
	}
}

func (f *fakeStore) Memories() store.Memories   { return &fakeMemories{f} }
func (f *fakeStore) Questions() store.Questions { return &fakeQuestions{f} }
func (f *fakeStore) Profiles() store.Profiles   { return &fakeProfiles{f} }
func (f *fakeStore) Links() store.Links         { return &fakeLinks{f} }
func (f *fakeStore) Summaries() store.Summaries { return &fakeSummaries{f} }

type fakeMemories struct{ p *fakeStore }

func (m *fakeMemories) Create(_ context.Context, mem *model.Memory) (*model.Memory, error) {
	m.p.memories = append([]*model.Memory{mem}, m.p.memories...)
	return mem, nil
}
func (m *fakeMemories) GetByID(_ context.Context, elderID, memoryID string) (*model.Memory, error) {
	for _, mem := range m.p.memories {
		if mem.ElderID == elderID && mem.ID == memoryID {
			return mem, nil
		}
	}
	return nil, model.ErrNotFound
}
func (m *fakeMemories) List(_ context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	if m.p.listErr != nil {
		return nil, m.p.listErr
	}
	var out []*model.Memory
	for _, mem := range m.p.memories {
		if mem.ElderID == req.ElderID {
			out = append(out, mem)
		}
	}
	return out, nil
}
func (m *fakeMemories) SetImageURL(_ context.Context, elderID, memoryID, imageURL string) error {
	for _, mem := range m.p.memories {
		if mem.ElderID == elderID && mem.ID == memoryID {
			mem.ImageURL = &imageURL
			return nil
		}
	}
	return model.ErrNotFound
}

type fakeQuestions struct{ p *fakeStore }

func (q *fakeQuestions) Create(_ context.Context, question *model.Question) (*model.Question, error) {
	q.p.questions = append([]*model.Question{question}, q.p.questions...)
	return question, nil
}
func (q *fakeQuestions) List(_ context.Context, elderID string, limit int) ([]*model.Question, error) {
	var out []*model.Question
	for _, question := range q.p.questions {
		if question.ElderID == elderID {
			out = append(out, question)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeProfiles struct{ p *fakeStore }

func (pr *fakeProfiles) Create(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	pr.p.profiles[profile.UserID] = profile
	return profile, nil
}
func (pr *fakeProfiles) Get(_ context.Context, userID string) (*model.Profile, error) {
	if p, ok := pr.p.profiles[userID]; ok {
		return p, nil
	}
	return nil, model.ErrNotFound
}
func (pr *fakeProfiles) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range pr.p.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeLinks struct{ p *fakeStore }

func (l *fakeLinks) Create(_ context.Context, link *model.CaregiverElderLink) error {
	l.p.links = append(l.p.links, link)
	return nil
}
func (l *fakeLinks) ListByCaregiver(_ context.Context, caregiverUserID string) ([]*model.CaregiverElderLink, error) {
	var out []*model.CaregiverElderLink
	for _, link := range l.p.links {
		if link.CaregiverUserID == caregiverUserID {
			out = append(out, link)
		}
	}
	return out, nil
}
func (l *fakeLinks) LinkByEmail(_ context.Context, caregiverUserID, elderEmail string) error {
	l.p.linkCalled.caregiverUserID = caregiverUserID
	l.p.linkCalled.elderEmail = elderEmail
	l.p.linkCalled.called = true
	return nil
}

type fakeSummaries struct{ p *fakeStore }

func (s *fakeSummaries) Upsert(_ context.Context, sum *model.DailySummary) (*model.DailySummary, error) {
	s.p.summaries[fmt.Sprintf("%s/%s", sum.ElderID, sum.Date)] = sum
	return sum, nil
}
func (s *fakeSummaries) Get(_ context.Context, elderID, date string) (*model.DailySummary, error) {
	if sum, ok := s.p.summaries[fmt.Sprintf("%s/%s", elderID, date)]; ok {
		return sum, nil
	}
	return nil, model.ErrNotFound
}
