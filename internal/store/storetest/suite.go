package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	elderID := "e-" + uuid.New().String()
	caregiverID := "c-" + uuid.New().String()
	elderEmail := elderID + "@example.test"

	// Profiles
	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: elderID, Email: elderEmail, Role: model.RoleElder, FullName: "Rose"}); err != nil {
		t.Fatalf("CreateProfile elder: %v", err)
	}
	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: caregiverID, Email: caregiverID + "@example.test", Role: model.RoleCaregiver, FullName: "Sam"}); err != nil {
		t.Fatalf("CreateProfile caregiver: %v", err)
	}
	if got, err := s.Profiles().Get(ctx, elderID); err != nil || got.Role != model.RoleElder {
		t.Fatalf("GetProfile: got=%v err=%v", got, err)
	}
	if got, err := s.Profiles().GetByEmail(ctx, elderEmail); err != nil || got.UserID != elderID {
		t.Fatalf("GetProfileByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Profiles().Get(ctx, "missing-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetProfile missing: expected ErrNotFound, got %v", err)
	}

	// Memories: tags must round-trip exactly (order preserved, no dedup, no case change)
	m1, err := s.Memories().Create(ctx, &model.Memory{ElderID: elderID, RawText: "I left my keys by the radio", Type: model.MemoryTypeObject, Tags: []string{"keys", "Radio", "keys"}})
	if err != nil {
		t.Fatalf("CreateMemory m1: %v", err)
	}
	if m1.ID == "" {
		t.Fatal("CreateMemory: empty memory id")
	}
	time.Sleep(5 * time.Millisecond)
	m2, err := s.Memories().Create(ctx, &model.Memory{ElderID: elderID, RawText: "Took my heart pills at nine", Tags: []string{"health"}})
	if err != nil {
		t.Fatalf("CreateMemory m2: %v", err)
	}
	if m2.Type != model.MemoryTypeOther {
		t.Fatalf("CreateMemory default type: got %q", m2.Type)
	}

	got, err := s.Memories().GetByID(ctx, elderID, m1.ID)
	if err != nil {
		t.Fatalf("GetMemory: %v", err)
	}
	if len(got.Tags) != 3 || got.Tags[0] != "keys" || got.Tags[1] != "Radio" || got.Tags[2] != "keys" {
		t.Fatalf("tags did not round-trip exactly: %v", got.Tags)
	}

	// List: descending recency
	lst, err := s.Memories().List(ctx, model.ListMemoriesRequest{ElderID: elderID, Limit: 50})
	if err != nil {
		t.Fatalf("ListMemories: %v", err)
	}
	if len(lst) != 2 || lst[0].ID != m2.ID || lst[1].ID != m1.ID {
		t.Fatalf("ListMemories order: got %d items, first=%v", len(lst), lst[0].ID)
	}

	// Type and tag filters
	if lst, err = s.Memories().List(ctx, model.ListMemoriesRequest{ElderID: elderID, Type: model.MemoryTypeObject}); err != nil || len(lst) != 1 || lst[0].ID != m1.ID {
		t.Fatalf("ListMemories type filter: n=%d err=%v", len(lst), err)
	}
	if lst, err = s.Memories().List(ctx, model.ListMemoriesRequest{ElderID: elderID, Tag: "health"}); err != nil || len(lst) != 1 || lst[0].ID != m2.ID {
		t.Fatalf("ListMemories tag filter: n=%d err=%v", len(lst), err)
	}

	// Time-bounded list
	mid := m1.CreatedAt.Add(time.Millisecond)
	if lst, err = s.Memories().List(ctx, model.ListMemoriesRequest{ElderID: elderID, After: &mid}); err != nil || len(lst) != 1 || lst[0].ID != m2.ID {
		t.Fatalf("ListMemories time bound: n=%d err=%v", len(lst), err)
	}

	// Image URL
	if err := s.Memories().SetImageURL(ctx, elderID, m1.ID, "https://storage.example/keys.jpg"); err != nil {
		t.Fatalf("SetImageURL: %v", err)
	}
	if got, err = s.Memories().GetByID(ctx, elderID, m1.ID); err != nil || got.ImageURL == nil || *got.ImageURL != "https://storage.example/keys.jpg" {
		t.Fatalf("SetImageURL round-trip: got=%v err=%v", got.ImageURL, err)
	}
	if err := s.Memories().SetImageURL(ctx, elderID, "missing", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("SetImageURL missing: expected ErrNotFound, got %v", err)
	}

	// Questions
	ans := "You left them by the radio."
	now := time.Now().UTC()
	q1, err := s.Questions().Create(ctx, &model.Question{ElderID: elderID, QuestionText: "Where are my keys?", AnswerText: &ans, AnsweredAt: &now})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	qs, err := s.Questions().List(ctx, elderID, 10)
	if err != nil || len(qs) != 1 || qs[0].ID != q1.ID {
		t.Fatalf("ListQuestions: n=%d err=%v", len(qs), err)
	}
	if qs[0].AnswerText == nil || *qs[0].AnswerText != ans {
		t.Fatalf("ListQuestions answer round-trip: %v", qs[0].AnswerText)
	}

	// Links
	if err := s.Links().LinkByEmail(ctx, caregiverID, elderEmail); err != nil {
		t.Fatalf("LinkByEmail: %v", err)
	}
	// Idempotent relink
	if err := s.Links().LinkByEmail(ctx, caregiverID, elderEmail); err != nil {
		t.Fatalf("LinkByEmail relink: %v", err)
	}
	links, err := s.Links().ListByCaregiver(ctx, caregiverID)
	if err != nil || len(links) != 1 || links[0].ElderUserID != elderID {
		t.Fatalf("ListByCaregiver: n=%d err=%v", len(links), err)
	}
	if err := s.Links().LinkByEmail(ctx, caregiverID, "nobody@example.test"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("LinkByEmail missing elder: expected ErrNotFound, got %v", err)
	}
	// Linking to a caregiver email must fail validation
	if err := s.Links().LinkByEmail(ctx, caregiverID, caregiverID+"@example.test"); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("LinkByEmail non-elder: expected ErrValidation, got %v", err)
	}

	// Direct link insert (backfill path, no email lookup), idempotent too
	elder2 := "e-" + uuid.New().String()
	if _, err := s.Profiles().Create(ctx, &model.Profile{UserID: elder2, Email: elder2 + "@example.test", Role: model.RoleElder, FullName: "Arthur"}); err != nil {
		t.Fatalf("CreateProfile elder2: %v", err)
	}
	if err := s.Links().Create(ctx, &model.CaregiverElderLink{CaregiverUserID: caregiverID, ElderUserID: elder2}); err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if err := s.Links().Create(ctx, &model.CaregiverElderLink{CaregiverUserID: caregiverID, ElderUserID: elder2}); err != nil {
		t.Fatalf("CreateLink duplicate: %v", err)
	}
	if links, err = s.Links().ListByCaregiver(ctx, caregiverID); err != nil || len(links) != 2 {
		t.Fatalf("ListByCaregiver after direct link: n=%d err=%v", len(links), err)
	}

	// Summaries: upsert overwrites
	if _, err := s.Summaries().Upsert(ctx, &model.DailySummary{ElderID: elderID, Date: "2026-08-01", SummaryText: "first"}); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}
	if _, err := s.Summaries().Upsert(ctx, &model.DailySummary{ElderID: elderID, Date: "2026-08-01", SummaryText: "second"}); err != nil {
		t.Fatalf("UpsertSummary overwrite: %v", err)
	}
	sum, err := s.Summaries().Get(ctx, elderID, "2026-08-01")
	if err != nil || sum.SummaryText != "second" {
		t.Fatalf("GetSummary: got=%v err=%v", sum, err)
	}
	if _, err := s.Summaries().Get(ctx, elderID, "1999-01-01"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetSummary missing: expected ErrNotFound, got %v", err)
	}
}
