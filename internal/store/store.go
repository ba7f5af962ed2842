package store

import (
	"context"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Memories() Memories
	Questions() Questions
	Profiles() Profiles
	Links() Links
	Summaries() Summaries
}

type Memories interface {
	Create(ctx context.Context, m *model.Memory) (*model.Memory, error)
	GetByID(ctx context.Context, elderID, memoryID string) (*model.Memory, error)
	List(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error)
	SetImageURL(ctx context.Context, elderID, memoryID, imageURL string) error
}

type Questions interface {
	Create(ctx context.Context, q *model.Question) (*model.Question, error)
	List(ctx context.Context, elderID string, limit int) ([]*model.Question, error)
}

type Profiles interface {
	Create(ctx context.Context, p *model.Profile) (*model.Profile, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
}

type Links interface {
	Create(ctx context.Context, l *model.CaregiverElderLink) error
	ListByCaregiver(ctx context.Context, caregiverUserID string) ([]*model.CaregiverElderLink, error)
	// LinkByEmail resolves an elder profile by email and links the caregiver
	// to it, replacing the store-side link_caregiver_to_elder_by_email
	// procedure. Idempotent for an already-linked pair.
	LinkByEmail(ctx context.Context, caregiverUserID, elderEmail string) error
}

type Summaries interface {
	Upsert(ctx context.Context, s *model.DailySummary) (*model.DailySummary, error)
	Get(ctx context.Context, elderID, date string) (*model.DailySummary, error)
}
