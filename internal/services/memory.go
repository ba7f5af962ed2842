package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/store"
)

// MemoryService orchestrates memory-related use cases.
type MemoryService struct {
	store     store.Store
	extractor *ai.Extractor
}

func NewMemoryService(s store.Store, extractor *ai.Extractor) *MemoryService {
	return &MemoryService{store: s, extractor: extractor}
}

// CreateMemoryRequest carries caller-supplied fields for a new memory.
// Type and Tags are optional; when Type is empty the extractor classifies
// the text and fills both.
type CreateMemoryRequest struct {
	ElderID string
	RawText string
	Type    string
	Tags    []string
}

func (s *MemoryService) CreateMemory(ctx context.Context, req CreateMemoryRequest) (*model.Memory, error) {
	m := &model.Memory{
		ID:        uuid.NewString(),
		ElderID:   req.ElderID,
		RawText:   req.RawText,
		Type:      req.Type,
		Tags:      req.Tags,
		CreatedAt: time.Now().UTC(),
	}

	if m.Type == "" && s.extractor != nil {
		res := s.extractor.Extract(ctx, req.RawText)
		m.Type = res.Type
		if len(m.Tags) == 0 {
			m.Tags = res.Tags
		}
		m.StructuredJSON = res.Structured
	}
	if m.Type == "" {
		m.Type = model.MemoryTypeOther
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}

	return s.store.Memories().Create(ctx, m)
}

func (s *MemoryService) GetMemory(ctx context.Context, elderID, memoryID string) (*model.Memory, error) {
	return s.store.Memories().GetByID(ctx, elderID, memoryID)
}

func (s *MemoryService) ListMemories(ctx context.Context, req model.ListMemoriesRequest) ([]*model.Memory, error) {
	return s.store.Memories().List(ctx, req)
}

// AttachImage records the public URL of an uploaded photo on an existing memory.
func (s *MemoryService) AttachImage(ctx context.Context, elderID, memoryID, imageURL string) (*model.Memory, error) {
	if err := s.store.Memories().SetImageURL(ctx, elderID, memoryID, imageURL); err != nil {
		return nil, err
	}
	return s.store.Memories().GetByID(ctx, elderID, memoryID)
}
