package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/model"
)

func TestCreateMemory_ExplicitTypeSkipsExtraction(t *testing.T) {
	fs := newFakeStore()
	svc := NewMemoryService(fs, ai.NewExtractor(nil, zerolog.Nop()))

	m, err := svc.CreateMemory(context.Background(), CreateMemoryRequest{
		ElderID: "elder-1",
		RawText: "I visited the doctor",
		Type:    model.MemoryTypeStory,
		Tags:    []string{"visit"},
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if m.Type != model.MemoryTypeStory {
		t.Fatalf("type = %q, caller-supplied type must win", m.Type)
	}
	if len(m.Tags) != 1 || m.Tags[0] != "visit" {
		t.Fatalf("tags = %v", m.Tags)
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Fatal("ID and CreatedAt must be set")
	}
}

func TestCreateMemory_MissingTypeRunsExtraction(t *testing.T) {
	fs := newFakeStore()
	svc := NewMemoryService(fs, ai.NewExtractor(nil, zerolog.Nop()))

	m, err := svc.CreateMemory(context.Background(), CreateMemoryRequest{
		ElderID: "elder-1",
		RawText: "I left my keys next to my pills",
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if m.Type != model.MemoryTypeMedication {
		t.Fatalf("type = %q, want medication from keyword buckets", m.Type)
	}
	if len(m.Tags) == 0 || m.Tags[0] != "keys" {
		t.Fatalf("tags = %v", m.Tags)
	}
}

func TestCreateMemory_NoExtractorDefaultsToOther(t *testing.T) {
	fs := newFakeStore()
	svc := NewMemoryService(fs, nil)

	m, err := svc.CreateMemory(context.Background(), CreateMemoryRequest{
		ElderID: "elder-1",
		RawText: "something happened",
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if m.Type != model.MemoryTypeOther {
		t.Fatalf("type = %q, want other", m.Type)
	}
	if m.Tags == nil {
		t.Fatal("tags must be an empty slice, not nil")
	}
}

func TestAttachImage(t *testing.T) {
	fs := newFakeStore()
	svc := NewMemoryService(fs, nil)

	m, err := svc.CreateMemory(context.Background(), CreateMemoryRequest{ElderID: "elder-1", RawText: "garden photo day"})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	got, err := svc.AttachImage(context.Background(), "elder-1", m.ID, "https://storage.example/m.jpg")
	if err != nil {
		t.Fatalf("AttachImage: %v", err)
	}
	if got.ImageURL == nil || *got.ImageURL != "https://storage.example/m.jpg" {
		t.Fatalf("image url = %v", got.ImageURL)
	}
}
