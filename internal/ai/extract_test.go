package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

func TestExtract_ModelJSONWithFences(t *testing.T) {
	gen := &fakeGenerator{model: "m", out: "```json\n{\"type\":\"person\",\"objects\":[],\"locations\":[\"park\"],\"people\":[\"Anna\"],\"tags\":[\"anna\",\"walk\"]}\n```"}
	e := NewExtractor(gen, zerolog.Nop())

	res := e.Extract(context.Background(), "Walked in the park with Anna")
	if res.Type != model.MemoryTypePerson {
		t.Fatalf("type = %q", res.Type)
	}
	if len(res.Tags) != 2 || res.Tags[0] != "anna" {
		t.Fatalf("tags = %v", res.Tags)
	}
	people, ok := res.Structured["people"].([]string)
	if !ok || len(people) != 1 || people[0] != "Anna" {
		t.Fatalf("structured people = %v", res.Structured["people"])
	}
}

func TestExtract_UnknownModelTypeFallsBackToOther(t *testing.T) {
	gen := &fakeGenerator{model: "m", out: `{"type":"banana","tags":[]}`}
	e := NewExtractor(gen, zerolog.Nop())

	res := e.Extract(context.Background(), "whatever")
	if res.Type != model.MemoryTypeOther {
		t.Fatalf("type = %q, want other", res.Type)
	}
}

func TestExtract_ModelFailureDegradesSilently(t *testing.T) {
	gen := &fakeGenerator{model: "m", err: errors.New("quota exceeded")}
	e := NewExtractor(gen, zerolog.Nop())

	res := e.Extract(context.Background(), "I saw the doctor about my pills")
	if res.Type != model.MemoryTypeMedication {
		t.Fatalf("fallback type = %q, want medication", res.Type)
	}
	if len(res.Structured) != 0 {
		t.Fatalf("fallback structured must be empty, got %v", res.Structured)
	}
}

func TestExtract_NoGeneratorUsesBuckets(t *testing.T) {
	e := NewExtractor(nil, zerolog.Nop())

	cases := []struct {
		text string
		want string
	}{
		// "doctor" classifies as medication: that bucket is checked first.
		{"I visited the doctor", model.MemoryTypeMedication},
		{"My daughter came by", model.MemoryTypePerson},
		{"The birthday party was lovely", model.MemoryTypeEvent},
		{"Every morning I water the plants", model.MemoryTypeRoutine},
		{"My favorite tea is chamomile", model.MemoryTypePreference},
		{"The sky was blue", model.MemoryTypeOther},
	}
	for _, tc := range cases {
		if got := e.Extract(context.Background(), tc.text); got.Type != tc.want {
			t.Errorf("Extract(%q).Type = %q, want %q", tc.text, got.Type, tc.want)
		}
	}
}

func TestExtract_FallbackTagScan(t *testing.T) {
	e := NewExtractor(nil, zerolog.Nop())

	res := e.Extract(context.Background(), "My wallet and glasses are on the table")
	if len(res.Tags) != 2 || res.Tags[0] != "wallet" || res.Tags[1] != "glasses" {
		t.Fatalf("tags = %v", res.Tags)
	}
}

func TestStripJSONFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"  {\"a\":1}  ":                  `{"a":1}`,
		"```json\n{\"a\":\"```b\"}\n```": "{\"a\":\"```b\"}",
	}
	for in, want := range cases {
		if got := StripJSONFences(in); got != want {
			t.Errorf("StripJSONFences(%q) = %q, want %q", in, got, want)
		}
	}
}
