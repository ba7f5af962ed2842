package ai

import (
	"testing"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

func mem(id, text string, tags ...string) *model.Memory {
	return &model.Memory{ID: id, RawText: text, Tags: tags}
}

func TestKeywords(t *testing.T) {
	cases := []struct {
		name     string
		question string
		want     []string
	}{
		{"strips punctuation", "Where are my keys?", []string{"where", "keys"}},
		{"short words dropped", "is it my day", nil},
		{"mixed case", "Did ROSE visit Today!", []string{"rose", "visit", "today"}},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Keywords(tc.question)
			if len(got) != len(tc.want) {
				t.Fatalf("Keywords(%q) = %v, want %v", tc.question, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Keywords(%q) = %v, want %v", tc.question, got, tc.want)
				}
			}
		})
	}
}

func TestMatchMemories_TextAndTagSubstrings(t *testing.T) {
	memories := []*model.Memory{
		mem("m1", "I left my keys by the radio"),
		mem("m2", "Had lunch with my daughter", "family"),
		mem("m3", "Walked in the park", "Keys"),
	}

	got := MatchMemories("Where are my keys?", memories)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	// Input order preserved: m1 before m3.
	if got[0].ID != "m1" || got[1].ID != "m3" {
		t.Fatalf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestMatchMemories_NoKeywordsMatchesNothing(t *testing.T) {
	memories := []*model.Memory{mem("m1", "it is a day")}
	if got := MatchMemories("is it a?", memories); len(got) != 0 {
		t.Fatalf("expected no matches for all-short-word question, got %d", len(got))
	}
}

func TestMatchMemories_NoOverlap(t *testing.T) {
	memories := []*model.Memory{
		mem("m1", "watered the garden", "plants"),
	}
	if got := MatchMemories("Where is my wallet?", memories); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
