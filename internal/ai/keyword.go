package ai

import (
	"strings"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

// keywordMinLen: question words at or below this length are too common to
// match on ("is", "my", "the", "what").
const keywordMinLen = 3

var keywordStripper = strings.NewReplacer("?", "", ".", "", ",", "", "!", "")

// Keywords tokenizes a question for fallback matching: punctuation stripped,
// lowercased, whitespace split, words longer than three characters kept.
func Keywords(question string) []string {
	cleaned := strings.ToLower(keywordStripper.Replace(question))
	var out []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) > keywordMinLen {
			out = append(out, w)
		}
	}
	return out
}

// MatchMemories filters memories whose text or tags contain any question
// keyword as a substring. This is a filter, not a ranking: input order is
// preserved, so a recency-ordered input yields recency-ordered matches.
// A question with no usable keywords matches nothing.
func MatchMemories(question string, memories []*model.Memory) []*model.Memory {
	keywords := Keywords(question)

	var matched []*model.Memory
	for _, m := range memories {
		text := strings.ToLower(m.RawText)
		for _, kw := range keywords {
			if strings.Contains(text, kw) || tagContains(m.Tags, kw) {
				matched = append(matched, m)
				break
			}
		}
	}
	return matched
}

func tagContains(tags []string, kw string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), kw) {
			return true
		}
	}
	return false
}
