package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

// ExtractionResult is the classified metadata for one raw memory text.
type ExtractionResult struct {
	Type       string                 `json:"type"`
	Tags       []string               `json:"tags"`
	Structured map[string]interface{} `json:"structured"`
}

// typeBuckets are checked in priority order; the first bucket with a keyword
// hit wins. "doctor" lands in medication because medication is checked first.
var typeBuckets = []struct {
	memType  string
	keywords []string
}{
	{model.MemoryTypeMedication, []string{"pill", "medication", "medicine", "doctor", "dose", "prescription"}},
	{model.MemoryTypePerson, []string{"daughter", "son", "friend", "neighbor", "wife", "husband", "grandson", "granddaughter", "visited"}},
	{model.MemoryTypeEvent, []string{"birthday", "appointment", "party", "wedding", "church"}},
	{model.MemoryTypeRoutine, []string{"every", "morning", "evening", "breakfast", "lunch", "dinner"}},
	{model.MemoryTypePreference, []string{"favorite", "like", "love", "prefer", "enjoy"}},
}

// fallbackTagWords are scanned independently of the type buckets.
var fallbackTagWords = []string{"keys", "wallet", "glasses", "phone", "medication"}

// Extractor classifies raw memory text into a type, tag set and structured
// fields. The primary path asks the generative model for strict JSON; on any
// failure it silently degrades to keyword buckets. Extract never returns an
// error to its caller.
type Extractor struct {
	gen Generator
	log zerolog.Logger
}

// NewExtractor creates an extractor. gen may be nil, in which case only the
// keyword fallback runs.
func NewExtractor(gen Generator, log zerolog.Logger) *Extractor {
	return &Extractor{gen: gen, log: log}
}

const extractPromptFmt = `You are a memory assistant for an elderly person.
Analyze the following memory text and return ONLY a JSON object with these fields:
- "type": one of "story", "person", "event", "medication", "routine", "preference", "object", "reminder", "other"
- "objects": array of physical objects mentioned
- "locations": array of places mentioned
- "people": array of people mentioned
- "tags": array of short lowercase keywords for finding this memory later

Memory text: %q

Return only the JSON object, no other text.`

// Extract classifies rawText.
func (e *Extractor) Extract(ctx context.Context, rawText string) ExtractionResult {
	if e.gen != nil {
		res, err := e.extractWithModel(ctx, rawText)
		if err == nil {
			return res
		}
		e.log.Warn().Err(err).Msg("model extraction failed, using keyword fallback")
	}
	return extractByKeywords(rawText)
}

func (e *Extractor) extractWithModel(ctx context.Context, rawText string) (ExtractionResult, error) {
	out, err := e.gen.Generate(ctx, fmt.Sprintf(extractPromptFmt, rawText))
	if err != nil {
		return ExtractionResult{}, err
	}

	var parsed struct {
		Type      string   `json:"type"`
		Objects   []string `json:"objects"`
		Locations []string `json:"locations"`
		People    []string `json:"people"`
		Tags      []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(StripJSONFences(out)), &parsed); err != nil {
		return ExtractionResult{}, fmt.Errorf("parse extraction JSON: %w", err)
	}

	typ := parsed.Type
	if !model.IsMemoryType(typ) {
		typ = model.MemoryTypeOther
	}
	tags := parsed.Tags
	if tags == nil {
		tags = []string{}
	}
	return ExtractionResult{
		Type: typ,
		Tags: tags,
		Structured: map[string]interface{}{
			"objects":   orEmpty(parsed.Objects),
			"locations": orEmpty(parsed.Locations),
			"people":    orEmpty(parsed.People),
		},
	}, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// extractByKeywords is the non-AI degraded path: type buckets in priority
// order, literal tag scan, empty structured fields.
func extractByKeywords(rawText string) ExtractionResult {
	lower := strings.ToLower(rawText)

	typ := model.MemoryTypeOther
	for _, bucket := range typeBuckets {
		if containsAny(lower, bucket.keywords) {
			typ = bucket.memType
			break
		}
	}

	tags := []string{}
	for _, w := range fallbackTagWords {
		if strings.Contains(lower, w) {
			tags = append(tags, w)
		}
	}

	return ExtractionResult{Type: typ, Tags: tags, Structured: map[string]interface{}{}}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// StripJSONFences removes a Markdown code fence wrapping, which some models
// add despite instructions.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
