package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/memoryfriend/memory-friend/server/internal/model"
)

const rawTextLimit = 5000

// RawText validates the body of a new memory.
func RawText(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("rawText is required")
	}
	if len(v) > rawTextLimit {
		return fmt.Errorf("rawText exceeds %d characters", rawTextLimit)
	}
	return nil
}

// MemoryType accepts an empty value (the extractor fills it in) or one of
// the known types.
func MemoryType(v string) error {
	if v == "" {
		return nil
	}
	if !model.IsMemoryType(v) {
		return fmt.Errorf("unknown memory type %q", v)
	}
	return nil
}

// ElderEmail mirrors the historical check: anything with an "@" is accepted
// and the store decides whether an elder account exists behind it.
func ElderEmail(v string) error {
	if !strings.Contains(v, "@") {
		return fmt.Errorf("a valid elder email is required")
	}
	return nil
}

// Date validates a YYYY-MM-DD calendar date.
func Date(v string) error {
	if v == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return nil
}

// QuestionText validates the body of a new question.
func QuestionText(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("question is required")
	}
	if len(v) > 1000 {
		return fmt.Errorf("question exceeds 1000 characters")
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
