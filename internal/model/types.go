package model

import "time"

// Role identifies which side of the caregiver/elder relationship a profile is on.
type Role string

const (
	RoleElder     Role = "elder"
	RoleCaregiver Role = "caregiver"
)

// Memory type values accepted by the API. "other" is the default bucket.
const (
	MemoryTypeStory      = "story"
	MemoryTypePerson     = "person"
	MemoryTypeEvent      = "event"
	MemoryTypeMedication = "medication"
	MemoryTypeRoutine    = "routine"
	MemoryTypePreference = "preference"
	MemoryTypeObject     = "object"
	MemoryTypeReminder   = "reminder"
	MemoryTypeOther      = "other"
)

// MemoryTypes lists every accepted memory type.
var MemoryTypes = []string{
	MemoryTypeStory, MemoryTypePerson, MemoryTypeEvent, MemoryTypeMedication,
	MemoryTypeRoutine, MemoryTypePreference, MemoryTypeObject, MemoryTypeReminder,
	MemoryTypeOther,
}

// IsMemoryType reports whether t is one of the accepted memory types.
func IsMemoryType(t string) bool {
	for _, v := range MemoryTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Memory is a single recorded fact, event or reminder belonging to an elder.
// Immutable after creation except for the attached image URL.
type Memory struct {
	ID             string                 `json:"id"`
	ElderID        string                 `json:"elderId"`
	RawText        string                 `json:"rawText"`
	Type           string                 `json:"type"`
	Tags           []string               `json:"tags"`
	StructuredJSON map[string]interface{} `json:"structuredJson,omitempty"`
	ImageURL       *string                `json:"imageUrl,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// Question records a question an elder asked together with its answer.
// AnswerText is set synchronously in the current flow but the model allows
// a later-answered state.
type Question struct {
	ID           string     `json:"id"`
	ElderID      string     `json:"elderId"`
	QuestionText string     `json:"questionText"`
	AnswerText   *string    `json:"answerText,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	AnsweredAt   *time.Time `json:"answeredAt,omitempty"`
}

// Profile holds per-user role and display data.
//
// ElderID is a legacy single-link field kept for caregivers created before
// the caregiver_elder_links table existed. Resolution always goes through
// the link table; this field is never read for authorization.
type Profile struct {
	UserID   string  `json:"userId"`
	Email    string  `json:"email"`
	Role     Role    `json:"role"`
	FullName string  `json:"fullName"`
	ElderID  *string `json:"elderId,omitempty"`
}

// CaregiverElderLink grants a caregiver read access to one elder's data.
type CaregiverElderLink struct {
	CaregiverUserID string    `json:"caregiverUserId"`
	ElderUserID     string    `json:"elderUserId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DailySummary is the generated narrative for one elder and one calendar day.
type DailySummary struct {
	ElderID     string    `json:"elderId"`
	Date        string    `json:"date"` // YYYY-MM-DD, elder-local
	SummaryText string    `json:"summaryText"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ElderContext is the resolved elder scope for an authenticated user.
// ElderID is nil for a caregiver with no links.
type ElderContext struct {
	ElderID *string `json:"elderId"`
	Role    Role    `json:"role"`
}

// ListMemoriesRequest captures filters used when listing memories.
type ListMemoriesRequest struct {
	ElderID string
	Type    string
	Tag     string
	Limit   int
	After   *time.Time
	Before  *time.Time
}
