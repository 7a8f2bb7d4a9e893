package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Default attribute values applied when the caller leaves them blank.
const (
	DefaultSubject          = "general"
	DefaultGradeLevel       = "kindergarten"
	DefaultEmotionalContext = "neutral"
)

// Concept-specific validation errors
var (
	// ErrConceptIDEmpty is returned when a concept ID is empty or nil.
	ErrConceptIDEmpty = errors.New("concept ID cannot be empty")

	// ErrConceptContentEmpty is returned when a concept's content is empty.
	ErrConceptContentEmpty = errors.New("concept content cannot be empty")

	// ErrConceptSubjectEmpty is returned when a concept's subject is empty.
	ErrConceptSubjectEmpty = errors.New("concept subject cannot be empty")

	// ErrConceptGradeLevelEmpty is returned when a concept's grade level is empty.
	ErrConceptGradeLevelEmpty = errors.New("concept grade level cannot be empty")
)

// Concept represents a single learnable unit: an atomic fact or skill
// tagged with the subject and grade level it belongs to. Content is
// immutable after creation; re-learning material creates a new concept
// rather than mutating an existing one.
type Concept struct {
	ID               uuid.UUID `json:"id"`
	Content          string    `json:"content"`
	Subject          string    `json:"subject"`
	GradeLevel       string    `json:"grade_level"`
	EmotionalContext string    `json:"emotional_context,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewConcept creates a new Concept with the given content and tags.
// Blank subject, grade level, and emotional context fall back to the
// package defaults. Returns an error if validation fails.
func NewConcept(content, subject, gradeLevel, emotionalContext string) (*Concept, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if gradeLevel == "" {
		gradeLevel = DefaultGradeLevel
	}
	if emotionalContext == "" {
		emotionalContext = DefaultEmotionalContext
	}

	concept := &Concept{
		ID:               uuid.New(),
		Content:          content,
		Subject:          subject,
		GradeLevel:       gradeLevel,
		EmotionalContext: emotionalContext,
		CreatedAt:        time.Now().UTC(),
	}

	if err := concept.Validate(); err != nil {
		return nil, err
	}

	return concept, nil
}

// Validate checks if the Concept has valid data.
// Returns an error if any field fails validation.
func (c *Concept) Validate() error {
	if c.ID == uuid.Nil {
		return ErrConceptIDEmpty
	}

	if c.Content == "" {
		return ErrConceptContentEmpty
	}

	if c.Subject == "" {
		return ErrConceptSubjectEmpty
	}

	if c.GradeLevel == "" {
		return ErrConceptGradeLevelEmpty
	}

	return nil
}
