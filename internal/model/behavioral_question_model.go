package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// BehavioralQuestion is a cached question/answer pair. Records are never
// mutated after insert; (category, question_key) is unique.
type BehavioralQuestion struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Question    string           `gorm:"type:text;not null" json:"question"`
	QuestionKey string           `gorm:"type:text;not null;uniqueIndex:idx_question_category_key" json:"-"`
	Answer      string           `gorm:"type:text;not null" json:"answer"`
	Source      string           `gorm:"type:text;not null" json:"source"`
	Category    string           `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_question_category_key" json:"category"`
	Embedding   *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (q *BehavioralQuestion) TableName() string {
	return "behavioral_questions"
}

// NormalizeQuestion is the dedup key of a question within its category.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
