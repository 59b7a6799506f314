package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// QueryCache remembers which questions a generated search query produced.
type QueryCache struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Query     string           `gorm:"type:text;not null" json:"query"`
	Category  string           `gorm:"type:varchar(64);index" json:"category"`
	Questions string           `gorm:"type:jsonb" json:"questions"`
	Embedding *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

func (q *QueryCache) TableName() string {
	return "query_cache"
}
