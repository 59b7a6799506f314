package repository

import (
	"context"

	"github.com/fadilmartias/interview-coach/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db}
}

// ListByCategory returns every record of the category in insertion order.
func (r *QuestionRepository) ListByCategory(ctx context.Context, category string) ([]model.BehavioralQuestion, error) {
	var questions []model.BehavioralQuestion
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// ListPage returns one page of the category (all categories when empty) plus the total count.
func (r *QuestionRepository) ListPage(ctx context.Context, category string, offset, limit int) ([]model.BehavioralQuestion, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.BehavioralQuestion{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.BehavioralQuestion
	err := query.
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

// SearchSimilar orders records by embedding distance, optionally filtered by category.
func (r *QuestionRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, category string, topK int) ([]model.BehavioralQuestion, error) {
	var questions []model.BehavioralQuestion

	query := r.db.WithContext(ctx).Where("embedding IS NOT NULL")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.
		Clauses(clause.OrderBy{Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{embedding}}}).
		Limit(topK).
		Find(&questions).Error

	return questions, err
}

func (r *QuestionRepository) Create(ctx context.Context, question *model.BehavioralQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}
