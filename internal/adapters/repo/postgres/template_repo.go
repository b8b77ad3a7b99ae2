package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/printmarket/internal/domain"
)

type TemplateRepo struct{ db *gorm.DB }

func NewTemplateRepo(db *gorm.DB) *TemplateRepo { return &TemplateRepo{db: db} }

func (r *TemplateRepo) Save(ctx context.Context, t *domain.ProductTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductTemplate, error) {
	var t domain.ProductTemplate
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) List(ctx context.Context) ([]domain.ProductTemplate, error) {
	var list []domain.ProductTemplate
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
