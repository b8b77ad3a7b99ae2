package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/printmarket/internal/domain"
)

type ShopRepo struct{ db *gorm.DB }

func NewShopRepo(db *gorm.DB) *ShopRepo { return &ShopRepo{db: db} }

func (r *ShopRepo) Save(ctx context.Context, s *domain.Shop) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ShopRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	var s domain.Shop
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShopRepo) List(ctx context.Context, activeOnly bool) ([]domain.Shop, error) {
	var list []domain.Shop
	q := r.db.WithContext(ctx).Model(&domain.Shop{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
