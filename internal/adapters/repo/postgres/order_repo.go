package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/printmarket/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func prepareItems(o *domain.Order) {
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		if o.Items[i].CreatedAt.IsZero() {
			o.Items[i].CreatedAt = time.Now()
		}
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	prepareItems(o)
	return r.db.WithContext(ctx).Create(o).Error
}

// Save writes the order and upserts its items in one transaction.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	prepareItems(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOrder(tx, o)
	})
}

func saveOrder(tx *gorm.DB, o *domain.Order) error {
	if err := tx.Omit("Items").Save(o).Error; err != nil {
		return err
	}
	for i := range o.Items {
		if err := tx.Save(&o.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	var list []domain.Order
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if f.ShopID != uuid.Nil {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	err := q.Order("created_at desc").Limit(f.Limit).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) RemoveItem(ctx context.Context, o *domain.Order, itemID uuid.UUID) error {
	prepareItems(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND order_id = ?", itemID, o.ID).Delete(&domain.OrderItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return saveOrder(tx, o)
	})
}
