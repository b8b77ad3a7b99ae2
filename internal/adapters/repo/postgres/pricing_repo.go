package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/printmarket/internal/domain"
)

type PricingRepo struct{ db *gorm.DB }

func NewPricingRepo(db *gorm.DB) *PricingRepo { return &PricingRepo{db: db} }

// Save upserts the config for its (shop, template) pair. The row is locked
// while the version is compared so concurrent saves cannot both win.
//
// Two first saves for the same pair race on the unique index; the loser runs
// again and takes the update path.
func (r *PricingRepo) Save(ctx context.Context, c *domain.PricingConfig) error {
	return retryOnDuplicate(func() error { return r.save(ctx, c) })
}

func (r *PricingRepo) save(ctx context.Context, c *domain.PricingConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.PricingConfig
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("shop_id = ? AND template_id = ?", c.ShopID, c.TemplateID).
			First(&existing).Error
		switch {
		case err == nil:
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
			if c.Version <= existing.Version {
				c.Version = existing.Version + 1
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if c.ID == uuid.Nil {
				c.ID = uuid.New()
			}
			if c.Version < 1 {
				c.Version = 1
			}
		default:
			return err
		}
		return tx.Save(c).Error
	})
}

func retryOnDuplicate(save func() error) error {
	err := save()
	if !isDuplicateKey(err) {
		return err
	}
	if err = save(); isDuplicateKey(err) {
		return fmt.Errorf("%w: pricing config saved concurrently", domain.ErrConflict)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PricingRepo) Find(ctx context.Context, shopID, templateID uuid.UUID) (*domain.PricingConfig, error) {
	var c domain.PricingConfig
	if err := r.db.WithContext(ctx).First(&c, "shop_id = ? AND template_id = ?", shopID, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PricingRepo) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]domain.PricingConfig, error) {
	var list []domain.PricingConfig
	if err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
