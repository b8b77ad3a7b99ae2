package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/printmarket/internal/domain"
)

type PaymentGateway interface {
	CreatePreference(ctx context.Context, o *domain.Order) (string, error)
	PaymentInfo(ctx context.Context, paymentID string) (status string, externalRef string, err error)
	VerifyExternalRef(ext string) (string, bool)
}

var ErrInvalidExternalRef = errors.New("invalid payment external reference")

type PaymentUC struct {
	Orders  *OrderUC
	Gateway PaymentGateway
}

// Checkout reprices a pending order, moves it to awaiting_payment and
// returns the payment URL. Orders already awaiting payment get a new URL
// at their stored prices.
func (uc *PaymentUC) Checkout(ctx context.Context, orderID uuid.UUID) (string, *domain.Order, error) {
	o, err := uc.Orders.Get(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	switch o.Status {
	case domain.OrderStatusPending:
		if len(o.Items) == 0 {
			return "", nil, fmt.Errorf("%w: order has no items", domain.ErrInvalidOrder)
		}
		if err := uc.Orders.reprice(ctx, o); err != nil {
			return "", nil, err
		}
		o.Status = domain.OrderStatusAwaitingPay
	case domain.OrderStatusAwaitingPay:
	default:
		return "", nil, fmt.Errorf("%w: status %s", domain.ErrOrderLocked, o.Status)
	}

	url, err := uc.Gateway.CreatePreference(ctx, o)
	if err != nil {
		return "", nil, err
	}
	if err := uc.Orders.Orders.Save(ctx, o); err != nil {
		return "", nil, err
	}
	log.Info().Str("order_id", o.ID.String()).Float64("total", o.Total).Msg("checkout started")
	return url, o, nil
}

// HandleNotification applies a payment status reported by the gateway.
func (uc *PaymentUC) HandleNotification(ctx context.Context, paymentID string) (*domain.Order, error) {
	status, extRef, err := uc.Gateway.PaymentInfo(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	orderID, ok := uc.Gateway.VerifyExternalRef(extRef)
	if !ok {
		return nil, ErrInvalidExternalRef
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrInvalidExternalRef
	}
	o, err := uc.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	o.MPStatus = status
	switch status {
	case "approved":
		if o.Status.CanTransition(domain.OrderStatusPaid) {
			o.Status = domain.OrderStatusPaid
		}
	case "rejected", "cancelled":
		if o.Status.CanTransition(domain.OrderStatusCancelled) {
			o.Status = domain.OrderStatusCancelled
		}
	}
	if err := uc.Orders.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	log.Info().Str("order_id", o.ID.String()).Str("payment_status", status).Str("status", string(o.Status)).Msg("payment notification")
	return o, nil
}
