package usecase

import (
	"context"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/pub"
	"github.com/tychicus04/web-ban-den-sub006/internal/repository"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OrderStatusUsecase applies seller-driven delivery-status transitions. It
// is a pure status mirror: no ledger side effects, no inventory adjustment,
// no compensation.
type OrderStatusUsecase struct {
	runner    repository.TxRunner
	orderRepo repository.OrderRepository
	publisher *pub.WalletEventPublisher
	logger    *zap.Logger
}

func NewOrderStatusUsecase(
	runner repository.TxRunner,
	orderRepo repository.OrderRepository,
	publisher *pub.WalletEventPublisher,
	logger *zap.Logger,
) *OrderStatusUsecase {
	return &OrderStatusUsecase{
		runner:    runner,
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Transition moves the order to target if target is a direct successor of
// the current status, and propagates the new status to every line item. The
// order must belong to the identified seller; a foreign or unknown order id
// answers ErrNotFound either way.
func (uc *OrderStatusUsecase) Transition(ctx context.Context, ident domain.Identity, orderID string, target domain.DeliveryStatus, trackingCode *string) (*domain.Order, error) {
	var order *domain.Order
	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = uc.orderRepo.GetForSellerWithLock(ctx, tx, orderID, ident.SellerID)
		if err != nil {
			return err
		}

		// Ownership first: an unknown target on someone else's order must
		// still answer not-found.
		if !domain.IsValidDeliveryStatus(target) || !domain.CanTransition(order.DeliveryStatus, target) {
			return xerrors.ErrInvalidTransition
		}

		return uc.orderRepo.UpdateDeliveryStatus(ctx, tx, orderID, target, trackingCode)
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, err
		}
		uc.logger.Error("order transition failed",
			zap.String("order_id", orderID),
			zap.Int64("seller_id", ident.SellerID),
			zap.String("target", string(target)),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	order.DeliveryStatus = target
	if trackingCode != nil {
		order.TrackingCode = trackingCode
	}

	_ = uc.publisher.Publish(ctx, &pub.WalletEvent{
		EventType:   pub.EventOrderStatusChanged,
		SellerID:    ident.SellerID,
		OrderID:     orderID,
		OrderStatus: string(target),
	})

	uc.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.Int64("seller_id", ident.SellerID),
		zap.String("status", string(target)))

	return order, nil
}

// Get returns a seller's order with its line items.
func (uc *OrderStatusUsecase) Get(ctx context.Context, ident domain.Identity, orderID string) (*domain.Order, []*domain.OrderItem, error) {
	order, err := uc.orderRepo.GetForSeller(ctx, orderID, ident.SellerID)
	if err != nil {
		if isWorkflowError(err) {
			return nil, nil, err
		}
		return nil, nil, xerrors.ErrTransientStore
	}

	items, err := uc.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return nil, nil, xerrors.ErrTransientStore
	}
	return order, items, nil
}

// List returns a page of the seller's orders.
func (uc *OrderStatusUsecase) List(ctx context.Context, ident domain.Identity, limit, offset int) ([]*domain.Order, error) {
	orders, err := uc.orderRepo.ListBySeller(ctx, ident.SellerID, limit, offset)
	if err != nil {
		uc.logger.Error("order list failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}
	return orders, nil
}
