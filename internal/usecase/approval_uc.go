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

// ApprovalUsecase is the operator path that resolves manually-reviewed
// ledger entries. Approving an entry performs exactly the balance update the
// originating workflow deferred, atomically with the status flip, so the
// balance invariant (balance == sum of approved entries) holds on both sides
// of the transition.
type ApprovalUsecase struct {
	runner      repository.TxRunner
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	balanceUC   *BalanceUsecase
	publisher   *pub.WalletEventPublisher
	logger      *zap.Logger
}

func NewApprovalUsecase(
	runner repository.TxRunner,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	balanceUC *BalanceUsecase,
	publisher *pub.WalletEventPublisher,
	logger *zap.Logger,
) *ApprovalUsecase {
	return &ApprovalUsecase{
		runner:      runner,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		balanceUC:   balanceUC,
		publisher:   publisher,
		logger:      logger,
	}
}

// Approve marks a pending entry approved and applies its signed amount to
// the seller balance in one transaction. A withdrawal the balance no longer
// covers fails with ErrInsufficientBalance and stays pending.
func (uc *ApprovalUsecase) Approve(ctx context.Context, entryID int64) (*domain.LedgerEntry, int64, error) {
	var entry *domain.LedgerEntry
	var newBalance int64

	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		entry, err = uc.ledgerRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.Approval != domain.ApprovalPending {
			return xerrors.ErrAlreadyProcessed
		}

		if err := uc.ledgerRepo.UpdateApproval(ctx, tx, entryID, domain.ApprovalApproved); err != nil {
			return err
		}

		newBalance, err = uc.accountRepo.ApplyDelta(ctx, tx, entry.SellerID, entry.Amount)
		return err
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, 0, err
		}
		uc.logger.Error("approval transaction failed",
			zap.Int64("entry_id", entryID),
			zap.Error(err))
		return nil, 0, xerrors.ErrTransientStore
	}

	entry.Approval = domain.ApprovalApproved
	uc.balanceUC.InvalidateBalance(ctx, entry.SellerID)

	_ = uc.publisher.Publish(ctx, &pub.WalletEvent{
		EventType:     pub.EventEntryApproved,
		SellerID:      entry.SellerID,
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Amount:        entry.Amount,
		BalanceAfter:  newBalance,
		Method:        entry.Method,
	})

	uc.logger.Info("ledger entry approved",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("seller_id", entry.SellerID),
		zap.Int64("amount", entry.Amount),
		zap.Int64("balance_after", newBalance))

	return entry, newBalance, nil
}

// Reject marks a pending entry rejected. The balance is untouched; rejected
// is terminal.
func (uc *ApprovalUsecase) Reject(ctx context.Context, entryID int64, reason string) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry

	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		entry, err = uc.ledgerRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.Approval != domain.ApprovalPending {
			return xerrors.ErrAlreadyProcessed
		}

		return uc.ledgerRepo.UpdateApproval(ctx, tx, entryID, domain.ApprovalRejected)
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, err
		}
		uc.logger.Error("rejection transaction failed",
			zap.Int64("entry_id", entryID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	entry.Approval = domain.ApprovalRejected

	_ = uc.publisher.Publish(ctx, &pub.WalletEvent{
		EventType:     pub.EventEntryRejected,
		SellerID:      entry.SellerID,
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Amount:        entry.Amount,
		Method:        entry.Method,
	})

	uc.logger.Info("ledger entry rejected",
		zap.Int64("entry_id", entry.ID),
		zap.Int64("seller_id", entry.SellerID),
		zap.String("reason", reason))

	return entry, nil
}
