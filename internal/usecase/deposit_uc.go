package usecase

import (
	"context"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/pub"
	"github.com/tychicus04/web-ban-den-sub006/internal/repository"
	"github.com/tychicus04/web-ban-den-sub006/pkg/utils"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Deposit limits, in minor currency units.
const (
	DepositMin int64 = 10_000
	DepositMax int64 = 100_000_000
)

// DepositUsecase records a seller's deposit request. Online methods approve
// immediately and credit the balance in the same transaction as the ledger
// append; offline methods queue a pending entry for manual review.
type DepositUsecase struct {
	runner      repository.TxRunner
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	balanceUC   *BalanceUsecase
	refGen      *utils.ReferenceGenerator
	publisher   *pub.WalletEventPublisher
	logger      *zap.Logger
}

func NewDepositUsecase(
	runner repository.TxRunner,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	balanceUC *BalanceUsecase,
	refGen *utils.ReferenceGenerator,
	publisher *pub.WalletEventPublisher,
	logger *zap.Logger,
) *DepositUsecase {
	return &DepositUsecase{
		runner:      runner,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		balanceUC:   balanceUC,
		refGen:      refGen,
		publisher:   publisher,
		logger:      logger,
	}
}

// validateDepositRequest runs the ordered validation chain; the first
// failure wins.
func validateDepositRequest(req *domain.DepositRequest) error {
	if req.Amount <= 0 {
		return xerrors.ErrInvalidAmount
	}
	if req.Amount < DepositMin {
		return xerrors.ErrBelowMinimum
	}
	if req.Amount > DepositMax {
		return xerrors.ErrAboveMaximum
	}
	if req.Method == "" {
		return xerrors.ErrMissingMethod
	}
	return nil
}

// Deposit validates and records a deposit request for the identified seller.
func (uc *DepositUsecase) Deposit(ctx context.Context, ident domain.Identity, req *domain.DepositRequest) (*domain.DepositResult, error) {
	req.SellerID = ident.SellerID

	if err := validateDepositRequest(req); err != nil {
		return nil, err
	}

	offline := domain.IsOfflineMethod(req.Method)

	entry := &domain.LedgerEntry{
		SellerID:       req.SellerID,
		Amount:         req.Amount,
		Method:         req.Method,
		Details:        req.Details,
		ReceiptRef:     req.ReceiptRef,
		ReferenceCode:  uc.refGen.GenerateTransactionRef(),
		Approval:       domain.ApprovalApproved,
		RequiresReview: false,
	}
	if offline {
		entry.Approval = domain.ApprovalPending
		entry.RequiresReview = true
	}

	var newBalance int64
	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := uc.ledgerRepo.Append(ctx, tx, entry); err != nil {
			return err
		}
		if entry.Approval != domain.ApprovalApproved {
			// Balance moves only when an operator approves the entry.
			return nil
		}

		var err error
		newBalance, err = uc.accountRepo.ApplyDelta(ctx, tx, req.SellerID, req.Amount)
		return err
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, err
		}
		uc.logger.Error("deposit transaction failed",
			zap.Int64("seller_id", req.SellerID),
			zap.Int64("amount", req.Amount),
			zap.String("method", req.Method),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	if offline {
		// Fail-soft read for the acknowledgment payload; the balance itself
		// is untouched until review.
		newBalance, _ = uc.accountRepo.GetBalance(ctx, req.SellerID)
	}

	uc.balanceUC.InvalidateBalance(ctx, req.SellerID)

	eventType := pub.EventDepositPending
	if !offline {
		eventType = pub.EventDepositApproved
	}
	_ = uc.publisher.Publish(ctx, &pub.WalletEvent{
		EventType:     eventType,
		SellerID:      req.SellerID,
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Amount:        req.Amount,
		BalanceAfter:  newBalance,
		Method:        req.Method,
	})

	uc.logger.Info("deposit recorded",
		zap.Int64("seller_id", req.SellerID),
		zap.Int64("entry_id", entry.ID),
		zap.String("reference", entry.ReferenceCode),
		zap.Bool("approved", !offline))

	return &domain.DepositResult{
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Approved:      !offline,
		NewBalance:    newBalance,
	}, nil
}
