package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/pub"
	"github.com/tychicus04/web-ban-den-sub006/internal/repository"
	"github.com/tychicus04/web-ban-den-sub006/pkg/utils"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Withdrawal limits, in minor currency units. The daily limit is a global
// platform constant; there is no per-seller tiering.
const (
	WithdrawMin        int64 = 50_000
	WithdrawMax        int64 = 50_000_000
	DailyWithdrawLimit int64 = 10_000_000
)

// WithdrawUsecase queues a seller's withdrawal request. Requests are never
// auto-approved and never touch the balance; an operator approves the entry
// later, which is when funds actually leave the wallet.
type WithdrawUsecase struct {
	runner      repository.TxRunner
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	refGen      *utils.ReferenceGenerator
	publisher   *pub.WalletEventPublisher
	logger      *zap.Logger
}

func NewWithdrawUsecase(
	runner repository.TxRunner,
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	refGen *utils.ReferenceGenerator,
	publisher *pub.WalletEventPublisher,
	logger *zap.Logger,
) *WithdrawUsecase {
	return &WithdrawUsecase{
		runner:      runner,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		refGen:      refGen,
		publisher:   publisher,
		logger:      logger,
	}
}

// startOfToday returns local midnight; the daily cap is a calendar-day
// ceiling, not a rolling 24h window.
func startOfToday(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Withdraw validates and queues a withdrawal request. The whole check chain
// from the balance comparison onward runs with the seller's balance row
// locked, so two concurrent requests cannot both pass against a stale read.
func (uc *WithdrawUsecase) Withdraw(ctx context.Context, ident domain.Identity, req *domain.WithdrawRequest) (*domain.WithdrawResult, error) {
	req.SellerID = ident.SellerID

	if req.Amount <= 0 {
		return nil, xerrors.ErrInvalidAmount
	}
	if req.Amount < WithdrawMin {
		return nil, xerrors.ErrBelowMinimum
	}

	entry := &domain.LedgerEntry{
		SellerID:       req.SellerID,
		Amount:         -req.Amount,
		Method:         req.Method,
		ReferenceCode:  uc.refGen.GenerateTransactionRef(),
		Approval:       domain.ApprovalPending,
		RequiresReview: true,
	}
	if req.Note != "" {
		entry.Note = &req.Note
	}
	if req.BankName != "" {
		entry.BankName = &req.BankName
	}
	if req.BankAccount != "" {
		entry.BankAccount = &req.BankAccount
	}
	if req.BankHolder != "" {
		entry.BankHolder = &req.BankHolder
	}

	var balance, usedToday int64
	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		balance, err = uc.accountRepo.GetBalanceForUpdate(ctx, tx, req.SellerID)
		if err != nil {
			if errors.Is(err, xerrors.ErrNotFound) {
				// Missing account row reads as zero, which the balance
				// check below rejects.
				balance = 0
			} else {
				return err
			}
		}

		// Queued requests hold funds: the usable balance is what is left
		// after every still-pending withdrawal, so two requests can never
		// both pass against the same funds.
		hold, err := uc.ledgerRepo.SumPendingHold(ctx, tx, req.SellerID)
		if err != nil {
			return err
		}
		if req.Amount > balance-hold {
			return xerrors.ErrInsufficientBalance
		}
		if req.Amount > WithdrawMax {
			return xerrors.ErrAboveMaximum
		}
		if req.Method == "" {
			return xerrors.ErrMissingMethod
		}
		if domain.IsBankStyleMethod(req.Method) {
			if req.BankName == "" || req.BankAccount == "" || req.BankHolder == "" {
				return xerrors.ErrMissingBankDetails
			}
		}

		usedToday, err = uc.ledgerRepo.SumWithdrawnToday(ctx, tx, req.SellerID, startOfToday(time.Now()))
		if err != nil {
			return err
		}
		if usedToday+req.Amount > DailyWithdrawLimit {
			return xerrors.ErrDailyLimitExceeded
		}

		return uc.ledgerRepo.Append(ctx, tx, entry)
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, err
		}
		uc.logger.Error("withdrawal transaction failed",
			zap.Int64("seller_id", req.SellerID),
			zap.Int64("amount", req.Amount),
			zap.String("method", req.Method),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	_ = uc.publisher.Publish(ctx, &pub.WalletEvent{
		EventType:     pub.EventWithdrawalRequested,
		SellerID:      req.SellerID,
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Amount:        -req.Amount,
		Method:        req.Method,
	})

	uc.logger.Info("withdrawal queued",
		zap.Int64("seller_id", req.SellerID),
		zap.Int64("entry_id", entry.ID),
		zap.String("reference", entry.ReferenceCode),
		zap.Int64("used_today", usedToday+req.Amount))

	return &domain.WithdrawResult{
		EntryID:       entry.ID,
		ReferenceCode: entry.ReferenceCode,
		Balance:       balance,
		UsedToday:     usedToday + req.Amount,
	}, nil
}

// Stats returns the seller's daily-cap usage for the withdraw page.
func (uc *WithdrawUsecase) Stats(ctx context.Context, ident domain.Identity) (*domain.WithdrawStats, error) {
	day := startOfToday(time.Now())

	var used int64
	err := uc.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		used, err = uc.ledgerRepo.SumWithdrawnToday(ctx, tx, ident.SellerID, day)
		return err
	})
	if err != nil {
		uc.logger.Error("withdrawal stats read failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	remaining := DailyWithdrawLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return &domain.WithdrawStats{
		SellerID:   ident.SellerID,
		UsedToday:  used,
		DailyLimit: DailyWithdrawLimit,
		Remaining:  remaining,
		Day:        day,
	}, nil
}
