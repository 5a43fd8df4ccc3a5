package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/internal/repository"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const balanceCacheTTL = 5 * time.Minute

// BalanceUsecase is the wallet read side: cached balance lookups and ledger
// listings for dashboards. Reads never mutate durable state.
type BalanceUsecase struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	rdb         *redis.Client
	logger      *zap.Logger
}

func NewBalanceUsecase(
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerRepository,
	rdb *redis.Client,
	logger *zap.Logger,
) *BalanceUsecase {
	return &BalanceUsecase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		rdb:         rdb,
		logger:      logger,
	}
}

func balanceCacheKey(sellerID int64) string {
	return fmt.Sprintf("wallet:balance:%d", sellerID)
}

// GetBalance returns the seller's balance, serving from cache when it can.
// A missing account row reads as zero (fail-soft, matching the dashboards
// this feeds).
func (uc *BalanceUsecase) GetBalance(ctx context.Context, sellerID int64) (int64, error) {
	if uc.rdb != nil {
		if cached, err := uc.rdb.Get(ctx, balanceCacheKey(sellerID)).Result(); err == nil {
			if v, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return v, nil
			}
		}
	}

	balance, err := uc.accountRepo.GetBalance(ctx, sellerID)
	if err != nil {
		uc.logger.Error("balance read failed",
			zap.Int64("seller_id", sellerID),
			zap.Error(err))
		return 0, xerrors.ErrTransientStore
	}

	if uc.rdb != nil {
		if err := uc.rdb.Set(ctx, balanceCacheKey(sellerID),
			strconv.FormatInt(balance, 10), balanceCacheTTL).Err(); err != nil {
			uc.logger.Warn("balance cache set failed",
				zap.Int64("seller_id", sellerID),
				zap.Error(err))
		}
	}

	return balance, nil
}

// InvalidateBalance drops the cached balance after a committed mutation.
func (uc *BalanceUsecase) InvalidateBalance(ctx context.Context, sellerID int64) {
	if uc.rdb == nil {
		return
	}
	if err := uc.rdb.Del(ctx, balanceCacheKey(sellerID)).Err(); err != nil {
		uc.logger.Warn("balance cache invalidation failed",
			zap.Int64("seller_id", sellerID),
			zap.Error(err))
	}
}

// Overview returns the dashboard read model: balance, lifetime approved
// totals recomputed from the ledger, and recent entries.
func (uc *BalanceUsecase) Overview(ctx context.Context, ident domain.Identity, limit int) (*domain.WalletOverview, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	balance, err := uc.GetBalance(ctx, ident.SellerID)
	if err != nil {
		return nil, err
	}

	deposited, err := uc.ledgerRepo.SumApproved(ctx, ident.SellerID, domain.SignPositive, nil)
	if err != nil {
		uc.logger.Error("deposit total read failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}
	withdrawn, err := uc.ledgerRepo.SumApproved(ctx, ident.SellerID, domain.SignNegative, nil)
	if err != nil {
		uc.logger.Error("withdrawal total read failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	entries, err := uc.ledgerRepo.ListBySeller(ctx, ident.SellerID, &domain.LedgerFilter{Limit: limit})
	if err != nil {
		uc.logger.Error("ledger list failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}

	return &domain.WalletOverview{
		SellerID:       ident.SellerID,
		Balance:        balance,
		TotalDeposited: deposited,
		TotalWithdrawn: -withdrawn,
		Entries:        entries,
	}, nil
}

// ListLedger returns the seller's ledger entries for the given filter.
func (uc *BalanceUsecase) ListLedger(ctx context.Context, ident domain.Identity, filter *domain.LedgerFilter) ([]*domain.LedgerEntry, error) {
	if filter == nil {
		filter = &domain.LedgerFilter{Limit: 20}
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	entries, err := uc.ledgerRepo.ListBySeller(ctx, ident.SellerID, filter)
	if err != nil {
		uc.logger.Error("ledger list failed",
			zap.Int64("seller_id", ident.SellerID),
			zap.Error(err))
		return nil, xerrors.ErrTransientStore
	}
	return entries, nil
}
