package usecase

import (
	"github.com/tychicus04/web-ban-den-sub006/internal/pub"
	"github.com/tychicus04/web-ban-den-sub006/pkg/utils"

	"go.uber.org/zap"
)

type testEnv struct {
	store      *fakeStore
	depositUC  *DepositUsecase
	withdrawUC *WithdrawUsecase
	approvalUC *ApprovalUsecase
	balanceUC  *BalanceUsecase
	orderUC    *OrderStatusUsecase
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	runner := &fakeTxRunner{store: store}
	accounts := &fakeAccountRepo{store: store}
	ledger := &fakeLedgerRepo{store: store}
	orders := &fakeOrderRepo{store: store}

	logger := zap.NewNop()
	publisher := pub.NewWalletEventPublisher(nil, nil, logger)
	refGen := utils.NewReferenceGenerator()

	balanceUC := NewBalanceUsecase(accounts, ledger, nil, logger)

	return &testEnv{
		store:      store,
		depositUC:  NewDepositUsecase(runner, accounts, ledger, balanceUC, refGen, publisher, logger),
		withdrawUC: NewWithdrawUsecase(runner, accounts, ledger, refGen, publisher, logger),
		approvalUC: NewApprovalUsecase(runner, accounts, ledger, balanceUC, publisher, logger),
		balanceUC:  balanceUC,
		orderUC:    NewOrderStatusUsecase(runner, orders, publisher, logger),
	}
}
