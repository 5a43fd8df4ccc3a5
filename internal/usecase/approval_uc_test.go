package usecase

import (
	"context"
	"testing"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuePendingDeposit(t *testing.T, env *testEnv, sellerID, amount int64) int64 {
	t.Helper()
	result, err := env.depositUC.Deposit(context.Background(), domain.Identity{SellerID: sellerID},
		&domain.DepositRequest{Amount: amount, Method: "bank_transfer"})
	require.NoError(t, err)
	require.False(t, result.Approved)
	return result.EntryID
}

func queuePendingWithdrawal(t *testing.T, env *testEnv, sellerID, amount int64) int64 {
	t.Helper()
	result, err := env.withdrawUC.Withdraw(context.Background(), domain.Identity{SellerID: sellerID},
		&domain.WithdrawRequest{Amount: amount, Method: "momo"})
	require.NoError(t, err)
	return result.EntryID
}

func TestApproveDepositCreditsBalance(t *testing.T) {
	env := newTestEnv()
	env.store.balances[1] = 20_000
	entryID := queuePendingDeposit(t, env, 1, 80_000)

	entry, newBalance, err := env.approvalUC.Approve(context.Background(), entryID)
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalApproved, entry.Approval)
	assert.Equal(t, int64(100_000), newBalance)
	assert.Equal(t, int64(100_000), env.store.balances[1])
	require.NotNil(t, env.store.entries[0].ApprovedAt)
}

func TestApproveWithdrawalDebitsBalance(t *testing.T) {
	env := newTestEnv()
	env.store.balances[2] = 200_000
	entryID := queuePendingWithdrawal(t, env, 2, 120_000)

	_, newBalance, err := env.approvalUC.Approve(context.Background(), entryID)
	require.NoError(t, err)

	assert.Equal(t, int64(80_000), newBalance)
	assert.Equal(t, int64(80_000), env.store.balances[2])
}

func TestApproveIsNotRepeatable(t *testing.T) {
	env := newTestEnv()
	env.store.balances[3] = 0
	entryID := queuePendingDeposit(t, env, 3, 50_000)

	_, _, err := env.approvalUC.Approve(context.Background(), entryID)
	require.NoError(t, err)

	// A second approval must not credit the balance twice.
	_, _, err = env.approvalUC.Approve(context.Background(), entryID)
	require.ErrorIs(t, err, xerrors.ErrAlreadyProcessed)
	assert.Equal(t, int64(50_000), env.store.balances[3])
}

func TestApproveUnknownEntry(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.approvalUC.Approve(context.Background(), 12345)
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	env := newTestEnv()
	env.store.balances[4] = 300_000
	entryID := queuePendingWithdrawal(t, env, 4, 100_000)

	entry, err := env.approvalUC.Reject(context.Background(), entryID, "name mismatch on bank account")
	require.NoError(t, err)

	assert.Equal(t, domain.ApprovalRejected, entry.Approval)
	assert.Equal(t, int64(300_000), env.store.balances[4])

	// Rejected is terminal.
	_, _, err = env.approvalUC.Approve(context.Background(), entryID)
	require.ErrorIs(t, err, xerrors.ErrAlreadyProcessed)

	// The released hold is requestable again.
	_, err = env.withdrawUC.Withdraw(context.Background(), domain.Identity{SellerID: 4},
		&domain.WithdrawRequest{Amount: 300_000, Method: "momo"})
	require.NoError(t, err)
}

func TestApproveWithdrawalInsufficientFundsStaysPending(t *testing.T) {
	env := newTestEnv()
	env.store.balances[5] = 200_000
	entryID := queuePendingWithdrawal(t, env, 5, 150_000)

	// Funds left the account between request and review (an approved
	// withdrawal processed first).
	env.store.balances[5] = 100_000

	_, _, err := env.approvalUC.Approve(context.Background(), entryID)
	require.ErrorIs(t, err, xerrors.ErrInsufficientBalance)

	// The whole transaction rolled back: entry still pending, balance kept.
	assert.Equal(t, domain.ApprovalPending, env.store.entries[0].Approval)
	assert.Equal(t, int64(100_000), env.store.balances[5])
}
