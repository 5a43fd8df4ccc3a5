package usecase

import (
	"context"
	"testing"

	"github.com/tychicus04/web-ban-den-sub006/internal/domain"
	"github.com/tychicus04/web-ban-den-sub006/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositValidation(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		method  string
		wantErr error
	}{
		{
			name:    "zero amount",
			amount:  0,
			method:  "momo",
			wantErr: xerrors.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			amount:  -5_000,
			method:  "momo",
			wantErr: xerrors.ErrInvalidAmount,
		},
		{
			name:    "one below minimum",
			amount:  9_999,
			method:  "momo",
			wantErr: xerrors.ErrBelowMinimum,
		},
		{
			name:   "exactly minimum",
			amount: 10_000,
			method: "momo",
		},
		{
			name:    "one above maximum",
			amount:  100_000_001,
			method:  "momo",
			wantErr: xerrors.ErrAboveMaximum,
		},
		{
			name:   "exactly maximum",
			amount: 100_000_000,
			method: "momo",
		},
		{
			name:    "missing method",
			amount:  20_000,
			method:  "",
			wantErr: xerrors.ErrMissingMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.store.balances[1] = 0
			ident := domain.Identity{SellerID: 1, DisplayName: "shop one"}

			result, err := env.depositUC.Deposit(context.Background(), ident, &domain.DepositRequest{
				Amount: tt.amount,
				Method: tt.method,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				assert.Empty(t, env.store.entries, "rejected deposit must not create a ledger entry")
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.True(t, result.Approved)
			assert.Equal(t, tt.amount, result.NewBalance)
			assert.Equal(t, env.store.approvedSum(1), env.store.balances[1],
				"balance must equal sum of approved entries")
		})
	}
}

func TestDepositOnlineMethodApprovesImmediately(t *testing.T) {
	env := newTestEnv()
	env.store.balances[7] = 30_000
	ident := domain.Identity{SellerID: 7}

	result, err := env.depositUC.Deposit(context.Background(), ident, &domain.DepositRequest{
		Amount: 50_000,
		Method: "momo",
	})
	require.NoError(t, err)

	assert.True(t, result.Approved)
	assert.Equal(t, int64(80_000), result.NewBalance)
	assert.Equal(t, int64(80_000), env.store.balances[7])

	require.Len(t, env.store.entries, 1)
	entry := env.store.entries[0]
	assert.Equal(t, domain.ApprovalApproved, entry.Approval)
	assert.False(t, entry.RequiresReview)
	assert.Equal(t, int64(50_000), entry.Amount)
	assert.NotEmpty(t, entry.ReferenceCode)
}

func TestDepositOfflineMethodQueuesForReview(t *testing.T) {
	tests := []struct {
		name   string
		method string
	}{
		{name: "bank transfer", method: "bank_transfer"},
		{name: "manual", method: "manual"},
		{name: "manual prefixed", method: "manual_cod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.store.balances[3] = 100_000
			ident := domain.Identity{SellerID: 3}

			result, err := env.depositUC.Deposit(context.Background(), ident, &domain.DepositRequest{
				Amount:  60_000,
				Method:  tt.method,
				Details: "ref 12345",
			})
			require.NoError(t, err)

			assert.False(t, result.Approved)
			assert.Equal(t, int64(100_000), result.NewBalance,
				"offline deposit must not move the balance")
			assert.Equal(t, int64(100_000), env.store.balances[3])

			require.Len(t, env.store.entries, 1)
			entry := env.store.entries[0]
			assert.Equal(t, domain.ApprovalPending, entry.Approval)
			assert.True(t, entry.RequiresReview)
		})
	}
}

func TestDepositStoreFailureIsTransient(t *testing.T) {
	env := newTestEnv()
	env.store.balances[2] = 10_000
	env.store.failAppend = true

	_, err := env.depositUC.Deposit(context.Background(), domain.Identity{SellerID: 2}, &domain.DepositRequest{
		Amount: 25_000,
		Method: "momo",
	})
	require.ErrorIs(t, err, xerrors.ErrTransientStore)

	assert.Empty(t, env.store.entries, "failed transaction must leave no partial write")
	assert.Equal(t, int64(10_000), env.store.balances[2])
}

func TestDepositMissingAccountIsHardError(t *testing.T) {
	env := newTestEnv()

	// No account row: the immediate-approval path must fail rather than
	// conjure a balance.
	_, err := env.depositUC.Deposit(context.Background(), domain.Identity{SellerID: 99}, &domain.DepositRequest{
		Amount: 25_000,
		Method: "momo",
	})
	require.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Empty(t, env.store.entries)
}
