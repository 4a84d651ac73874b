package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

func typeTable() []transaction.TypeInfo {
	return []transaction.TypeInfo{
		{Code: 1, Description: "Debit", Nature: transaction.NatureExpense, Sign: "-"},
		{Code: 2, Description: "Boleto", Nature: transaction.NatureExpense, Sign: "-"},
		{Code: 3, Description: "Financing", Nature: transaction.NatureExpense, Sign: "-"},
		{Code: 4, Description: "Credit", Nature: transaction.NatureIncome, Sign: "+"},
		{Code: 5, Description: "Loan receipt", Nature: transaction.NatureIncome, Sign: "+"},
		{Code: 6, Description: "Sales", Nature: transaction.NatureIncome, Sign: "+"},
		{Code: 7, Description: "TED receipt", Nature: transaction.NatureIncome, Sign: "+"},
		{Code: 8, Description: "DOC receipt", Nature: transaction.NatureIncome, Sign: "+"},
		{Code: 9, Description: "Rent", Nature: transaction.NatureExpense, Sign: "-"},
	}
}

func TestNewSignSet(t *testing.T) {
	set, err := transaction.NewSignSet(typeTable())
	require.NoError(t, err)

	sign, err := set.Sign(6)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sign)

	sign, err = set.Sign(1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), sign)
}

func TestNewSignSet_InvalidSign(t *testing.T) {
	_, err := transaction.NewSignSet([]transaction.TypeInfo{
		{Code: 1, Description: "Debit", Nature: transaction.NatureExpense, Sign: "x"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid sign "x"`)
}

func TestSignSet_UnknownCode(t *testing.T) {
	set, err := transaction.NewSignSet(typeTable())
	require.NoError(t, err)

	_, err = set.SignedCents(42, 1000)
	assert.ErrorIs(t, err, transaction.ErrUnknownType)
}

func TestService_StoreStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeID := uuid.New()
	st := &transaction.Store{ID: storeID, Name: "Acme", OwnerName: "Jane"}
	date := time.Date(2019, 3, 1, 15, 34, 53, 0, time.UTC)

	txs := []*transaction.Transaction{
		{ID: 1, StoreID: storeID, Type: 6, AmountCents: 50000, OccurredAt: date},
		{ID: 2, StoreID: storeID, Type: 1, AmountCents: 15000, OccurredAt: date},
		{ID: 3, StoreID: storeID, Type: 4, AmountCents: 30000, OccurredAt: date},
	}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetStore(gomock.Any(), storeID).Return(st, nil)
	repo.EXPECT().ListTypes(gomock.Any()).Return(typeTable(), nil)
	repo.EXPECT().ListByStore(gomock.Any(), storeID).Return(txs, nil)

	svc := transaction.NewService(repo)
	stmt, err := svc.StoreStatement(context.Background(), storeID)
	require.NoError(t, err)

	assert.Equal(t, st, stmt.Store)
	assert.Len(t, stmt.Transactions, 3)
	assert.Equal(t, int64(65000), stmt.BalanceCents)
}

func TestService_StoreStatement_OrderInvariant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeID := uuid.New()
	st := &transaction.Store{ID: storeID, Name: "Acme", OwnerName: "Jane"}

	txs := []*transaction.Transaction{
		{Type: 4, AmountCents: 30000},
		{Type: 6, AmountCents: 50000},
		{Type: 1, AmountCents: 15000},
	}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetStore(gomock.Any(), storeID).Return(st, nil)
	repo.EXPECT().ListTypes(gomock.Any()).Return(typeTable(), nil)
	repo.EXPECT().ListByStore(gomock.Any(), storeID).Return(txs, nil)

	svc := transaction.NewService(repo)
	stmt, err := svc.StoreStatement(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(65000), stmt.BalanceCents)
}

func TestService_StoreStatement_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeID := uuid.New()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetStore(gomock.Any(), storeID).Return(nil, transaction.ErrStoreNotFound)

	svc := transaction.NewService(repo)
	_, err := svc.StoreStatement(context.Background(), storeID)
	assert.ErrorIs(t, err, transaction.ErrStoreNotFound)
}

func TestService_StoreStatement_UnknownType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storeID := uuid.New()
	st := &transaction.Store{ID: storeID, Name: "Acme", OwnerName: "Jane"}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetStore(gomock.Any(), storeID).Return(st, nil)
	repo.EXPECT().ListTypes(gomock.Any()).Return(typeTable()[:3], nil)
	repo.EXPECT().ListByStore(gomock.Any(), storeID).Return([]*transaction.Transaction{
		{Type: 7, AmountCents: 1000},
	}, nil)

	svc := transaction.NewService(repo)
	_, err := svc.StoreStatement(context.Background(), storeID)
	assert.ErrorIs(t, err, transaction.ErrUnknownType)
}

func TestService_ListStoreBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	acme := &transaction.Store{ID: uuid.New(), Name: "Acme", OwnerName: "Jane"}
	empty := &transaction.Store{ID: uuid.New(), Name: "Bar do Jose", OwnerName: "Jose"}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListStores(gomock.Any()).Return([]*transaction.Store{acme, empty}, nil)
	repo.EXPECT().ListTypes(gomock.Any()).Return(typeTable(), nil)
	repo.EXPECT().SumByStoreAndType(gomock.Any()).Return([]transaction.TypeSum{
		{StoreID: acme.ID, Type: 6, AmountCents: 50000},
		{StoreID: acme.ID, Type: 1, AmountCents: 15000},
		{StoreID: acme.ID, Type: 4, AmountCents: 30000},
	}, nil)

	svc := transaction.NewService(repo)
	balances, err := svc.ListStoreBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, acme, balances[0].Store)
	assert.Equal(t, int64(65000), balances[0].BalanceCents)
	assert.Equal(t, empty, balances[1].Store)
	assert.Zero(t, balances[1].BalanceCents)
}

func TestService_ListStoreBalances_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListStores(gomock.Any()).Return(nil, errors.New("db error"))

	svc := transaction.NewService(repo)
	_, err := svc.ListStoreBalances(context.Background())
	assert.Error(t, err)
}
