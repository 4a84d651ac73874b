package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/1FabricioAntunes/backend-challenge-sub002/internal/transaction"
)

type storeBalanceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerName string    `json:"ownerName"`
	Balance   string    `json:"balance"`
}

type transactionResponse struct {
	ID         int64     `json:"id"`
	Type       int       `json:"type"`
	Amount     string    `json:"amount"`
	CPF        string    `json:"cpf"`
	Card       string    `json:"card"`
	OccurredAt time.Time `json:"occurredAt"`
}

type statementResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	OwnerName    string                `json:"ownerName"`
	Balance      string                `json:"balance"`
	Transactions []transactionResponse `json:"transactions"`
}

// formatCents renders cents as a plain decimal string, e.g. 65000 -> "650.00".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func toBalanceList(balances []*transaction.StoreBalance) []storeBalanceResponse {
	resp := make([]storeBalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = storeBalanceResponse{
			ID:        b.Store.ID,
			Name:      b.Store.Name,
			OwnerName: b.Store.OwnerName,
			Balance:   formatCents(b.BalanceCents),
		}
	}

	return resp
}

func toStatementResponse(s *transaction.Statement) statementResponse {
	txs := make([]transactionResponse, len(s.Transactions))
	for i, tx := range s.Transactions {
		txs[i] = transactionResponse{
			ID:         tx.ID,
			Type:       tx.Type,
			Amount:     formatCents(tx.AmountCents),
			CPF:        tx.CPF,
			Card:       tx.Card,
			OccurredAt: tx.OccurredAt,
		}
	}

	return statementResponse{
		ID:           s.Store.ID,
		Name:         s.Store.Name,
		OwnerName:    s.Store.OwnerName,
		Balance:      formatCents(s.BalanceCents),
		Transactions: txs,
	}
}
