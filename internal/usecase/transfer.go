package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"credit2cash/internal/domain"
	"credit2cash/internal/validation"
)

// TransferEngine converts card limit into a transfer to a savings account
// with a simulated settlement outcome.
type TransferEngine struct {
	ledger  *Ledger
	sampler Sampler
	opts    options
}

// NewTransferEngine creates an engine that draws outcomes from sampler.
func NewTransferEngine(ledger *Ledger, sampler Sampler, opts ...Option) *TransferEngine {
	return &TransferEngine{ledger: ledger, sampler: sampler, opts: buildOptions(opts)}
}

// Transfer records a transfer of amount from cardID to accountID and returns
// the new transaction. Both ids must exist; nothing is written otherwise.
// Card limits and account balances are left untouched whatever the outcome.
func (e *TransferEngine) Transfer(ctx context.Context, cardID, accountID string, amount decimal.Decimal) (domain.Transaction, error) {
	l := e.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	card, err := l.Card(ctx, cardID)
	if err != nil {
		return domain.Transaction{}, err
	}
	account, err := l.Account(ctx, accountID)
	if err != nil {
		return domain.Transaction{}, err
	}
	txs, err := l.ListTransactions(ctx, nil)
	if err != nil {
		return domain.Transaction{}, err
	}

	id, err := e.opts.newID()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("could not generate transaction id: %w", err)
	}
	tx := domain.Transaction{
		ID:          id,
		Amount:      amount,
		Status:      domain.OutcomeFor(e.sampler.Float64()),
		Type:        domain.TransferType,
		Date:        e.opts.now(),
		Description: describe(card, account),
	}

	txs = append([]domain.Transaction{tx}, txs...)
	if err := putJSON(ctx, l.kv, keyTransactions, txs); err != nil {
		return domain.Transaction{}, err
	}
	e.opts.logger.Printf("transfer id=%s amount=%s status=%s card=%s", tx.ID, tx.Amount, tx.Status, validation.Last4(card.CardNumber))
	return tx, nil
}

func describe(card domain.CreditCard, account domain.SavingsAccount) string {
	return fmt.Sprintf("%s Credit Card %s to %s Account", card.BankName, validation.MaskLast4(card.CardNumber), account.BankName)
}
