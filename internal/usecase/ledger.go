package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"credit2cash/internal/domain"
)

const (
	keyCards        = "ledger.cards"
	keyAccounts     = "ledger.accounts"
	keyTransactions = "ledger.transactions"
)

// Ledger owns the card, account and transaction collections.
type Ledger struct {
	kv         KeyValueStore
	statements StatementWriter
	opts       options
	mu         sync.Mutex
}

// NewLedger creates a ledger over kv.
func NewLedger(kv KeyValueStore, statements StatementWriter, opts ...Option) *Ledger {
	return &Ledger{kv: kv, statements: statements, opts: buildOptions(opts)}
}

// ListCards returns cards in insertion order.
func (l *Ledger) ListCards(ctx context.Context) ([]domain.CreditCard, error) {
	var cards []domain.CreditCard
	if _, err := getJSON(ctx, l.kv, keyCards, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// ListAccounts returns accounts in insertion order.
func (l *Ledger) ListAccounts(ctx context.Context) ([]domain.SavingsAccount, error) {
	var accounts []domain.SavingsAccount
	if _, err := getJSON(ctx, l.kv, keyAccounts, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListTransactions returns transactions most recent first, restricted to
// status when it is non-nil.
func (l *Ledger) ListTransactions(ctx context.Context, status *domain.TransactionStatus) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if _, err := getJSON(ctx, l.kv, keyTransactions, &txs); err != nil {
		return nil, err
	}
	if status == nil {
		return txs, nil
	}
	filtered := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == *status {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

// Card looks up a card by id.
func (l *Ledger) Card(ctx context.Context, id string) (domain.CreditCard, error) {
	cards, err := l.ListCards(ctx)
	if err != nil {
		return domain.CreditCard{}, err
	}
	return findCard(cards, id)
}

// Account looks up an account by id.
func (l *Ledger) Account(ctx context.Context, id string) (domain.SavingsAccount, error) {
	accounts, err := l.ListAccounts(ctx)
	if err != nil {
		return domain.SavingsAccount{}, err
	}
	return findAccount(accounts, id)
}

// AddCard appends a card. Only presence of the fields is checked.
func (l *Ledger) AddCard(ctx context.Context, in domain.NewCard) (domain.CreditCard, error) {
	number := strings.ReplaceAll(strings.TrimSpace(in.CardNumber), " ", "")
	if err := required(map[string]string{
		"card number": number,
		"bank name":   in.BankName,
		"expiry date": in.ExpiryDate,
	}); err != nil {
		return domain.CreditCard{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.opts.newID()
	if err != nil {
		return domain.CreditCard{}, fmt.Errorf("could not generate card id: %w", err)
	}
	limit := in.AvailableLimit
	if limit.IsZero() {
		limit = l.opts.cardLimit
	}
	card := domain.CreditCard{
		ID:             id,
		CardNumber:     number,
		BankName:       strings.TrimSpace(in.BankName),
		ExpiryDate:     strings.TrimSpace(in.ExpiryDate),
		AvailableLimit: limit,
	}

	cards, err := l.ListCards(ctx)
	if err != nil {
		return domain.CreditCard{}, err
	}
	cards = append(cards, card)
	if err := putJSON(ctx, l.kv, keyCards, cards); err != nil {
		return domain.CreditCard{}, err
	}
	l.opts.logger.Printf("ledger event=card_added id=%s bank=%q", card.ID, card.BankName)
	return card, nil
}

// AddAccount appends a savings account. Only presence of the fields is checked.
func (l *Ledger) AddAccount(ctx context.Context, in domain.NewAccount) (domain.SavingsAccount, error) {
	if err := required(map[string]string{
		"account number": in.AccountNumber,
		"bank name":      in.BankName,
		"ifsc":           in.IFSC,
	}); err != nil {
		return domain.SavingsAccount{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.opts.newID()
	if err != nil {
		return domain.SavingsAccount{}, fmt.Errorf("could not generate account id: %w", err)
	}
	account := domain.SavingsAccount{
		ID:            id,
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		BankName:      strings.TrimSpace(in.BankName),
		IFSC:          strings.ToUpper(strings.TrimSpace(in.IFSC)),
		Balance:       in.Balance,
	}

	accounts, err := l.ListAccounts(ctx)
	if err != nil {
		return domain.SavingsAccount{}, err
	}
	accounts = append(accounts, account)
	if err := putJSON(ctx, l.kv, keyAccounts, accounts); err != nil {
		return domain.SavingsAccount{}, err
	}
	l.opts.logger.Printf("ledger event=account_added id=%s bank=%q", account.ID, account.BankName)
	return account, nil
}

// Summary folds one consistent snapshot of the collections. Nothing is cached.
func (l *Ledger) Summary(ctx context.Context) (domain.Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cards, err := l.ListCards(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	accounts, err := l.ListAccounts(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	txs, err := l.ListTransactions(ctx, nil)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(cards, accounts, txs), nil
}

// ExportStatement writes the full transaction history to w.
func (l *Ledger) ExportStatement(ctx context.Context, w io.Writer) error {
	txs, err := l.ListTransactions(ctx, nil)
	if err != nil {
		return err
	}
	if err := l.statements.WriteStatement(ctx, w, txs); err != nil {
		return fmt.Errorf("could not write statement: %w", err)
	}
	return nil
}

func findCard(cards []domain.CreditCard, id string) (domain.CreditCard, error) {
	for _, c := range cards {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.CreditCard{}, &domain.NotFoundError{Kind: "credit card", ID: id}
}

func findAccount(accounts []domain.SavingsAccount, id string) (domain.SavingsAccount, error) {
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.SavingsAccount{}, &domain.NotFoundError{Kind: "savings account", ID: id}
}

func required(fields map[string]string) error {
	for _, name := range []string{"card number", "account number", "bank name", "expiry date", "ifsc"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			return &domain.ValidationError{Field: name, Message: "is required"}
		}
	}
	return nil
}
