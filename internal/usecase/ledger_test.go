package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"credit2cash/internal/domain"
	"credit2cash/internal/gateway"
	"credit2cash/internal/usecase"
	mock_usecase "credit2cash/internal/usecase/mocks"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func newLedger(kv usecase.KeyValueStore) *usecase.Ledger {
	return usecase.NewLedger(kv, gateway.NewCSVStatementWriter(), usecase.WithClock(func() time.Time { return fixedNow }))
}

func TestLedger_AddCardKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(gateway.NewMemoryStore())

	banks := []string{"HDFC", "ICICI", "Axis"}
	var ids []string
	for i, bank := range banks {
		card, err := ledger.AddCard(ctx, domain.NewCard{
			CardNumber: "4111 1111 1111 111" + string(rune('1'+i)),
			BankName:   bank,
			ExpiryDate: "12/28",
		})
		require.NoError(t, err)
		ids = append(ids, card.ID)
	}

	cards, err := ledger.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for i, card := range cards {
		assert.Equal(t, ids[i], card.ID)
		assert.Equal(t, banks[i], card.BankName)
		assert.True(t, usecase.DefaultCardLimit.Equal(card.AvailableLimit))
	}
	assert.Equal(t, "4111111111111111", cards[0].CardNumber)
	assert.Len(t, map[string]bool{ids[0]: true, ids[1]: true, ids[2]: true}, 3)
}

func TestLedger_AddRequiresFields(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(gateway.NewMemoryStore())

	tests := []struct {
		name  string
		add   func() error
		field string
	}{
		{
			name:  "card without number",
			add:   func() error { _, err := ledger.AddCard(ctx, domain.NewCard{CardNumber: "  ", BankName: "HDFC", ExpiryDate: "12/28"}); return err },
			field: "card number",
		},
		{
			name:  "card without expiry",
			add:   func() error { _, err := ledger.AddCard(ctx, domain.NewCard{CardNumber: "4111", BankName: "HDFC"}); return err },
			field: "expiry date",
		},
		{
			name:  "account without ifsc",
			add:   func() error { _, err := ledger.AddAccount(ctx, domain.NewAccount{AccountNumber: "001", BankName: "SBI"}); return err },
			field: "ifsc",
		},
		{
			name:  "account without bank",
			add:   func() error { _, err := ledger.AddAccount(ctx, domain.NewAccount{AccountNumber: "001", IFSC: "SBIN0000001"}); return err },
			field: "bank name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *domain.ValidationError
			require.ErrorAs(t, tt.add(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	cards, err := ledger.ListCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
	accounts, err := ledger.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestLedger_AddAccount(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(gateway.NewMemoryStore())

	account, err := ledger.AddAccount(ctx, domain.NewAccount{AccountNumber: "00112233", BankName: "SBI", IFSC: "sbin0000001"})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "SBIN0000001", account.IFSC)
	assert.True(t, account.Balance.IsZero())

	got, err := ledger.Account(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = ledger.Account(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_IDGeneratorFailure(t *testing.T) {
	ctx := context.Background()
	kv := gateway.NewMemoryStore()
	ledger := usecase.NewLedger(kv, gateway.NewCSVStatementWriter(), usecase.WithIDGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))

	_, err := ledger.AddCard(ctx, domain.NewCard{CardNumber: "4111", BankName: "HDFC", ExpiryDate: "12/28"})
	assert.Error(t, err)

	cards, err := ledger.ListCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestLedger_SummaryOnEmptyLedger(t *testing.T) {
	summary, err := newLedger(gateway.NewMemoryStore()).Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.AvailableCredit.IsZero())
	assert.True(t, summary.Transferred.IsZero())
	assert.Equal(t, 0, summary.TotalCards)
	assert.Equal(t, 0, summary.TotalAccounts)
}

// hookedStore runs afterGet once a read has been served.
type hookedStore struct {
	usecase.KeyValueStore
	afterGet func(key string)
}

func (h *hookedStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := h.KeyValueStore.Get(ctx, key)
	if h.afterGet != nil {
		h.afterGet(key)
	}
	return b, err
}

func TestLedger_SummaryIsOneSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := &hookedStore{KeyValueStore: gateway.NewMemoryStore()}
	ledger := newLedger(kv)
	_, err := ledger.AddCard(ctx, domain.NewCard{CardNumber: "4111", BankName: "HDFC", ExpiryDate: "12/28"})
	require.NoError(t, err)

	added := make(chan error, 1)
	var once sync.Once
	kv.afterGet = func(key string) {
		if key != "ledger.cards" {
			return
		}
		once.Do(func() {
			go func() {
				_, err := ledger.AddAccount(ctx, domain.NewAccount{AccountNumber: "001", BankName: "SBI", IFSC: "SBIN0000001"})
				added <- err
			}()
			select {
			case err := <-added:
				added <- err
			case <-time.After(50 * time.Millisecond):
			}
		})
	}

	summary, err := ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalCards)
	assert.Equal(t, 0, summary.TotalAccounts, "account added mid-read leaked into the snapshot")

	require.NoError(t, <-added)
	summary, err = ledger.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalAccounts)
}

func TestLedger_ExportStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	kv := gateway.NewMemoryStore()
	txs := []domain.Transaction{{ID: "TX1", Amount: decimal.NewFromInt(10), Status: domain.StatusSuccess}}
	require.NoError(t, kv.Put(ctx, "ledger.transactions", mustJSON(t, txs)))

	writer := mock_usecase.NewMockStatementWriter(ctrl)
	var buf bytes.Buffer
	writer.EXPECT().WriteStatement(gomock.Any(), &buf, gomock.Len(1)).Return(nil)

	ledger := usecase.NewLedger(kv, writer)
	require.NoError(t, ledger.ExportStatement(ctx, &buf))

	writer.EXPECT().WriteStatement(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broken pipe"))
	assert.Error(t, ledger.ExportStatement(ctx, &buf))
}

func TestLedger_CorruptCollectionFailsLoud(t *testing.T) {
	ctx := context.Background()
	kv := gateway.NewMemoryStore()
	require.NoError(t, kv.Put(ctx, "ledger.transactions", []byte(`[{"id":"1","status":"settled"}]`)))

	_, err := newLedger(kv).ListTransactions(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}
