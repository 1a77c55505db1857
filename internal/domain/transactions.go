package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement outcome assigned to a transfer at creation time.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// TransferType is the fixed label carried by every transaction the engine creates.
const TransferType = "Credit to Cash"

// Outcome thresholds over a uniform sample in [0,1).
const (
	successCutoff = 0.60
	pendingCutoff = 0.85
)

// ParseTransactionStatus rejects anything outside the closed set of statuses.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case StatusPending, StatusSuccess, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// UnmarshalText keeps stored records inside the closed set.
func (s *TransactionStatus) UnmarshalText(b []byte) error {
	st, err := ParseTransactionStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// OutcomeFor maps a uniform sample to a status: [0,0.6) success, [0.6,0.85) pending,
// [0.85,1) failed.
func OutcomeFor(sample float64) TransactionStatus {
	switch {
	case sample < successCutoff:
		return StatusSuccess
	case sample < pendingCutoff:
		return StatusPending
	default:
		return StatusFailed
	}
}

// CreditCard is a card registered on the device. Only the last four digits are ever shown.
type CreditCard struct {
	ID             string          `json:"id"`
	CardNumber     string          `json:"cardNumber"`
	BankName       string          `json:"bankName"`
	ExpiryDate     string          `json:"expiryDate"` // MM/YY
	AvailableLimit decimal.Decimal `json:"availableLimit"`
}

// SavingsAccount is a destination for transfers. Balance is informational.
type SavingsAccount struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	BankName      string          `json:"bankName"`
	IFSC          string          `json:"ifsc"`
	Balance       decimal.Decimal `json:"balance"`
}

// Transaction is the immutable audit record of one transfer.
type Transaction struct {
	ID          string            `json:"id"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Type        string            `json:"type"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
}

// NewCard carries the caller-supplied fields of a card before an id is assigned.
type NewCard struct {
	CardNumber     string
	BankName       string
	ExpiryDate     string
	AvailableLimit decimal.Decimal
}

// NewAccount carries the caller-supplied fields of an account before an id is assigned.
type NewAccount struct {
	AccountNumber string
	BankName      string
	IFSC          string
	Balance       decimal.Decimal
}
