package domain

import "github.com/shopspring/decimal"

// Summary is derived from the ledger on every read and never stored.
type Summary struct {
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	Transferred     decimal.Decimal `json:"transferred"`
	TotalCards      int             `json:"totalCards"`
	TotalAccounts   int             `json:"totalAccounts"`
}

// Summarize folds the current collections into a Summary. Only successful
// transactions count towards Transferred.
func Summarize(cards []CreditCard, accounts []SavingsAccount, txs []Transaction) Summary {
	s := Summary{
		AvailableCredit: decimal.Zero,
		Transferred:     decimal.Zero,
		TotalCards:      len(cards),
		TotalAccounts:   len(accounts),
	}
	for _, c := range cards {
		s.AvailableCredit = s.AvailableCredit.Add(c.AvailableLimit)
	}
	for _, tx := range txs {
		if tx.Status == StatusSuccess {
			s.Transferred = s.Transferred.Add(tx.Amount)
		}
	}
	return s
}
