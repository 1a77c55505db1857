package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"credit2cash/internal/domain"
)

var statementHeader = []string{"id", "date", "type", "description", "amount", "amount_inr", "status"}

// CSVStatementWriter implements the StatementWriter interface as CSV.
type CSVStatementWriter struct{}

// NewCSVStatementWriter creates a new statement writer.
func NewCSVStatementWriter() *CSVStatementWriter {
	return &CSVStatementWriter{}
}

// WriteStatement writes a header and one row per transaction, in the order given.
func (r *CSVStatementWriter) WriteStatement(ctx context.Context, w io.Writer, txs []domain.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(statementHeader); err != nil {
		return fmt.Errorf("failed to write statement header: %w", err)
	}

	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := []string{
			tx.ID,
			tx.Date.UTC().Format(time.RFC3339),
			tx.Type,
			tx.Description,
			tx.Amount.StringFixed(2),
			FormatINR(tx.Amount),
			string(tx.Status),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write transaction %s: %w", tx.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush statement: %w", err)
	}
	return nil
}
