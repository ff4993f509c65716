package statement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/statementtest"
)

func TestSummarize(t *testing.T) {
	jan := record("jan.pdf", statementtest.Date(2024, time.January, 15), 9733)
	feb := record("feb.pdf", statementtest.Date(2024, time.February, 15), 7733)
	feb.PromoApplied = true
	feb.PromoDiscount = usd(-2000)
	febExpiry := statementtest.Date(2024, time.August, 14)
	feb.PromoExpiry = &febExpiry
	mar := record("mar.pdf", statementtest.Date(2024, time.March, 15), 12732)
	mar.OneTimeCharge = usd(4999)
	mar.PromoApplied = true
	mar.PromoDiscount = usd(-2000)
	marExpiry := statementtest.Date(2024, time.July, 14)
	mar.PromoExpiry = &marExpiry
	mar.ComputedTotal = usd(12730)

	table := statement.NewSummaryTable()
	for _, r := range []*statement.BillingRecord{mar, jan, feb} {
		require.NoError(t, table.Append(r))
	}
	require.NoError(t, table.Finalize())

	ins, err := statement.Summarize(table, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, ins.Statements)
	assert.Equal(t, 1, ins.Mismatches)
	assert.Equal(t, 2, ins.PromoMonths)
	assert.Equal(t, 1, ins.OneTimeMonths)
	assert.Equal(t, int64(30198), ins.TotalPrinted.Amount())
	assert.Equal(t, int64(10066), ins.AveragePrinted.Amount())
	assert.Equal(t, jan.StatementDate, ins.FirstStatement)
	assert.Equal(t, mar.StatementDate, ins.LastStatement)
	require.NotNil(t, ins.LatestPromoExpiry)
	assert.Equal(t, febExpiry, *ins.LatestPromoExpiry)
	assert.Equal(t, int64(4999), ins.LastChange.Amount())

	tolerant, err := statement.Summarize(table, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, tolerant.Mismatches)
}

func TestSummarize_Empty(t *testing.T) {
	table := statement.NewSummaryTable()
	require.NoError(t, table.Finalize())

	ins, err := statement.Summarize(table, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, ins.Statements)
	assert.True(t, ins.TotalPrinted.IsZero())
	assert.True(t, ins.AveragePrinted.IsZero())
	assert.True(t, ins.LastChange.IsZero())
	assert.Nil(t, ins.LatestPromoExpiry)
	assert.True(t, ins.FirstStatement.IsZero())
}

func TestSummarize_SingleStatement(t *testing.T) {
	table := statement.NewSummaryTable()
	require.NoError(t, table.Append(record("only.pdf", statementtest.Date(2024, time.April, 1), 5000)))
	require.NoError(t, table.Finalize())

	ins, err := statement.Summarize(table, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), ins.AveragePrinted.Amount())
	assert.True(t, ins.LastChange.IsZero())
}
