package statement

import (
	"sort"
)

// SummaryTable collects billing records in the order statements were read
// and, once finalized, exposes them sorted by statement date with IDs 1..N.
// It is not safe for concurrent use.
type SummaryTable struct {
	records   []*BillingRecord
	finalized bool
}

// NewSummaryTable creates an empty table.
func NewSummaryTable() *SummaryTable {
	return &SummaryTable{}
}

// Append adds a record. Records cannot be added after Finalize.
func (t *SummaryTable) Append(rec *BillingRecord) error {
	if t.finalized {
		return ErrAlreadyFinalized
	}
	t.records = append(t.records, rec)
	return nil
}

// Finalize sorts records ascending by statement date and numbers them from 1.
// Records with equal dates keep their append order. Finalize runs once.
func (t *SummaryTable) Finalize() error {
	if t.finalized {
		return ErrAlreadyFinalized
	}

	sort.SliceStable(t.records, func(i, j int) bool {
		return t.records[i].StatementDate.Before(t.records[j].StatementDate)
	})
	for i, rec := range t.records {
		rec.ID = i + 1
	}

	t.finalized = true
	return nil
}

// Len returns the number of records.
func (t *SummaryTable) Len() int {
	return len(t.records)
}

// Rows returns a copy of the records in their current order.
func (t *SummaryTable) Rows() []BillingRecord {
	rows := make([]BillingRecord, len(t.records))
	for i, rec := range t.records {
		rows[i] = *rec
	}
	return rows
}

// Mismatches returns the records whose totals disagree beyond toleranceCents.
func (t *SummaryTable) Mismatches(toleranceCents int64) []BillingRecord {
	var out []BillingRecord
	for _, rec := range t.records {
		if !rec.TotalsMatch(toleranceCents) {
			out = append(out, *rec)
		}
	}
	return out
}
