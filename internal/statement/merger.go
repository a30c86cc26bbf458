package statement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

const openingDescription = "Opening Balance"

// Entry is a merged statement row before the running balance is applied
type Entry struct {
	SortKey int // 0 for the opening row, 1 for transactions
	Record
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// sourceRank orders same-day rows from different sources
var sourceRank = map[models.EntrySource]int{
	models.SourceOpening: 0,
	models.SourceBill:    1,
	models.SourcePayment: 2,
	models.SourceReceipt: 3,
}

// Merger lists every source over a date range as one ordered sequence
type Merger struct {
	sources []BalanceSource
}

// NewMerger reads every listed source. Order does not matter; entries are
// sorted after the fetch.
func NewMerger(sources ...BalanceSource) *Merger {
	return &Merger{sources: sources}
}

// Merge returns the opening pseudo-row followed by all in-range transactions,
// ordered by date, then source (bill, payment, receipt), then record id.
func (m *Merger) Merge(ctx context.Context, key Key, polarity Polarity, opening decimal.Decimal, from, to time.Time) ([]Entry, error) {
	from, to = timeutil.DateOnly(from), timeutil.DateOnly(to)

	entries := []Entry{openingEntry(opening, from)}
	for _, src := range m.sources {
		records, err := src.ListBetween(ctx, key, from, to)
		if err != nil {
			return nil, apperr.EnsureInternal(fmt.Sprintf("list %s transactions", src.Source()), err)
		}
		for _, rec := range records {
			if rec.Source == "" {
				rec.Source = src.Source()
			}
			rec.Date = timeutil.DateOnly(rec.Date)
			debit, credit := Split(polarity, rec.Source, rec.Amount)
			entries = append(entries, Entry{SortKey: 1, Record: rec, Debit: debit, Credit: credit})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
	return entries, nil
}

func openingEntry(opening decimal.Decimal, from time.Time) Entry {
	e := Entry{
		SortKey: 0,
		Record: Record{
			Source:      models.SourceOpening,
			Date:        from,
			Description: openingDescription,
			Amount:      opening.Abs(),
		},
		Debit:  decimal.Zero,
		Credit: decimal.Zero,
	}
	if opening.IsNegative() {
		e.Credit = opening.Neg()
	} else {
		e.Debit = opening
	}
	return e
}

func entryLess(a, b Entry) bool {
	if a.SortKey != b.SortKey {
		return a.SortKey < b.SortKey
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if ra, rb := sourceRank[a.Source], sourceRank[b.Source]; ra != rb {
		return ra < rb
	}
	return a.ID < b.ID
}
