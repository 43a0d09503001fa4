// Package billlist loads and orders submitted bills for display.
package billlist

import (
	"context"
	"fmt"
	"sort"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/store"
	"go.uber.org/zap"
)

// Loader turns raw persisted bills into a display-ready, reverse
// chronological sequence.
type Loader struct {
	store  store.Store
	logger *zap.Logger
}

// NewLoader creates a new bill list loader
func NewLoader(st store.Store, logger *zap.Logger) *Loader {
	return &Loader{
		store:  st,
		logger: logger,
	}
}

// Load fetches all bills and normalizes them for rendering.
//
// Dates are formatted per record: a malformed date is logged and falls
// back to its raw string rather than aborting the whole batch. The result
// is sorted strictly by date descending, most recent first, with ties kept
// in original response order. A failed fetch is returned as an error for
// the caller to render, never swallowed.
func (l *Loader) Load(ctx context.Context) ([]entity.DisplayBill, error) {
	raw, err := l.store.Bills().List(ctx)
	if err != nil {
		l.logger.Error("Failed to fetch bills", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch bills: %w", err)
	}

	bills := make([]entity.DisplayBill, 0, len(raw))
	for _, b := range raw {
		display := entity.DisplayBill{
			Bill:          b,
			FormattedDate: b.Date,
			StatusLabel:   b.Status.Label(),
			StatusClass:   b.Status.CSSClass(),
		}

		formatted, err := FormatDate(b.Date)
		if err != nil {
			// Corrupt record: keep the raw date, keep the batch
			l.logger.Warn("Falling back to raw date for bill",
				zap.String("bill_id", b.ID),
				zap.String("date", b.Date),
				zap.Error(err))
		} else {
			display.FormattedDate = formatted
		}

		bills = append(bills, display)
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].Date > bills[j].Date
	})

	l.logger.Debug("Loaded bills", zap.Int("count", len(bills)))
	return bills, nil
}
