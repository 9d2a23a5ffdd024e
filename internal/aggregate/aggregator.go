// Package aggregate derives Total rows and filters the combined dataset.
// Every function here is a pure transform: identical input produces
// identical output, with no hidden state between calls.
package aggregate

import (
	"sort"

	"txdash/pkg/contracts/domain"
)

// groupKey identifies one (client, date) aggregation group.
type groupKey struct {
	client string
	date   string
}

// totalAccumulator folds one group's volume and amount sums. Missing
// amounts contribute nothing, but the count of valid contributions decides
// whether the Total amount itself is missing.
type totalAccumulator struct {
	date         domain.Day
	volume       float64
	amount       float64
	validAmounts int
}

// Build unions the raw records with one derived Total row per (client,
// date) pair present in the data. Rows with a missing date cannot be
// placed in any group; they pass through untouched and are excluded from
// totals. Total rows are appended after the raw rows, sorted by client
// then date, so the output is deterministic.
func Build(records []domain.TransactionRecord) domain.Dataset {
	groups := make(map[groupKey]*totalAccumulator)

	for _, r := range records {
		if !r.Date.Valid || r.IsTotal() {
			continue
		}
		key := groupKey{client: r.Client, date: r.Date.String()}
		acc, ok := groups[key]
		if !ok {
			acc = &totalAccumulator{date: r.Date}
			groups[key] = acc
		}
		acc.volume += r.Volume
		if r.Amount.Valid {
			acc.amount += r.Amount.Float64
			acc.validAmounts++
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].client != keys[j].client {
			return keys[i].client < keys[j].client
		}
		return keys[i].date < keys[j].date
	})

	combined := make([]domain.TransactionRecord, 0, len(records)+len(keys))
	combined = append(combined, records...)
	for _, key := range keys {
		acc := groups[key]
		amount := domain.MissingAmount
		if acc.validAmounts > 0 {
			amount = domain.NewAmount(acc.amount)
		}
		combined = append(combined, domain.TransactionRecord{
			Client:    key.client,
			Date:      acc.date,
			Operation: domain.OperationTotal,
			Volume:    acc.volume,
			Amount:    amount,
		})
	}

	return domain.Dataset{Records: combined}
}

// Filter returns the subset of ds whose client is in the selected set and
// whose date lies within [from, to], both bounds inclusive. A missing from
// or to leaves that side unbounded. Records with a missing date are always
// excluded: they cannot be placed in any range.
func Filter(ds domain.Dataset, clients []string, from, to domain.Day) domain.Dataset {
	selected := make(map[string]struct{}, len(clients))
	for _, c := range clients {
		selected[c] = struct{}{}
	}

	var filtered []domain.TransactionRecord
	for _, r := range ds.Records {
		if _, ok := selected[r.Client]; !ok {
			continue
		}
		if !r.Date.Valid {
			continue
		}
		if from.Valid && r.Date.Before(from) {
			continue
		}
		if to.Valid && r.Date.After(to) {
			continue
		}
		filtered = append(filtered, r)
	}

	return domain.Dataset{Records: filtered}
}

// Summarize computes the headline totals over the Total rows of a filtered
// dataset. Raw rows are ignored so nothing is double-counted. When no
// Total row carries a valid amount the summary amount is missing, not zero.
func Summarize(ds domain.Dataset) domain.Summary {
	var summary domain.Summary
	var validAmounts int

	for _, r := range ds.Records {
		if !r.IsTotal() {
			continue
		}
		summary.TotalVolume += r.Volume
		if r.Amount.Valid {
			summary.TotalAmount.Float64 += r.Amount.Float64
			validAmounts++
		}
	}

	summary.TotalAmount.Valid = validAmounts > 0
	return summary
}
